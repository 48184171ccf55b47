package sync

// Config holds configuration for the sync feature.
type Config struct {
	// PlaceholderUserID is the bare account id attributed to saved items,
	// whose real authors the archive does not identify.
	PlaceholderUserID string `mapstructure:"placeholder_user_id" default:"1"`
	// PlaceholderUsername is the display name stored for that account.
	PlaceholderUsername string `mapstructure:"placeholder_username" default:"your account"`
}

// DefaultConfig returns the sync defaults, used directly when no
// configuration layer is loaded.
func DefaultConfig() Config {
	return Config{
		PlaceholderUserID:   "1",
		PlaceholderUsername: "your account",
	}
}

// placeholderIdentity returns the synthetic author attached to saved items.
func (c Config) placeholderIdentity() Identity {
	return Identity{
		Username: c.PlaceholderUsername,
		Fullname: "t2_" + c.PlaceholderUserID,
	}
}
