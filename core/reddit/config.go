package reddit

// Config holds configuration for the Reddit API client.
type Config struct {
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://www.reddit.com"`
	// UserAgent identifies the client to Reddit; requests without one are
	// throttled aggressively.
	UserAgent string `mapstructure:"user_agent" default:"reddit-archiver"`
	// PageSize is the number of records per request (the API caps it at 100).
	PageSize int `mapstructure:"page_size" default:"100"`
	// MaxPages caps pagination per listing. The API documents no upper bound
	// on listing length, so the cap bounds an otherwise unbounded fetch.
	MaxPages int `mapstructure:"max_pages" default:"10"`
}
