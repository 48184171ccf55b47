package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the SQLite database file path. ":memory:" opens an in-memory
	// database. Only used when Driver is sqlite.
	Path string `mapstructure:"path" default:"reddit.db"`
	// Host is the database host (mysql only).
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port (mysql only).
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user (mysql only).
	User string `mapstructure:"user" default:"root"`
	// Password is the database password (mysql only).
	Password string `mapstructure:"password" default:""`
	// Name is the database name (mysql only).
	Name string `mapstructure:"name" default:"reddit"`
	// TimeoutSeconds is the connection/IO timeout (mysql only).
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
