// Package config handles configuration loading and defaults.
package config

// Default values.
const (
	DefaultDataFile        = "tasks.json"
	DefaultSchemaFile      = "tasks.schema.json"
	DefaultLogDir          = "~/.prodo"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultDefaultPriority = "Medium"
)

// Config holds the full configuration for prodo.
type Config struct {
	// Paths
	DataFile   string `toml:"data_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	// Optional MySQL DSN; when set, the SQL store replaces the JSON snapshot.
	DBDSN string `toml:"db_dsn"`

	// Logging configuration
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Behavior
	DefaultPriority string `toml:"default_priority"`
	SmartSort       bool   `toml:"smart_sort"`

	// ProjectRoot is the directory relative paths resolve against.
	// Computed, not read from files.
	ProjectRoot string `toml:"-"`
}

// setDefaults fills cfg with the built-in defaults.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.SchemaFile = DefaultSchemaFile
	cfg.LogDir = DefaultLogDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.DefaultPriority = DefaultDefaultPriority
	cfg.SmartSort = true
}
