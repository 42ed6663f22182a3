package config

import "os"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("PRODO_DATA"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("PRODO_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("PRODO_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("PRODO_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("PRODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PRODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PRODO_DEFAULT_PRIORITY"); v != "" {
		cfg.DefaultPriority = v
	}
}
