package console

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the shell's environment configuration.
type Config struct {
	// DatabasePath is the SQLite file backing grants and the audit log.
	DatabasePath string `env:"ORDERSH_DB" envDefault:"ordersh.db"`

	// Actor is the identity commands are executed as.
	Actor string `env:"ORDERSH_ACTOR" envDefault:"operator"`

	// HistoryLimit caps the number of output lines kept on screen.
	HistoryLimit int `env:"ORDERSH_HISTORY_LIMIT" envDefault:"500"`

	// LogLevel selects the logger verbosity (debug, info, warn, error).
	LogLevel string `env:"ORDERSH_LOG_LEVEL" envDefault:"info"`

	// NoColor disables styled output. The standard NO_COLOR variable is
	// also honored regardless of value.
	NoColor bool `env:"ORDERSH_NO_COLOR"`
}

// LoadConfig reads a .env file when one is present, then the process
// environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 500
	}
	return cfg, nil
}
