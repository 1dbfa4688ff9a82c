// Package config reads server settings from the environment, after loading a
// .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Dev             bool          `env:"DEV" envDefault:"false"`
	OptionsDir      string        `env:"OPTIONS_DIR" envDefault:"configs"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	GameServerURL   string        `env:"GAME_SERVER_URL"`
	RosterSize      int           `env:"ROSTER_SIZE" envDefault:"15"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

var ErrInvalid = errors.New("config: invalid value")

// Load reads the given .env files (default ".env"); missing files are skipped.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RosterSize < 1 {
		return fmt.Errorf("%w: ROSTER_SIZE must be positive, got %d", ErrInvalid, c.RosterSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive, got %s", ErrInvalid, c.ShutdownTimeout)
	}
	return nil
}
