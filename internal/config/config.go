// internal/config/config.go
//
// Runtime configuration, read from the environment (and a .env file in
// development).

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server and CLI read from the environment.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV"   envDefault:"development"`

	// HTTP / player identity
	ClientOrigin   string `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"180"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"treasure_player"`

	// Game
	PuzzleFile    string `env:"PUZZLE_FILE"`
	StrictRepeats bool   `env:"STRICT_REPEATS" envDefault:"false"`
	ResetPinHash  string `env:"RESET_PIN_HASH"`

	// Progress storage: memory | file | sqlite
	Storage      string `env:"STORAGE"       envDefault:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/treasure.db"`
	DataDir      string `env:"DATA_DIR"      envDefault:"./data/progress"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Production reports whether APP_ENV is "production" (secure cookies).
func (c Config) Production() bool { return c.AppEnv == "production" }

// TokenTTL is the lifetime of a player token.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// StorageLocation returns the path the chosen storage driver should use.
func (c Config) StorageLocation() string {
	if c.Storage == "file" {
		return c.DataDir
	}
	return c.DatabasePath
}
