// internal/config/config.go
//
// Runtime configuration for the Set server.
// Values come from the process environment, optionally seeded from a .env
// file (development). Unset or empty keys keep their defaults.
//
// Environment variables:
//   PORT             HTTP listen port (5175)
//   LOG_LEVEL        zerolog level name (info)
//   CLIENT_ORIGIN    single CORS origin allowed with credentials (http://localhost:5173)
//   DATABASE_PATH    SQLite results ledger (./data/set3.db)
//   JWT_SECRET       HMAC key for game session tokens
//   TOKEN_TTL_HOURS  session token lifetime (24)
//   DAILY_SALT       salt for the daily deal seed
//   BOARD_POSITIONS  board size, 1..24 (24)
//   DECK_SIZE        deck size, 1..81 (81)

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"

	"github.com/robalobadob/set3/internal/game"
)

// Config holds every tunable of the server process.
type Config struct {
	Port           string `mapstructure:"PORT"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	ClientOrigin   string `mapstructure:"CLIENT_ORIGIN"`
	DatabasePath   string `mapstructure:"DATABASE_PATH"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	TokenTTLHours  int    `mapstructure:"TOKEN_TTL_HOURS"`
	DailySalt      string `mapstructure:"DAILY_SALT"`
	BoardPositions int    `mapstructure:"BOARD_POSITIONS"`
	DeckSize       int    `mapstructure:"DECK_SIZE"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		ClientOrigin:   "http://localhost:5173",
		DatabasePath:   "./data/set3.db",
		JWTSecret:      "dev_secret_change_me",
		TokenTTLHours:  24,
		DailySalt:      "local_dev_salt",
		BoardPositions: game.MaxBoardPositions,
		DeckSize:       game.MaxDeckSize,
	}
}

// Load reads .env (if present) into the environment and decodes it.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Environ())
}

// FromEnv decodes KEY=VALUE pairs over the defaults. Numeric keys are parsed
// from their string form.
func FromEnv(environ []string) (Config, error) {
	vals := make(map[string]interface{}, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || v == "" {
			continue
		}
		vals[k] = v
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(vals); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Game returns the engine sizing part of the configuration.
func (c Config) Game() game.Config {
	return game.Config{BoardPositions: c.BoardPositions, DeckSize: c.DeckSize}
}

// TokenTTL is the lifetime of a game session token.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}
