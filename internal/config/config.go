// internal/config/config.go
//
// Process configuration.
// Responsibilities:
//   - Load an optional .env file (godotenv), then parse environment variables
//     into Config (caarlos0/env) with defaults for local development.
//   - Validate values and derive the game rule constants.
//
// Nothing here is global: Load returns a value that main threads into the
// server and the sessions it creates.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/sets/internal/board"
	"github.com/robalobadob/sets/internal/game"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// MinSessionTTL is the shortest accepted idle timeout for live sessions.
const MinSessionTTL = time.Minute

// Config is the full server configuration.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"sets_token"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h"`

	Game Game `envPrefix:"GAME_"`
}

// Game holds the rule constants.
type Game struct {
	Rows            int `env:"ROWS" envDefault:"3"`
	Cols            int `env:"COLS" envDefault:"4"`
	MatchBonus      int `env:"MATCH_BONUS" envDefault:"3"`
	MismatchPenalty int `env:"MISMATCH_PENALTY" envDefault:"1"`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges.
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("%w: PORT is empty", ErrInvalid)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: JWT_SECRET is empty", ErrInvalid)
	case c.JWTExpiresDays < 1:
		return fmt.Errorf("%w: JWT_EXPIRES_DAYS must be >= 1", ErrInvalid)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", ErrInvalid)
	case c.SessionTTL < MinSessionTTL:
		return fmt.Errorf("%w: SESSION_TTL must be at least %s", ErrInvalid, MinSessionTTL)
	}
	return c.Game.Validate()
}

// Validate checks the rule constants.
func (g Game) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalid, g.Rows, g.Cols)
	}
	if g.MatchBonus < 0 || g.MismatchPenalty < 0 {
		return fmt.Errorf("%w: bonus and penalty must be >= 0", ErrInvalid)
	}
	return nil
}

// Production reports whether APP_ENV is production.
func (c Config) Production() bool { return c.AppEnv == "production" }

// TokenTTL is the JWT lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// Rules converts the settings to game.Config.
func (g Game) Rules() game.Config {
	return game.Config{
		Layout:          board.Layout{Rows: g.Rows, Cols: g.Cols},
		MatchBonus:      g.MatchBonus,
		MismatchPenalty: g.MismatchPenalty,
	}
}
