// Package config loads the vitals server settings from VITALS_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "VITALS_"

// Store kinds, in selection order.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	Addr        string        `env:"ADDR" envDefault:":5000"`
	DatabaseURL string        `env:"DATABASE_URL"`
	SQLitePath  string        `env:"SQLITE_PATH"`
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheSize   int           `env:"CACHE_SIZE" envDefault:"500"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	origins := cfg.CORSOrigins[:0]
	for _, o := range cfg.CORSOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		// credentialed CORS cannot answer with a wildcard origin
		if o == "*" {
			return Config{}, fmt.Errorf("invalid %sCORS_ORIGINS entry %q: a wildcard origin is not allowed with credentials", envPrefix, o)
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		return Config{}, fmt.Errorf("%sCORS_ORIGINS needs at least one origin", envPrefix)
	}
	cfg.CORSOrigins = origins

	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Store reports which storage backend the settings select: a DATABASE_URL
// wins over SQLITE_PATH, and neither means in-memory.
func (c Config) Store() string {
	switch {
	case c.DatabaseURL != "":
		return StorePostgres
	case c.SQLitePath != "":
		return StoreSQLite
	default:
		return StoreMemory
	}
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
