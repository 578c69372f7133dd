package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/crypto/bcrypt"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

type config struct {
	Addr          string        `env:"RESCUESIM_ADDR"           envDefault:":8080"`
	Storage       string        `env:"RESCUESIM_STORAGE"        envDefault:"postgres"`
	DSN           string        `env:"RESCUESIM_DB_DSN"`
	MigrationsDir string        `env:"RESCUESIM_MIGRATIONS_DIR" envDefault:"./db/migrations"`
	AutoMigrate   bool          `env:"RESCUESIM_AUTO_MIGRATE"   envDefault:"true"`
	JWTSecret     string        `env:"JWT_SECRET"`
	CookieName    string        `env:"COOKIE_NAME"              envDefault:"app_session"`
	CookieSecure  bool          `env:"COOKIE_SECURE"            envDefault:"false"`
	SessionTTL    time.Duration `env:"SESSION_TTL"              envDefault:"168h"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN"           envDefault:"*"`
	BcryptCost    int           `env:"BCRYPT_COST"              envDefault:"10"`
	LogLevel      string        `env:"RESCUESIM_LOG_LEVEL"      envDefault:"info"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	var errs []error
	switch c.Storage {
	case storagePostgres:
		if strings.TrimSpace(c.DSN) == "" {
			errs = append(errs, errors.New("RESCUESIM_DB_DSN is required when RESCUESIM_STORAGE=postgres"))
		}
	case storageMemory:
	default:
		errs = append(errs, fmt.Errorf("RESCUESIM_STORAGE must be %q or %q, got %q", storagePostgres, storageMemory, c.Storage))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d,%d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if strings.TrimSpace(c.CookieName) == "" {
		errs = append(errs, errors.New("COOKIE_NAME must not be empty"))
	}
	return errors.Join(errs...)
}

func (c config) logLevel() hlog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "info", "":
		return hlog.LevelInfo
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		hlog.Warnf("unknown RESCUESIM_LOG_LEVEL %q, using info", c.LogLevel)
		return hlog.LevelInfo
	}
}
