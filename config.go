package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"carnival/internal/store"
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	GinMode     string `env:"GIN_MODE"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:"data/games.yml"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	StorePath   string `env:"STORE_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`

	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"10m"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CookieMaxAge    time.Duration `env:"COOKIE_MAX_AGE" envDefault:"720h"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// RandomSeed makes every game's draws reproducible when non-zero.
	RandomSeed int64 `env:"RANDOM_SEED"`
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return isProductionEnv(c.GinMode, c.Env)
}

func isProductionEnv(ginMode, env string) bool {
	return ginMode == "release" || env == "production"
}

// bootstrap installs the process logger from the raw environment before the
// config is parsed, so a bad value is always reported somewhere visible.
func bootstrap(opts ...zap.Option) (Config, error) {
	_ = godotenv.Load()

	production := isProductionEnv(os.Getenv("GIN_MODE"), os.Getenv("ENV"))
	if _, err := setupLogger(production, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "carnival: %v\n", err)
		return Config{}, err
	}

	cfg, err := loadConfig()
	if err != nil {
		appLog.Errorw("invalid configuration", "error", err)
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) EnvName() string {
	return map[bool]string{true: "production", false: "development"}[c.IsProduction()]
}

// StoreConfig fills in a default location for file-backed drivers.
func (c Config) StoreConfig() store.Config {
	path := c.StorePath
	if path == "" {
		switch c.StoreDriver {
		case store.DriverFile:
			path = store.DefaultFileDir
		case store.DriverBolt:
			path = filepath.Join("data", "carnival.db")
		case store.DriverSQLite:
			path = filepath.Join("data", "carnival.sqlite")
		}
	}
	return store.Config{Driver: c.StoreDriver, Path: path, DSN: c.DatabaseURL}
}
