package main

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"carnival/internal/store"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("IDLE_TIMEOUT", "90s")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("RANDOM_SEED", "7")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.StoreDriver != "bolt" {
		t.Errorf("StoreDriver = %q, want bolt", cfg.StoreDriver)
	}
	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("IdleTimeout = %v, want 90s", cfg.IdleTimeout)
	}
	if cfg.RateLimitBurst != 3 {
		t.Errorf("RateLimitBurst = %d, want 3", cfg.RateLimitBurst)
	}
	if cfg.RandomSeed != 7 {
		t.Errorf("RandomSeed = %d, want 7", cfg.RandomSeed)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("IDLE_TIMEOUT", "notaduration")
	if _, err := loadConfig(); err == nil {
		t.Error("expected error for invalid IDLE_TIMEOUT")
	}
}

func TestIsProduction(t *testing.T) {
	cases := []struct {
		cfg  Config
		want bool
	}{
		{Config{Env: "development"}, false},
		{Config{Env: "production"}, true},
		{Config{GinMode: "release"}, true},
		{Config{GinMode: "debug", Env: "staging"}, false},
	}
	for _, c := range cases {
		if got := c.cfg.IsProduction(); got != c.want {
			t.Errorf("%+v.IsProduction() = %v, want %v", c.cfg, got, c.want)
		}
		want := map[bool]string{true: "production", false: "development"}[c.want]
		if got := c.cfg.EnvName(); got != want {
			t.Errorf("%+v.EnvName() = %q, want %q", c.cfg, got, want)
		}
	}
}

func TestStoreConfig(t *testing.T) {
	cases := []struct {
		driver, path, want string
	}{
		{store.DriverMemory, "", ""},
		{store.DriverFile, "", store.DefaultFileDir},
		{store.DriverBolt, "", filepath.Join("data", "carnival.db")},
		{store.DriverSQLite, "", filepath.Join("data", "carnival.sqlite")},
		{store.DriverBolt, "/tmp/x.db", "/tmp/x.db"},
	}
	for _, c := range cases {
		got := Config{StoreDriver: c.driver, StorePath: c.path}.StoreConfig()
		if got.Path != c.want || got.Driver != c.driver {
			t.Errorf("StoreConfig(%q, %q) = %+v, want path %q", c.driver, c.path, got, c.want)
		}
	}

	pg := Config{StoreDriver: store.DriverPostgres, DatabaseURL: "postgres://localhost/carnival"}.StoreConfig()
	if pg.DSN != "postgres://localhost/carnival" {
		t.Errorf("postgres DSN = %q", pg.DSN)
	}
}

func observeBootstrap(t *testing.T) (Config, *observer.ObservedLogs, error) {
	t.Helper()
	prev := appLog
	t.Cleanup(func() { appLog = prev })

	core, logs := observer.New(zapcore.InfoLevel)
	cfg, err := bootstrap(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))
	return cfg, logs, err
}

func TestBootstrapReportsBadEnv(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"IDLE_TIMEOUT", "5"},
		{"RATE_LIMIT_RPS", "x"},
		{"RANDOM_SEED", "seven"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			t.Setenv(c.key, c.value)
			_, logs, err := observeBootstrap(t)
			if err == nil {
				t.Fatalf("expected error for %s=%q", c.key, c.value)
			}
			entries := logs.FilterMessage("invalid configuration").All()
			if len(entries) != 1 {
				t.Fatalf("logged %d config errors, want 1", len(entries))
			}
			if entries[0].Level != zapcore.ErrorLevel {
				t.Errorf("config error logged at %v, want error", entries[0].Level)
			}
			if _, ok := entries[0].ContextMap()["error"]; !ok {
				t.Error("config error entry carries no error field")
			}
		})
	}
}

func TestBootstrapInstallsLogger(t *testing.T) {
	t.Setenv("IDLE_TIMEOUT", "30s")
	cfg, logs, err := observeBootstrap(t)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if cfg.IdleTimeout != 30*time.Second {
		t.Errorf("IdleTimeout = %v, want 30s", cfg.IdleTimeout)
	}
	logInfo("ready on %s", cfg.Port)
	if logs.FilterMessage("ready on "+cfg.Port).Len() != 1 {
		t.Error("logInfo did not reach the installed logger")
	}
}
