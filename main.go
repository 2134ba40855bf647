package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"carnival/internal/catalog"
	"carnival/internal/game"
	"carnival/internal/host"
	"carnival/internal/store"
)

func main() {
	cfg, err := bootstrap()
	if err != nil {
		_ = appLog.Sync()
		os.Exit(1)
	}
	defer func() { _ = appLog.Sync() }()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	logInfo("Starting carnival in %s mode", cfg.EnvName())

	app, err := newApp(cfg)
	if err != nil {
		logFatal("Failed to initialize: %v", err)
	}
	logInfo("Loaded %d games from %s, store driver %q", app.Catalog.Len(), cfg.CatalogPath, cfg.StoreDriver)

	startServer(app, newRouter(app))
}

// newApp loads the catalog, opens the store and starts the host.
func newApp(cfg Config) (*App, error) {
	cat, err := catalog.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	st, err := store.Open(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	deps := host.Deps{
		Catalog: cat,
		Store:   st,
		Logger:  appLog.Named("host"),
	}
	if cfg.RandomSeed != 0 {
		seed := cfg.RandomSeed
		deps.RandFor = func(gameID string) game.Rand {
			return game.NewSeededRand(seed, gameID)
		}
	}

	return &App{
		Config:         cfg,
		Catalog:        cat,
		Store:          st,
		Host:           host.New(host.Config{IdleTimeout: cfg.IdleTimeout, SweepInterval: cfg.SweepInterval}, deps),
		IsProduction:   cfg.IsProduction(),
		CookieMaxAge:   cfg.CookieMaxAge,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		LimiterMap:     make(map[string]*rate.Limiter),
		StartTime:      time.Now(),
	}, nil
}

func newRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware())
	if !app.IsProduction {
		router.Use(gin.Logger())
	}
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression), noStoreMiddleware())

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.GET(RouteHealthz, app.healthHandler)
	router.GET(RouteGames, app.listGamesHandler)
	router.GET(RouteGame, app.gameDataHandler)
	router.GET(RouteHistory, app.historyHandler)
	router.POST(RoutePlay, app.rateLimitMiddleware(), app.playHandler)
	router.POST(RouteDeactivate, app.rateLimitMiddleware(), app.deactivateHandler)
	return router
}

func startServer(app *App, router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		if err := app.close(ctx); err != nil {
			logWarn("Failed to persist games on shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", app.Config.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}

// close deactivates every live game and then closes the store.
func (app *App) close(ctx context.Context) error {
	return errors.Join(app.Host.Shutdown(ctx), app.Store.Close())
}
