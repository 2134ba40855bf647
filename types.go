package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"carnival/internal/catalog"
	"carnival/internal/host"
	"carnival/internal/store"
)

// App holds everything the HTTP handlers share.
type App struct {
	Config       Config
	Catalog      *catalog.Catalog
	Store        store.Store
	Host         *host.Host
	IsProduction bool
	CookieMaxAge time.Duration

	RateLimitRPS   int
	RateLimitBurst int
	LimiterMap     map[string]*rate.Limiter
	LimiterMutex   sync.Mutex

	StartTime time.Time
}

// gameSummary is one catalog entry as listed by GET /games.
type gameSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

// playRequest accepts the player id from a form or JSON body.
type playRequest struct {
	PlayerID string `form:"playerId" json:"playerId"`
}
