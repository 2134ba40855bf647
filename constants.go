package main

// Session configuration constants
const (
	PlayerCookieName  = "player_id"
	maxPlayerIDLength = 128
)

// Route constants
const (
	RouteHealthz    = "/healthz"
	RouteGames      = "/games"
	RouteGame       = "/games/:id"
	RouteHistory    = "/games/:id/history"
	RoutePlay       = "/games/:id/play"
	RouteDeactivate = "/games/:id/deactivate"
)

// Error message constants
const (
	ErrorGameNotFound   = "game not found"
	ErrorInvalidPlayer  = "player id is missing or too long"
	ErrorMalformedBody  = "request body could not be read"
	ErrorStoreFailure   = "game state could not be saved, try again later"
	ErrorShuttingDown   = "server is shutting down"
	ErrorInternal       = "internal error"
	ErrorTooManyRequest = "too many requests, please slow down"
)

type contextKey string

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
