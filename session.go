package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMalformedPlayRequest = errors.New("malformed play request body")

// getOrCreateSession retrieves the player id from the cookie or issues a new one.
func (app *App) getOrCreateSession(c *gin.Context) string {
	playerID, err := c.Cookie(PlayerCookieName)
	if err != nil || uuid.Validate(playerID) != nil {
		playerID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(PlayerCookieName, playerID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		requestLog(c.Request.Context()).Infow("issued player id", "player_id", playerID)
	}
	return playerID
}

// playerID picks the player for a play request: an explicit id from the body
// or query wins, otherwise the session cookie identifies the player. A body
// that cannot be bound is an error rather than a silent fallback to the
// cookie player.
func (app *App) playerID(c *gin.Context) (string, error) {
	var req playRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			return "", fmt.Errorf("%w: %v", errMalformedPlayRequest, err)
		}
	}
	if id := strings.TrimSpace(req.PlayerID); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(c.Query("playerId")); id != "" {
		return id, nil
	}
	return app.getOrCreateSession(c), nil
}
