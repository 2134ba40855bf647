package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"carnival/internal/catalog"
	"carnival/internal/game"
	"carnival/internal/host"
	"carnival/internal/store"
	"carnival/internal/types"
)

// listGamesHandler lists every game in the catalog.
func (app *App) listGamesHandler(c *gin.Context) {
	games := lo.Map(app.Catalog.List(), func(def types.GameDefinition, _ int) gameSummary {
		return gameSummary{ID: def.ID, Name: def.Name, Theme: def.Theme}
	})
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// gameDataHandler returns the game's name and play count, activating it if
// it is not live.
func (app *App) gameDataHandler(c *gin.Context) {
	id := c.Param("id")
	data, err := app.Host.LoadData(c.Request.Context(), id)
	if err != nil {
		app.respondError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (app *App) historyHandler(c *gin.Context) {
	id := c.Param("id")
	history, err := app.Host.History(c.Request.Context(), id)
	if err != nil {
		app.respondError(c, id, err)
		return
	}
	if history == nil {
		history = []types.PlayResult{}
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "results": history})
}

// playHandler plays one round for the requesting player.
func (app *App) playHandler(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	playerID, err := app.playerID(c)
	if err != nil {
		app.respondError(c, id, err)
		return
	}
	if len(playerID) > maxPlayerIDLength {
		app.respondError(c, id, game.ErrInvalidPlayer)
		return
	}

	result, err := app.Host.Play(ctx, id, playerID)
	if err != nil {
		app.respondError(c, id, err)
		return
	}
	requestLog(ctx).Infow("played",
		"game_id", id,
		"player_id", playerID,
		"winner", result.Winner,
		"level", result.Level,
		"reward", result.Reward)
	c.JSON(http.StatusOK, result)
}

// deactivateHandler persists and unloads a live game.
func (app *App) deactivateHandler(c *gin.Context) {
	id := c.Param("id")
	if err := app.Host.Deactivate(c.Request.Context(), id); err != nil {
		app.respondError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (app *App) healthHandler(c *gin.Context) {
	uptime := time.Since(app.StartTime)
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"env":          app.Config.EnvName(),
		"store":        app.Config.StoreDriver,
		"games_loaded": app.Catalog.Len(),
		"games_active": len(app.Host.Active()),
		"uptime":       formatUptime(uptime),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps domain errors to HTTP statuses.
func (app *App) respondError(c *gin.Context, gameID string, err error) {
	status, msg := errorStatus(err)
	log := requestLog(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Errorw("request failed", "game_id", gameID, "status", status, "error", err)
	} else {
		log.Infow("request rejected", "game_id", gameID, "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func errorStatus(err error) (int, string) {
	var storeErr *store.StoreError
	switch {
	case errors.Is(err, catalog.ErrGameNotFound):
		return http.StatusNotFound, ErrorGameNotFound
	case errors.Is(err, errMalformedPlayRequest):
		return http.StatusBadRequest, ErrorMalformedBody
	case errors.Is(err, game.ErrInvalidPlayer):
		return http.StatusBadRequest, ErrorInvalidPlayer
	case errors.Is(err, host.ErrShuttingDown):
		return http.StatusServiceUnavailable, ErrorShuttingDown
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable, ErrorStoreFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorInternal
	default:
		return http.StatusInternalServerError, ErrorInternal
	}
}
