// Package host activates game entities on demand, routes calls to them by
// game id, and deactivates them when idle or at shutdown.
package host

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carnival/internal/game"
	"carnival/internal/store"
	"carnival/internal/types"
)

var ErrShuttingDown = errors.New("host is shutting down")

type Config struct {
	// IdleTimeout deactivates entities with no calls for this long. Zero
	// keeps entities until shutdown.
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type Deps struct {
	Catalog game.Catalog
	Store   store.Store
	// RandFor builds the random source for a newly created entity. Nil lets
	// each entity seed itself from crypto/rand.
	RandFor func(gameID string) game.Rand
	Logger  *zap.SugaredLogger
}

type entry struct {
	entity   *game.Entity
	ready    chan struct{}
	err      error
	lastUsed atomic.Int64
	pins     int // guarded by Host.mu
}

func (e *entry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

func (e *entry) isReady() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Host owns every live entity. Calls for one game id go to one entity;
// distinct ids never wait on each other except for the brief map lock.
type Host struct {
	cfg  Config
	deps Deps
	log  *zap.SugaredLogger
	now  func() time.Time

	mu       sync.Mutex
	unpinned *sync.Cond
	entries  map[string]*entry
	draining map[string]chan struct{}
	closed   bool

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a host and starts the idle sweeper when configured.
func New(cfg Config, deps Deps) *Host {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &Host{
		cfg:      cfg,
		deps:     deps,
		log:      log,
		now:      time.Now,
		entries:  make(map[string]*entry),
		draining: make(map[string]chan struct{}),
		stop:     make(chan struct{}),
	}
	h.unpinned = sync.NewCond(&h.mu)
	if cfg.IdleTimeout > 0 && cfg.SweepInterval > 0 {
		h.wg.Add(1)
		go h.sweepLoop()
	}
	return h
}

// acquire returns the active entity for id, activating it if needed, and
// pins it so that it cannot be deactivated until release. Concurrent first
// calls share one activation; failures are not cached.
func (h *Host) acquire(ctx context.Context, id string) (*entry, error) {
	h.mu.Lock()
	for {
		if h.closed {
			h.mu.Unlock()
			return nil, ErrShuttingDown
		}
		ch, ok := h.draining[id]
		if !ok {
			break
		}
		// Wait for the previous entity's final write before reloading.
		h.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		h.mu.Lock()
	}

	e, ok := h.entries[id]
	if !ok {
		e = &entry{entity: h.newEntity(id), ready: make(chan struct{})}
		e.touch(h.now())
		e.pins++
		h.entries[id] = e
		h.mu.Unlock()

		e.err = e.entity.Activate(context.WithoutCancel(ctx))
		if e.err != nil {
			h.log.Warnw("activation failed", "game_id", id, "error", e.err)
			h.mu.Lock()
			if h.entries[id] == e {
				delete(h.entries, id)
			}
			h.mu.Unlock()
		}
		close(e.ready)
	} else {
		e.pins++
		h.mu.Unlock()
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		h.release(e)
		return nil, ctx.Err()
	}
	if e.err != nil {
		h.release(e)
		return nil, e.err
	}
	e.touch(h.now())
	return e, nil
}

func (h *Host) release(e *entry) {
	h.mu.Lock()
	e.pins--
	if e.pins == 0 {
		h.unpinned.Broadcast()
	}
	h.mu.Unlock()
}

func (h *Host) newEntity(id string) *game.Entity {
	deps := game.Deps{Catalog: h.deps.Catalog, Store: h.deps.Store, Logger: h.log}
	if h.deps.RandFor != nil {
		deps.Rand = h.deps.RandFor(id)
	}
	return game.New(id, deps)
}

func (h *Host) withEntity(ctx context.Context, id string, fn func(*game.Entity) error) error {
	e, err := h.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer h.release(e)
	return fn(e.entity)
}

func (h *Host) Play(ctx context.Context, gameID, playerID string) (types.PlayResult, error) {
	var result types.PlayResult
	err := h.withEntity(ctx, gameID, func(e *game.Entity) error {
		var err error
		result, err = e.Play(ctx, playerID)
		return err
	})
	return result, err
}

func (h *Host) LoadData(ctx context.Context, gameID string) (types.GameData, error) {
	var data types.GameData
	err := h.withEntity(ctx, gameID, func(e *game.Entity) error {
		var err error
		data, err = e.LoadData(ctx)
		return err
	})
	return data, err
}

// History returns a copy of the game's play history.
func (h *Host) History(ctx context.Context, gameID string) ([]types.PlayResult, error) {
	var history []types.PlayResult
	err := h.withEntity(ctx, gameID, func(e *game.Entity) error {
		s, err := e.Snapshot(ctx)
		history = s.History
		return err
	})
	return history, err
}

// Deactivate deactivates one live game. It is a no-op for ids that are not
// live.
func (h *Host) Deactivate(ctx context.Context, gameID string) error {
	h.mu.Lock()
	e, ok := h.entries[gameID]
	h.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-e.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	return h.deactivateEntry(ctx, gameID, e, game.ReasonManual)
}

func (h *Host) deactivateEntry(ctx context.Context, id string, e *entry, reason game.DeactivationReason) error {
	h.mu.Lock()
	if h.entries[id] != e {
		h.mu.Unlock()
		return nil
	}
	delete(h.entries, id)
	done := make(chan struct{})
	h.draining[id] = done
	// No new pins are possible once the entry left the map.
	for e.pins > 0 {
		h.unpinned.Wait()
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.draining, id)
		close(done)
		h.mu.Unlock()
	}()

	if e.err != nil {
		return nil
	}
	err := e.entity.Deactivate(ctx, reason)
	if errors.Is(err, game.ErrNotActive) {
		return nil
	}
	return err
}

// Active lists the ids of live games.
func (h *Host) Active() []string {
	h.mu.Lock()
	ids := lo.Keys(h.entries)
	h.mu.Unlock()
	slices.Sort(ids)
	return ids
}

func (h *Host) sweepLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.sweep(context.Background())
		}
	}
}

// sweep deactivates every ready entity idle for longer than IdleTimeout.
func (h *Host) sweep(ctx context.Context) int {
	cutoff := h.now().Add(-h.cfg.IdleTimeout).UnixNano()

	h.mu.Lock()
	idle := lo.PickBy(h.entries, func(_ string, e *entry) bool {
		return e.isReady() && e.pins == 0 && e.lastUsed.Load() < cutoff
	})
	h.mu.Unlock()

	count := 0
	for id, e := range idle {
		if err := h.deactivateEntry(ctx, id, e, game.ReasonIdle); err != nil {
			h.log.Errorw("idle deactivation failed", "game_id", id, "error", err)
			continue
		}
		count++
	}
	if count > 0 {
		h.log.Infow("deactivated idle games", "count", count)
	}
	return count
}

// Shutdown stops the sweeper, refuses new activations, and deactivates every
// live game, returning all persistence errors joined.
func (h *Host) Shutdown(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })
	h.wg.Wait()

	h.mu.Lock()
	h.closed = true
	live := lo.Entries(h.entries)
	h.mu.Unlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(8)
	for _, kv := range live {
		g.Go(func() error {
			select {
			case <-kv.Value.ready:
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := h.deactivateEntry(ctx, kv.Key, kv.Value, game.ReasonShutdown); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	h.log.Infow("host shut down", "games", len(live), "errors", len(errs))
	return errors.Join(errs...)
}
