// Package game implements the carnival game entity: a per-id state machine
// that loads its play history on activation, serializes plays through a
// single worker goroutine, and persists after every play and on deactivation.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"carnival/internal/catalog"
	"carnival/internal/store"
	"carnival/internal/types"
)

var (
	// ErrGameNotFound is returned by Activate for ids absent from the catalog.
	ErrGameNotFound = catalog.ErrGameNotFound

	ErrNotActive     = errors.New("game is not active")
	ErrInvalidState  = errors.New("invalid lifecycle transition")
	ErrInvalidPlayer = errors.New("player id is required")
)

type State int

const (
	StateInactive State = iota
	StateLoading
	StateActive
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DeactivationReason is informational; it is logged and never branched on.
type DeactivationReason string

const (
	ReasonIdle     DeactivationReason = "idle"
	ReasonShutdown DeactivationReason = "shutdown"
	ReasonManual   DeactivationReason = "manual"
)

// Catalog is the read-only definition lookup an entity needs.
type Catalog interface {
	Lookup(id string) (types.GameDefinition, error)
}

type Deps struct {
	Catalog Catalog
	Store   store.Store
	// Rand defaults to a crypto-seeded PCG source.
	Rand   Rand
	Logger *zap.SugaredLogger
}

const mailboxSize = 64

// Entity is one live game. Play and LoadData are executed one at a time, in
// submission order, by the entity's worker goroutine.
type Entity struct {
	id    string
	deps  Deps
	log   *zap.SugaredLogger
	rng   Rand
	mu    sync.RWMutex // guards state and mailbox
	state State

	mailbox chan func()
	done    chan struct{}

	// Owned by the worker while active, by Activate/Deactivate otherwise.
	def     types.GameDefinition
	history []types.PlayResult
}

// New returns an inactive entity for id.
func New(id string, deps Deps) *Entity {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Entity{
		id:   id,
		deps: deps,
		log:  log.With("game_id", id),
	}
}

func (e *Entity) ID() string {
	return e.id
}

func (e *Entity) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Entity) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Activate loads the catalog definition and stored history, then starts the
// worker. On failure the entity stays inactive.
func (e *Entity) Activate(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateInactive {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: activate while %s", ErrInvalidState, state)
	}
	e.state = StateLoading
	e.mu.Unlock()

	e.log.Infow("activating game")
	def, err := e.deps.Catalog.Lookup(e.id)
	if err != nil {
		e.setState(StateInactive)
		return err
	}

	record, found, err := e.deps.Store.Get(context.WithoutCancel(ctx), e.id)
	if err != nil {
		e.setState(StateInactive)
		return err
	}
	state := GameState{ID: e.id, History: []types.PlayResult{}}
	if found {
		state = FromRecord(record)
		state.ID = e.id
	}

	if e.rng == nil {
		e.rng = e.deps.Rand
	}
	if e.rng == nil {
		rng, err := NewRand()
		if err != nil {
			e.setState(StateInactive)
			return err
		}
		e.rng = rng
	}

	e.def = def
	e.history = state.History
	mailbox := make(chan func(), mailboxSize)
	done := make(chan struct{})
	go e.run(mailbox, done)

	e.mu.Lock()
	e.mailbox = mailbox
	e.done = done
	e.state = StateActive
	e.mu.Unlock()

	e.log.Infow("game active", "times_played", len(state.History))
	return nil
}

// Deactivate stops accepting calls, lets queued calls finish, and persists
// the history. The entity is inactive afterwards even if the write failed.
func (e *Entity) Deactivate(ctx context.Context, reason DeactivationReason) error {
	e.mu.Lock()
	if e.state != StateActive {
		e.mu.Unlock()
		return ErrNotActive
	}
	e.state = StateSaving
	close(e.mailbox)
	done := e.done
	e.mailbox = nil
	e.mu.Unlock()

	e.log.Infow("deactivating game", "reason", reason)
	<-done

	err := e.save(context.WithoutCancel(ctx))
	if err != nil {
		e.log.Errorw("failed to persist on deactivation", "reason", reason, "error", err)
	}
	e.setState(StateInactive)
	return err
}

func (e *Entity) run(mailbox <-chan func(), done chan<- struct{}) {
	defer close(done)
	for job := range mailbox {
		job()
	}
}

// submit enqueues job for the worker. The read lock keeps Deactivate from
// closing the mailbox under a pending send.
func (e *Entity) submit(ctx context.Context, job func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state != StateActive {
		return ErrNotActive
	}
	select {
	case e.mailbox <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play runs one play for playerID, appends it to history and persists the
// history before returning. When the write fails the result stays in history
// and the store error is returned.
//
// A blank or whitespace-only playerID is refused with ErrInvalidPlayer before
// anything is queued. Any other string is a valid player.
func (e *Entity) Play(ctx context.Context, playerID string) (types.PlayResult, error) {
	if strings.TrimSpace(playerID) == "" {
		return types.PlayResult{}, ErrInvalidPlayer
	}

	type reply struct {
		result types.PlayResult
		err    error
	}
	replies := make(chan reply, 1)
	err := e.submit(ctx, func() {
		result := playOnce(e.def, e.history, playerID, e.rng)
		e.history = append(e.history, result)
		replies <- reply{result: result, err: e.save(context.WithoutCancel(ctx))}
	})
	if err != nil {
		return types.PlayResult{}, err
	}

	select {
	case r := <-replies:
		if r.err != nil {
			e.log.Errorw("failed to persist play", "player_id", playerID, "error", r.err)
		}
		return r.result, r.err
	case <-ctx.Done():
		return types.PlayResult{}, ctx.Err()
	}
}

// LoadData reports the game's name and how many times it was played.
func (e *Entity) LoadData(ctx context.Context) (types.GameData, error) {
	replies := make(chan types.GameData, 1)
	err := e.submit(ctx, func() {
		replies <- types.GameData{
			ID:          e.id,
			Name:        e.def.Name,
			Theme:       e.def.Theme,
			TimesPlayed: len(e.history),
		}
	})
	if err != nil {
		return types.GameData{}, err
	}
	select {
	case data := <-replies:
		return data, nil
	case <-ctx.Done():
		return types.GameData{}, ctx.Err()
	}
}

// Snapshot returns a copy of the current state.
func (e *Entity) Snapshot(ctx context.Context) (GameState, error) {
	replies := make(chan GameState, 1)
	err := e.submit(ctx, func() {
		replies <- GameState{ID: e.id, History: cloneResults(e.history)}
	})
	if err != nil {
		return GameState{}, err
	}
	select {
	case s := <-replies:
		return s, nil
	case <-ctx.Done():
		return GameState{}, ctx.Err()
	}
}

func (e *Entity) save(ctx context.Context) error {
	return e.deps.Store.Put(ctx, ToRecord(GameState{ID: e.id, History: e.history}))
}
