// Package store persists game play histories keyed by game id.
package store

import (
	"context"
	"fmt"
	"strings"

	"carnival/internal/types"
)

// Store is the persistence contract the game entity depends on. Get reports
// found=false with a nil error when no record exists. Put replaces the stored
// record wholesale.
type Store interface {
	Get(ctx context.Context, id string) (types.GameRecord, bool, error)
	Put(ctx context.Context, record types.GameRecord) error
	Close() error
}

// StoreError wraps every backend read or write failure.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, ID: id, Err: err}
}

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverBolt     = "bolt"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string
	// Path is a directory for the file driver and a database file for bolt
	// and sqlite.
	Path string
	DSN  string
}

// Open returns the backend selected by cfg.Driver.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Path)
	case DriverBolt:
		return OpenBolt(cfg.Path)
	case DriverSQLite:
		return OpenSQLite(cfg.Path)
	case DriverPostgres:
		return OpenPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func validateRecord(record types.GameRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	return nil
}

func cloneRecord(record types.GameRecord) types.GameRecord {
	results := make([]types.PlayResult, len(record.Results))
	copy(results, record.Results)
	return types.GameRecord{ID: record.ID, Results: results}
}
