package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"carnival/internal/types"
)

const gamesBucket = "games"

// Bolt is a BoltDB-backed store. Each game id maps to one JSON value.
type Bolt struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(gamesBucket)); err != nil {
			return fmt.Errorf("create games bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(ctx context.Context, id string) (types.GameRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}

	var (
		record types.GameRecord
		found  bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		payload := bucket.Get([]byte(id))
		if payload == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(payload, &record); err != nil {
			return fmt.Errorf("unmarshal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}
	return record, found, nil
}

func (b *Bolt) Put(ctx context.Context, record types.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return wrap("put", record.ID, err)
	}
	if err := validateRecord(record); err != nil {
		return wrap("put", record.ID, err)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return wrap("put", record.ID, fmt.Errorf("marshal record: %w", err))
	}
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(gamesBucket))
		if bucket == nil {
			return fmt.Errorf("games bucket is missing")
		}
		return bucket.Put([]byte(record.ID), payload)
	})
	return wrap("put", record.ID, err)
}

func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
