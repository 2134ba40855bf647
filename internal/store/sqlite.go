package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"carnival/internal/store/migrations"
	"carnival/internal/types"
)

// SQLite persists records in a single table keyed by game id.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens the database at path and applies the embedded schema.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := sqlDB.Exec(string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (types.GameRecord, bool, error) {
	var payload string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT results FROM game_records WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return types.GameRecord{}, false, nil
	}
	if err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}

	record := types.GameRecord{ID: id}
	if err := json.Unmarshal([]byte(payload), &record.Results); err != nil {
		return types.GameRecord{}, false, wrap("get", id, fmt.Errorf("unmarshal results: %w", err))
	}
	return record, true, nil
}

func (s *SQLite) Put(ctx context.Context, record types.GameRecord) error {
	if err := validateRecord(record); err != nil {
		return wrap("put", record.ID, err)
	}
	results := record.Results
	if results == nil {
		results = []types.PlayResult{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return wrap("put", record.ID, fmt.Errorf("marshal results: %w", err))
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO game_records (id, results, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET results = excluded.results, updated_at = excluded.updated_at`,
		record.ID, string(payload), time.Now().UTC().UnixMilli(),
	)
	return wrap("put", record.ID, err)
}

func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
