package store

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"carnival/internal/types"
)

// DefaultFileDir is used when the file driver is given no path.
const DefaultFileDir = "data/games"

// maxEncodedName keeps file names well under the usual 255 byte limit.
const maxEncodedName = 200

// File stores one JSON document per game id in a directory.
type File struct {
	dir string
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultFileDir
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// recordName turns any game id into a file-system-safe base name. Ids whose
// encoding would be too long are named by their hash; Get checks the id
// stored inside the file either way.
func recordName(id string) string {
	name := base64.RawURLEncoding.EncodeToString([]byte(id))
	if len(name) > maxEncodedName {
		sum := sha256.Sum256([]byte(id))
		name = "sha256." + hex.EncodeToString(sum[:])
	}
	return name
}

// recordPath maps a game id to a file directly inside the store directory.
func (f *File) recordPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("game id is required")
	}
	path := filepath.Join(f.dir, recordName(id)+".json")
	absDir, err := filepath.Abs(f.dir)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if filepath.Dir(absPath) != absDir {
		return "", fmt.Errorf("record path escapes store directory")
	}
	return path, nil
}

func (f *File) Get(ctx context.Context, id string) (types.GameRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}
	path, err := f.recordPath(id)
	if err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return types.GameRecord{}, false, nil
	}
	if err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}

	var record types.GameRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return types.GameRecord{}, false, wrap("get", id, fmt.Errorf("corrupted record file %s: %w", path, err))
	}
	if record.ID != id {
		return types.GameRecord{}, false, wrap("get", id, fmt.Errorf("record file %s holds id %q", path, record.ID))
	}
	return record, true, nil
}

// Put writes to a temporary file and renames it over the old record so a
// crash never leaves a half-written history.
func (f *File) Put(ctx context.Context, record types.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return wrap("put", record.ID, err)
	}
	if err := validateRecord(record); err != nil {
		return wrap("put", record.ID, err)
	}
	path, err := f.recordPath(record.ID)
	if err != nil {
		return wrap("put", record.ID, err)
	}

	if record.Results == nil {
		record.Results = []types.PlayResult{}
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return wrap("put", record.ID, fmt.Errorf("marshal record: %w", err))
	}

	tmp, err := os.CreateTemp(f.dir, recordName(record.ID)+".*.tmp")
	if err != nil {
		return wrap("put", record.ID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrap("put", record.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrap("put", record.ID, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return wrap("put", record.ID, err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
