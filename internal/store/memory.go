package store

import (
	"context"
	"sync"

	"carnival/internal/types"
)

// Memory keeps records in process memory. Records are copied in and out.
type Memory struct {
	mu      sync.RWMutex
	records map[string]types.GameRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]types.GameRecord)}
}

func (m *Memory) Get(ctx context.Context, id string) (types.GameRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.GameRecord{}, false, wrap("get", id, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return types.GameRecord{}, false, nil
	}
	return cloneRecord(record), true, nil
}

func (m *Memory) Put(ctx context.Context, record types.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return wrap("put", record.ID, err)
	}
	if err := validateRecord(record); err != nil {
		return wrap("put", record.ID, err)
	}
	m.mu.Lock()
	m.records[record.ID] = cloneRecord(record)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	return nil
}
