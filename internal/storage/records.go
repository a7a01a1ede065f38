package storage

import (
	"errors"
	"sync"
)

// ErrNoRecord is returned when a key has never been written or was deleted.
var ErrNoRecord = errors.New("record not found")

// RecordStore is durable key->document storage. Each key holds exactly one
// serialized record; writers replace the whole record (last writer wins, one
// active writer per key in the supported deployment).
type RecordStore interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// MemRecords is an in-memory RecordStore for tests and ephemeral runs.
type MemRecords struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemRecords() *MemRecords {
	return &MemRecords{records: map[string][]byte{}}
}

func (m *MemRecords) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[key]
	if !ok {
		return nil, ErrNoRecord
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemRecords) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.records[key] = cp
	return nil
}

func (m *MemRecords) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}
