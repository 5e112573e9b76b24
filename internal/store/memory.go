package store

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// Memory is a process-local Backend. Values are copied on the way in and out,
// so callers can never alias stored bytes.
type Memory struct {
	mu   sync.Mutex
	maps map[string]*memoryMap
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{maps: make(map[string]*memoryMap)}
}

func (m *Memory) Map(name string) Map {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.maps[name]
	if !ok {
		mm = &memoryMap{data: make(map[string][]byte)}
		m.maps[name] = mm
	}
	return mm
}

func (m *Memory) Close() error { return nil }

type memoryMap struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func (m *memoryMap) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *memoryMap) Insert(_ context.Context, key string, value []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, existed := m.data[key]
	m.data[key] = slices.Clone(value)
	return prev, existed, nil
}

func (m *memoryMap) Remove(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, existed := m.data[key]
	delete(m.data, key)
	return prev, existed, nil
}

func (m *memoryMap) Entries(_ context.Context) (iter.Seq2[string, []byte], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = slices.Clone(m.data[k])
	}
	return entrySeq(keys, values), nil
}
