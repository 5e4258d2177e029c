package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps a history in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	entries []json.RawMessage
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds entry to the log.
func (s *MemoryStore) Append(_ context.Context, entry any) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, data)
	return nil
}

// Load returns a copy of the log.
func (s *MemoryStore) Load(_ context.Context) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Count returns the number of entries.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
