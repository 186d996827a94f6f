// ABOUTME: In-memory Store implementation
// ABOUTME: Used by tests and by the memory backend for dry runs without persistence

package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[int64]*ConversationLog // keyed by user ID
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs: make(map[int64]*ConversationLog),
	}
}

// EnsureLog creates an empty log with displayName unless one exists.
func (m *MemoryStore) EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.logs[userID]; ok {
		return false, nil
	}
	m.logs[userID] = &ConversationLog{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	return true, nil
}

// AppendEntry appends a copy of entry to the user's log.
func (m *MemoryStore) AppendEntry(ctx context.Context, userID int64, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	log, ok := m.logs[userID]
	if !ok {
		log = &ConversationLog{UserID: userID, CreatedAt: entry.CreatedAt}
		m.logs[userID] = log
	}
	log.Entries = append(log.Entries, entry)
	return nil
}

// GetLog returns a copy of the user's log.
func (m *MemoryStore) GetLog(ctx context.Context, userID int64) (*ConversationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log, ok := m.logs[userID]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy
	result := *log
	result.Entries = append([]Entry(nil), log.Entries...)
	return &result, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
