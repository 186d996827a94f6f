// ABOUTME: Mock Store implementation for testing
// ABOUTME: Wraps MemoryStore with injectable failures and call counters

package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store whose operations can be made to fail.
type MockStore struct {
	mem *MemoryStore

	mu        sync.Mutex
	ensureErr error
	appendErr error
	getErr    error
	ensures   int
	appends   int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{mem: NewMemoryStore()}
}

// FailEnsure makes EnsureLog return err (nil restores normal behaviour).
func (m *MockStore) FailEnsure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureErr = err
}

// FailAppend makes AppendEntry return err (nil restores normal behaviour).
func (m *MockStore) FailAppend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr = err
}

// FailGet makes GetLog return err (nil restores normal behaviour).
func (m *MockStore) FailGet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// Calls returns how many times EnsureLog and AppendEntry were called, failed calls included.
func (m *MockStore) Calls() (ensures, appends int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensures, m.appends
}

// EnsureLog records the call and delegates unless a failure is injected.
func (m *MockStore) EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error) {
	m.mu.Lock()
	m.ensures++
	err := m.ensureErr
	m.mu.Unlock()

	if err != nil {
		return false, err
	}
	return m.mem.EnsureLog(ctx, userID, displayName)
}

// AppendEntry records the call and delegates unless a failure is injected.
func (m *MockStore) AppendEntry(ctx context.Context, userID int64, entry Entry) error {
	m.mu.Lock()
	m.appends++
	err := m.appendErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.mem.AppendEntry(ctx, userID, entry)
}

// GetLog delegates unless a failure is injected.
func (m *MockStore) GetLog(ctx context.Context, userID int64) (*ConversationLog, error) {
	m.mu.Lock()
	err := m.getErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.mem.GetLog(ctx, userID)
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
