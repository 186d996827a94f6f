// ABOUTME: In-memory admin -> user routing table for pending replies
// ABOUTME: Last selection wins; a route is removed the moment it is consumed

package routing

import "sync"

// Table maps an admin identity to the user their next message is meant for.
// It is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	pending map[int64]int64
}

// NewTable creates an empty routing table.
func NewTable() *Table {
	return &Table{pending: make(map[int64]int64)}
}

// Select records that adminID's next free-text message goes to userID.
// Any earlier pending route for adminID is discarded without notice.
func (t *Table) Select(adminID, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[adminID] = userID
}

// Consume removes and returns the pending route for adminID.
// ok is false when the admin has no pending route.
func (t *Table) Consume(adminID int64) (userID int64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	userID, ok = t.pending[adminID]
	if ok {
		delete(t.pending, adminID)
	}
	return userID, ok
}

// Pending reports the current route for adminID without consuming it.
func (t *Table) Pending(adminID int64) (userID int64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	userID, ok = t.pending[adminID]
	return userID, ok
}

// Len returns the number of admins with a pending route.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
