// ABOUTME: Tests for the admin routing table
// ABOUTME: Covers last-write-wins, single consumption, admin isolation and concurrent use

package routing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ConsumeWithoutSelect(t *testing.T) {
	table := NewTable()

	_, ok := table.Consume(1)
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
}

func TestTable_LastSelectWins(t *testing.T) {
	table := NewTable()

	table.Select(1, 42)
	table.Select(1, 43)

	userID, ok := table.Consume(1)
	require.True(t, ok)
	assert.Equal(t, int64(43), userID)

	// Route is gone after the first consume
	_, ok = table.Consume(1)
	assert.False(t, ok)
}

func TestTable_NoCrossAdminLeakage(t *testing.T) {
	table := NewTable()

	table.Select(1, 42)

	_, ok := table.Consume(2)
	assert.False(t, ok)

	userID, ok := table.Pending(1)
	require.True(t, ok, "admin 1 route must survive admin 2's consume")
	assert.Equal(t, int64(42), userID)
}

func TestTable_PendingDoesNotConsume(t *testing.T) {
	table := NewTable()
	table.Select(7, 99)

	_, ok := table.Pending(7)
	require.True(t, ok)

	userID, ok := table.Consume(7)
	require.True(t, ok)
	assert.Equal(t, int64(99), userID)
}

func TestTable_ConcurrentSelectConsume(t *testing.T) {
	table := NewTable()

	const admins = 50
	var wg sync.WaitGroup
	for i := int64(0); i < admins; i++ {
		wg.Add(1)
		go func(admin int64) {
			defer wg.Done()
			table.Select(admin, admin*10)
		}(i)
	}
	wg.Wait()
	require.Equal(t, admins, table.Len())

	var mu sync.Mutex
	consumed := 0
	for i := int64(0); i < admins; i++ {
		// Two consumers race for every route; exactly one may win.
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(admin int64) {
				defer wg.Done()
				if userID, ok := table.Consume(admin); ok {
					assert.Equal(t, admin*10, userID)
					mu.Lock()
					consumed++
					mu.Unlock()
				}
			}(i)
		}
	}
	wg.Wait()

	assert.Equal(t, admins, consumed)
	assert.Equal(t, 0, table.Len())
}
