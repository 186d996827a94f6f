// ABOUTME: Backend-independent contract tests for the conversation Store
// ABOUTME: Every backend runs the same suite: first-write display name, append order, not-found

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEntry builds a valid entry with a fresh ID
func testEntry(role Role, text string) Entry {
	return Entry{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// runStoreContract exercises the Store contract against a fresh store from newStore.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("EnsureLogCreatesOnce", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.EnsureLog(ctx, 42, "Alice")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = s.EnsureLog(ctx, 42, "Alice Renamed")
		require.NoError(t, err)
		assert.False(t, created)

		log, err := s.GetLog(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), log.UserID)
		assert.Equal(t, "Alice", log.DisplayName, "display name must keep the first value")
		assert.False(t, log.CreatedAt.IsZero())
		assert.Empty(t, log.Entries)
	})

	t.Run("AppendKeepsCallOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.EnsureLog(ctx, 7, "Bob")
		require.NoError(t, err)

		want := []Entry{
			testEntry(RoleUser, "hello"),
			testEntry(RoleAdmin, "hi, how can I help?"),
			testEntry(RoleUser, "my order is late"),
			testEntry(RoleAdmin, "checking now"),
			testEntry(RoleAdmin, "it ships tomorrow"),
		}
		for i, e := range want {
			require.NoError(t, s.AppendEntry(ctx, 7, e))

			// Earlier entries never change as new ones arrive
			log, err := s.GetLog(ctx, 7)
			require.NoError(t, err)
			require.Len(t, log.Entries, i+1)
			for j := 0; j <= i; j++ {
				assert.Equal(t, want[j].ID, log.Entries[j].ID)
				assert.Equal(t, want[j].Role, log.Entries[j].Role)
				assert.Equal(t, want[j].Text, log.Entries[j].Text)
			}
		}
	})

	t.Run("AppendCreatesEmptyLog", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AppendEntry(ctx, 99, testEntry(RoleAdmin, "reply first")))

		log, err := s.GetLog(ctx, 99)
		require.NoError(t, err)
		assert.Equal(t, "", log.DisplayName)
		require.Len(t, log.Entries, 1)
		assert.Equal(t, RoleAdmin, log.Entries[0].Role)

		created, err := s.EnsureLog(ctx, 99, "Late Name")
		require.NoError(t, err)
		assert.False(t, created, "container already exists after append")
	})

	t.Run("GetLogNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetLog(context.Background(), 12345)
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("RejectsInvalidEntry", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		err := s.AppendEntry(ctx, 1, Entry{ID: "x", Role: "robot", Text: "beep"})
		assert.ErrorIs(t, err, ErrInvalidEntry)

		err = s.AppendEntry(ctx, 1, Entry{Role: RoleUser, Text: "no id"})
		assert.ErrorIs(t, err, ErrInvalidEntry)

		_, err = s.GetLog(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound, "rejected entries must not create a log")
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for id := int64(1); id <= 3; id++ {
			_, err := s.EnsureLog(ctx, id, fmt.Sprintf("user-%d", id))
			require.NoError(t, err)
			require.NoError(t, s.AppendEntry(ctx, id, testEntry(RoleUser, fmt.Sprintf("from %d", id))))
		}

		for id := int64(1); id <= 3; id++ {
			log, err := s.GetLog(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("user-%d", id), log.DisplayName)
			require.Len(t, log.Entries, 1)
			assert.Equal(t, fmt.Sprintf("from %d", id), log.Entries[0].Text)
		}
	})
}

func TestLogPath(t *testing.T) {
	assert.Equal(t, "users/42", LogPath(42))
	assert.Equal(t, "users/-100123", LogPath(-100123))
}

func TestEntry_Validate(t *testing.T) {
	assert.NoError(t, testEntry(RoleUser, "ok").Validate())
	assert.NoError(t, testEntry(RoleAdmin, "").Validate())
	assert.ErrorIs(t, Entry{ID: "a", Role: ""}.Validate(), ErrInvalidEntry)
}
