// ABOUTME: Tests for the Pebble store
// ABOUTME: Runs the shared contract, checks reopen and key bound helpers

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPebbleStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := NewPebbleStore(filepath.Join(t.TempDir(), "pebble"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestPebbleStore_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pebble")
	ctx := context.Background()

	s, err := NewPebbleStore(dir)
	require.NoError(t, err)
	_, err = s.EnsureLog(ctx, 3, "Carol")
	require.NoError(t, err)
	require.NoError(t, s.AppendEntry(ctx, 3, testEntry(RoleUser, "one")))
	require.NoError(t, s.AppendEntry(ctx, 3, testEntry(RoleAdmin, "two")))
	require.NoError(t, s.Close())

	reopened, err := NewPebbleStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	// Sequence continues after reopen instead of overwriting earlier entries
	require.NoError(t, reopened.AppendEntry(ctx, 3, testEntry(RoleUser, "three")))

	log, err := reopened.GetLog(ctx, 3)
	require.NoError(t, err)
	require.Len(t, log.Entries, 3)
	assert.Equal(t, []string{"one", "two", "three"},
		[]string{log.Entries[0].Text, log.Entries[1].Text, log.Entries[2].Text})
}

func TestPebbleStore_PrefixDoesNotLeak(t *testing.T) {
	s, err := NewPebbleStore(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.AppendEntry(ctx, 4, testEntry(RoleUser, "four")))
	require.NoError(t, s.AppendEntry(ctx, 42, testEntry(RoleUser, "forty-two")))

	log, err := s.GetLog(ctx, 4)
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, "four", log.Entries[0].Text)
}

func TestKeyUpperBound(t *testing.T) {
	assert.Equal(t, []byte("users/1/messages0"), keyUpperBound([]byte("users/1/messages/")))
	assert.Equal(t, []byte("b"), keyUpperBound([]byte("a\xff")))
	assert.Nil(t, keyUpperBound([]byte("\xff\xff")))
}
