// ABOUTME: Pebble implementation of the Store interface for embedded deployments
// ABOUTME: Keys follow users/{id} for metadata and users/{id}/messages/{seq} for entries

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

// pebbleMeta is the JSON value stored under users/{id}.
type pebbleMeta struct {
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	NextSeq   uint64 `json:"next_seq"`
}

// PebbleStore implements the Store interface on a local Pebble database
type PebbleStore struct {
	db     *pebble.DB
	logger *slog.Logger

	// mu serializes read-modify-write of the metadata record
	mu sync.Mutex
}

// NewPebbleStore opens (or creates) a Pebble database at path.
func NewPebbleStore(path string) (*PebbleStore, error) {
	logger := slog.Default().With("component", "store", "backend", "pebble")

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble at %s: %w", path, err)
	}

	logger.Info("Pebble store initialized", "path", path)
	return &PebbleStore{db: db, logger: logger}, nil
}

func pebbleMetaKey(userID int64) []byte {
	return []byte(LogPath(userID))
}

func pebbleEntryPrefix(userID int64) []byte {
	return []byte(LogPath(userID) + "/messages/")
}

// Sequence numbers are zero padded so byte order equals insertion order.
func pebbleEntryKey(userID int64, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s/messages/%020d", LogPath(userID), seq))
}

// keyUpperBound returns the smallest key greater than every key with the given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// readMeta returns the metadata record, or nil when the log does not exist.
func (s *PebbleStore) readMeta(userID int64) (*pebbleMeta, error) {
	value, closer, err := s.db.Get(pebbleMetaKey(userID))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading conversation %d: %w", userID, err)
	}
	defer closer.Close()

	var meta pebbleMeta
	if err := json.Unmarshal(value, &meta); err != nil {
		return nil, fmt.Errorf("decoding conversation %d: %w", userID, err)
	}
	return &meta, nil
}

// EnsureLog writes the metadata record unless it already exists.
func (s *PebbleStore) EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(userID)
	if err != nil {
		return false, err
	}
	if meta != nil {
		return false, nil
	}

	data, err := json.Marshal(pebbleMeta{
		Username:  displayName,
		CreatedAt: formatTime(time.Now()),
	})
	if err != nil {
		return false, fmt.Errorf("marshaling conversation: %w", err)
	}
	if err := s.db.Set(pebbleMetaKey(userID), data, pebble.Sync); err != nil {
		return false, fmt.Errorf("writing conversation %d: %w", userID, err)
	}
	return true, nil
}

// AppendEntry writes the entry and the advanced sequence counter in one batch.
func (s *PebbleStore) AppendEntry(ctx context.Context, userID int64, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(userID)
	if err != nil {
		return err
	}
	if meta == nil {
		meta = &pebbleMeta{CreatedAt: formatTime(entry.CreatedAt)}
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	seq := meta.NextSeq
	meta.NextSeq++
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling conversation: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(pebbleEntryKey(userID, seq), entryData, nil); err != nil {
		return fmt.Errorf("staging entry: %w", err)
	}
	if err := batch.Set(pebbleMetaKey(userID), metaData, nil); err != nil {
		return fmt.Errorf("staging conversation: %w", err)
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("appending entry to conversation %d: %w", userID, err)
	}
	return nil
}

// GetLog reads metadata and scans the entry key range.
func (s *PebbleStore) GetLog(ctx context.Context, userID int64) (*ConversationLog, error) {
	meta, err := s.readMeta(userID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrNotFound
	}

	log := &ConversationLog{
		UserID:      userID,
		DisplayName: meta.Username,
	}
	if log.CreatedAt, err = parseTime(meta.CreatedAt); err != nil {
		return nil, err
	}

	prefix := pebbleEntryPrefix(userID)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("opening iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var entry Entry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("decoding entry %s: %w", iter.Key(), err)
		}
		log.Entries = append(log.Entries, entry)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return log, nil
}

// Close closes the Pebble database
func (s *PebbleStore) Close() error {
	return s.db.Close()
}
