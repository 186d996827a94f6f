// ABOUTME: Store interface and data types for conversation log persistence
// ABOUTME: Defines ConversationLog, Entry and the two-step ensure/append contract

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound is returned when a user has no conversation log
var ErrNotFound = errors.New("not found")

// ErrInvalidEntry is returned when an entry fails validation before being written
var ErrInvalidEntry = errors.New("invalid entry")

// Role identifies which side of the conversation wrote an entry
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Entry is a single message in a conversation log. Entries are immutable once appended.
type Entry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"from"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the entry can be stored.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	switch e.Role {
	case RoleUser, RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidEntry, e.Role)
	}
	return nil
}

// ConversationLog is the full history for one user
type ConversationLog struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
	Entries     []Entry   `json:"messages"`
}

// Store defines the persistence contract for conversation logs
type Store interface {
	// EnsureLog creates the log for userID with displayName if it does not exist.
	// created reports whether this call created it.
	EnsureLog(ctx context.Context, userID int64, displayName string) (created bool, err error)

	// AppendEntry adds entry to the end of userID's log, creating an empty log if needed.
	AppendEntry(ctx context.Context, userID int64, entry Entry) error

	// GetLog returns the log for userID or ErrNotFound.
	GetLog(ctx context.Context, userID int64) (*ConversationLog, error)

	// Close releases any resources held by the store
	Close() error
}

// LogPath returns the hierarchical path of a user's log: users/{userID}.
func LogPath(userID int64) string {
	return "users/" + strconv.FormatInt(userID, 10)
}

// formatTime and parseTime keep stored timestamps in one text format across backends.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
