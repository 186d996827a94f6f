// ABOUTME: Recorder writes user and admin messages into per-user conversation logs
// ABOUTME: User messages ensure the log first; admin messages append directly

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/support-relay/internal/store"
)

// LogStore defines what the recorder needs from storage
type LogStore interface {
	EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error)
	AppendEntry(ctx context.Context, userID int64, entry store.Entry) error
}

// Recorder appends messages to conversation logs.
type Recorder struct {
	store  LogStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(s LogStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:  s,
		logger: logger.With("component", "conversation"),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// RecordUserMessage ensures the user's log exists (named displayName on first
// contact only) and appends a user entry.
func (r *Recorder) RecordUserMessage(ctx context.Context, userID int64, displayName, text string) error {
	created, err := r.store.EnsureLog(ctx, userID, displayName)
	if err != nil {
		return fmt.Errorf("ensuring log for user %d: %w", userID, err)
	}
	if created {
		r.logger.Info("conversation log created", "user_id", userID, "display_name", displayName)
	}

	return r.append(ctx, userID, store.RoleUser, text)
}

// RecordAdminMessage appends an admin entry to the user's log.
// The store creates an empty log if the user has none yet.
func (r *Recorder) RecordAdminMessage(ctx context.Context, userID int64, text string) error {
	return r.append(ctx, userID, store.RoleAdmin, text)
}

func (r *Recorder) append(ctx context.Context, userID int64, role store.Role, text string) error {
	entry := store.Entry{
		ID:        r.newID(),
		Role:      role,
		Text:      text,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.AppendEntry(ctx, userID, entry); err != nil {
		return fmt.Errorf("appending %s message for user %d: %w", role, userID, err)
	}

	r.logger.Debug("message recorded",
		"user_id", userID,
		"role", string(role),
		"entry_id", entry.ID,
	)
	return nil
}
