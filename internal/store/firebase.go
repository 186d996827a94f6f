// ABOUTME: Firebase Realtime Database implementation of the Store interface
// ABOUTME: Layout is users/{id} = {username, created_at, messages: {pushID: entry}}

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// FirebaseOptions configures the Firebase backend.
type FirebaseOptions struct {
	DatabaseURL     string
	CredentialsFile string
	// Root is prepended to every path, e.g. "support" gives support/users/{id}.
	Root string
}

// firebaseDoc mirrors the JSON tree stored under users/{id}.
type firebaseDoc struct {
	Username  string           `json:"username"`
	CreatedAt string           `json:"created_at"`
	Messages  map[string]Entry `json:"messages"`
}

// FirebaseStore implements the Store interface on the Firebase Realtime Database.
// The database offers no transactions across these calls; EnsureLog is read-then-write.
type FirebaseStore struct {
	client *db.Client
	root   string
	logger *slog.Logger
}

// NewFirebaseStore initializes a Firebase app and its database client.
func NewFirebaseStore(ctx context.Context, opts FirebaseOptions) (*FirebaseStore, error) {
	if opts.DatabaseURL == "" {
		return nil, fmt.Errorf("firebase database URL is required")
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: opts.DatabaseURL}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firebase database client: %w", err)
	}

	logger := slog.Default().With("component", "store", "backend", "firebase")
	logger.Info("Firebase store initialized", "database_url", opts.DatabaseURL)

	return &FirebaseStore{
		client: client,
		root:   strings.Trim(opts.Root, "/"),
		logger: logger,
	}, nil
}

func (s *FirebaseStore) ref(userID int64) *db.Ref {
	path := LogPath(userID)
	if s.root != "" {
		path = s.root + "/" + path
	}
	return s.client.NewRef(path)
}

// exists reports whether the container has been created.
func (s *FirebaseStore) exists(ctx context.Context, ref *db.Ref) (bool, error) {
	var createdAt string
	if err := ref.Child("created_at").Get(ctx, &createdAt); err != nil {
		return false, err
	}
	return createdAt != "", nil
}

// EnsureLog writes username and created_at if the container is absent.
func (s *FirebaseStore) EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error) {
	ref := s.ref(userID)

	ok, err := s.exists(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("reading conversation %d: %w", userID, err)
	}
	if ok {
		return false, nil
	}

	err = ref.Update(ctx, map[string]interface{}{
		"username":   displayName,
		"created_at": formatTime(time.Now()),
	})
	if err != nil {
		return false, fmt.Errorf("creating conversation %d: %w", userID, err)
	}
	return true, nil
}

// AppendEntry pushes the entry under messages, creating an empty container if needed.
func (s *FirebaseStore) AppendEntry(ctx context.Context, userID int64, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	ref := s.ref(userID)
	ok, err := s.exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("reading conversation %d: %w", userID, err)
	}
	if !ok {
		if err := ref.Child("created_at").Set(ctx, formatTime(entry.CreatedAt)); err != nil {
			return fmt.Errorf("creating conversation %d: %w", userID, err)
		}
	}

	if _, err := ref.Child("messages").Push(ctx, entry); err != nil {
		return fmt.Errorf("appending entry to conversation %d: %w", userID, err)
	}
	return nil
}

// GetLog downloads the whole container. Push IDs sort chronologically.
func (s *FirebaseStore) GetLog(ctx context.Context, userID int64) (*ConversationLog, error) {
	var doc firebaseDoc
	if err := s.ref(userID).Get(ctx, &doc); err != nil {
		return nil, fmt.Errorf("reading conversation %d: %w", userID, err)
	}
	if doc.CreatedAt == "" && len(doc.Messages) == 0 {
		return nil, ErrNotFound
	}

	log := &ConversationLog{
		UserID:      userID,
		DisplayName: doc.Username,
	}
	var err error
	if log.CreatedAt, err = parseTime(doc.CreatedAt); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(doc.Messages))
	for k := range doc.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Entries = append(log.Entries, doc.Messages[k])
	}
	return log, nil
}

// Close is a no-op; the Firebase client holds no closable resources.
func (s *FirebaseStore) Close() error {
	return nil
}
