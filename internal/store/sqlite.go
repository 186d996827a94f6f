// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: One row per conversation, entries ordered by an autoincrement sequence

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store", "backend", "sqlite")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite serializes writers; a single connection also keeps :memory: databases intact
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			user_id      INTEGER PRIMARY KEY,
			display_name TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS conversation_entries (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id   TEXT NOT NULL UNIQUE,
			user_id    INTEGER NOT NULL REFERENCES conversations(user_id),
			role       TEXT NOT NULL,
			text       TEXT NOT NULL,
			created_at TEXT NOT NULL,

			CHECK (role IN ('user', 'admin'))
		);

		CREATE INDEX IF NOT EXISTS idx_entries_user_seq
			ON conversation_entries(user_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// EnsureLog inserts the conversation row unless one already exists.
func (s *SQLiteStore) EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (user_id, display_name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, displayName, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("ensuring conversation %d: %w", userID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}

// AppendEntry writes the entry, creating an empty conversation row first if needed.
func (s *SQLiteStore) AppendEntry(ctx context.Context, userID int64, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (user_id, display_name, created_at)
		VALUES (?, '', ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("creating conversation %d: %w", userID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversation_entries (entry_id, user_id, role, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, userID, string(entry.Role), entry.Text, formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("appending entry to conversation %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entry: %w", err)
	}
	return nil
}

// GetLog reads the conversation row and all of its entries in insertion order.
func (s *SQLiteStore) GetLog(ctx context.Context, userID int64) (*ConversationLog, error) {
	var (
		displayName string
		createdAt   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT display_name, created_at FROM conversations WHERE user_id = ?
	`, userID).Scan(&displayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation %d: %w", userID, err)
	}

	log := &ConversationLog{
		UserID:      userID,
		DisplayName: displayName,
	}
	if log.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id, role, text, created_at
		FROM conversation_entries
		WHERE user_id = ?
		ORDER BY seq ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying entries for %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry   Entry
			role    string
			created string
		)
		if err := rows.Scan(&entry.ID, &role, &entry.Text, &created); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entry.Role = Role(role)
		if entry.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		log.Entries = append(log.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return log, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
