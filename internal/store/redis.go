// ABOUTME: Redis implementation of the Store interface using go-redis
// ABOUTME: Stores a metadata hash and an ordered JSON entry list per user

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// ensureLogScript creates the metadata hash only if it has no created_at field.
// Returns 1 when the hash was created.
var ensureLogScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], 'created_at', ARGV[1]) == 1 then
	redis.call('HSET', KEYS[1], 'username', ARGV[2])
	return 1
end
return 0
`)

// RedisStore implements the Store interface on top of Redis
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}

	s := NewRedisStoreFromClient(client, opts.KeyPrefix)
	s.logger.Info("Redis store initialized", "addr", opts.Addr, "db", opts.DB)
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes ownership of it.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
		logger: slog.Default().With("component", "store", "backend", "redis"),
	}
}

func (s *RedisStore) metaKey(userID int64) string {
	return s.prefix + "users:" + strconv.FormatInt(userID, 10)
}

func (s *RedisStore) messagesKey(userID int64) string {
	return s.metaKey(userID) + ":messages"
}

// EnsureLog creates the metadata hash atomically via a Lua script.
func (s *RedisStore) EnsureLog(ctx context.Context, userID int64, displayName string) (bool, error) {
	created, err := ensureLogScript.Run(ctx, s.client,
		[]string{s.metaKey(userID)},
		formatTime(time.Now()), displayName,
	).Int()
	if err != nil {
		return false, fmt.Errorf("ensuring conversation %d: %w", userID, err)
	}
	return created == 1, nil
}

// AppendEntry pushes the JSON-encoded entry onto the user's list.
func (s *RedisStore) AppendEntry(ctx context.Context, userID int64, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, s.metaKey(userID), "created_at", formatTime(entry.CreatedAt))
		pipe.RPush(ctx, s.messagesKey(userID), data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending entry to conversation %d: %w", userID, err)
	}
	return nil
}

// GetLog reads the metadata hash and the full entry list.
func (s *RedisStore) GetLog(ctx context.Context, userID int64) (*ConversationLog, error) {
	meta, err := s.client.HGetAll(ctx, s.metaKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading conversation %d: %w", userID, err)
	}
	if len(meta) == 0 {
		return nil, ErrNotFound
	}

	log := &ConversationLog{
		UserID:      userID,
		DisplayName: meta["username"],
	}
	if log.CreatedAt, err = parseTime(meta["created_at"]); err != nil {
		return nil, err
	}

	raw, err := s.client.LRange(ctx, s.messagesKey(userID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reading entries for %d: %w", userID, err)
	}
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decoding entry for %d: %w", userID, err)
		}
		log.Entries = append(log.Entries, entry)
	}
	return log, nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
