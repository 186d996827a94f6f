// ABOUTME: Backend selection for the conversation store
// ABOUTME: Maps Options.Backend to a concrete Store constructor

package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name
var ErrUnknownBackend = errors.New("unknown store backend")

// Backend names accepted by Open
const (
	BackendFirebase = "firebase"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPebble   = "pebble"
	BackendMemory   = "memory"
)

// Options selects and configures a backend. Only the section matching Backend is read.
type Options struct {
	Backend    string
	SQLitePath string
	PebblePath string
	Redis      RedisOptions
	Firebase   FirebaseOptions
}

// Open creates the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case BackendFirebase:
		s, err = wrap(NewFirebaseStore(ctx, opts.Firebase))
	case BackendSQLite:
		s, err = wrap(NewSQLiteStore(opts.SQLitePath))
	case BackendRedis:
		s, err = wrap(NewRedisStore(ctx, opts.Redis))
	case BackendPebble:
		s, err = wrap(NewPebbleStore(opts.PebblePath))
	case BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", opts.Backend, err)
	}
	return s, nil
}

// wrap converts a concrete constructor result so a failed open never yields a typed nil Store.
func wrap[T Store](s T, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
