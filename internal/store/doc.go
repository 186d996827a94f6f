// Package store persists per-user conversation logs.
//
// # Model
//
// Every user that ever contacted support owns one ConversationLog, addressed
// by the path users/{userID}. A log holds the display name captured on first
// contact and an ordered list of Entry values. Entries are append-only: the
// package has no update or delete operation for them.
//
// # Operations
//
// Persistence is split into two explicit steps instead of relying on a
// backend's upsert behavior:
//
//   - EnsureLog creates the container with a display name if it is absent.
//     An existing container keeps its original display name.
//   - AppendEntry appends one entry. It creates an empty container (no display
//     name) when none exists yet, so an admin reply to an unknown user still
//     lands somewhere.
//
// GetLog is a read path used by the transcript command only.
//
// # Backends
//
//   - SQLiteStore: modernc.org/sqlite, default for single-host deployments
//   - RedisStore: hash + list per user
//   - PebbleStore: embedded LSM key/value store
//   - FirebaseStore: Firebase Realtime Database, the layout used by the
//     hosted bot
//   - MemoryStore: in-process, for tests and dry runs
//
// Open selects a backend from Options.
//
// # Errors
//
//   - ErrNotFound: no log exists for the user
//   - ErrInvalidEntry: entry has an unknown role or no ID
//   - ErrUnknownBackend: Options.Backend names no backend
//
// Backend failures are returned wrapped; no operation retries.
package store
