// Package dedupe remembers recently dispatched platform updates.
//
// Long polling can hand the same update to the bot twice, for example after
// a restart before the offset was acknowledged. Dispatching a "YES" press
// twice would notify the admin twice, so the relay checks every update ID
// against a Cache before handling it.
//
// Entries expire after a TTL and the cache holds at most maxSize IDs; the
// oldest is evicted first.
package dedupe
