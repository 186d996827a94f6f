// Package liveness serves the uptime-probe endpoint.
//
// The server exposes exactly one route:
//
//	GET /   200 with a fixed body ("Bot is running!" by default)
//
// HEAD is accepted as well; other methods get 405 and other paths 404. The
// server shares no state with the relay and runs in its own goroutine so
// the event loop never waits on it.
package liveness
