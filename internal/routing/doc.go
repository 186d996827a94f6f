// Package routing tracks which user an admin is currently replying to.
//
// An admin presses "Reply" under a support request and the table records a
// pending route from that admin to the user. The admin's next free-text
// message consumes the route. A second selection before the reply replaces
// the first one; there is no queue.
//
// Routes live in memory only and are lost on restart. They never expire.
package routing
