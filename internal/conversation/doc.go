// Package conversation records both sides of a support conversation.
//
// Recorder is the only writer of conversation logs. It turns "the user said
// X" and "the admin replied Y" into store entries with a fresh ID and
// timestamp:
//
//	rec := conversation.NewRecorder(st, logger)
//	err := rec.RecordUserMessage(ctx, 42, "Alice", "Chat started (YES clicked)")
//	err = rec.RecordAdminMessage(ctx, 42, "Hello!")
//
// Errors from the store are returned wrapped. Callers decide whether a
// failed write matters; the relay treats it as best effort.
package conversation
