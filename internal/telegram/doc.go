// Package telegram connects the relay to the Telegram Bot API.
//
// Bot wraps a tgbotapi client and implements relay.Messenger. Poller
// long-polls getUpdates, converts each update into a relay.Event and hands
// it to a single handler in arrival order. Updates the relay has no use for
// (stickers, edits, commands other than /start) are skipped before dispatch.
package telegram
