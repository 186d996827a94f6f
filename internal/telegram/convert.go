// ABOUTME: Conversion from Bot API updates to relay events
// ABOUTME: Returns false for updates the relay does not handle

package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/2389/support-relay/internal/relay"
)

// toEvent converts an update. ok is false when the update should be skipped.
func toEvent(u tgbotapi.Update) (relay.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.From == nil {
			return relay.Event{}, false
		}
		evt := relay.Event{
			UpdateID:     int64(u.UpdateID),
			Kind:         relay.EventCallback,
			ChatID:       q.From.ID,
			From:         toUser(q.From),
			CallbackID:   q.ID,
			CallbackData: q.Data,
		}
		if q.Message != nil {
			evt.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				evt.ChatID = q.Message.Chat.ID
			}
		}
		return evt, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil {
			return relay.Event{}, false
		}
		evt := relay.Event{
			UpdateID: int64(u.UpdateID),
			ChatID:   m.Chat.ID,
			From:     toUser(m.From),
			Text:     m.Text,
		}
		if m.IsCommand() {
			if m.Command() != "start" {
				return relay.Event{}, false
			}
			evt.Kind = relay.EventStart
			return evt, true
		}
		if strings.TrimSpace(m.Text) == "" {
			return relay.Event{}, false
		}
		evt.Kind = relay.EventText
		return evt, true
	}

	return relay.Event{}, false
}

func toUser(u *tgbotapi.User) relay.User {
	return relay.User{ID: u.ID, DisplayName: displayName(u)}
}

// displayName prefers the first name, which is what users are greeted with.
func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	username := strings.TrimSpace(u.UserName)
	switch {
	case first != "":
		return first
	case last != "":
		return last
	case username != "":
		return "@" + username
	default:
		return ""
	}
}
