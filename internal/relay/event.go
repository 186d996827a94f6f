// ABOUTME: Platform-neutral inbound events and the outbound Messenger contract
// ABOUTME: Transports convert their updates into Event and implement Messenger

package relay

import "context"

// EventKind identifies the handler an event is dispatched to
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventCallback
	EventText
)

// String returns the metric label for the kind.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCallback:
		return "callback"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// User is the sender of an event
type User struct {
	ID          int64
	DisplayName string
}

// Event is one inbound platform event
type Event struct {
	// UpdateID is the platform's unique ID for this delivery (0 if unknown)
	UpdateID int64
	Kind     EventKind
	ChatID   int64
	From     User

	// Text is the message body for EventText
	Text string

	// Callback fields for EventCallback
	CallbackID   string
	CallbackData string
	// MessageID is the message that carries the pressed keyboard (0 if unknown)
	MessageID int
}

// Button is one inline keyboard button
type Button struct {
	Label string
	Data  string
}

// Keyboard is a grid of inline buttons; nil means no keyboard.
type Keyboard [][]Button

// Messenger sends messages back to the platform.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard Keyboard) error
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Recorder persists conversation messages.
type Recorder interface {
	RecordUserMessage(ctx context.Context, userID int64, displayName, text string) error
	RecordAdminMessage(ctx context.Context, userID int64, text string) error
}

// Observer receives event and step outcomes, e.g. for metrics.
type Observer interface {
	ObserveEvent(kind string)
	ObserveStep(step string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string)       {}
func (nopObserver) ObserveStep(string, error) {}
