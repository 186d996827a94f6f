// ABOUTME: Encoding and decoding of inline button callback data
// ABOUTME: Accepted payloads are "yes", "no" and "reply_<userID>"

package relay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned for callback data the relay does not understand
var ErrMalformedPayload = errors.New("malformed callback payload")

// Callback payload values
const (
	PayloadAccept  = "yes"
	PayloadDecline = "no"
	replyPrefix    = "reply_"
)

// Action is what a button press asks for
type Action int

const (
	ActionAccept Action = iota + 1
	ActionDecline
	ActionReply
)

// Callback is decoded button data
type Callback struct {
	Action Action
	// UserID is the target user for ActionReply
	UserID int64
}

// ReplyPayload encodes the admin's "reply to userID" button.
func ReplyPayload(userID int64) string {
	return replyPrefix + strconv.FormatInt(userID, 10)
}

// ParseCallback decodes button data.
func ParseCallback(data string) (Callback, error) {
	switch data {
	case PayloadAccept:
		return Callback{Action: ActionAccept}, nil
	case PayloadDecline:
		return Callback{Action: ActionDecline}, nil
	}

	if rest, ok := strings.CutPrefix(data, replyPrefix); ok {
		userID, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("%w: %q", ErrMalformedPayload, data)
		}
		return Callback{Action: ActionReply, UserID: userID}, nil
	}

	return Callback{}, fmt.Errorf("%w: %q", ErrMalformedPayload, data)
}
