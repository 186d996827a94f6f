// ABOUTME: Tests for the update dispatch loop
// ABOUTME: Feeds a channel of updates and checks serial dispatch and shutdown

package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/support-relay/internal/relay"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []relay.Event
}

func (h *recordingHandler) Handle(_ context.Context, evt relay.Event) relay.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
	return relay.Result{}
}

func TestDispatch_InOrderAndSkipsUnsupported(t *testing.T) {
	f := newFakeAPI(t)
	b := newTestBot(t, f)

	updates := make(chan tgbotapi.Update, 3)
	updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage(aliceTG, "/start", 6)}
	updates <- tgbotapi.Update{UpdateID: 2}
	updates <- tgbotapi.Update{UpdateID: 3, CallbackQuery: &tgbotapi.CallbackQuery{ID: "q", From: aliceTG, Data: "yes"}}
	close(updates)

	h := &recordingHandler{}
	require.NoError(t, b.dispatch(context.Background(), updates, h))

	require.Len(t, h.events, 2)
	assert.Equal(t, int64(1), h.events[0].UpdateID)
	assert.Equal(t, int64(3), h.events[1].UpdateID)
}

func TestDispatch_StopsOnCancel(t *testing.T) {
	f := newFakeAPI(t)
	b := newTestBot(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tgbotapi.Update)

	done := make(chan error, 1)
	go func() { done <- b.dispatch(ctx, updates, &recordingHandler{}) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not stop")
	}
}
