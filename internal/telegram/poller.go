// ABOUTME: Long-polling loop feeding Bot API updates to the relay one at a time
// ABOUTME: Stops receiving when the context is canceled

package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/2389/support-relay/internal/relay"
)

// Handler processes one event. *relay.Router satisfies it.
type Handler interface {
	Handle(ctx context.Context, evt relay.Event) relay.Result
}

// Run polls for updates and dispatches them serially until ctx is canceled.
func (b *Bot) Run(ctx context.Context, h Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(b.pollTimeout.Seconds())
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("polling for updates", "timeout", b.pollTimeout)

	return b.dispatch(ctx, updates, h)
}

// dispatch drains updates until ctx is done or the channel closes.
func (b *Bot) dispatch(ctx context.Context, updates tgbotapi.UpdatesChannel, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("stopped polling")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			evt, ok := toEvent(u)
			if !ok {
				b.logger.Debug("skipping update", "update_id", u.UpdateID)
				continue
			}
			h.Handle(ctx, evt)
		}
	}
}
