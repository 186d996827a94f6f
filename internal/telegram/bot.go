// ABOUTME: Telegram Bot API client implementing the relay Messenger
// ABOUTME: Wraps tgbotapi calls so they honour the caller's context deadline

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/2389/support-relay/internal/relay"
)

// DefaultAPIEndpoint is the public Bot API endpoint format (token, method).
const DefaultAPIEndpoint = tgbotapi.APIEndpoint

// Options configures a Bot.
type Options struct {
	Token string
	// APIEndpoint overrides DefaultAPIEndpoint, e.g. for a local Bot API server
	APIEndpoint string
	// PollTimeout is the long-poll timeout passed to getUpdates
	PollTimeout time.Duration
	// RequestTimeout bounds every non-polling HTTP request
	RequestTimeout time.Duration
	Debug          bool
}

// Bot is a connected Telegram bot.
type Bot struct {
	api         *tgbotapi.BotAPI
	pollTimeout time.Duration
	logger      *slog.Logger
}

// compile-time check
var _ relay.Messenger = (*Bot)(nil)

// New connects to the Bot API and verifies the token with getMe.
func New(opts Options, logger *slog.Logger) (*Bot, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "telegram")

	endpoint := opts.APIEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 60 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	// getUpdates holds the connection open for PollTimeout, so the client
	// deadline must cover it on top of the normal request budget.
	client := &http.Client{Timeout: opts.PollTimeout + opts.RequestTimeout}

	// tgbotapi logs through a package-level logger
	if err := tgbotapi.SetLogger(newLogBridge(logger)); err != nil {
		return nil, fmt.Errorf("setting telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	api.Debug = opts.Debug

	logger.Info("authorized", "bot", api.Self.UserName, "bot_id", api.Self.ID)

	return &Bot{
		api:         api,
		pollTimeout: opts.PollTimeout,
		logger:      logger,
	}, nil
}

// Username returns the bot's @username without the @.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// SendText sends a message, with an inline keyboard when keyboard is non-empty.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, keyboard relay.Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(keyboard)
	}
	return b.call(ctx, "sendMessage", func() error {
		_, err := b.api.Send(msg)
		return err
	})
}

// EditText replaces the text of an earlier message and drops its keyboard.
func (b *Bot) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	return b.call(ctx, "editMessageText", func() error {
		_, err := b.api.Request(edit)
		return err
	})
}

// AnswerCallback acknowledges a button press without showing a notification.
func (b *Bot) AnswerCallback(ctx context.Context, callbackID string) error {
	cb := tgbotapi.NewCallback(callbackID, "")
	return b.call(ctx, "answerCallbackQuery", func() error {
		_, err := b.api.Request(cb)
		return err
	})
}

// call runs fn and returns early if ctx is done first. tgbotapi has no context
// support, so an abandoned request finishes in the background under the
// client timeout.
func (b *Bot) call(ctx context.Context, method string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

func inlineKeyboard(kb relay.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
