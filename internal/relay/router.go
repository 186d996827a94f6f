// ABOUTME: Router dispatches inbound events to the start, consent and routing flows
// ABOUTME: Every side effect runs as a named, time-boxed step whose outcome is logged and observed

package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/2389/support-relay/internal/dedupe"
	"github.com/2389/support-relay/internal/routing"
)

// DefaultStepTimeout bounds each outbound call or store write.
const DefaultStepTimeout = 10 * time.Second

// Step names used in logs, metrics and Result.
const (
	StepSendGreeting       = "send_greeting"
	StepAnswerCallback     = "answer_callback"
	StepSendClosing        = "send_closing"
	StepSendPleaseWait     = "send_please_wait"
	StepNotifyAdmin        = "notify_admin"
	StepRecordUserMessage  = "record_user_message"
	StepSendReplyPrompt    = "send_reply_prompt"
	StepForwardToUser      = "forward_to_user"
	StepRecordAdminMessage = "record_admin_message"
	StepConfirmToAdmin     = "confirm_to_admin"
)

// Options configures a Router.
type Options struct {
	// AdminID is the only identity whose free text and reply buttons are honoured
	AdminID   int64
	Routes    *routing.Table
	Recorder  Recorder
	Messenger Messenger
	// Templates defaults to DefaultTexts when nil
	Templates *Templates
	// Dedupe drops repeated update IDs when set
	Dedupe   *dedupe.Cache
	Observer Observer
	Logger   *slog.Logger

	StepTimeout time.Duration
	// StoreTimeout bounds record steps; defaults to StepTimeout
	StoreTimeout time.Duration
}

// StepResult is the outcome of one side effect.
type StepResult struct {
	Name string
	Err  error
}

// Result describes what handling one event did.
type Result struct {
	// Duplicate is set when the event was dropped by the dedupe cache
	Duplicate bool
	Steps     []StepResult
	// Panic holds the recovered value if a handler panicked
	Panic any
}

// Failed returns the steps that returned an error.
func (r Result) Failed() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Router handles inbound events.
type Router struct {
	adminID      int64
	routes       *routing.Table
	recorder     Recorder
	messenger    Messenger
	templates    *Templates
	dedupe       *dedupe.Cache
	observer     Observer
	logger       *slog.Logger
	stepTimeout  time.Duration
	storeTimeout time.Duration
}

// New validates opts and creates a Router.
func New(opts Options) (*Router, error) {
	if opts.AdminID == 0 {
		return nil, errors.New("admin id is required")
	}
	if opts.Routes == nil {
		return nil, errors.New("routing table is required")
	}
	if opts.Recorder == nil {
		return nil, errors.New("recorder is required")
	}
	if opts.Messenger == nil {
		return nil, errors.New("messenger is required")
	}

	tmpl := opts.Templates
	if tmpl == nil {
		var err error
		if tmpl, err = NewTemplates(DefaultTexts()); err != nil {
			return nil, fmt.Errorf("default templates: %w", err)
		}
	}

	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := opts.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	storeTimeout := opts.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = timeout
	}

	return &Router{
		adminID:      opts.AdminID,
		routes:       opts.Routes,
		recorder:     opts.Recorder,
		messenger:    opts.Messenger,
		templates:    tmpl,
		dedupe:       opts.Dedupe,
		observer:     observer,
		logger:       logger.With("component", "relay"),
		stepTimeout:  timeout,
		storeTimeout: storeTimeout,
	}, nil
}

// Handle processes one event. It never panics and never returns an error;
// failures are logged and reported per step in the Result.
func (r *Router) Handle(ctx context.Context, evt Event) (res Result) {
	logger := r.logger.With("kind", evt.Kind.String(), "update_id", evt.UpdateID, "from", evt.From.ID)

	defer func() {
		if p := recover(); p != nil {
			res.Panic = p
			logger.Error("handler panicked", "panic", p, "stack", string(debug.Stack()))
		}
	}()

	if r.dedupe != nil && evt.UpdateID != 0 && r.dedupe.CheckAndMark(evt.UpdateID) {
		logger.Debug("dropping duplicate update")
		res.Duplicate = true
		return res
	}

	r.observer.ObserveEvent(evt.Kind.String())

	switch evt.Kind {
	case EventStart:
		r.handleStart(ctx, logger, evt, &res)
	case EventCallback:
		r.handleCallback(ctx, logger, evt, &res)
	case EventText:
		r.handleText(ctx, logger, evt, &res)
	default:
		logger.Debug("ignoring unsupported event")
	}
	return res
}

func (r *Router) handleStart(ctx context.Context, logger *slog.Logger, evt Event, res *Result) {
	r.step(ctx, logger, res, StepSendGreeting, func(ctx context.Context) error {
		return r.messenger.SendText(ctx, evt.ChatID, r.templates.Greeting(evt.From), r.templates.ConsentKeyboard())
	})
}

func (r *Router) handleCallback(ctx context.Context, logger *slog.Logger, evt Event, res *Result) {
	// Acknowledge first so the client stops its loading spinner whatever happens next.
	if evt.CallbackID != "" {
		r.step(ctx, logger, res, StepAnswerCallback, func(ctx context.Context) error {
			return r.messenger.AnswerCallback(ctx, evt.CallbackID)
		})
	}

	cb, err := ParseCallback(evt.CallbackData)
	if err != nil {
		logger.Debug("ignoring callback", "data", evt.CallbackData, "error", err)
		return
	}

	switch cb.Action {
	case ActionDecline:
		r.handleDecline(ctx, logger, evt, res)
	case ActionAccept:
		r.handleAccept(ctx, logger, evt, res)
	case ActionReply:
		if evt.From.ID != r.adminID {
			logger.Warn("reply button pressed by non-admin", "target", cb.UserID)
			return
		}
		r.routes.Select(r.adminID, cb.UserID)
		logger.Info("admin selected user", "user_id", cb.UserID)
		r.step(ctx, logger, res, StepSendReplyPrompt, func(ctx context.Context) error {
			return r.messenger.SendText(ctx, r.adminID, r.templates.ReplyPrompt(cb.UserID), nil)
		})
	}
}

func (r *Router) handleDecline(ctx context.Context, logger *slog.Logger, evt Event, res *Result) {
	text := r.templates.Declined(evt.From)
	r.step(ctx, logger, res, StepSendClosing, func(ctx context.Context) error {
		if evt.MessageID != 0 {
			return r.messenger.EditText(ctx, evt.ChatID, evt.MessageID, text)
		}
		return r.messenger.SendText(ctx, evt.ChatID, text, nil)
	})
}

// handleAccept runs three independent steps; a failure in one does not skip the others.
func (r *Router) handleAccept(ctx context.Context, logger *slog.Logger, evt Event, res *Result) {
	user := evt.From

	r.step(ctx, logger, res, StepSendPleaseWait, func(ctx context.Context) error {
		text := r.templates.PleaseWait(user)
		if evt.MessageID != 0 {
			return r.messenger.EditText(ctx, evt.ChatID, evt.MessageID, text)
		}
		return r.messenger.SendText(ctx, evt.ChatID, text, nil)
	})

	r.step(ctx, logger, res, StepNotifyAdmin, func(ctx context.Context) error {
		return r.messenger.SendText(ctx, r.adminID, r.templates.AdminNotification(user), r.templates.ReplyKeyboard(user.ID))
	})

	r.step(ctx, logger, res, StepRecordUserMessage, func(ctx context.Context) error {
		return r.recorder.RecordUserMessage(ctx, user.ID, user.DisplayName, r.templates.StartMarker(user))
	})
}

func (r *Router) handleText(ctx context.Context, logger *slog.Logger, evt Event, res *Result) {
	if evt.From.ID != r.adminID {
		logger.Debug("ignoring free text from non-admin")
		return
	}

	userID, ok := r.routes.Consume(r.adminID)
	if !ok {
		logger.Debug("admin text with no selected user")
		return
	}

	if !r.step(ctx, logger, res, StepForwardToUser, func(ctx context.Context) error {
		return r.messenger.SendText(ctx, userID, r.templates.AdminReply(userID, evt.Text), nil)
	}) {
		// Not delivered: do not record or confirm. The route is already consumed.
		return
	}

	r.step(ctx, logger, res, StepRecordAdminMessage, func(ctx context.Context) error {
		return r.recorder.RecordAdminMessage(ctx, userID, evt.Text)
	})

	r.step(ctx, logger, res, StepConfirmToAdmin, func(ctx context.Context) error {
		return r.messenger.SendText(ctx, r.adminID, r.templates.ReplySent(userID), nil)
	})
}

// step runs fn under the step timeout, records the outcome and reports success.
func (r *Router) step(ctx context.Context, logger *slog.Logger, res *Result, name string, fn func(context.Context) error) bool {
	timeout := r.stepTimeout
	if name == StepRecordUserMessage || name == StepRecordAdminMessage {
		timeout = r.storeTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(stepCtx)
	res.Steps = append(res.Steps, StepResult{Name: name, Err: err})
	r.observer.ObserveStep(name, err)

	if err != nil {
		logger.Error("step failed", "step", name, "error", err, "duration", time.Since(start))
		return false
	}
	logger.Debug("step completed", "step", name, "duration", time.Since(start))
	return true
}
