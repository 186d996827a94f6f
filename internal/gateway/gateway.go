// ABOUTME: Gateway orchestrator that wires the store, relay router and Telegram poller
// ABOUTME: Runs the poller alongside the liveness and metrics servers and shuts them down together

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/support-relay/internal/config"
	"github.com/2389/support-relay/internal/conversation"
	"github.com/2389/support-relay/internal/dedupe"
	"github.com/2389/support-relay/internal/liveness"
	"github.com/2389/support-relay/internal/metrics"
	"github.com/2389/support-relay/internal/relay"
	"github.com/2389/support-relay/internal/routing"
	"github.com/2389/support-relay/internal/store"
	"github.com/2389/support-relay/internal/telegram"
)

// Update dedupe settings. Telegram redelivers an update only around restarts
// and network errors, so a few minutes of memory is plenty.
const (
	dedupeTTL        = 10 * time.Minute
	dedupeMaxSize    = 10000
	dedupeSweepEvery = time.Minute
)

// Gateway owns every long-lived component of the relay.
type Gateway struct {
	config   *config.Config
	store    store.Store
	routes   *routing.Table
	router   *relay.Router
	bot      *telegram.Bot
	metrics  *metrics.Metrics
	liveness *liveness.Server
	logger   *slog.Logger

	// metricsServer is nil when metrics are disabled
	metricsServer *metrics.Server

	// dedupe drops updates Telegram delivered twice
	dedupe *dedupe.Cache
}

// New opens the store, connects to Telegram and assembles the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := relay.NewTemplates(TextsFromConfig(cfg.Messages))
	if err != nil {
		return nil, fmt.Errorf("loading message templates: %w", err)
	}

	s, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bot, err := telegram.New(telegram.Options{
		Token:          cfg.Telegram.Token,
		APIEndpoint:    cfg.Telegram.APIEndpoint,
		PollTimeout:    cfg.Telegram.PollTimeout,
		RequestTimeout: cfg.Telegram.RequestTimeout,
		Debug:          cfg.Telegram.Debug,
	}, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	g := &Gateway{
		config:   cfg,
		store:    s,
		routes:   routing.NewTable(),
		bot:      bot,
		metrics:  metrics.New(),
		liveness: liveness.NewServer(cfg.Liveness.Addr, cfg.Liveness.Body, logger),
		logger:   logger.With("component", "gateway"),
		dedupe:   dedupe.New(dedupeTTL, dedupeMaxSize, dedupeSweepEvery),
	}

	if cfg.Metrics.Enabled {
		g.metricsServer = metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, g.metrics, logger)
	}

	g.router, err = relay.New(relay.Options{
		AdminID:      int64(cfg.Telegram.AdminID),
		Routes:       g.routes,
		Recorder:     conversation.NewRecorder(s, logger),
		Messenger:    bot,
		Templates:    templates,
		Dedupe:       g.dedupe,
		Observer:     g.metrics,
		Logger:       logger,
		StepTimeout:  cfg.Telegram.RequestTimeout,
		StoreTimeout: cfg.Store.Timeout,
	})
	if err != nil {
		_ = g.closeComponents()
		return nil, fmt.Errorf("creating relay router: %w", err)
	}

	return g, nil
}

// initStore opens the configured conversation store.
func initStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	openCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout+10*time.Second)
	defer cancel()

	s, err := store.Open(openCtx, StoreOptions(cfg.Store))
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// StoreOptions maps the store config section onto store.Options.
func StoreOptions(c config.StoreConfig) store.Options {
	return store.Options{
		Backend:    c.Backend,
		SQLitePath: c.SQLite.Path,
		PebblePath: c.Pebble.Path,
		Redis: store.RedisOptions{
			Addr:      c.Redis.Addr,
			Username:  c.Redis.Username,
			Password:  c.Redis.Password,
			DB:        c.Redis.DB,
			KeyPrefix: c.Redis.KeyPrefix,
		},
		Firebase: store.FirebaseOptions{
			DatabaseURL:     c.Firebase.DatabaseURL,
			CredentialsFile: c.Firebase.CredentialsFile,
			Root:            c.Firebase.Root,
		},
	}
}

// TextsFromConfig maps the messages config section onto relay.Texts.
func TextsFromConfig(m config.MessagesConfig) relay.Texts {
	return relay.Texts{
		Greeting:          m.Greeting,
		Declined:          m.Declined,
		PleaseWait:        m.PleaseWait,
		AdminNotification: m.AdminNotification,
		ReplyPrompt:       m.ReplyPrompt,
		AdminReply:        m.AdminReply,
		ReplySent:         m.ReplySent,
		StartMarker:       m.StartMarker,
		AcceptLabel:       m.AcceptLabel,
		DeclineLabel:      m.DeclineLabel,
		ReplyLabel:        m.ReplyLabel,
	}
}

// Router returns the event router, e.g. for replaying events in tests.
func (g *Gateway) Router() *relay.Router {
	return g.router
}

// startServers launches the poller and HTTP servers. Each goroutine reports
// a non-nil error on errCh; wg completes when all of them have returned.
func (g *Gateway) startServers(ctx context.Context, wg *sync.WaitGroup) chan error {
	errCh := make(chan error, 3)

	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	run("liveness server", g.liveness.Run)
	if g.metricsServer != nil {
		run("metrics server", g.metricsServer.Run)
	}
	run("telegram poller", func(ctx context.Context) error {
		return g.bot.Run(ctx, g.router)
	})

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		g.drainErrors(errCh)
		return err
	}
}

// drainErrors drains any remaining errors from the channel.
func (g *Gateway) drainErrors(errCh chan error) {
	select {
	case additionalErr := <-errCh:
		g.logger.Error("additional server error", "error", additionalErr)
	default:
	}
}

// Run serves until ctx is canceled or a component fails, then shuts everything down.
func (g *Gateway) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := g.startServers(runCtx, &wg)
	g.logger.Info("support relay running",
		"admin_id", int64(g.config.Telegram.AdminID),
		"store", g.config.Store.Backend,
		"liveness_addr", g.config.Liveness.Addr,
	)

	serverErr := g.waitForShutdownSignal(ctx, errCh)

	// Components shut down gracefully on cancel (HTTP servers with a 5s grace period)
	cancel()
	wg.Wait()

	shutdownErr := g.Shutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// Shutdown releases the store and background caches.
func (g *Gateway) Shutdown() error {
	g.logger.Info("shutting down gateway")
	return g.closeComponents()
}

func (g *Gateway) closeComponents() error {
	g.dedupe.Close()

	var errs []error
	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}
