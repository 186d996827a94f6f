// ABOUTME: HTTP liveness endpoint for external uptime probes
// ABOUTME: Single GET / route with a static body; graceful shutdown on context cancel

package liveness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultBody is returned when no body is configured.
const DefaultBody = "Bot is running!"

// shutdownTimeout bounds graceful shutdown once the run context is canceled.
const shutdownTimeout = 5 * time.Second

// Server is the liveness HTTP server.
type Server struct {
	httpServer *http.Server
	body       string
	logger     *slog.Logger
}

// NewServer creates a liveness server for addr responding with body.
func NewServer(addr, body string, logger *slog.Logger) *Server {
	if body == "" {
		body = DefaultBody
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		body:   body,
		logger: logger.With("component", "liveness"),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the single-route handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

// handleRoot answers GET / with the static body.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(s.body))
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on liveness address: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled or the server fails.
// Returns nil on graceful shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("liveness server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down liveness server")
	case err, ok := <-errCh:
		if ok {
			s.logger.Error("liveness server error", "error", err)
			return fmt.Errorf("liveness server: %w", err)
		}
	}

	// The run context is already canceled; shut down with a fresh one
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
