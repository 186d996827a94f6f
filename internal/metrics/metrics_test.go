// ABOUTME: Tests for relay metrics counters and the metrics HTTP server
// ABOUTME: Uses prometheus testutil to read counter values

package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveEvent(t *testing.T) {
	m := New()

	m.ObserveEvent("start")
	m.ObserveEvent("start")
	m.ObserveEvent("text")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("text")))
}

func TestMetrics_ObserveStep(t *testing.T) {
	m := New()

	m.ObserveStep("notify_admin", nil)
	m.ObserveStep("notify_admin", errors.New("blocked"))
	m.ObserveStep("notify_admin", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.steps.WithLabelValues("notify_admin", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.steps.WithLabelValues("notify_admin", OutcomeError)))
}

func TestServer_ServesMetrics(t *testing.T) {
	m := New()
	m.ObserveEvent("callback")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(ln.Addr().String(), "/metrics", m, nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `support_relay_events_total{kind="callback"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not shut down")
	}
}
