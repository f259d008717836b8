package polymarket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"PolyWatch/pkg/logger"
)

// flappingServer accepts each websocket handshake and drops the
// connection immediately, forcing the client into its reconnect path.
func flappingServer(t *testing.T, connects *atomic.Int64) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connects.Add(1)
		conn.Close()
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamReconnectDoesNotLeakGoroutines(t *testing.T) {
	var connects atomic.Int64
	srv := flappingServer(t, &connects)
	defer srv.Close()

	s := NewStream(wsURL(srv), 16, logger.Nop(), nopMetrics{})
	s.backoff = NewBackoff(time.Millisecond, 5*time.Millisecond, 2)

	before := runtime.NumGoroutine()
	s.Start(context.Background())
	time.Sleep(300 * time.Millisecond)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if connects.Load() < 2 {
		t.Fatalf("expected several reconnects, got %d", connects.Load())
	}
	after := runtime.NumGoroutine()
	if after > before+3 {
		t.Fatalf("goroutines grew across reconnects: before=%d after=%d", before, after)
	}
}

func TestStreamBacksOffWhenConnectionsFlap(t *testing.T) {
	var connects atomic.Int64
	srv := flappingServer(t, &connects)
	defer srv.Close()

	s := NewStream(wsURL(srv), 16, logger.Nop(), nopMetrics{})
	s.backoff = NewBackoff(50*time.Millisecond, 200*time.Millisecond, 2)

	s.Start(context.Background())
	time.Sleep(300 * time.Millisecond)
	_ = s.Close()

	// With a 50ms floor that doubles, an unthrottled spin would produce
	// hundreds of dials in 300ms; the schedule caps it to a handful.
	if n := connects.Load(); n > 6 {
		t.Fatalf("reconnects not throttled: %d dials in 300ms", n)
	}
}
