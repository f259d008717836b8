package polymarket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"PolyWatch/internal/domain/models"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/pkg/logger"
)

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 10 * time.Second
	wsReadTimeout      = 70 * time.Second
	wsPingInterval     = 30 * time.Second
)

// Stream subscribes to the Polymarket live-data trades channel and buffers
// incoming trades. The tracker drains the buffer once per cycle, so the
// pipeline downstream of the source is identical in both feed modes.
type Stream struct {
	url     string
	buffer  chan models.Trade
	backoff *Backoff
	log     *logger.Logger
	metrics repository.Metrics

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStream creates a websocket trade source.
func NewStream(url string, bufferSize int, log *logger.Logger, metrics repository.Metrics) *Stream {
	if bufferSize <= 0 {
		bufferSize = 2048
	}
	return &Stream{
		url:     url,
		buffer:  make(chan models.Trade, bufferSize),
		backoff: NewBackoff(time.Second, 60*time.Second, 2),
		log:     log,
		metrics: metrics,
	}
}

// Start launches the connect/read/reconnect loop.
func (s *Stream) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// NextBatch drains whatever trades arrived since the previous cycle.
func (s *Stream) NextBatch(ctx context.Context) ([]models.Trade, error) {
	var batch []models.Trade
	for {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		case t := <-s.buffer:
			batch = append(batch, t)
		default:
			return batch, nil
		}
	}
}

// Close stops the stream and closes the connection.
func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.closeConn()
	s.wg.Wait()
	return nil
}

func (s *Stream) runLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.connect(ctx); err != nil {
			s.metrics.RecordError("ws_connect")
			delay := s.backoff.Next()
			s.log.Warn("live feed connect failed",
				logger.Error(err),
				logger.Duration("retry_in", delay),
			)
			if Sleep(ctx, delay) != nil {
				return
			}
			continue
		}

		s.log.Info("live feed connected", logger.String("url", s.url))

		err := s.readLoop(ctx)
		s.closeConn()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.metrics.RecordError("ws_read")
			s.log.Warn("live feed read error", logger.Error(err))
		}

		// A connection that is accepted and immediately dropped must not
		// bypass the backoff, or a flapping upstream drives a reconnect
		// spin. The schedule is reset only after a healthy read.
		if Sleep(ctx, s.backoff.Next()) != nil {
			return
		}
	}
}

func (s *Stream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	headers := http.Header{}
	headers.Set("Origin", "https://polymarket.com")

	conn, resp, err := dialer.DialContext(ctx, s.url, headers)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return err
	}

	sub := map[string]interface{}{
		"action": "subscribe",
		"subscriptions": []map[string]string{
			{"topic": "activity", "type": "trades"},
		},
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return nil
}

type streamEnvelope struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Stream) readLoop(ctx context.Context) error {
	// The pinger lives exactly as long as this connection; closing done
	// on return stops it so reconnects do not accumulate goroutines.
	done := make(chan struct{})
	defer close(done)

	go func() {
		pinger := time.NewTicker(wsPingInterval)
		defer pinger.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-pinger.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.backoff.Reset()
		s.handleMessage(msg)
	}
}

func (s *Stream) handleMessage(msg []byte) {
	var env streamEnvelope
	if err := json.Unmarshal(msg, &env); err != nil || env.Topic != "activity" {
		return
	}

	// The payload is a single trade or an array depending on burst size.
	var trades []models.Trade
	if err := json.Unmarshal(env.Payload, &trades); err != nil {
		var one models.Trade
		if err := json.Unmarshal(env.Payload, &one); err != nil {
			return
		}
		trades = []models.Trade{one}
	}

	for _, t := range trades {
		select {
		case s.buffer <- t:
		default:
			s.metrics.RecordError("ws_buffer_full")
		}
	}
}

func (s *Stream) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
