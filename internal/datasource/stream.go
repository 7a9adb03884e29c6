package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-better/internal/config"
	"github.com/yourusername/footy-better/internal/metrics"
	"github.com/yourusername/footy-better/internal/models"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultPingInterval   = 30 * time.Second
	handshakeTimeout      = 10 * time.Second
)

// OddsHandler is called for every applied odds update.
type OddsHandler func(matchID uuid.UUID, odds *models.MatchOdds)

// streamMessage is one frame from the odds stream
type streamMessage struct {
	Type      string    `json:"type"`
	MatchID   int64     `json:"matchId,omitempty"`
	Odds      *feedOdds `json:"odds,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// OddsStream maintains a WebSocket subscription to live odds updates and
// keeps the latest prices per fixture in memory. Run reconnects after the
// configured delay until its context is cancelled.
type OddsStream struct {
	url            string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	normalizer     *Normalizer
	logger         *logrus.Logger

	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	lastMessageTime time.Time
	snapshot        map[uuid.UUID]*models.MatchOdds
	handlers        []OddsHandler
}

// NewOddsStream creates a new odds stream client
func NewOddsStream(cfg *config.StreamConfig, logger *logrus.Logger) *OddsStream {
	if logger == nil {
		logger = logrus.New()
	}

	reconnect := defaultReconnectDelay
	if cfg.ReconnectDelaySeconds > 0 {
		reconnect = time.Duration(cfg.ReconnectDelaySeconds) * time.Second
	}
	ping := defaultPingInterval
	if cfg.PingIntervalSeconds > 0 {
		ping = time.Duration(cfg.PingIntervalSeconds) * time.Second
	}

	return &OddsStream{
		url:            cfg.URL,
		reconnectDelay: reconnect,
		pingInterval:   ping,
		normalizer:     NewNormalizer(logger),
		logger:         logger,
		snapshot:       make(map[uuid.UUID]*models.MatchOdds),
	}
}

// AddHandler registers an odds update handler. Handlers run on the read
// loop goroutine and must not block.
func (s *OddsStream) AddHandler(handler OddsHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Snapshot returns the latest streamed odds for a fixture.
func (s *OddsStream) Snapshot(matchID uuid.UUID) (*models.MatchOdds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	odds, ok := s.snapshot[matchID]
	return odds, ok
}

// IsConnected returns whether the stream is connected
func (s *OddsStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *OddsStream) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Run connects and consumes the stream until ctx is cancelled, redialing
// after the reconnect delay on every disconnect.
func (s *OddsStream) Run(ctx context.Context) error {
	for {
		if err := s.runConnection(ctx); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).WithField("component", "odds_stream").Warn("Stream disconnected")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnectDelay):
			metrics.RecordStreamReconnect()
		}
	}
}

func (s *OddsStream) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	conn, resp, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect to stream (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	s.mu.Unlock()

	s.logger.WithField("component", "odds_stream").Info("Connected to odds stream")

	// Per-connection goroutines stop when the read loop exits.
	connDone := make(chan struct{})
	defer close(connDone)

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-connDone:
		}
	}()

	go s.pingLoop(conn, connDone)

	defer func() {
		s.mu.Lock()
		s.isConnected = false
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			return err
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		metrics.RecordStreamMessage()
		s.handleMessage(raw)
	}
}

func (s *OddsStream) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(streamMessage{Type: "ping"}); err != nil {
				return
			}
		}
	}
}

// handleMessage applies one stream frame. Malformed frames are logged and
// dropped; they never kill the connection.
func (s *OddsStream) handleMessage(raw json.RawMessage) {
	var msg streamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.WithError(err).WithField("component", "odds_stream").Warn("Dropping malformed stream frame")
		return
	}

	switch msg.Type {
	case "odds_update":
		s.applyOddsUpdate(&msg)
	case "heartbeat", "pong":
		// Keepalive only.
	default:
		s.logger.WithFields(logrus.Fields{
			"component": "odds_stream",
			"type":      msg.Type,
		}).Debug("Ignoring unknown stream frame")
	}
}

func (s *OddsStream) applyOddsUpdate(msg *streamMessage) {
	if msg.Odds == nil || msg.MatchID == 0 {
		return
	}

	odds := s.normalizer.NormalizeOdds(msg.Odds)
	if odds == nil {
		s.logger.WithFields(logrus.Fields{
			"component":  "odds_stream",
			"fixture_id": msg.MatchID,
		}).Warn("Dropping unusable odds update")
		return
	}
	if odds.UpdatedAt == nil {
		if ts, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
			utc := ts.UTC()
			odds.UpdatedAt = &utc
		}
	}

	matchID := MatchID(feedSourceName, msg.MatchID)

	s.mu.Lock()
	s.snapshot[matchID] = odds
	handlers := s.handlers
	s.mu.Unlock()

	metrics.RecordOddsUpdate()
	for _, handler := range handlers {
		handler(matchID, odds)
	}
}
