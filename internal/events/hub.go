// Package events provides the WebSocket feed of completed verifications.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trustverifier/backend/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	pongWait   = 60 * time.Second // Time allowed to read the next pong
	pingPeriod = 30 * time.Second // Send pings at this interval (must be < pongWait)
	writeWait  = 10 * time.Second // Time allowed to write a message
	sendBuffer = 64               // Per-subscriber outbound channel buffer
)

// VerificationEvent is the wire shape broadcast for each completed
// trust verification.
type VerificationEvent struct {
	Type       string    `json:"type"` // always "trust_verification"
	AgentID    string    `json:"agent_id"`
	TrustScore float64   `json:"trust_score"`
	Verified   bool      `json:"verified"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Hub fans verification events out to connected WebSocket subscribers.
// Slow subscribers are dropped rather than allowed to block the broadcast.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*subscriber]struct{})}
}

// BroadcastVerification publishes a completed report to all subscribers.
func (h *Hub) BroadcastVerification(report core.TrustReport) {
	payload, err := json.Marshal(VerificationEvent{
		Type:       "trust_verification",
		AgentID:    report.AgentID,
		TrustScore: report.TrustScore,
		Verified:   report.Verified,
		Confidence: report.Confidence,
		Timestamp:  report.Timestamp,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- payload:
		default:
			// Subscriber is not keeping up; disconnect it.
			go sub.close()
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HandleWebSocket upgrades the connection and registers a subscriber.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	slog.Info("event subscriber connected", "remote", r.RemoteAddr)

	// writePump owns all writes (ping, events, close); readPump owns all
	// reads. Single-writer ownership avoids concurrent write races.
	go sub.writePump()
	go sub.readPump()
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)

		s.hub.mu.Lock()
		delete(s.hub.subscribers, s)
		s.hub.mu.Unlock()

		s.conn.Close()
		slog.Info("event subscriber disconnected")
	})
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection (the feed is one-way) and keeps the pong
// deadline fresh.
func (s *subscriber) readPump() {
	defer s.close()

	s.conn.SetReadLimit(1024)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
