// Package realtime pushes case activity to websocket subscribers.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

const (
	EventConnected          = "connected"
	EventAppointmentCreated = "appointment.created"
	EventAppointmentUpdated = "appointment.updated"
	EventAppointmentDeleted = "appointment.deleted"
	EventFileUploaded       = "file.uploaded"
	EventFileDeleted        = "file.deleted"
)

type Event struct {
	Type    string `json:"type"`
	CaseID  string `json:"caseId"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type subscriber struct {
	conn      *websocket.Conn
	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscriber(conn *websocket.Conn) *subscriber {
	return &subscriber{
		conn: conn,
		send: make(chan Event, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks; it reports false when the queue is full.
func (s *subscriber) enqueue(ev Event) bool {
	select {
	case <-s.done:
		return true
	default:
	}

	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)

		if s.conn != nil {
			s.conn.Close()
		}
	})
}

// writePump is the only writer on the connection.
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
		case ev := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub keeps websocket subscribers per case. Delivery is best effort.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHub(allowedOrigins []string, logger *slog.Logger) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Hub{
		rooms:  make(map[string]map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin.
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Publish queues ev for every subscriber of caseID without waiting on
// the network. Subscribers that have fallen behind are dropped.
func (h *Hub) Publish(caseID string, ev Event) {
	ev.CaseID = caseID

	h.mu.RLock()
	room := h.rooms[caseID]
	targets := make([]*subscriber, 0, len(room))
	for s := range room {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.enqueue(ev) {
			h.logger.Debug("dropping slow websocket subscriber", "case_id", caseID)
			h.remove(caseID, s)
			s.close()
		}
	}
}

func (h *Hub) Subscribers(caseID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[caseID])
}

func (h *Hub) add(caseID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[caseID] == nil {
		h.rooms[caseID] = make(map[*subscriber]struct{})
	}
	h.rooms[caseID][s] = struct{}{}
}

func (h *Hub) remove(caseID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, exists := h.rooms[caseID]; exists {
		delete(room, s)

		if len(room) == 0 {
			delete(h.rooms, caseID)
		}
	}
}

// Serve upgrades the request and blocks until the connection closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, caseID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)

	if err != nil {
		h.logger.Warn("websocket upgrade failed", "case_id", caseID, "error", err)
		return
	}

	s := newSubscriber(conn)

	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Queued before the subscriber becomes visible, so it is always first.
	s.enqueue(Event{Type: EventConnected, CaseID: caseID, Message: "Subscribed to case activity"})
	h.add(caseID, s)

	defer func() {
		h.remove(caseID, s)
		s.close()
		h.logger.Debug("websocket connection closed", "case_id", caseID)
	}()

	go s.writePump()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", "case_id", caseID, "error", err)
			}
			return
		}
	}
}
