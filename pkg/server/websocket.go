package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// SafeConn wraps a websocket connection with a write mutex so state broadcasts
// and ping frames cannot interleave.
type SafeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteJSON safely writes JSON to the connection. Writes to a closed
// connection are silently dropped; the reader loop handles teardown.
func (sc *SafeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	if sc.closed {
		return nil
	}
	return sc.conn.WriteJSON(v)
}

func (sc *SafeConn) Close() error {
	sc.writeMu.Lock()
	sc.closed = true
	sc.writeMu.Unlock()
	return sc.conn.Close()
}

// wsEvent is one push frame to a live client.
type wsEvent struct {
	Type    string      `json:"type"`
	Session string      `json:"session"`
	Payload interface{} `json:"payload,omitempty"`
}

// handleWebSocket attaches a client to a session's live feed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if _, ok := s.manager.Get(sessionID); !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Logf("WebSocket upgrade error: %v", err)
		return
	}
	sc := NewSafeConn(conn)
	s.addConn(sessionID, sc)
	defer func() {
		s.removeConn(sessionID, sc)
		sc.Close()
	}()

	sc.WriteJSON(wsEvent{Type: "hello", Session: sessionID})

	// Read loop exists only to detect disconnects; clients talk over the
	// JSON API, not the socket.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) addConn(sessionID string, sc *SafeConn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conns[sessionID] = append(s.conns[sessionID], sc)
}

func (s *Server) removeConn(sessionID string, sc *SafeConn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	list := s.conns[sessionID]
	for i, c := range list {
		if c == sc {
			s.conns[sessionID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(s.conns[sessionID]) == 0 {
		delete(s.conns, sessionID)
	}
}

// broadcast pushes an event to every client watching a session.
func (s *Server) broadcast(sessionID, eventType string, payload interface{}) {
	s.connMu.Lock()
	list := append([]*SafeConn(nil), s.conns[sessionID]...)
	s.connMu.Unlock()

	ev := wsEvent{Type: eventType, Session: sessionID, Payload: payload}
	for _, sc := range list {
		if err := sc.WriteJSON(ev); err != nil {
			s.logger.Logf("WebSocket write error: %v", err)
		}
	}
}
