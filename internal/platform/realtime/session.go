package realtime

import (
	"encoding/json"
	"sync"

	gorillawebsocket "github.com/gorilla/websocket"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Session is a single client connection. Outbound frames go through a
// buffered channel drained by WritePump so slow readers never block the
// router.
type Session struct {
	conn Conn
	send chan []byte

	closeOnce sync.Once

	// Set by the router once the session authenticates.
	Username string
	Role     string
}

const sendBufferSize = 64

func NewSession(conn Conn) *Session {
	return &Session{conn: conn, send: make(chan []byte, sendBufferSize)}
}

// Send marshals v and enqueues it without blocking. Frames are dropped when
// the buffer is full or the session is already closed.
func (s *Session) Send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	defer func() {
		// Send on a closed channel loses the race with Close; drop the frame.
		_ = recover()
	}()
	select {
	case s.send <- data:
	default:
	}
}

// WritePump drains the send channel onto the wire. It returns when the
// channel is closed or a write fails.
func (s *Session) WritePump() {
	defer s.conn.Close()
	for data := range s.send {
		if err := s.conn.WriteMessage(gorillawebsocket.TextMessage, data); err != nil {
			return
		}
	}
}

// ReadMessage reads the next inbound frame from the wire.
func (s *Session) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

// Close shuts the session down exactly once: the send channel closes, the
// write pump drains and closes the connection.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.send) })
}
