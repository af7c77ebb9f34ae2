package collab

import (
	"math/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Collaborator display colors, same palette the frontend renders.
var collaboratorColors = []string{
	"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6",
	"#EC4899", "#06B6D4", "#84CC16", "#F97316", "#6366F1",
}

func pickColor() string {
	return collaboratorColors[rand.Intn(len(collaboratorColors))]
}

const sessionSendBuffer = 64

// Session is one connected collaborator. It exists exactly as long as its
// transport connection; its id doubles as the collaborator id on the wire.
type Session struct {
	ID string

	send chan ServerMessage

	mu     sync.Mutex
	closed bool
}

func newSession() *Session {
	return &Session{
		ID:   ulid.Make().String(),
		send: make(chan ServerMessage, sessionSendBuffer),
	}
}

// Events exposes the outbound stream, drained by the websocket write pump
// (and read directly in tests). The channel closes when the session ends.
func (s *Session) Events() <-chan ServerMessage {
	return s.send
}

// trySend queues a message without blocking. Returns false when the session
// is closed or its buffer is full; the hub treats that as a dead consumer.
func (s *Session) trySend(msg ServerMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
}
