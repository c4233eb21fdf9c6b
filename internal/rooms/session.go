package rooms

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conn is the outbound half of a client connection. The gateway owns the
// connection and its lifetime; the room layer only references it to send.
type Conn interface {
	Send(ctx context.Context, data []byte) error
}

// sendTimeout bounds every outbound write so a stalled client can never
// block a room. A send that misses the deadline evicts that client.
const sendTimeout = 5 * time.Second

// Session is one connected client: an immutable identity plus the
// connection it arrived on.
type Session struct {
	ID   uuid.UUID
	conn Conn
}

func NewSession(id uuid.UUID, conn Conn) *Session {
	return &Session{ID: id, conn: conn}
}

func (s *Session) send(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	return s.conn.Send(ctx, data)
}
