package server

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// ConnectionManager tracks every live websocket by client id, so shutdown
// can notify clients. Room membership lives in the room registry; this is
// purely the transport-side index.
type ConnectionManager struct {
	connections map[uuid.UUID]*websocket.Conn
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[uuid.UUID]*websocket.Conn),
	}
}

func (cm *ConnectionManager) Add(clientID uuid.UUID, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[clientID] = conn
}

func (cm *ConnectionManager) Remove(clientID uuid.UUID) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, clientID)
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

func (cm *ConnectionManager) All() []*websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	conns := make([]*websocket.Conn, 0, len(cm.connections))
	for _, conn := range cm.connections {
		conns = append(conns, conn)
	}
	return conns
}
