package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// Manager tracks snapshot streams by the assistant session they follow
type Manager struct {
	connections sync.Map // *websocket.Conn -> session ID
	mu          sync.RWMutex
	timeouts    TimeoutConfig
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// AddConnection registers a WebSocket connection for sessionID
func (m *Manager) AddConnection(conn *websocket.Conn, sessionID string) {
	m.connections.Store(conn, sessionID)
}

// RemoveConnection removes a WebSocket connection
func (m *Manager) RemoveConnection(conn *websocket.Conn) {
	m.connections.Delete(conn)
}

// GetConnectionCount returns the current number of active connections
func (m *Manager) GetConnectionCount() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// GetSessionConnectionCount returns how many streams follow sessionID
func (m *Manager) GetSessionConnectionCount(sessionID string) int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		if value.(string) == sessionID {
			count++
		}
		return true
	})
	return count
}

// HasConnection checks if a specific connection exists
func (m *Manager) HasConnection(conn *websocket.Conn) bool {
	_, exists := m.connections.Load(conn)
	return exists
}

// CloseSession closes every stream following sessionID
func (m *Manager) CloseSession(sessionID string) int {
	closed := 0
	m.connections.Range(func(key, value interface{}) bool {
		if value.(string) == sessionID {
			m.closeConn(key.(*websocket.Conn))
			closed++
		}
		return true
	})
	return closed
}

// CloseAll closes every tracked connection
func (m *Manager) CloseAll() {
	m.connections.Range(func(key, value interface{}) bool {
		m.closeConn(key.(*websocket.Conn))
		return true
	})
}

func (m *Manager) closeConn(conn *websocket.Conn) {
	m.connections.Delete(conn)
	if conn.UnderlyingConn() == nil {
		return
	}
	deadline := time.Now().Add(m.GetTimeouts().WriteWait)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"), deadline)
	_ = conn.Close()
}

// GetTimeouts returns the current timeout configuration
func (m *Manager) GetTimeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

// SetTimeouts updates the timeout configuration
func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}
