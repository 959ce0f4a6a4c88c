package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/api/v1/middleware"
	"github.com/office671/nawader/internal/config"
	"github.com/office671/nawader/internal/services"
	"github.com/office671/nawader/internal/services/assistant"
)

const snapshotBuffer = 16

// Message is the envelope pushed to stream clients
type Message struct {
	Type     string             `json:"type"`
	Snapshot assistant.Snapshot `json:"snapshot"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	allowed := config.GetAllowedOrigins()
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range allowed {
		if o == origin {
			return true
		}
	}
	log.Warn().Str("origin", origin).Msg("Rejected WebSocket origin")
	return false
}

// HandleSessionStream pushes a snapshot of the caller's session after every change
func HandleSessionStream(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetSessionClaims(r)
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	sess := svc.GetRegistry().GetOrCreate(r.Context(), claims.SessionID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	manager := svc.GetConnectionManager()
	manager.AddConnection(conn, sess.ID)
	defer manager.RemoveConnection(conn)

	timeouts := manager.GetTimeouts()

	// newest snapshot wins when the client reads slowly
	updates := make(chan assistant.Snapshot, snapshotBuffer)
	unsubscribe := sess.Subscribe(func(snap assistant.Snapshot) {
		select {
		case updates <- snap:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- snap:
			default:
			}
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go readPump(conn, timeouts.PongWait, done)

	log.Info().
		Str("session_id", sess.ID).
		Int("streams", manager.GetSessionConnectionCount(sess.ID)).
		Msg("Snapshot stream opened")

	if err := write(conn, timeouts.WriteWait, Message{Type: "snapshot", Snapshot: sess.Snapshot()}); err != nil {
		return
	}

	ticker := time.NewTicker(timeouts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Debug().Str("session_id", sess.ID).Msg("Snapshot stream closed by client")
			return
		case snap := <-updates:
			if err := write(conn, timeouts.WriteWait, Message{Type: "snapshot", Snapshot: snap}); err != nil {
				log.Debug().Err(err).Msg("Failed to write snapshot")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeouts.WriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and signals when the connection goes away
func readPump(conn *websocket.Conn, pongWait time.Duration, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected WebSocket closure")
			}
			return
		}
	}
}

func write(conn *websocket.Conn, wait time.Duration, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wait))
	return conn.WriteJSON(msg)
}
