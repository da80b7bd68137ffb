package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rpggio/deckline/internal/domain/outline"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// OutlineSubscriber streams a tenant's outline snapshots. Subscribe returns
// the snapshot that fn's deliveries follow.
type OutlineSubscriber interface {
	Subscribe(ctx context.Context, tenantID string, fn func(outline.Snapshot)) (outline.Snapshot, func(), error)
}

// OutlineMessage is pushed to websocket clients on every outline change.
type OutlineMessage struct {
	Type    string           `json:"type"`
	Outline outline.Snapshot `json:"outline"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS middleware and bearer auth.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket sends the tenant's outline once, then every committed
// snapshot. A slow client only ever sees the latest one.
func (s *Server) handleWebSocket(c *gin.Context) {
	tenantID := c.GetString(tenantContextKey)
	ctx := c.Request.Context()

	updates := make(chan outline.Snapshot, 1)
	current, unsubscribe, err := s.outlines.Subscribe(ctx, tenantID, func(snap outline.Snapshot) {
		// Replace any undelivered snapshot with the newer one.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- snap:
		default:
		}
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logWarn("websocket upgrade failed", "tenant_id", tenantID, "error", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go readUntilClosed(conn, done)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	if err := writeOutline(conn, current); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case snap := <-updates:
			if err := writeOutline(conn, snap); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeOutline(conn *websocket.Conn, snap outline.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(OutlineMessage{Type: "outline", Outline: snap})
}

// readUntilClosed drains client frames so pongs and close frames are
// processed, and closes done when the connection ends.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
