package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"skillstream/internal/server/app"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket mirrors the SSE stream over a websocket. Each frame is sent
// as one JSON text message {"event": ..., "data": ...}.
func (s *Server) handleWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Info("websocket connection established for session: %s", sessionID)

	clientChan := make(chan app.Frame, sseClientBuffer)
	s.broadcaster.Register(sessionID, clientChan)
	defer s.broadcaster.Unregister(sessionID, clientChan)

	// Drain reads so close frames and pongs are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, frame := range s.broadcaster.History(sessionID) {
		if !writeWSFrame(conn, frame) {
			return
		}
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-clientChan:
			if !ok {
				return
			}
			if !writeWSFrame(conn, frame) {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			s.logger.Info("websocket connection closed for session: %s", sessionID)
			return
		}
	}
}

func writeWSFrame(conn *websocket.Conn, frame app.Frame) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(frame) == nil
}
