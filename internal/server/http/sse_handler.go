package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skillstream/internal/server/app"
)

const (
	sseHeartbeatInterval = 30 * time.Second
	sseClientBuffer      = 100
)

// handleSSEStream streams normalized frames to a client as Server-Sent
// Events. Stored history is replayed first so a reconnecting client catches
// up, then live frames follow. Frame format: event: <kind>\ndata: <json>.
func (s *Server) handleSSEStream(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.logger.Info("sse connection established for session: %s", sessionID)

	clientChan := make(chan app.Frame, sseClientBuffer)
	s.broadcaster.Register(sessionID, clientChan)
	defer s.broadcaster.Unregister(sessionID, clientChan)

	if _, err := fmt.Fprintf(w, "event: connected\ndata: {\"session_id\":%q}\n\n", sessionID); err != nil {
		return
	}
	w.Flush()

	for _, frame := range s.broadcaster.History(sessionID) {
		if !writeSSEFrame(w, frame) {
			return
		}
	}
	w.Flush()

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-clientChan:
			if !ok {
				return
			}
			if !writeSSEFrame(w, frame) {
				return
			}
			w.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			w.Flush()

		case <-c.Request.Context().Done():
			s.logger.Info("sse connection closed for session: %s", sessionID)
			return
		}
	}
}

func writeSSEFrame(w gin.ResponseWriter, frame app.Frame) bool {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Event, frame.Data)
	return err == nil
}
