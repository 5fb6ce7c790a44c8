package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillstream/internal/server/app"
)

// handleIngestEvent accepts one raw runtime event for a session, normalizes
// it, and broadcasts the resulting frames to subscribers. The response echoes
// the frames so non-streaming callers can use the endpoint directly.
func (s *Server) handleIngestEvent(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload: " + err.Error()})
		return
	}

	frames := s.sessions.Ingest(sessionID, raw)
	for _, frame := range frames {
		s.broadcaster.Broadcast(sessionID, frame)
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"frames":     frames,
	})
}

// handleResetSession clears parser state and replay history for a session.
func (s *Server) handleResetSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	s.sessions.Reset(sessionID)
	s.broadcaster.ClearHistory(sessionID)
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "reset": true})
}

func (s *Server) handleListSessions(c *gin.Context) {
	infos := s.sessions.Describe()
	if infos == nil {
		infos = []app.SessionInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": infos})
}

// handleRemoveSession evicts a session entirely: renderer state, replay
// history, and the registry entry.
func (s *Server) handleRemoveSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("id"))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	s.sessions.Remove(sessionID)
	s.broadcaster.ClearHistory(sessionID)
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "removed": true})
}
