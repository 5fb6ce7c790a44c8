// Package app holds the server-side session plumbing: the per-session frame
// broadcaster and the session registry that owns one stream renderer per
// session.
package app

import (
	"sync"

	"skillstream/internal/shared/logging"
)

// Frame is one normalized output ready for delivery to clients. Event is the
// frame kind and Data the JSON payload.
type Frame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Broadcaster fans frames out to the SSE and websocket clients of a session
// and keeps a bounded per-session history for replay on reconnect.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string][]chan Frame

	historyMu  sync.RWMutex
	history    map[string][]Frame
	maxHistory int

	metrics *Metrics

	logger logging.Logger
}

// NewBroadcaster builds a broadcaster keeping up to maxHistory frames per
// session. A non-positive maxHistory disables replay. Metrics go to the
// global Prometheus registry.
func NewBroadcaster(maxHistory int, logger logging.Logger) *Broadcaster {
	return &Broadcaster{
		clients:    make(map[string][]chan Frame),
		history:    make(map[string][]Frame),
		maxHistory: maxHistory,
		metrics:    defaultMetrics(),
		logger:     logging.OrNop(logger),
	}
}

// Broadcast records frame in the session history and delivers it to every
// subscribed client. Slow clients never block ingestion: a frame that does
// not fit a client buffer is dropped for that client only. The read lock is
// held across the sends so Unregister cannot close a channel mid-broadcast.
func (b *Broadcaster) Broadcast(sessionID string, frame Frame) {
	b.storeHistory(sessionID, frame)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.clients[sessionID] {
		select {
		case ch <- frame:
			b.metrics.FrameSent()
		default:
			b.logger.Warn("client buffer full for session %s, dropping %s frame", sessionID, frame.Event)
			b.metrics.FrameDropped()
		}
	}
}

// Register subscribes a client channel to a session.
func (b *Broadcaster) Register(sessionID string, ch chan Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clients[sessionID] = append(b.clients[sessionID], ch)
	b.metrics.Connected()
	b.logger.Info("client registered for session %s (total: %d)", sessionID, len(b.clients[sessionID]))
}

// Unregister removes a client channel from a session and closes it.
func (b *Broadcaster) Unregister(sessionID string, ch chan Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := b.clients[sessionID]
	for i, client := range clients {
		if client == ch {
			b.clients[sessionID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			b.metrics.Disconnected()
			if len(b.clients[sessionID]) == 0 {
				delete(b.clients, sessionID)
			}
			b.logger.Info("client unregistered from session %s (remaining: %d)", sessionID, len(b.clients[sessionID]))
			break
		}
	}
}

// ClientCount returns the number of clients subscribed to a session.
func (b *Broadcaster) ClientCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[sessionID])
}

// History returns a copy of the stored frames for a session.
func (b *Broadcaster) History(sessionID string) []Frame {
	b.historyMu.RLock()
	defer b.historyMu.RUnlock()

	history := b.history[sessionID]
	if len(history) == 0 {
		return nil
	}
	out := make([]Frame, len(history))
	copy(out, history)
	return out
}

// ClearHistory drops the stored frames for a session.
func (b *Broadcaster) ClearHistory(sessionID string) {
	b.historyMu.Lock()
	defer b.historyMu.Unlock()
	delete(b.history, sessionID)
}

func (b *Broadcaster) storeHistory(sessionID string, frame Frame) {
	if b.maxHistory <= 0 {
		return
	}
	b.historyMu.Lock()
	defer b.historyMu.Unlock()

	history := append(b.history[sessionID], frame)
	if len(history) > b.maxHistory {
		history = history[len(history)-b.maxHistory:]
	}
	b.history[sessionID] = history
}
