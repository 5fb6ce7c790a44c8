package app

import (
	"sort"
	"sync"

	"skillstream/internal/stream/render"
)

// SessionRegistry owns one stream renderer per session. Renderers are
// stateful (tool-call dedup, sub-agent routing), so all events of a session
// must flow through the same renderer instance. Sessions live until Remove
// is called for them.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	renderer *render.Renderer
}

// NewSessionRegistry builds an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*session)}
}

// Ingest normalizes one raw runtime event for a session and returns the
// resulting frames. Events of one session are processed serially.
func (r *SessionRegistry) Ingest(sessionID string, raw map[string]any) []Frame {
	s := r.get(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	outputs := s.renderer.Process(raw)
	frames := make([]Frame, 0, len(outputs))
	for _, out := range outputs {
		frames = append(frames, Frame{Event: out.Kind, Data: out.Content})
	}
	return frames
}

// Reset drops all parser and display state for a session.
func (r *SessionRegistry) Reset(sessionID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.renderer.Reset()
	s.mu.Unlock()
}

// Remove evicts a session and its renderer. Later events for the same id
// start a fresh session.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// ActiveSessions returns the IDs of sessions with a live renderer.
func (r *SessionRegistry) ActiveSessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// SessionInfo describes one live session.
type SessionInfo struct {
	ID              string `json:"id"`
	ProcessedCycles int    `json:"processed_cycles"`
}

// Describe returns the live sessions with their parser bookkeeping, sorted
// by id.
func (r *SessionRegistry) Describe() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		s.mu.Lock()
		cycles := s.renderer.ProcessedCycles()
		s.mu.Unlock()
		infos = append(infos, SessionInfo{ID: id, ProcessedCycles: cycles})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (r *SessionRegistry) get(sessionID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		return s
	}
	s := &session{renderer: render.New(render.NewSSEHandler())}
	r.sessions[sessionID] = s
	return s
}
