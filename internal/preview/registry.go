package preview

import (
	"sort"
	"sync"

	"github.com/ezppt/deckview/internal/viewer"
)

// Registry tracks the viewer sessions of connected pages by session ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*viewer.Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*viewer.Session)}
}

// Add registers s under s.ID().
func (r *Registry) Add(s *viewer.Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
}

// Get looks up a session.
func (r *Registry) Get(id string) (*viewer.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes and forgets the session with the given ID.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SessionInfo is the public view of a live session.
type SessionInfo struct {
	ID      string `json:"id"`
	Project string `json:"project"`
	Phase   string `json:"phase"`
	Index   int    `json:"index"`
	Count   int    `json:"count"`
}

// List describes every live session, ordered by ID.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		st := s.State()
		out = append(out, SessionInfo{ID: id, Project: s.Project(), Phase: st.Phase.String(), Index: st.Index, Count: st.Count})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseAll closes every session, for server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*viewer.Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
