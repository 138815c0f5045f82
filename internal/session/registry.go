package session

import "sync"

// Registry maps session ids to live sessions. A session id is minted
// at login, embedded in the access token, and removed at quit; each id
// corresponds to one logical connection.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put registers a session under the given id.
func (r *Registry) Put(sid string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = s
}

// Get returns the session for the id, if it is still live.
func (r *Registry) Get(sid string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	return s, ok
}

// Delete drops the session; subsequent requests with its id are
// treated as unauthenticated.
func (r *Registry) Delete(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
}
