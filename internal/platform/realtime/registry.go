// Package realtime provides the presence-aware messaging layer: one live
// session per username, a JSON frame protocol over WebSocket, and
// contact-gated chat delivery.
package realtime

import "sync"

// Registry tracks the single live session per username. All operations are
// thread-safe via sync.RWMutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register binds username to s, displacing any previous session for the
// same name. The displaced session is returned so the caller can close it;
// last writer wins.
func (r *Registry) Register(username string, s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.sessions[username]
	r.sessions[username] = s
	if prev == s {
		return nil
	}
	return prev
}

// Unregister removes username's entry only if it still points at s. A stale
// session closing after being displaced must not evict its replacement.
func (r *Registry) Unregister(username string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[username] == s {
		delete(r.sessions, username)
	}
}

// Lookup returns the live session for username, or nil.
func (r *Registry) Lookup(username string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[username]
}

// Count returns the number of connected users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Usernames returns the usernames of all connected users, unordered.
func (r *Registry) Usernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	return names
}
