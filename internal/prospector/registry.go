package prospector

import (
	"sync"

	"github.com/coldreach/prospector/internal/engine"
)

// Factory builds an orchestrator for a session.
type Factory func(sess engine.Session) *Orchestrator

// Registry hands out one orchestrator per client session, created lazily
// on first use. Orchestrators live until Close.
type Registry struct {
	mu       sync.Mutex
	factory  Factory
	sessions map[string]*Orchestrator
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]*Orchestrator),
	}
}

// Get returns the session's orchestrator, creating it if needed.
func (r *Registry) Get(token string) *Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.sessions[token]; ok {
		return o
	}
	o := r.factory(engine.Session{Token: token})
	r.sessions[token] = o
	return o
}

// Close tears down every session's polling loop.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Orchestrator, 0, len(r.sessions))
	for _, o := range r.sessions {
		sessions = append(sessions, o)
	}
	r.sessions = make(map[string]*Orchestrator)
	r.mu.Unlock()

	for _, o := range sessions {
		o.Close()
	}
}
