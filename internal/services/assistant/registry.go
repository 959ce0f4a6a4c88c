package assistant

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

// Registry tracks live sessions by ID. Sessions idle for longer than the TTL
// are evicted and closed.
type Registry struct {
	sessions *cache.Cache
	deps     *Deps
}

func NewRegistry(deps *Deps, ttl time.Duration) *Registry {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
		}
		log.Debug().Str("session_id", id).Msg("Assistant session evicted")
	})

	return &Registry{sessions: c, deps: deps}
}

// Create starts a session under id, replacing and closing any previous one
func (r *Registry) Create(ctx context.Context, id string) *Session {
	if old, ok := r.sessions.Get(id); ok {
		old.(*Session).Close()
	}

	s := NewSession(ctx, id, r.deps)
	r.sessions.SetDefault(id, s)
	return s
}

// Get returns the session and extends its idle lifetime
func (r *Registry) Get(id string) (*Session, bool) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	r.sessions.SetDefault(id, v)
	return v.(*Session), true
}

// GetOrCreate is used when a valid token outlives the in-process session, e.g. after a restart
func (r *Registry) GetOrCreate(ctx context.Context, id string) *Session {
	if s, ok := r.Get(id); ok {
		return s
	}
	return r.Create(ctx, id)
}

func (r *Registry) Delete(id string) {
	r.sessions.Delete(id)
}

func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// Close tears down every session
func (r *Registry) Close() {
	for id := range r.sessions.Items() {
		r.sessions.Delete(id)
	}
}
