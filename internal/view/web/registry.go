package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/google/uuid"
)

// Factory builds a fresh session for a newly mounted page
type Factory func() *session.Session

type entry struct {
	sess     *session.Session
	lastSeen time.Time
	streams  int
}

// Registry owns one session per mounted page, keyed by a random id.
type Registry struct {
	factory Factory
	now     func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*entry),
	}
}

func (r *Registry) Create() (uuid.UUID, *session.Session) {
	id := uuid.New()
	sess := r.factory()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &entry{sess: sess, lastSeen: r.now()}

	slog.Debug("Session mounted", "session", id)
	return id, sess
}

func (r *Registry) Get(id uuid.UUID) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.sess, true
}

// Attach marks a long-lived stream on the session so Sweep leaves it alone.
// The returned func detaches it.
func (r *Registry) Attach(id uuid.UUID) (*session.Session, func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, nil, false
	}
	e.streams++
	e.lastSeen = r.now()

	return e.sess, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		e.streams--
		e.lastSeen = r.now()
	}, true
}

// Close tears the session down and forgets it
func (r *Registry) Close(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	e.sess.Close()
	slog.Debug("Session unmounted", "session", id)
	return true
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[uuid.UUID]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.sess.Close()
	}
	if len(all) > 0 {
		slog.Info("Closed all sessions", "count", len(all))
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions without an open stream that were not touched for idle
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*entry
	for id, e := range r.sessions {
		if e.streams == 0 && e.lastSeen.Before(cutoff) {
			stale = append(stale, e)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.sess.Close()
	}
	return len(stale)
}

// RunSweeper sweeps every interval until ctx is done
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				slog.Info("Swept idle sessions", "count", n)
			}
		}
	}
}
