// Package session keeps the in-memory registry of work sessions.
package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
)

var (
	// ErrActive is returned when creating a session whose work id is still running.
	ErrActive = errors.New("session already running")
	// ErrNotFound is returned for an unknown work id.
	ErrNotFound = errors.New("session not found")
)

// Registry maps work ids to sessions. It is safe for concurrent use.
// Sessions live until removed; nothing is persisted.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*domain.Session), now: time.Now}
}

// Create registers a running session. A finished session with the same
// work id is replaced.
func (r *Registry) Create(workID, document, contextText string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[workID]; ok && existing.Active() {
		return domain.Session{}, ErrActive
	}

	s := &domain.Session{
		WorkID:    workID,
		Document:  document,
		Context:   contextText,
		Status:    domain.SessionRunning,
		CreatedAt: r.now().UTC(),
	}
	r.sessions[workID] = s
	return *s, nil
}

// Get returns a copy of the session.
func (r *Registry) Get(workID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[workID]
	if !ok {
		return domain.Session{}, false
	}
	return *s, true
}

// Update applies fn to the stored session under the registry lock.
func (r *Registry) Update(workID string, fn func(s *domain.Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[workID]
	if !ok {
		return ErrNotFound
	}
	fn(s)
	return nil
}

// Complete marks the session done or failed and stamps its completion time.
func (r *Registry) Complete(workID string, status domain.SessionStatus, errMsg string) error {
	completedAt := r.now().UTC()
	return r.Update(workID, func(s *domain.Session) {
		s.Status = status
		s.Error = errMsg
		s.CompletedAt = &completedAt
	})
}

// Remove deletes the session and reports whether it existed.
func (r *Registry) Remove(workID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[workID]
	delete(r.sessions, workID)
	return ok
}

// List returns summaries ordered by creation time, then work id.
func (r *Registry) List() []domain.SessionSummary {
	r.mu.RLock()
	out := make([]domain.SessionSummary, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Summary())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.SessionSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.WorkID < b.WorkID {
			return -1
		}
		if a.WorkID > b.WorkID {
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes finished sessions completed more than maxAge ago and
// returns how many it removed. Running sessions are never swept.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := r.now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.Active() || s.CompletedAt == nil || s.CompletedAt.After(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}
