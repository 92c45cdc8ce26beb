package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/techmentor/internal/model"
)

type memoryEntry struct {
	session   model.InterviewSession
	expiresAt time.Time
}

// MemorySessionRepository is a process-local SessionRepository. Expired
// entries are treated as absent on read and purged lazily.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (r *MemorySessionRepository) WithClock(now func() time.Time) *MemorySessionRepository {
	r.now = now
	return r
}

func (r *MemorySessionRepository) Create(_ context.Context, session *model.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(session.ID); ok {
		return fmt.Errorf("create session %s: %w", session.ID, ErrSessionConflict)
	}
	r.sessions[session.ID] = memoryEntry{session: cloneSession(*session), expiresAt: r.now().Add(r.ttl)}
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, sessionID string) (*model.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.live(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := cloneSession(entry.session)
	return &out, nil
}

func (r *MemorySessionRepository) Update(_ context.Context, session *model.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.live(session.ID)
	if !ok {
		return ErrSessionNotFound
	}
	if entry.session.Version != session.Version {
		return ErrSessionConflict
	}
	next := cloneSession(*session)
	next.Version++
	r.sessions[session.ID] = memoryEntry{session: next, expiresAt: r.now().Add(r.ttl)}
	session.Version = next.Version
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemorySessionRepository) Ping(context.Context) error {
	return nil
}

// live must be called with mu held.
func (r *MemorySessionRepository) live(sessionID string) (memoryEntry, bool) {
	entry, ok := r.sessions[sessionID]
	if !ok {
		return memoryEntry{}, false
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.sessions, sessionID)
		return memoryEntry{}, false
	}
	return entry, true
}

func cloneSession(s model.InterviewSession) model.InterviewSession {
	questions := make([]string, len(s.Questions))
	copy(questions, s.Questions)
	answers := make([]string, len(s.Answers))
	copy(answers, s.Answers)
	s.Questions = questions
	s.Answers = answers
	return s
}
