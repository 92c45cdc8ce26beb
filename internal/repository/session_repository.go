package repository

import (
	"context"
	"errors"

	"github.com/lshigami/techmentor/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionConflict = errors.New("session was modified concurrently")
)

// SessionRepository keeps in-flight interviews in a TTL-bound cache. Every
// successful write refreshes the TTL, measured from last activity.
type SessionRepository interface {
	Create(ctx context.Context, session *model.InterviewSession) error
	Get(ctx context.Context, sessionID string) (*model.InterviewSession, error)
	// Update writes session only if the stored version still equals
	// session.Version; on success session.Version is incremented.
	Update(ctx context.Context, session *model.InterviewSession) error
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
