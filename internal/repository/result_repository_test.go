package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lshigami/techmentor/internal/model"
	"gorm.io/datatypes"
)

func outcome(userID, sessionID string, stack model.TechStack, score float64, at time.Time) (*model.UserResult, *model.UserSuggestion) {
	return &model.UserResult{
			UserID:         userID,
			SessionID:      sessionID,
			TechStack:      stack,
			Score:          score,
			Feedback:       "feedback for " + sessionID,
			TotalQuestions: 5,
			CreatedAt:      at,
		}, &model.UserSuggestion{
			UserID:           userID,
			SessionID:        sessionID,
			TechStack:        stack,
			MissedTopics:     datatypes.NewJSONSlice([]string{"closures", "hooks"}),
			ImprovementAreas: "practice " + sessionID,
			CreatedAt:        at,
		}
}

func TestResultRepositoryOrderingAndLookups(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	results := NewResultRepository(db)
	suggestions := NewSuggestionRepository(db)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	seed := []struct {
		user    string
		session string
		stack   model.TechStack
		at      time.Time
	}{
		{"u1", "s1", model.TechStackPython, base},
		{"u1", "s2", model.TechStackReact, base.Add(time.Minute)},
		{"u1", "s3", model.TechStackPython, base.Add(2 * time.Minute)},
		{"u2", "s4", model.TechStackPython, base.Add(3 * time.Minute)},
	}
	for _, s := range seed {
		r, sg := outcome(s.user, s.session, s.stack, 7, s.at)
		if err := results.SaveOutcome(ctx, r, sg); err != nil {
			t.Fatalf("save outcome %s: %v", s.session, err)
		}
	}

	list, err := results.ListByUser(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(list) != 3 || list[0].SessionID != "s3" || list[2].SessionID != "s1" {
		t.Fatalf("unexpected ordering: %+v", list)
	}

	limited, err := results.ListByUser(ctx, "u1", 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("expected 2 limited results, got %d (%v)", len(limited), err)
	}

	latest, err := results.GetLatest(ctx, "u1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != list[0].ID {
		t.Fatalf("latest %d does not match first listed %d", latest.ID, list[0].ID)
	}

	bySession, err := results.GetBySession(ctx, "s2")
	if err != nil {
		t.Fatalf("by session: %v", err)
	}
	if bySession.TechStack != model.TechStackReact || bySession.CorrectAnswers() != 4 {
		t.Fatalf("unexpected result: %+v correct=%d", bySession, bySession.CorrectAnswers())
	}

	pyOnly, err := results.ListByUserAndTechStack(ctx, "u1", model.TechStackPython, 10)
	if err != nil {
		t.Fatalf("by stack: %v", err)
	}
	if len(pyOnly) != 2 || pyOnly[0].SessionID != "s3" {
		t.Fatalf("unexpected stack filter: %+v", pyOnly)
	}

	if _, err := results.GetBySession(ctx, "missing"); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
	if _, err := results.GetLatest(ctx, "nobody"); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}

	sg, err := suggestions.GetLatest(ctx, "u1")
	if err != nil {
		t.Fatalf("latest suggestion: %v", err)
	}
	if sg.SessionID != "s3" || len(sg.MissedTopics) != 2 || sg.MissedTopics[0] != "closures" {
		t.Fatalf("unexpected suggestion: %+v", sg)
	}
	sgList, err := suggestions.ListByUserAndTechStack(ctx, "u1", model.TechStackReact, 10)
	if err != nil || len(sgList) != 1 {
		t.Fatalf("expected 1 react suggestion, got %d (%v)", len(sgList), err)
	}
	if _, err := suggestions.GetLatest(ctx, "nobody"); !errors.Is(err, ErrSuggestionNotFound) {
		t.Fatalf("expected ErrSuggestionNotFound, got %v", err)
	}
}

func TestSaveOutcomeIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	results := NewResultRepository(db)
	suggestions := NewSuggestionRepository(db)

	r, sg := outcome("u1", "dup", model.TechStackNode, 5, time.Now().UTC())
	if err := results.SaveOutcome(ctx, r, sg); err != nil {
		t.Fatalf("first save: %v", err)
	}

	r2, sg2 := outcome("u1", "dup", model.TechStackNode, 9, time.Now().UTC())
	if err := results.SaveOutcome(ctx, r2, sg2); err == nil {
		t.Fatalf("expected duplicate session result to fail")
	}

	all, err := suggestions.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list suggestions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected rollback to leave 1 suggestion, got %d", len(all))
	}
}
