package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type SessionStatus string

const (
	SessionStatusCreated    SessionStatus = "created"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// InterviewSession is the transient, cache-resident state of one interview.
// Questions[i] is answered by Answers[i]; while the session is in progress the
// last question is still waiting for its answer.
type InterviewSession struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	TechStack      TechStack     `json:"tech_stack"`
	Status         SessionStatus `json:"status"`
	QuestionIndex  int           `json:"question_index"`
	MaxQuestions   int           `json:"max_questions"`
	Questions      []string      `json:"questions"`
	Answers        []string      `json:"answers"`
	Version        int64         `json:"version"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActivityAt time.Time     `json:"last_activity_at"`
	// EvaluatingSince is set while an EndInterview call owns the session.
	EvaluatingSince time.Time `json:"evaluating_since,omitempty"`
}

var ErrEvaluationInProgress = errors.New("evaluation already in progress")

// Turn is one question/answer exchange.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func NewInterviewSession(id, userID string, stack TechStack, maxQuestions int, now time.Time) *InterviewSession {
	return &InterviewSession{
		ID:             id,
		UserID:         userID,
		TechStack:      stack,
		Status:         SessionStatusCreated,
		MaxQuestions:   maxQuestions,
		Questions:      []string{},
		Answers:        []string{},
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Begin records the opening question and moves the session to in progress.
func (s *InterviewSession) Begin(question string, now time.Time) error {
	if s.Status != SessionStatusCreated {
		return fmt.Errorf("cannot begin session in status %s", s.Status)
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("opening question is empty")
	}
	s.Questions = append(s.Questions, question)
	s.QuestionIndex = 1
	s.Status = SessionStatusInProgress
	s.LastActivityAt = now
	return nil
}

// IsFinalQuestion reports whether the pending question is the last one.
func (s *InterviewSession) IsFinalQuestion() bool {
	return s.QuestionIndex >= s.MaxQuestions
}

// RecordAnswer answers the pending question. Answering the final question
// completes the session.
func (s *InterviewSession) RecordAnswer(answer string, now time.Time) error {
	if s.Status != SessionStatusInProgress {
		return fmt.Errorf("cannot answer in status %s", s.Status)
	}
	if len(s.Answers) != len(s.Questions)-1 {
		return fmt.Errorf("no pending question: %d questions, %d answers", len(s.Questions), len(s.Answers))
	}
	s.Answers = append(s.Answers, answer)
	s.LastActivityAt = now
	if s.IsFinalQuestion() {
		s.Status = SessionStatusCompleted
	}
	return nil
}

// AskNext appends the next question after the pending one was answered.
func (s *InterviewSession) AskNext(question string, now time.Time) error {
	if s.Status != SessionStatusInProgress {
		return fmt.Errorf("cannot ask in status %s", s.Status)
	}
	if len(s.Answers) != len(s.Questions) {
		return fmt.Errorf("previous question is unanswered")
	}
	if s.QuestionIndex >= s.MaxQuestions {
		return fmt.Errorf("question limit %d reached", s.MaxQuestions)
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("next question is empty")
	}
	s.Questions = append(s.Questions, question)
	s.QuestionIndex++
	s.LastActivityAt = now
	return nil
}

// AnsweredTurns returns the question/answer pairs that have an answer.
func (s *InterviewSession) AnsweredTurns() []Turn {
	turns := make([]Turn, 0, len(s.Answers))
	for i, a := range s.Answers {
		if i >= len(s.Questions) {
			break
		}
		turns = append(turns, Turn{Question: s.Questions[i], Answer: a})
	}
	return turns
}

// RecentTurns returns at most limit answered turns, oldest dropped first.
func (s *InterviewSession) RecentTurns(limit int) []Turn {
	turns := s.AnsweredTurns()
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}

// Evaluating reports whether an evaluation claim younger than lease is held.
func (s *InterviewSession) Evaluating(now time.Time, lease time.Duration) bool {
	return !s.EvaluatingSince.IsZero() && now.Sub(s.EvaluatingSince) < lease
}

// ClaimEvaluation marks the session as being evaluated. A claim older than
// lease is treated as abandoned and taken over.
func (s *InterviewSession) ClaimEvaluation(now time.Time, lease time.Duration) error {
	if s.Evaluating(now, lease) {
		return ErrEvaluationInProgress
	}
	s.EvaluatingSince = now
	return nil
}

func (s *InterviewSession) ReleaseEvaluation() {
	s.EvaluatingSince = time.Time{}
}

func (s *InterviewSession) IsComplete() bool {
	return s.Status == SessionStatusCompleted
}
