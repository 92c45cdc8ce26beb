package model

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	now := time.Now().UTC()
	s := NewInterviewSession("s1", "u1", TechStackPython, 3, now)
	if s.Status != SessionStatusCreated {
		t.Fatalf("expected created, got %s", s.Status)
	}
	if err := s.RecordAnswer("too early", now); err == nil {
		t.Fatalf("expected answer before begin to fail")
	}
	if err := s.Begin("Q1", now); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if s.QuestionIndex != 1 || len(s.Questions) != 1 || len(s.Answers) != 0 {
		t.Fatalf("unexpected state after begin: %+v", s)
	}

	for i := 1; i <= 3; i++ {
		if err := s.RecordAnswer("A"+strconv.Itoa(i), now); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if i < 3 {
			if s.IsComplete() {
				t.Fatalf("completed too early at answer %d", i)
			}
			if err := s.AskNext("Q"+strconv.Itoa(i+1), now); err != nil {
				t.Fatalf("ask %d: %v", i+1, err)
			}
		}
	}
	if !s.IsComplete() {
		t.Fatalf("expected completion after final answer")
	}
	if s.QuestionIndex != 3 || len(s.Answers) != 3 {
		t.Fatalf("unexpected final state: index=%d answers=%d", s.QuestionIndex, len(s.Answers))
	}
	if err := s.AskNext("Q4", now); err == nil {
		t.Fatalf("expected ask after completion to fail")
	}
}

func TestAskNextRejectsEmptyQuestion(t *testing.T) {
	now := time.Now()
	s := NewInterviewSession("s1", "u1", TechStackReact, 5, now)
	if err := s.Begin("  ", now); err == nil {
		t.Fatalf("expected empty opening question to fail")
	}
	_ = s.Begin("Q1", now)
	_ = s.RecordAnswer("A1", now)
	if err := s.AskNext("", now); err == nil {
		t.Fatalf("expected empty question to fail")
	}
	if s.QuestionIndex != 1 {
		t.Fatalf("question index advanced on failure: %d", s.QuestionIndex)
	}
}

func TestRecentTurnsDropsOldest(t *testing.T) {
	now := time.Now()
	s := NewInterviewSession("s1", "u1", TechStackNode, 20, now)
	_ = s.Begin("Q1", now)
	for i := 1; i <= 12; i++ {
		_ = s.RecordAnswer("A"+strconv.Itoa(i), now)
		_ = s.AskNext("Q"+strconv.Itoa(i+1), now)
	}
	turns := s.RecentTurns(10)
	if len(turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(turns))
	}
	if turns[0].Question != "Q3" || turns[9].Answer != "A12" {
		t.Fatalf("unexpected window: first=%+v last=%+v", turns[0], turns[9])
	}
}

func TestDeriveCorrectAnswers(t *testing.T) {
	cases := []struct {
		score float64
		total int
		want  int
	}{
		{7.5, 5, 4},
		{10, 8, 8},
		{0, 5, 0},
		{12, 5, 5},
		{-1, 5, 0},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := DeriveCorrectAnswers(c.score, c.total); got != c.want {
			t.Fatalf("DeriveCorrectAnswers(%v, %d) = %d, want %d", c.score, c.total, got, c.want)
		}
	}
}

func TestParseTechStack(t *testing.T) {
	if s, ok := ParseTechStack(" python "); !ok || s != TechStackPython {
		t.Fatalf("expected Python, got %q %v", s, ok)
	}
	if _, ok := ParseTechStack("Rust"); ok {
		t.Fatalf("expected Rust to be rejected")
	}
	if len(TechStacks()) != 5 {
		t.Fatalf("expected 5 stacks")
	}
}

func TestEvaluationClaimLease(t *testing.T) {
	now := time.Now()
	s := NewInterviewSession("s1", "u1", TechStackPython, 5, now)
	if s.Evaluating(now, time.Minute) {
		t.Fatalf("fresh session should not be evaluating")
	}
	if err := s.ClaimEvaluation(now, time.Minute); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := s.ClaimEvaluation(now.Add(30*time.Second), time.Minute); !errors.Is(err, ErrEvaluationInProgress) {
		t.Fatalf("expected ErrEvaluationInProgress, got %v", err)
	}
	if err := s.ClaimEvaluation(now.Add(time.Minute), time.Minute); err != nil {
		t.Fatalf("expired claim should be taken over: %v", err)
	}
	s.ReleaseEvaluation()
	if s.Evaluating(now.Add(time.Minute), time.Minute) {
		t.Fatalf("released claim still held")
	}
}
