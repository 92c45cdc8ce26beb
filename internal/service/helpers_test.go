package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/techmentor/config"
	"github.com/lshigami/techmentor/database"
	"github.com/lshigami/techmentor/internal/repository"
	"gorm.io/gorm"
)

type fakeLLM struct {
	mu          sync.Mutex
	questions   []string
	questionErr error
	evaluation  *Evaluation
	evalErr     error
	contexts    []QuestionContext
	evalCalls   int
	// gate, when set, is called inside GenerateQuestion before answering.
	gate func()
	// evalGate is the same hook for Evaluate.
	evalGate func()
}

func (f *fakeLLM) GenerateQuestion(_ context.Context, qc QuestionContext) (string, error) {
	if f.gate != nil {
		f.gate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contexts = append(f.contexts, qc)
	if f.questionErr != nil {
		return "", f.questionErr
	}
	if len(f.questions) > 0 {
		q := f.questions[0]
		f.questions = f.questions[1:]
		return q, nil
	}
	return fmt.Sprintf("%s question %d", qc.TechStack, qc.QuestionNumber), nil
}

func (f *fakeLLM) Evaluate(_ context.Context, t Transcript) (*Evaluation, error) {
	if f.evalGate != nil {
		f.evalGate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCalls++
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	if f.evaluation != nil {
		return f.evaluation, nil
	}
	return &Evaluation{
		Score:            7.5,
		Feedback:         fmt.Sprintf("Solid %s fundamentals across %d answers.", t.TechStack, len(t.Turns)),
		MissedTopics:     []string{"decorators", "asyncio"},
		ImprovementAreas: "Practice concurrency questions.",
	}, nil
}

func (f *fakeLLM) evaluations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evalCalls
}

func (f *fakeLLM) lastContext() QuestionContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contexts[len(f.contexts)-1]
}

type fakeSpeech struct {
	transcript  string
	transErr    error
	synthErr    error
	synthesized []string
}

func (f *fakeSpeech) Transcribe(_ context.Context, audio io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(audio); err != nil {
		return "", err
	}
	return f.transcript, f.transErr
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	f.synthesized = append(f.synthesized, text)
	return []byte("ID3\x03\x00\x00\x00\x00\x00\x00synthesized"), nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock { return &testClock{t: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)} }

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		Interview: config.Interview{SessionStore: "memory", SessionTTL: 30 * time.Minute, MaxQuestions: 5},
		Audio: config.Audio{
			RecordingsDir:    "audio/recordings",
			ResponsesDir:     "audio/responses",
			MaxFileSizeMB:    1,
			SupportedFormats: []string{".mp3", ".wav", ".webm", ".m4a", ".ogg"},
		},
		AITimeout: 5 * time.Second,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type harness struct {
	svc         *interviewService
	sessions    *repository.MemorySessionRepository
	results     repository.ResultRepository
	suggestions repository.SuggestionRepository
	llm         *fakeLLM
	clock       *testClock
}

func newHarness(t *testing.T, maxQuestions int) *harness {
	t.Helper()
	cfg := testConfig()
	cfg.Interview.MaxQuestions = maxQuestions
	clock := newTestClock()
	db := newTestDB(t)

	h := &harness{
		sessions:    repository.NewMemorySessionRepository(cfg.Interview.SessionTTL).WithClock(clock.now),
		results:     repository.NewResultRepository(db),
		suggestions: repository.NewSuggestionRepository(db),
		llm:         &fakeLLM{},
		clock:       clock,
	}
	h.svc = NewInterviewService(h.sessions, h.results, h.suggestions, h.llm, cfg).(*interviewService)
	h.svc.now = clock.now
	return h
}
