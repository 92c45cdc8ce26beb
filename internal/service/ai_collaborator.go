package service

import (
	"context"
	"io"

	"github.com/lshigami/techmentor/internal/model"
)

// QuestionContext is what the question generator sees for one turn. History
// holds the most recent answered turns, oldest first.
type QuestionContext struct {
	TechStack      model.TechStack
	QuestionNumber int
	TotalQuestions int
	History        []model.Turn
}

type Transcript struct {
	TechStack model.TechStack
	Turns     []model.Turn
}

type Evaluation struct {
	Score            float64
	Feedback         string
	MissedTopics     []string
	ImprovementAreas string
}

// InterviewLLM produces questions and the final evaluation.
type InterviewLLM interface {
	GenerateQuestion(ctx context.Context, qc QuestionContext) (string, error)
	Evaluate(ctx context.Context, transcript Transcript) (*Evaluation, error)
}

// SpeechService converts between speech and text.
type SpeechService interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	// Synthesize returns MP3 bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AICollaborator is the full set of AI capabilities the interview flow uses.
type AICollaborator interface {
	InterviewLLM
	SpeechService
}

type aiCollaborator struct {
	InterviewLLM
	SpeechService
}

func NewAICollaborator(llm InterviewLLM, speech SpeechService) AICollaborator {
	return &aiCollaborator{InterviewLLM: llm, SpeechService: speech}
}
