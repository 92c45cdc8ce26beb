package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/techmentor/config"
	"github.com/lshigami/techmentor/internal/model"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

const (
	defaultFeedback         = "Interview completed."
	defaultImprovementAreas = "Continue practicing."
)

type geminiLLMService struct {
	questionModel *genai.GenerativeModel
	evalModel     *genai.GenerativeModel
	timeout       time.Duration
}

// NewGeminiLLMService builds the Gemini-backed InterviewLLM. Without an API
// key the service still starts, and every call fails with ErrCollaborator.
func NewGeminiLLMService(lc fx.Lifecycle, cfg *config.Config) (InterviewLLM, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Question generation and evaluation will be unavailable.")
		return &geminiLLMService{timeout: cfg.AITimeout}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	questionModel := client.GenerativeModel(cfg.GeminiModel)
	questionModel.SetTemperature(0.7)
	questionModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(interviewerInstruction)},
	}

	evalModel := client.GenerativeModel(cfg.GeminiModel)
	evalModel.SetTemperature(0.2)
	evalModel.ResponseMIMEType = "application/json"
	evalModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(evaluatorInstruction)},
	}

	return &geminiLLMService{questionModel: questionModel, evalModel: evalModel, timeout: cfg.AITimeout}, nil
}

const interviewerInstruction = `You are an expert technical interviewer running a mock interview.
Ask exactly one clear, specific, open-ended question per turn. Questions range from basic to advanced,
avoid yes/no questions and focus on practical knowledge and problem-solving.
Return ONLY the question text, without numbering, quotes or commentary.`

const evaluatorInstruction = `You are an expert technical interviewer evaluating a finished mock interview.
Judge technical accuracy, depth of understanding, practical knowledge, problem-solving approach and communication clarity.
Respond with valid JSON only.`

func (s *geminiLLMService) GenerateQuestion(ctx context.Context, qc QuestionContext) (string, error) {
	if s.questionModel == nil {
		return "", fmt.Errorf("%w: gemini client not initialized", ErrCollaborator)
	}
	raw, err := s.generate(ctx, s.questionModel, buildQuestionPrompt(qc))
	if err != nil {
		log.Error().Err(err).Str("techStack", string(qc.TechStack)).Int("questionNumber", qc.QuestionNumber).Msg("Gemini API error during question generation")
		return "", err
	}
	question := sanitizeQuestion(raw)
	if question == "" {
		log.Warn().Str("rawResponse", raw).Msg("Gemini returned an unusable question")
		return "", fmt.Errorf("%w: empty question in model response", ErrCollaborator)
	}
	return question, nil
}

func (s *geminiLLMService) Evaluate(ctx context.Context, transcript Transcript) (*Evaluation, error) {
	if s.evalModel == nil {
		return nil, fmt.Errorf("%w: gemini client not initialized", ErrCollaborator)
	}
	raw, err := s.generate(ctx, s.evalModel, buildEvaluationPrompt(transcript))
	if err != nil {
		log.Error().Err(err).Str("techStack", string(transcript.TechStack)).Msg("Gemini API error during evaluation")
		return nil, err
	}
	evaluation, err := parseEvaluation(raw)
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", raw).Msg("Failed to parse evaluation from Gemini response")
		return nil, err
	}
	return evaluation, nil
}

func (s *geminiLLMService) generate(ctx context.Context, m *genai.GenerativeModel, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini request failed: %v", ErrCollaborator, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini returned no content", ErrCollaborator)
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: gemini returned no text content", ErrCollaborator)
	}
	return text.String(), nil
}

func buildQuestionPrompt(qc QuestionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are conducting a %s technical interview.\n\n", qc.TechStack)
	if len(qc.History) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, turn := range qc.History {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", turn.Question, turn.Answer)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Generate question %d of %d. It should build on the previous answers and test a different aspect of %s.\n",
			qc.QuestionNumber, qc.TotalQuestions, qc.TechStack)
	} else {
		fmt.Fprintf(&b, "Generate the opening question (question 1 of %d) for a %s interview.\n", qc.TotalQuestions, qc.TechStack)
	}
	b.WriteString("Return ONLY the question text, nothing else.")
	return b.String()
}

func buildEvaluationPrompt(t Transcript) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate this %s mock interview.\n\nInterview Transcript:\n", t.TechStack)
	for i, turn := range t.Turns {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, turn.Question, i+1, turn.Answer)
	}
	b.WriteString(`Provide the evaluation in the following JSON format:
{
    "score": <number between 0 and 10>,
    "feedback": "<detailed feedback paragraph>",
    "missed_topics": ["topic1", "topic2"],
    "improvement_areas": "<specific areas to improve>"
}`)
	return b.String()
}

var questionPrefix = regexp.MustCompile(`(?i)^(\*\*)?(question|q)\s*\d*\s*[:.)-]\s*(\*\*)?\s*`)

// sanitizeQuestion strips decoration models like to add around a question.
func sanitizeQuestion(raw string) string {
	q := strings.TrimSpace(raw)
	q = questionPrefix.ReplaceAllString(q, "")
	q = strings.Trim(q, "\"'`* \n\r\t")
	return strings.TrimSpace(q)
}

// cleanJSONResponse removes markdown code fences around a JSON payload.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type evaluationPayload struct {
	Score            *float64 `json:"score"`
	Feedback         string   `json:"feedback"`
	MissedTopics     []string `json:"missed_topics"`
	ImprovementAreas string   `json:"improvement_areas"`
}

// parseEvaluation decodes the evaluator output. Missing fields get defaults
// and the score is clamped to [0, 10]; anything that is not a JSON object is
// a collaborator failure.
func parseEvaluation(raw string) (*Evaluation, error) {
	body := cleanJSONResponse(raw)
	if !strings.HasPrefix(body, "{") {
		return nil, fmt.Errorf("%w: evaluation is not a JSON object", ErrCollaborator)
	}
	var payload evaluationPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("%w: evaluation is not valid JSON: %v", ErrCollaborator, err)
	}
	evaluation := &Evaluation{
		Score:            model.MaxScore / 2,
		Feedback:         strings.TrimSpace(payload.Feedback),
		MissedTopics:     []string{},
		ImprovementAreas: strings.TrimSpace(payload.ImprovementAreas),
	}
	if payload.Score != nil {
		evaluation.Score = model.ClampScore(*payload.Score)
	}
	if evaluation.Feedback == "" {
		evaluation.Feedback = defaultFeedback
	}
	if evaluation.ImprovementAreas == "" {
		evaluation.ImprovementAreas = defaultImprovementAreas
	}
	for _, topic := range payload.MissedTopics {
		if topic = strings.TrimSpace(topic); topic != "" {
			evaluation.MissedTopics = append(evaluation.MissedTopics, topic)
		}
	}
	return evaluation, nil
}
