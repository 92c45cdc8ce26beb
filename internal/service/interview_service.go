package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/techmentor/config"
	"github.com/lshigami/techmentor/internal/dto"
	"github.com/lshigami/techmentor/internal/model"
	"github.com/lshigami/techmentor/internal/repository"
	"github.com/rs/zerolog/log"
)

// contextWindow bounds how many answered turns are sent with each question
// request.
const contextWindow = 10

// defaultEvaluationLease is used when no AI timeout is configured.
const defaultEvaluationLease = 2 * time.Minute

const closingMessage = "Thank you for completing the interview! Let me evaluate your responses..."

type InterviewService interface {
	StartInterview(ctx context.Context, req dto.StartInterviewRequest) (*dto.StartInterviewResponse, error)
	SubmitAnswer(ctx context.Context, req dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	EndInterview(ctx context.Context, sessionID string) (*dto.EndInterviewResponse, error)
	GetStatus(ctx context.Context, sessionID string) (*dto.InterviewStatusResponse, error)
	Health(ctx context.Context) error
}

type interviewService struct {
	sessions     repository.SessionRepository
	results      repository.ResultRepository
	suggestions  repository.SuggestionRepository
	llm          InterviewLLM
	maxQuestions int
	// evaluationLease bounds how long an EndInterview claim blocks others.
	evaluationLease time.Duration
	now             func() time.Time
	newID           func() string
}

func NewInterviewService(
	sessions repository.SessionRepository,
	results repository.ResultRepository,
	suggestions repository.SuggestionRepository,
	llm InterviewLLM,
	cfg *config.Config,
) InterviewService {
	lease := 2 * cfg.AITimeout
	if lease <= 0 {
		lease = defaultEvaluationLease
	}
	return &interviewService{
		sessions:        sessions,
		results:         results,
		suggestions:     suggestions,
		llm:             llm,
		maxQuestions:    cfg.Interview.MaxQuestions,
		evaluationLease: lease,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
}

func (s *interviewService) StartInterview(ctx context.Context, req dto.StartInterviewRequest) (*dto.StartInterviewResponse, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, validationError("user_id is required")
	}
	stack, ok := model.ParseTechStack(req.TechStack)
	if !ok {
		return nil, unsupportedStackError(req.TechStack)
	}

	question, err := s.llm.GenerateQuestion(ctx, QuestionContext{
		TechStack:      stack,
		QuestionNumber: 1,
		TotalQuestions: s.maxQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("generate opening question: %w", asCollaboratorError(err))
	}

	now := s.now()
	session := model.NewInterviewSession(s.newID(), userID, stack, s.maxQuestions, now)
	if err := session.Begin(question, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("StartInterview: failed to store session")
		return nil, translateStoreError("store session", err)
	}

	log.Info().Str("sessionID", session.ID).Str("userID", userID).Str("techStack", string(stack)).Msg("Interview started")
	return &dto.StartInterviewResponse{
		SessionID: session.ID,
		Message:   welcomeMessage(stack, session.MaxQuestions, question),
		TechStack: string(stack),
		Question:  question,
	}, nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, req dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	answer := strings.TrimSpace(req.UserMessage)
	if answer == "" {
		return nil, validationError("user_message must not be empty")
	}
	session, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, translateStoreError("load session", err)
	}
	if session.IsComplete() {
		return nil, ErrInterviewCompleted
	}

	now := s.now()
	if session.Evaluating(now, s.evaluationLease) {
		return nil, ErrEvaluationInProgress
	}
	if err := session.RecordAnswer(answer, now); err != nil {
		return nil, validationError("%v", err)
	}

	if session.IsComplete() {
		if err := s.sessions.Update(ctx, session); err != nil {
			return nil, translateStoreError("save final answer", err)
		}
		log.Info().Str("sessionID", session.ID).Int("questions", session.QuestionIndex).Msg("Interview complete, awaiting evaluation")
		return &dto.SendMessageResponse{
			AIMessage:      closingMessage,
			IsComplete:     true,
			QuestionNumber: intPtr(session.QuestionIndex),
			TotalQuestions: intPtr(session.MaxQuestions),
		}, nil
	}

	nextNumber := session.QuestionIndex + 1
	question, err := s.llm.GenerateQuestion(ctx, QuestionContext{
		TechStack:      session.TechStack,
		QuestionNumber: nextNumber,
		TotalQuestions: session.MaxQuestions,
		History:        session.RecentTurns(contextWindow),
	})
	if err != nil {
		log.Error().Err(err).Str("sessionID", session.ID).Int("questionNumber", nextNumber).Msg("SubmitAnswer: question generation failed, turn discarded")
		return nil, fmt.Errorf("generate question %d: %w", nextNumber, asCollaboratorError(err))
	}
	if err := session.AskNext(question, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, translateStoreError("save turn", err)
	}

	return &dto.SendMessageResponse{
		AIMessage:      questionMessage(session.QuestionIndex, question),
		IsComplete:     false,
		QuestionNumber: intPtr(session.QuestionIndex),
		TotalQuestions: intPtr(session.MaxQuestions),
		Question:       question,
	}, nil
}

// EndInterview evaluates the transcript, persists the outcome and drops the
// session. A session whose outcome was already stored is only cleaned up.
func (s *interviewService) EndInterview(ctx context.Context, sessionID string) (*dto.EndInterviewResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, translateStoreError("load session", err)
	}

	if existing, err := s.results.GetBySession(ctx, sessionID); err == nil {
		log.Warn().Str("sessionID", sessionID).Msg("EndInterview: outcome already stored, removing leftover session")
		s.dropSession(ctx, sessionID)
		return s.storedOutcome(ctx, existing), nil
	} else if !errors.Is(err, repository.ErrResultNotFound) {
		return nil, translateStoreError("check existing result", err)
	}

	turns := session.AnsweredTurns()
	if len(turns) == 0 {
		return nil, validationError("no answers found in this session")
	}

	// Claim the session so concurrent ends and late answers are turned away
	// while the transcript is evaluated.
	if err := session.ClaimEvaluation(s.now(), s.evaluationLease); err != nil {
		return nil, ErrEvaluationInProgress
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, translateStoreError("claim session", err)
	}

	evaluation, err := s.llm.Evaluate(ctx, Transcript{TechStack: session.TechStack, Turns: turns})
	if err != nil {
		log.Error().Err(err).Str("sessionID", sessionID).Msg("EndInterview: evaluation failed")
		s.releaseSession(ctx, session)
		return nil, fmt.Errorf("evaluate interview: %w", asCollaboratorError(err))
	}

	result := &model.UserResult{
		UserID:         session.UserID,
		SessionID:      session.ID,
		TechStack:      session.TechStack,
		Score:          model.ClampScore(evaluation.Score),
		Feedback:       evaluation.Feedback,
		TotalQuestions: len(turns),
	}
	suggestion := &model.UserSuggestion{
		UserID:           session.UserID,
		SessionID:        session.ID,
		TechStack:        session.TechStack,
		MissedTopics:     evaluation.MissedTopics,
		ImprovementAreas: evaluation.ImprovementAreas,
	}
	if err := s.results.SaveOutcome(ctx, result, suggestion); err != nil {
		if existing, lookupErr := s.results.GetBySession(ctx, sessionID); lookupErr == nil {
			log.Warn().Err(err).Str("sessionID", sessionID).Msg("EndInterview: outcome stored by another request")
			s.dropSession(ctx, sessionID)
			return s.storedOutcome(ctx, existing), nil
		}
		log.Error().Err(err).Str("sessionID", sessionID).Msg("EndInterview: failed to save outcome")
		s.releaseSession(ctx, session)
		return nil, translateStoreError("save outcome", err)
	}
	s.dropSession(ctx, sessionID)

	log.Info().Str("sessionID", sessionID).Str("userID", session.UserID).Float64("score", result.Score).Msg("Interview evaluated")
	return &dto.EndInterviewResponse{
		SessionID:        session.ID,
		Score:            result.Score,
		Feedback:         result.Feedback,
		MissedTopics:     nonNil(evaluation.MissedTopics),
		ImprovementAreas: evaluation.ImprovementAreas,
		TotalQuestions:   result.TotalQuestions,
		CreatedAt:        result.CreatedAt,
	}, nil
}

func (s *interviewService) GetStatus(ctx context.Context, sessionID string) (*dto.InterviewStatusResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, translateStoreError("load session", err)
	}
	return &dto.InterviewStatusResponse{
		SessionID:       session.ID,
		TechStack:       string(session.TechStack),
		Status:          string(session.Status),
		CurrentQuestion: len(session.Answers),
		TotalQuestions:  session.MaxQuestions,
		IsComplete:      session.IsComplete(),
		Questions:       nonNil(session.Questions),
		Answers:         nonNil(session.Answers),
	}, nil
}

func (s *interviewService) Health(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

// dropSession is best effort: the outcome is already durable and an orphaned
// session either expires or is cleaned up by the next EndInterview call.
func (s *interviewService) dropSession(ctx context.Context, sessionID string) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("sessionID", sessionID).Msg("Failed to delete finished session")
	}
}

// releaseSession drops the evaluation claim so the candidate can keep
// answering or retry the end. Failure only delays that until the lease runs out.
func (s *interviewService) releaseSession(ctx context.Context, session *model.InterviewSession) {
	session.ReleaseEvaluation()
	if err := s.sessions.Update(ctx, session); err != nil {
		log.Warn().Err(err).Str("sessionID", session.ID).Msg("Failed to release evaluation claim")
	}
}

func (s *interviewService) storedOutcome(ctx context.Context, result *model.UserResult) *dto.EndInterviewResponse {
	resp := &dto.EndInterviewResponse{
		SessionID:      result.SessionID,
		Score:          result.Score,
		Feedback:       result.Feedback,
		MissedTopics:   []string{},
		TotalQuestions: result.TotalQuestions,
		CreatedAt:      result.CreatedAt,
	}
	if suggestion, err := s.suggestions.GetBySession(ctx, result.SessionID); err == nil {
		resp.MissedTopics = nonNil(suggestion.MissedTopics)
		resp.ImprovementAreas = suggestion.ImprovementAreas
	} else {
		log.Warn().Err(err).Str("sessionID", result.SessionID).Msg("No suggestion stored alongside result")
	}
	return resp
}

func welcomeMessage(stack model.TechStack, total int, question string) string {
	return fmt.Sprintf(`Welcome to your %s mock interview!

I'll be asking you %d questions to assess your knowledge and skills.

Let's begin:

**Question 1:** %s

Please type your answer below.`, stack, total, question)
}

func questionMessage(number int, question string) string {
	return fmt.Sprintf("**Question %d:** %s\n\nPlease type your answer below.", number, question)
}

func asCollaboratorError(err error) error {
	if errors.Is(err, ErrCollaborator) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCollaborator, err)
}

func intPtr(v int) *int { return &v }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
