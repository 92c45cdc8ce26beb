package service

import (
	"context"

	"github.com/jinzhu/copier"
	"github.com/lshigami/techmentor/internal/dto"
	"github.com/lshigami/techmentor/internal/model"
	"github.com/lshigami/techmentor/internal/repository"
	"github.com/rs/zerolog/log"
)

type SuggestionService interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]dto.SuggestionResponse, error)
	GetLatest(ctx context.Context, userID string) (*dto.SuggestionResponse, error)
	ListByUserAndTechStack(ctx context.Context, userID, techStack string, limit int) ([]dto.SuggestionResponse, error)
}

type suggestionService struct {
	suggestions repository.SuggestionRepository
}

func NewSuggestionService(suggestions repository.SuggestionRepository) SuggestionService {
	return &suggestionService{suggestions: suggestions}
}

func (s *suggestionService) ListByUser(ctx context.Context, userID string, limit int) ([]dto.SuggestionResponse, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	suggestions, err := s.suggestions.ListByUser(ctx, userID, limit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Failed to list suggestions")
		return nil, translateStoreError("list suggestions", err)
	}
	return toSuggestionList(suggestions)
}

func (s *suggestionService) GetLatest(ctx context.Context, userID string) (*dto.SuggestionResponse, error) {
	suggestion, err := s.suggestions.GetLatest(ctx, userID)
	if err != nil {
		return nil, translateStoreError("get latest suggestion", err)
	}
	return toSuggestionResponse(suggestion)
}

func (s *suggestionService) ListByUserAndTechStack(ctx context.Context, userID, techStack string, limit int) ([]dto.SuggestionResponse, error) {
	stack, ok := model.ParseTechStack(techStack)
	if !ok {
		return nil, unsupportedStackError(techStack)
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	suggestions, err := s.suggestions.ListByUserAndTechStack(ctx, userID, stack, limit)
	if err != nil {
		return nil, translateStoreError("list suggestions", err)
	}
	return toSuggestionList(suggestions)
}

func toSuggestionList(suggestions []model.UserSuggestion) ([]dto.SuggestionResponse, error) {
	out := make([]dto.SuggestionResponse, 0, len(suggestions))
	for i := range suggestions {
		resp, err := toSuggestionResponse(&suggestions[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func toSuggestionResponse(suggestion *model.UserSuggestion) (*dto.SuggestionResponse, error) {
	var resp dto.SuggestionResponse
	if err := copier.Copy(&resp, suggestion); err != nil {
		log.Error().Err(err).Msg("Failed to copy UserSuggestion model to SuggestionResponse")
		return nil, err
	}
	resp.TechStack = string(suggestion.TechStack)
	resp.MissedTopics = nonNil(suggestion.MissedTopics)
	return &resp, nil
}
