package service

import (
	"context"

	"github.com/jinzhu/copier"
	"github.com/lshigami/techmentor/internal/dto"
	"github.com/lshigami/techmentor/internal/model"
	"github.com/lshigami/techmentor/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

type ResultService interface {
	ListByUser(ctx context.Context, userID string, limit int) (*dto.ResultListResponse, error)
	GetBySession(ctx context.Context, sessionID string) (*dto.ResultResponse, error)
	GetLatest(ctx context.Context, userID string) (*dto.ResultResponse, error)
	ListByUserAndTechStack(ctx context.Context, userID, techStack string, limit int) (*dto.ResultListResponse, error)
}

type resultService struct {
	results repository.ResultRepository
}

func NewResultService(results repository.ResultRepository) ResultService {
	return &resultService{results: results}
}

func (s *resultService) ListByUser(ctx context.Context, userID string, limit int) (*dto.ResultListResponse, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	results, err := s.results.ListByUser(ctx, userID, limit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Failed to list results")
		return nil, translateStoreError("list results", err)
	}
	return toResultList(results)
}

func (s *resultService) GetBySession(ctx context.Context, sessionID string) (*dto.ResultResponse, error) {
	result, err := s.results.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, translateStoreError("get result", err)
	}
	return toResultResponse(result)
}

func (s *resultService) GetLatest(ctx context.Context, userID string) (*dto.ResultResponse, error) {
	result, err := s.results.GetLatest(ctx, userID)
	if err != nil {
		return nil, translateStoreError("get latest result", err)
	}
	return toResultResponse(result)
}

func (s *resultService) ListByUserAndTechStack(ctx context.Context, userID, techStack string, limit int) (*dto.ResultListResponse, error) {
	stack, ok := model.ParseTechStack(techStack)
	if !ok {
		return nil, unsupportedStackError(techStack)
	}
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	results, err := s.results.ListByUserAndTechStack(ctx, userID, stack, limit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Str("techStack", string(stack)).Msg("Failed to list results by tech stack")
		return nil, translateStoreError("list results", err)
	}
	return toResultList(results)
}

func toResultList(results []model.UserResult) (*dto.ResultListResponse, error) {
	list := &dto.ResultListResponse{Results: make([]dto.ResultResponse, 0, len(results))}
	for i := range results {
		resp, err := toResultResponse(&results[i])
		if err != nil {
			return nil, err
		}
		list.Results = append(list.Results, *resp)
	}
	list.Total = len(list.Results)
	return list, nil
}

func toResultResponse(result *model.UserResult) (*dto.ResultResponse, error) {
	var resp dto.ResultResponse
	if err := copier.Copy(&resp, result); err != nil {
		log.Error().Err(err).Msg("Failed to copy UserResult model to ResultResponse")
		return nil, err
	}
	resp.TechStack = string(result.TechStack)
	resp.CorrectAnswers = result.CorrectAnswers()
	return &resp, nil
}

func checkLimit(limit int) error {
	if limit < 1 || limit > MaxHistoryLimit {
		return validationError("limit must be between 1 and %d, got %d", MaxHistoryLimit, limit)
	}
	return nil
}
