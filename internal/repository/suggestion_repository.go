package repository

import (
	"context"
	"errors"

	"github.com/lshigami/techmentor/internal/model"
	"gorm.io/gorm"
)

var ErrSuggestionNotFound = errors.New("suggestion not found")

type SuggestionRepository interface {
	Save(ctx context.Context, suggestion *model.UserSuggestion) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.UserSuggestion, error)
	GetLatest(ctx context.Context, userID string) (*model.UserSuggestion, error)
	GetBySession(ctx context.Context, sessionID string) (*model.UserSuggestion, error)
	ListByUserAndTechStack(ctx context.Context, userID string, stack model.TechStack, limit int) ([]model.UserSuggestion, error)
}

type suggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) Save(ctx context.Context, suggestion *model.UserSuggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

func (r *suggestionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.UserSuggestion, error) {
	var suggestions []model.UserSuggestion
	err := newestFirst(r.db.WithContext(ctx).Where("user_id = ?", userID), limit).Find(&suggestions).Error
	return suggestions, err
}

func (r *suggestionRepository) GetLatest(ctx context.Context, userID string) (*model.UserSuggestion, error) {
	var suggestion model.UserSuggestion
	if err := newestFirst(r.db.WithContext(ctx).Where("user_id = ?", userID), 1).Take(&suggestion).Error; err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	return &suggestion, nil
}

func (r *suggestionRepository) GetBySession(ctx context.Context, sessionID string) (*model.UserSuggestion, error) {
	var suggestion model.UserSuggestion
	if err := newestFirst(r.db.WithContext(ctx).Where("session_id = ?", sessionID), 1).Take(&suggestion).Error; err != nil {
		return nil, notFound(err, ErrSuggestionNotFound)
	}
	return &suggestion, nil
}

func (r *suggestionRepository) ListByUserAndTechStack(ctx context.Context, userID string, stack model.TechStack, limit int) ([]model.UserSuggestion, error) {
	var suggestions []model.UserSuggestion
	query := r.db.WithContext(ctx).Where("user_id = ? AND tech_stack = ?", userID, stack)
	err := newestFirst(query, limit).Find(&suggestions).Error
	return suggestions, err
}
