package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lshigami/techmentor/internal/model"
	"gorm.io/gorm"
)

var ErrResultNotFound = errors.New("result not found")

// ResultRepository is append-only: results are never updated or deleted.
type ResultRepository interface {
	Save(ctx context.Context, result *model.UserResult) error
	// SaveOutcome writes a result and its suggestion in one transaction.
	SaveOutcome(ctx context.Context, result *model.UserResult, suggestion *model.UserSuggestion) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.UserResult, error)
	GetBySession(ctx context.Context, sessionID string) (*model.UserResult, error)
	GetLatest(ctx context.Context, userID string) (*model.UserResult, error)
	ListByUserAndTechStack(ctx context.Context, userID string, stack model.TechStack, limit int) ([]model.UserResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Save(ctx context.Context, result *model.UserResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) SaveOutcome(ctx context.Context, result *model.UserResult, suggestion *model.UserSuggestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewResultRepository(tx).Save(ctx, result); err != nil {
			return fmt.Errorf("failed to create result record: %w", err)
		}
		if err := NewSuggestionRepository(tx).Save(ctx, suggestion); err != nil {
			return fmt.Errorf("failed to create suggestion record: %w", err)
		}
		return nil
	})
}

func (r *resultRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.UserResult, error) {
	var results []model.UserResult
	err := newestFirst(r.db.WithContext(ctx).Where("user_id = ?", userID), limit).Find(&results).Error
	return results, err
}

func (r *resultRepository) GetBySession(ctx context.Context, sessionID string) (*model.UserResult, error) {
	var result model.UserResult
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&result).Error; err != nil {
		return nil, notFound(err, ErrResultNotFound)
	}
	return &result, nil
}

func (r *resultRepository) GetLatest(ctx context.Context, userID string) (*model.UserResult, error) {
	var result model.UserResult
	if err := newestFirst(r.db.WithContext(ctx).Where("user_id = ?", userID), 1).Take(&result).Error; err != nil {
		return nil, notFound(err, ErrResultNotFound)
	}
	return &result, nil
}

func (r *resultRepository) ListByUserAndTechStack(ctx context.Context, userID string, stack model.TechStack, limit int) ([]model.UserResult, error) {
	var results []model.UserResult
	query := r.db.WithContext(ctx).Where("user_id = ? AND tech_stack = ?", userID, stack)
	err := newestFirst(query, limit).Find(&results).Error
	return results, err
}

// newestFirst orders by creation time with the id as tie-break, so rows
// written within the same clock tick still come back newest first.
func newestFirst(query *gorm.DB, limit int) *gorm.DB {
	query = query.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
