package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/techmentor/internal/model"
	"github.com/lshigami/techmentor/internal/repository"
)

var (
	ErrSessionNotFound    = errors.New("interview session not found or expired, please start a new interview")
	ErrValidation         = errors.New("validation failed")
	ErrInterviewCompleted = errors.New("interview is already complete, end it to get your results")
	ErrSessionConflict    = errors.New("session was updated by another request, please retry")
	ErrCollaborator       = errors.New("AI service is temporarily unavailable, please try again")
	ErrPersistence        = errors.New("storage is temporarily unavailable")
	ErrResultNotFound     = errors.New("result not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	// ErrEvaluationInProgress is returned while another request is evaluating
	// the same session.
	ErrEvaluationInProgress = errors.New("interview is being evaluated, please wait for the result")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func unsupportedStackError(raw string) error {
	names := make([]string, 0, len(model.TechStacks()))
	for _, stack := range model.TechStacks() {
		names = append(names, string(stack))
	}
	return validationError("unsupported tech stack %q, expected one of: %s", raw, strings.Join(names, ", "))
}

// translateStoreError maps repository errors onto the service sentinels.
func translateStoreError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSessionNotFound):
		return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	case errors.Is(err, repository.ErrSessionConflict):
		return fmt.Errorf("%s: %w", op, ErrSessionConflict)
	case errors.Is(err, repository.ErrResultNotFound):
		return fmt.Errorf("%s: %w", op, ErrResultNotFound)
	case errors.Is(err, repository.ErrSuggestionNotFound):
		return fmt.Errorf("%s: %w", op, ErrSuggestionNotFound)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrPersistence, err)
	}
}
