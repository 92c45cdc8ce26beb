package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lshigami/techmentor/internal/dto"
	"github.com/lshigami/techmentor/internal/model"
	"github.com/lshigami/techmentor/internal/service"
	"github.com/rs/zerolog/log"
)

// RegisterValidators installs the custom binding rules used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return v.RegisterValidation("techstack", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseTechStack(fl.Field().String())
		return ok
	})
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInterviewCompleted):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrSuggestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionConflict), errors.Is(err, service.ErrEvaluationInProgress):
		return http.StatusConflict
	case errors.Is(err, service.ErrCollaborator):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as a dto.ErrorResponse. The message is the
// user-facing sentinel text; the wrapped chain goes into details.
func RespondError(ctx *gin.Context, op string, err error) {
	status := StatusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("path", ctx.FullPath()).Msg(op + ": request failed")

	ctx.JSON(status, dto.ErrorResponse{Message: userMessage(err), Details: []string{err.Error()}})
}

func userMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrSessionNotFound,
		service.ErrInterviewCompleted,
		service.ErrSessionConflict,
		service.ErrEvaluationInProgress,
		service.ErrCollaborator,
		service.ErrPersistence,
		service.ErrResultNotFound,
		service.ErrSuggestionNotFound,
	} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	if errors.Is(err, service.ErrValidation) {
		return capitalize(err.Error())
	}
	return "Internal server error"
}

// BindError reports a request that failed gin binding or validation.
func BindError(ctx *gin.Context, op string, err error) {
	log.Warn().Err(err).Msg(op + ": failed to bind request")
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
}

// ParseLimit reads the optional ?limit= query parameter.
func ParseLimit(ctx *gin.Context) (int, error) {
	raw := ctx.Query("limit")
	if raw == "" {
		return service.DefaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer, got %q", service.ErrValidation, raw)
	}
	return limit, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
