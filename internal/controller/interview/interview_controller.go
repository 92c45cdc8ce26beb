package interview

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/techmentor/internal/controller"
	"github.com/lshigami/techmentor/internal/dto"
	"github.com/lshigami/techmentor/internal/service"
	"github.com/rs/zerolog/log"
)

// multipartOverhead is allowed on top of the recording size for the form
// fields and part headers.
const multipartOverhead = 1 << 20

type InterviewController struct {
	interviews service.InterviewService
	voice      service.VoiceInterviewService
	storage    service.AudioStorageService
}

func NewInterviewController(
	interviews service.InterviewService,
	voice service.VoiceInterviewService,
	storage service.AudioStorageService,
) *InterviewController {
	return &InterviewController{interviews: interviews, voice: voice, storage: storage}
}

// RegisterRoutes mounts the interview endpoints under group (normally /api).
func (c *InterviewController) RegisterRoutes(group *gin.RouterGroup) {
	interview := group.Group("/interview")
	interview.POST("/start", c.StartInterview)
	interview.POST("/message", c.SendMessage)
	interview.POST("/audio/upload", c.UploadAudio)
	interview.POST("/audio/message", c.SendAudioMessage)
	interview.StaticFS("/audio/recordings", c.storage.RecordingsFS())
	interview.StaticFS("/audio/responses", c.storage.ResponsesFS())
	interview.POST("/end/:session_id", c.EndInterview)
	interview.GET("/status/:session_id", c.GetStatus)
	interview.GET("/health", c.Health)
}

// StartInterview godoc
// @Summary Start a mock interview
// @Description Opens a session for the chosen tech stack and returns the welcome message with question 1.
// @Tags Interview
// @Accept json
// @Produce json
// @Param request body dto.StartInterviewRequest true "User and tech stack"
// @Success 200 {object} dto.StartInterviewResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid user or tech stack"
// @Failure 502 {object} dto.ErrorResponse "AI service unavailable"
// @Failure 503 {object} dto.ErrorResponse "Session store unavailable"
// @Router /interview/start [post]
func (c *InterviewController) StartInterview(ctx *gin.Context) {
	var req dto.StartInterviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "StartInterview", err)
		return
	}
	resp, err := c.voice.StartInterview(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "StartInterview", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SendMessage godoc
// @Summary Answer the pending question
// @Description Records the answer and returns the next question, or a closing message after the last one.
// @Tags Interview
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "Session and answer"
// @Success 200 {object} dto.SendMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Empty answer or interview already complete"
// @Failure 404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update on the same session"
// @Failure 502 {object} dto.ErrorResponse "AI service unavailable"
// @Router /interview/message [post]
func (c *InterviewController) SendMessage(ctx *gin.Context) {
	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, "SendMessage", err)
		return
	}
	resp, err := c.voice.SubmitAnswer(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "SendMessage", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UploadAudio godoc
// @Summary Upload and transcribe a recording
// @Description Stores the recording and returns its transcription. The interview does not advance.
// @Tags Interview - Audio
// @Accept multipart/form-data
// @Produce json
// @Param session_id formData string true "Session ID"
// @Param file formData file true "Audio recording (.mp3, .wav, .webm, .m4a, .ogg)"
// @Success 200 {object} dto.AudioUploadResponse
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or unsupported file"
// @Failure 404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure 413 {object} dto.ErrorResponse "Request body too large"
// @Failure 502 {object} dto.ErrorResponse "Transcription failed"
// @Router /interview/audio/upload [post]
func (c *InterviewController) UploadAudio(ctx *gin.Context) {
	sessionID, filename, file, ok := c.readUpload(ctx, "UploadAudio")
	if !ok {
		return
	}
	defer file.Close()

	resp, err := c.voice.UploadAudio(ctx.Request.Context(), sessionID, filename, file)
	if err != nil {
		controller.RespondError(ctx, "UploadAudio", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SendAudioMessage godoc
// @Summary Answer the pending question with a recording
// @Description Transcribes the recording, submits it as the answer and replies with synthesized speech.
// @Tags Interview - Audio
// @Accept multipart/form-data
// @Produce json
// @Param session_id formData string true "Session ID"
// @Param file formData file true "Audio recording"
// @Success 200 {object} dto.SendMessageResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid file or interview already complete"
// @Failure 404 {object} dto.ErrorResponse "Session not found or expired"
// @Failure 409 {object} dto.ErrorResponse "Concurrent update on the same session"
// @Failure 413 {object} dto.ErrorResponse "Request body too large"
// @Failure 502 {object} dto.ErrorResponse "AI service unavailable"
// @Router /interview/audio/message [post]
func (c *InterviewController) SendAudioMessage(ctx *gin.Context) {
	sessionID, filename, file, ok := c.readUpload(ctx, "SendAudioMessage")
	if !ok {
		return
	}
	defer file.Close()

	resp, err := c.voice.SubmitAudioAnswer(ctx.Request.Context(), sessionID, filename, file)
	if err != nil {
		controller.RespondError(ctx, "SendAudioMessage", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// EndInterview godoc
// @Summary End the interview and get the evaluation
// @Description Evaluates all answered questions, stores the result and suggestions, and closes the session.
// @Tags Interview
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.EndInterviewResponse
// @Failure 400 {object} dto.ErrorResponse "No answers in this session"
// @Failure 404 {object} dto.ErrorResponse "Session not found or already ended"
// @Failure 409 {object} dto.ErrorResponse "Evaluation already in progress"
// @Failure 502 {object} dto.ErrorResponse "AI service unavailable"
// @Failure 503 {object} dto.ErrorResponse "Database unavailable"
// @Router /interview/end/{session_id} [post]
func (c *InterviewController) EndInterview(ctx *gin.Context) {
	resp, err := c.interviews.EndInterview(ctx.Request.Context(), ctx.Param("session_id"))
	if err != nil {
		controller.RespondError(ctx, "EndInterview", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetStatus godoc
// @Summary Get a live session snapshot
// @Tags Interview
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.InterviewStatusResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found or expired"
// @Router /interview/status/{session_id} [get]
func (c *InterviewController) GetStatus(ctx *gin.Context) {
	resp, err := c.interviews.GetStatus(ctx.Request.Context(), ctx.Param("session_id"))
	if err != nil {
		controller.RespondError(ctx, "GetStatus", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Health godoc
// @Summary Session store health
// @Tags Interview
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /interview/health [get]
func (c *InterviewController) Health(ctx *gin.Context) {
	if err := c.interviews.Health(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("Session store ping failed")
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unhealthy", Redis: "disconnected"})
		return
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Redis: "connected"})
}

func (c *InterviewController) readUpload(ctx *gin.Context, op string) (string, string, multipart.File, bool) {
	maxBytes := c.storage.MaxRecordingBytes()
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes+multipartOverhead)
	if _, err := ctx.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Err(err).Int64("limit", tooLarge.Limit).Msg(op + ": upload too large")
			ctx.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Message: "Audio file too large",
				Details: []string{fmt.Sprintf("recordings are limited to %d bytes", maxBytes)},
			})
			return "", "", nil, false
		}
	}

	sessionID := strings.TrimSpace(ctx.PostForm("session_id"))
	header, err := ctx.FormFile("file")
	if sessionID == "" || err != nil {
		details := []string{}
		if sessionID == "" {
			details = append(details, "session_id is required")
		}
		if err != nil {
			details = append(details, "file is required: "+err.Error())
		}
		log.Warn().Strs("details", details).Msg(op + ": invalid upload")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid upload", Details: details})
		return "", "", nil, false
	}
	file, err := header.Open()
	if err != nil {
		controller.BindError(ctx, op, err)
		return "", "", nil, false
	}
	return sessionID, header.Filename, file, true
}
