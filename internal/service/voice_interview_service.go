package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/lshigami/techmentor/internal/dto"
	"github.com/lshigami/techmentor/internal/repository"
	"github.com/rs/zerolog/log"
)

// VoiceInterviewService layers speech on top of InterviewService. Audio is a
// presentation concern: it never changes the interview state machine.
type VoiceInterviewService interface {
	StartInterview(ctx context.Context, req dto.StartInterviewRequest) (*dto.StartInterviewResponse, error)
	SubmitAnswer(ctx context.Context, req dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	// UploadAudio stores a recording and returns its transcription without
	// advancing the interview.
	UploadAudio(ctx context.Context, sessionID, filename string, audio io.Reader) (*dto.AudioUploadResponse, error)
	// SubmitAudioAnswer transcribes a recording and submits it as the answer.
	SubmitAudioAnswer(ctx context.Context, sessionID, filename string, audio io.Reader) (*dto.SendMessageResponse, error)
}

type voiceInterviewService struct {
	interviews InterviewService
	sessions   repository.SessionRepository
	speech     SpeechService
	storage    AudioStorageService
}

func NewVoiceInterviewService(
	interviews InterviewService,
	sessions repository.SessionRepository,
	ai AICollaborator,
	storage AudioStorageService,
) VoiceInterviewService {
	return &voiceInterviewService{interviews: interviews, sessions: sessions, speech: ai, storage: storage}
}

func (s *voiceInterviewService) StartInterview(ctx context.Context, req dto.StartInterviewRequest) (*dto.StartInterviewResponse, error) {
	resp, err := s.interviews.StartInterview(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.AudioEnabled {
		resp.AudioURL = s.speak(ctx, resp.SessionID, "q1", resp.Question)
	}
	return resp, nil
}

func (s *voiceInterviewService) SubmitAnswer(ctx context.Context, req dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	resp, err := s.interviews.SubmitAnswer(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.AudioEnabled {
		s.attachSpeech(ctx, req.SessionID, resp)
	}
	return resp, nil
}

func (s *voiceInterviewService) UploadAudio(ctx context.Context, sessionID, filename string, audio io.Reader) (*dto.AudioUploadResponse, error) {
	stored, text, err := s.transcribe(ctx, sessionID, filename, audio)
	if err != nil {
		return nil, err
	}
	return &dto.AudioUploadResponse{Transcription: text, AudioURL: stored.URL}, nil
}

func (s *voiceInterviewService) SubmitAudioAnswer(ctx context.Context, sessionID, filename string, audio io.Reader) (*dto.SendMessageResponse, error) {
	_, text, err := s.transcribe(ctx, sessionID, filename, audio)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, validationError("no speech detected in the recording")
	}
	resp, err := s.interviews.SubmitAnswer(ctx, dto.SendMessageRequest{SessionID: sessionID, UserMessage: text})
	if err != nil {
		return nil, err
	}
	resp.TranscribedText = &text
	s.attachSpeech(ctx, sessionID, resp)
	return resp, nil
}

// transcribe checks the session is live, stores the recording and runs it
// through speech-to-text.
func (s *voiceInterviewService) transcribe(ctx context.Context, sessionID, filename string, audio io.Reader) (*StoredAudio, string, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", translateStoreError("load session", err)
	}
	if session.IsComplete() {
		return nil, "", ErrInterviewCompleted
	}
	stored, err := s.storage.SaveRecording(sessionID, filename, audio)
	if err != nil {
		return nil, "", err
	}
	text, err := s.speech.Transcribe(ctx, bytes.NewReader(stored.Data), stored.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("transcribe recording: %w", asCollaboratorError(err))
	}
	log.Info().Str("sessionID", sessionID).Str("file", stored.FileName).Int("chars", len(text)).Msg("Recording transcribed")
	return stored, text, nil
}

func (s *voiceInterviewService) attachSpeech(ctx context.Context, sessionID string, resp *dto.SendMessageResponse) {
	if resp.IsComplete {
		resp.AudioURL = s.speak(ctx, sessionID, "closing", resp.AIMessage)
		return
	}
	label := "next"
	if resp.QuestionNumber != nil {
		label = fmt.Sprintf("q%d", *resp.QuestionNumber)
	}
	resp.AudioURL = s.speak(ctx, sessionID, label, resp.Question)
}

// speak synthesizes text and stores it. The turn is already persisted, so a
// speech failure only drops the audio URL from the reply.
func (s *voiceInterviewService) speak(ctx context.Context, sessionID, label, text string) *string {
	if text == "" {
		return nil
	}
	audio, err := s.speech.Synthesize(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("sessionID", sessionID).Str("label", label).Msg("Speech synthesis failed, replying without audio")
		return nil
	}
	stored, err := s.storage.SaveResponse(sessionID, label, audio)
	if err != nil {
		log.Warn().Err(err).Str("sessionID", sessionID).Str("label", label).Msg("Failed to store synthesized speech")
		return nil
	}
	return &stored.URL
}
