package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lshigami/techmentor/config"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

type openAISpeechService struct {
	client       *openai.Client
	whisperModel string
	ttsModel     openai.SpeechModel
	voice        openai.SpeechVoice
	timeout      time.Duration
}

// NewOpenAISpeechService uses Whisper for transcription and OpenAI TTS for
// synthesis. Without an API key every call fails with ErrCollaborator.
func NewOpenAISpeechService(cfg *config.Config) SpeechService {
	if cfg.OpenAI.ApiKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set. Audio transcription and speech synthesis will be unavailable.")
		return newOpenAISpeechService(nil, cfg)
	}
	return newOpenAISpeechService(openai.NewClient(cfg.OpenAI.ApiKey), cfg)
}

func newOpenAISpeechService(client *openai.Client, cfg *config.Config) *openAISpeechService {
	return &openAISpeechService{
		client:       client,
		whisperModel: cfg.OpenAI.WhisperModel,
		ttsModel:     openai.SpeechModel(cfg.OpenAI.TTSModel),
		voice:        openai.SpeechVoice(cfg.OpenAI.TTSVoice),
		timeout:      cfg.AITimeout,
	}
}

func (s *openAISpeechService) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: openai client not initialized", ErrCollaborator)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.whisperModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("Whisper transcription failed")
		return "", fmt.Errorf("%w: transcription failed: %v", ErrCollaborator, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (s *openAISpeechService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: openai client not initialized", ErrCollaborator)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.ttsModel,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		log.Error().Err(err).Msg("Speech synthesis failed")
		return nil, fmt.Errorf("%w: speech synthesis failed: %v", ErrCollaborator, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read synthesized audio: %v", ErrCollaborator, err)
	}
	return data, nil
}
