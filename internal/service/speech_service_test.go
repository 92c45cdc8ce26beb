package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestSpeechService(t *testing.T, handler http.HandlerFunc) *openAISpeechService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = srv.URL + "/v1"
	cfg := testConfig()
	cfg.OpenAI.WhisperModel = "whisper-1"
	cfg.OpenAI.TTSModel = "tts-1"
	cfg.OpenAI.TTSVoice = "alloy"
	return newOpenAISpeechService(openai.NewClientWithConfig(clientCfg), cfg)
}

func TestTranscribe(t *testing.T) {
	svc := newTestSpeechService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  use a connection pool \n"})
	})

	text, err := svc.Transcribe(context.Background(), strings.NewReader("RIFF....WAVE"), "sess_1.wav")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "use a connection pool" {
		t.Fatalf("unexpected transcription %q", text)
	}
}

func TestSynthesize(t *testing.T) {
	svc := newTestSpeechService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["input"] != "What is a goroutine?" || body["voice"] != "alloy" || body["response_format"] != "mp3" {
			t.Errorf("unexpected speech request %v", body)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = io.WriteString(w, "ID3-mp3-bytes")
	})

	audio, err := svc.Synthesize(context.Background(), "What is a goroutine?")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "ID3-mp3-bytes" {
		t.Fatalf("unexpected audio %q", audio)
	}
}

func TestSpeechFailuresAreCollaboratorErrors(t *testing.T) {
	svc := newTestSpeechService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error": {"message": "upstream failure", "type": "server_error"}}`)
	})
	if _, err := svc.Transcribe(context.Background(), strings.NewReader("x"), "a.wav"); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
	if _, err := svc.Synthesize(context.Background(), "hi"); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}

	unconfigured := newOpenAISpeechService(nil, testConfig())
	if _, err := unconfigured.Synthesize(context.Background(), "hi"); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator without client, got %v", err)
	}
}
