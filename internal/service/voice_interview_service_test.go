package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lshigami/techmentor/internal/dto"
)

func newVoiceHarness(t *testing.T) (*harness, *fakeSpeech, VoiceInterviewService) {
	t.Helper()
	h := newHarness(t, 3)
	speech := &fakeSpeech{transcript: "A closure captures variables from its enclosing scope."}
	storage, _ := newTestStorage()
	voice := NewVoiceInterviewService(h.svc, h.sessions, NewAICollaborator(h.llm, speech), storage)
	return h, speech, voice
}

func TestVoiceStartSynthesizesFirstQuestion(t *testing.T) {
	_, speech, voice := newVoiceHarness(t)

	resp, err := voice.StartInterview(context.Background(), dto.StartInterviewRequest{UserID: "u1", TechStack: "Python", AudioEnabled: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resp.AudioURL == nil || *resp.AudioURL != "/api/interview/audio/responses/"+resp.SessionID+"_q1.mp3" {
		t.Fatalf("unexpected audio url %v", resp.AudioURL)
	}
	if len(speech.synthesized) != 1 || speech.synthesized[0] != "Python question 1" {
		t.Fatalf("expected the bare question to be spoken, got %v", speech.synthesized)
	}
}

func TestVoiceTextAnswerWithoutAudio(t *testing.T) {
	_, speech, voice := newVoiceHarness(t)
	ctx := context.Background()
	start, _ := voice.StartInterview(ctx, dto.StartInterviewRequest{UserID: "u1", TechStack: "Python"})
	if start.AudioURL != nil {
		t.Fatalf("audio produced although disabled")
	}

	resp, err := voice.SubmitAnswer(ctx, dto.SendMessageRequest{SessionID: start.SessionID, UserMessage: "text answer"})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if resp.AudioURL != nil || len(speech.synthesized) != 0 {
		t.Fatalf("audio produced although disabled")
	}
}

func TestSubmitAudioAnswer(t *testing.T) {
	h, speech, voice := newVoiceHarness(t)
	ctx := context.Background()
	start, err := voice.StartInterview(ctx, dto.StartInterviewRequest{UserID: "u1", TechStack: "Python"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	resp, err := voice.SubmitAudioAnswer(ctx, start.SessionID, "answer.wav", bytes.NewReader(wavFixture()))
	if err != nil {
		t.Fatalf("audio answer: %v", err)
	}
	if resp.TranscribedText == nil || *resp.TranscribedText != speech.transcript {
		t.Fatalf("unexpected transcription %v", resp.TranscribedText)
	}
	if resp.AudioURL == nil || !strings.HasSuffix(*resp.AudioURL, start.SessionID+"_q2.mp3") {
		t.Fatalf("unexpected audio url %v", resp.AudioURL)
	}

	status, _ := h.svc.GetStatus(ctx, start.SessionID)
	if len(status.Answers) != 1 || status.Answers[0] != speech.transcript {
		t.Fatalf("transcription not recorded as the answer: %v", status.Answers)
	}

	// Speech failure must not undo the recorded turn.
	speech.synthErr = errors.New("tts down")
	resp, err = voice.SubmitAudioAnswer(ctx, start.SessionID, "answer.wav", bytes.NewReader(wavFixture()))
	if err != nil {
		t.Fatalf("audio answer with tts down: %v", err)
	}
	if resp.AudioURL != nil {
		t.Fatalf("expected no audio url when synthesis fails")
	}
	status, _ = h.svc.GetStatus(ctx, start.SessionID)
	if len(status.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(status.Answers))
	}

	speech.synthErr = nil
	resp, err = voice.SubmitAudioAnswer(ctx, start.SessionID, "answer.wav", bytes.NewReader(wavFixture()))
	if err != nil {
		t.Fatalf("final audio answer: %v", err)
	}
	if !resp.IsComplete || resp.AudioURL == nil || !strings.HasSuffix(*resp.AudioURL, "_closing.mp3") {
		t.Fatalf("expected spoken closing message, got %+v", resp)
	}
	if _, err := voice.SubmitAudioAnswer(ctx, start.SessionID, "answer.wav", bytes.NewReader(wavFixture())); !errors.Is(err, ErrInterviewCompleted) {
		t.Fatalf("expected ErrInterviewCompleted, got %v", err)
	}
}

func TestUploadAudioDoesNotAdvance(t *testing.T) {
	h, speech, voice := newVoiceHarness(t)
	ctx := context.Background()
	start, _ := voice.StartInterview(ctx, dto.StartInterviewRequest{UserID: "u1", TechStack: "Python"})

	resp, err := voice.UploadAudio(ctx, start.SessionID, "take1.wav", bytes.NewReader(wavFixture()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.Transcription != speech.transcript || !strings.HasPrefix(resp.AudioURL, RecordingsURLPrefix+"/"+start.SessionID+"_") {
		t.Fatalf("unexpected upload response %+v", resp)
	}
	status, _ := h.svc.GetStatus(ctx, start.SessionID)
	if len(status.Answers) != 0 {
		t.Fatalf("upload advanced the interview")
	}
}

func TestAudioAnswerFailures(t *testing.T) {
	_, speech, voice := newVoiceHarness(t)
	ctx := context.Background()

	if _, err := voice.UploadAudio(ctx, "missing", "a.wav", bytes.NewReader(wavFixture())); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	start, _ := voice.StartInterview(ctx, dto.StartInterviewRequest{UserID: "u1", TechStack: "Python"})
	speech.transErr = errors.New("whisper unavailable")
	if _, err := voice.SubmitAudioAnswer(ctx, start.SessionID, "a.wav", bytes.NewReader(wavFixture())); !errors.Is(err, ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}

	speech.transErr = nil
	speech.transcript = ""
	if _, err := voice.SubmitAudioAnswer(ctx, start.SessionID, "a.wav", bytes.NewReader(wavFixture())); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for silent recording, got %v", err)
	}
}
