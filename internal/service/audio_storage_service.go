package service

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/lshigami/techmentor/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	RecordingsURLPrefix = "/api/interview/audio/recordings"
	ResponsesURLPrefix  = "/api/interview/audio/responses"
)

// StoredAudio describes a file written by AudioStorageService.
type StoredAudio struct {
	FileName string
	URL      string
	Data     []byte
}

type AudioStorageService interface {
	// SaveRecording validates and stores an uploaded answer recording.
	SaveRecording(sessionID, originalName string, r io.Reader) (*StoredAudio, error)
	// SaveResponse stores synthesized speech as {session}_{label}.mp3.
	SaveResponse(sessionID, label string, data []byte) (*StoredAudio, error)
	RecordingsFS() http.FileSystem
	ResponsesFS() http.FileSystem
	MaxRecordingBytes() int64
}

type audioStorageService struct {
	fs               afero.Fs
	recordingsDir    string
	responsesDir     string
	maxBytes         int64
	supportedFormats []string
}

func NewAudioStorageService(fs afero.Fs, cfg *config.Config) AudioStorageService {
	return &audioStorageService{
		fs:               fs,
		recordingsDir:    cfg.Audio.RecordingsDir,
		responsesDir:     cfg.Audio.ResponsesDir,
		maxBytes:         cfg.Audio.MaxFileSizeBytes(),
		supportedFormats: cfg.Audio.SupportedFormats,
	}
}

func (s *audioStorageService) MaxRecordingBytes() int64 {
	return s.maxBytes
}

func (s *audioStorageService) SaveRecording(sessionID, originalName string, r io.Reader) (*StoredAudio, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !slices.Contains(s.supportedFormats, ext) {
		return nil, validationError("unsupported audio format %q, supported: %s", ext, strings.Join(s.supportedFormats, ", "))
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, validationError("failed to read uploaded audio: %v", err)
	}
	if len(data) == 0 {
		return nil, validationError("uploaded audio file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, validationError("audio file exceeds the %d MB limit", s.maxBytes/(1024*1024))
	}
	if detected := mimetype.Detect(data); !isAudioContainer(detected) {
		log.Warn().Str("sessionID", sessionID).Str("detected", detected.String()).Msg("Rejected upload that is not audio")
		return nil, validationError("uploaded file is not audio (detected %s)", detected.String())
	}

	name := fmt.Sprintf("%s_%s%s", sessionID, uuid.NewString(), ext)
	if err := s.write(s.recordingsDir, name, data); err != nil {
		return nil, err
	}
	return &StoredAudio{FileName: name, URL: path.Join(RecordingsURLPrefix, name), Data: data}, nil
}

func (s *audioStorageService) SaveResponse(sessionID, label string, data []byte) (*StoredAudio, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%s.mp3", sessionID, label)
	if err := s.write(s.responsesDir, name, data); err != nil {
		return nil, err
	}
	return &StoredAudio{FileName: name, URL: path.Join(ResponsesURLPrefix, name), Data: data}, nil
}

func (s *audioStorageService) RecordingsFS() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.recordingsDir)
}

func (s *audioStorageService) ResponsesFS() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.responsesDir)
}

func (s *audioStorageService) write(dir, name string, data []byte) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create audio directory %s: %v", ErrPersistence, dir, err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("%w: write audio file %s: %v", ErrPersistence, name, err)
	}
	return nil
}

// isAudioContainer accepts audio formats and the video containers browsers
// record audio into (webm, mp4).
func isAudioContainer(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		mt := m.String()
		if strings.HasPrefix(mt, "audio/") || strings.HasPrefix(mt, "video/") || m.Is("application/ogg") {
			return true
		}
	}
	return false
}

func checkSessionID(sessionID string) error {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\.`) {
		return validationError("invalid session id %q", sessionID)
	}
	return nil
}
