package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Redis        Redis
	Interview    Interview
	Audio        Audio
	GeminiApiKey string
	GeminiModel  string
	OpenAI       OpenAI
	AITimeout    time.Duration
}

type Server struct {
	Port        string
	Environment string
	LogLevel    string
	FrontendURL string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	URL      string // full DSN, wins over the individual fields below
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type Interview struct {
	SessionStore string // "redis" or "memory"
	SessionTTL   time.Duration
	MaxQuestions int
}

type Audio struct {
	RecordingsDir    string
	ResponsesDir     string
	MaxFileSizeMB    int
	SupportedFormats []string
}

type OpenAI struct {
	ApiKey       string
	WhisperModel string
	TTSModel     string
	TTSVoice     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")

	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("SESSION_TTL", 1800)
	v.SetDefault("MAX_QUESTIONS_PER_INTERVIEW", 5)

	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("OPENAI_WHISPER_MODEL", "whisper-1")
	v.SetDefault("OPENAI_TTS_MODEL", "tts-1")
	v.SetDefault("OPENAI_TTS_VOICE", "alloy")
	v.SetDefault("AI_TIMEOUT_SECONDS", 60)

	v.SetDefault("AUDIO_RECORDINGS_DIR", "audio/recordings")
	v.SetDefault("AUDIO_RESPONSES_DIR", "audio/responses")
	v.SetDefault("MAX_AUDIO_FILE_SIZE_MB", 10)
	v.SetDefault("SUPPORTED_AUDIO_FORMATS", ".mp3,.wav,.webm,.m4a,.ogg")
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.Environment = v.GetString("ENVIRONMENT")
	config.Server.LogLevel = v.GetString("LOG_LEVEL")
	config.Server.FrontendURL = v.GetString("FRONTEND_URL")

	config.Database.Driver = strings.ToLower(v.GetString("DATABASE_DRIVER"))
	config.Database.URL = v.GetString("DATABASE_URL")
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")

	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")

	config.Interview.SessionStore = strings.ToLower(v.GetString("SESSION_STORE"))
	config.Interview.SessionTTL = time.Duration(v.GetInt("SESSION_TTL")) * time.Second
	config.Interview.MaxQuestions = v.GetInt("MAX_QUESTIONS_PER_INTERVIEW")

	config.Audio.RecordingsDir = v.GetString("AUDIO_RECORDINGS_DIR")
	config.Audio.ResponsesDir = v.GetString("AUDIO_RESPONSES_DIR")
	config.Audio.MaxFileSizeMB = v.GetInt("MAX_AUDIO_FILE_SIZE_MB")
	for _, ext := range strings.Split(v.GetString("SUPPORTED_AUDIO_FORMATS"), ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		config.Audio.SupportedFormats = append(config.Audio.SupportedFormats, ext)
	}

	config.GeminiApiKey = v.GetString("GEMINI_API_KEY")
	config.GeminiModel = v.GetString("GEMINI_MODEL")
	config.OpenAI.ApiKey = v.GetString("OPENAI_API_KEY")
	config.OpenAI.WhisperModel = v.GetString("OPENAI_WHISPER_MODEL")
	config.OpenAI.TTSModel = v.GetString("OPENAI_TTS_MODEL")
	config.OpenAI.TTSVoice = v.GetString("OPENAI_TTS_VOICE")
	config.AITimeout = time.Duration(v.GetInt("AI_TIMEOUT_SECONDS")) * time.Second

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("environment", config.Server.Environment).
		Str("dbDriver", config.Database.Driver).
		Str("sessionStore", config.Interview.SessionStore).
		Dur("sessionTTL", config.Interview.SessionTTL).
		Int("maxQuestions", config.Interview.MaxQuestions).
		Bool("geminiConfigured", config.GeminiApiKey != "").
		Bool("openaiConfigured", config.OpenAI.ApiKey != "").
		Msg("Config loaded")
	return &config, nil
}

func (c *Config) validate() error {
	if c.Interview.MaxQuestions < 1 {
		return fmt.Errorf("MAX_QUESTIONS_PER_INTERVIEW must be at least 1, got %d", c.Interview.MaxQuestions)
	}
	if c.Interview.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Interview.SessionTTL)
	}
	switch c.Interview.SessionStore {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Interview.SessionStore)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Audio.MaxFileSizeMB < 1 {
		return fmt.Errorf("MAX_AUDIO_FILE_SIZE_MB must be at least 1, got %d", c.Audio.MaxFileSizeMB)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be positive, got %s", c.AITimeout)
	}
	return nil
}

// DSN builds the database connection string for the configured driver.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		if d.Name == "" {
			return "techmentor.db"
		}
		return d.Name
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

func (a Audio) MaxFileSizeBytes() int64 {
	return int64(a.MaxFileSizeMB) * 1024 * 1024
}
