package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/techmentor/config"
	"github.com/lshigami/techmentor/database"
	_ "github.com/lshigami/techmentor/docs" // Swagger docs - generated by swag init
	"github.com/lshigami/techmentor/internal/controller"
	historyctrl "github.com/lshigami/techmentor/internal/controller/history"
	interviewctrl "github.com/lshigami/techmentor/internal/controller/interview"
	"github.com/lshigami/techmentor/internal/logger"
	"github.com/lshigami/techmentor/internal/repository"
	"github.com/lshigami/techmentor/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

// @title TechStack Mentor API
// @version 1.0
// @description AI mock interviewer: stack-specific technical interviews with evaluation, results history and study suggestions.
// @contact.name API Support
// @license.name MIT
// @host localhost:8000
// @BasePath /api
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewSessionRepository,
			NewGinEngine,
			func() afero.Fs { return afero.NewOsFs() },
		),

		// Repositories Layer
		fx.Provide(
			repository.NewResultRepository,
			repository.NewSuggestionRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewGeminiLLMService,
			service.NewOpenAISpeechService,
			service.NewAICollaborator,
			service.NewAudioStorageService,
			service.NewInterviewService,
			service.NewVoiceInterviewService,
			service.NewResultService,
			service.NewSuggestionService,
		),

		// API Controllers Layer
		fx.Provide(
			interviewctrl.NewInterviewController,
			historyctrl.NewResultController,
			historyctrl.NewSuggestionController,
		),

		fx.Invoke(ConfigureLogger),
		fx.Invoke(database.AutoMigrate),
		fx.Invoke(controller.RegisterValidators),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func ConfigureLogger(cfg *config.Config) {
	logger.Configure(cfg.Server.Environment, cfg.Server.LogLevel)
}

// NewSessionRepository picks the session cache backend from SESSION_STORE.
func NewSessionRepository(lc fx.Lifecycle, cfg *config.Config) repository.SessionRepository {
	if cfg.Interview.SessionStore == "memory" {
		log.Warn().Msg("Using in-process session store; sessions are lost on restart and not shared between instances")
		return repository.NewMemorySessionRepository(cfg.Interview.SessionTTL)
	}
	return repository.NewRedisSessionRepository(database.NewRedisClient(lc, cfg), cfg.Interview.SessionTTL)
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if strings.EqualFold(cfg.Server.Environment, "development") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Tech stack names such as "Database (SQL/PostgreSQL)" arrive percent-encoded in paths.
	r.UseRawPath = true
	r.MaxMultipartMemory = int64(cfg.Audio.MaxFileSizeMB+1) << 20

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendURL, "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "TechStack Mentor API",
			"version": "1.0.0",
			"docs":    "/swagger/index.html",
		})
	})
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	return r
}

// RegisterRoutesAndStartServer mounts the API and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	interviewCtrl *interviewctrl.InterviewController,
	resultCtrl *historyctrl.ResultController,
	suggestionCtrl *historyctrl.SuggestionController,
) {
	api := router.Group("/api")
	interviewCtrl.RegisterRoutes(api)
	resultCtrl.RegisterRoutes(api)
	suggestionCtrl.RegisterRoutes(api)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("TechStack Mentor API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
