package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/echo-english/practice-service/internal/ai"
	"github.com/echo-english/practice-service/internal/cache"
	"github.com/echo-english/practice-service/internal/config"
	"github.com/echo-english/practice-service/internal/handlers"
	"github.com/echo-english/practice-service/internal/repositories/postgres"
	"github.com/echo-english/practice-service/internal/services"
	"github.com/echo-english/practice-service/internal/utils"
	"github.com/echo-english/practice-service/internal/validator"
	"github.com/echo-english/practice-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, generation caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	v := validator.New()
	repo := postgres.NewRepository(db)

	aiClient := ai.NewClient(ai.ClientConfig{
		APIKey:    cfg.OpenAIAPIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		TextModel: cfg.TextModel,
		TTSModel:  cfg.TTSModel,
		TTSVoice:  cfg.TTSVoice,
	}, slogger)

	lessonService := services.NewLessonService(repo, v, cfg.ContentDir, slogger)
	sessionService := services.NewSessionService(publisher, slogger, cfg.SessionIdleTTL)
	generationService := services.NewGenerationService(
		aiClient, aiClient, lessonService, v, cacheService, cfg.GenerationCacheTTL, publisher, slogger)
	importExportService := services.NewImportExportService(repo, sessionService, slogger, v)

	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(
		lessonService, sessionService, generationService, importExportService, v, logger)
	handlerManager.SetupRoutes(router, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Reap idle sessions in the background until shutdown.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				sessionService.SweepIdle(sweepCtx)
			}
		}
	}()

	go func() {
		logger.Info("Starting practice service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
