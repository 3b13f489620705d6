package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/echo-english/practice-service/internal/config"
	"github.com/echo-english/practice-service/internal/services"
	"github.com/echo-english/practice-service/internal/utils"
	"github.com/echo-english/practice-service/internal/validator"
)

type HandlerManager struct {
	lessonHandler     *LessonHandler
	sessionHandler    *SessionHandler
	generationHandler *GenerationHandler
}

func NewHandlerManager(
	lessonService services.LessonService,
	sessionService services.SessionService,
	generationService services.GenerationService,
	importExportService services.ImportExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		lessonHandler:     NewLessonHandler(lessonService, importExportService, validator, logger),
		sessionHandler:    NewSessionHandler(sessionService, lessonService, generationService, importExportService, validator, logger),
		generationHandler: NewGenerationHandler(generationService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "practice-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg))
	{
		// Lesson catalog routes
		lessons := v1.Group("/lessons")
		{
			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
			lessons.GET("/:id/transcript", hm.lessonHandler.GetTranscript)
			lessons.GET("/:id/cloze", hm.lessonHandler.GetClozeItems)
			lessons.POST("/import", hm.lessonHandler.ImportLessons)
		}

		// Practice session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/items/:index/submit", hm.sessionHandler.SubmitAnswer)
			sessions.GET("/:id/score", hm.sessionHandler.GetScore)
			sessions.GET("/:id/export", hm.sessionHandler.ExportResults)
			sessions.DELETE("/:id", hm.sessionHandler.DiscardSession)
		}

		// Generation routes
		generate := v1.Group("/generate")
		{
			generate.POST("/cloze", hm.generationHandler.GenerateCloze)
			generate.POST("/dialogue", hm.generationHandler.GenerateDialogue)
		}

		v1.POST("/translate", hm.generationHandler.Translate)
	}
}
