package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/echo-english/practice-service/internal/services"
	"github.com/echo-english/practice-service/internal/utils"
)

type GenerationHandler struct {
	BaseHandler
	generationService services.GenerationService
}

// TranslateRequest carries dialogue text to translate for the learner.
type TranslateRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

func NewGenerationHandler(generationService services.GenerationService, logger utils.Logger) *GenerationHandler {
	return &GenerationHandler{
		BaseHandler:       NewBaseHandler(logger),
		generationService: generationService,
	}
}

// GenerateCloze produces validated cloze items from a lesson transcript.
// @Summary Generate cloze items
// @Tags generation
// @Accept json
// @Produce json
// @Param request body services.GenerateClozeRequest true "Generation parameters"
// @Success 200 {object} services.ClozeGenerationResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /generate/cloze [post]
func (h *GenerationHandler) GenerateCloze(c *gin.Context) {
	var req services.GenerateClozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating cloze items", "lesson_id", req.LessonID, "count", req.Count)

	result, err := h.generationService.GenerateClozeItems(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateDialogue produces a short keyword dialogue, optionally with speech
// audio.
// @Summary Generate practice dialogue
// @Tags generation
// @Accept json
// @Produce json
// @Param request body services.GenerateDialogueRequest true "Generation parameters"
// @Success 200 {object} services.DialogueResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /generate/dialogue [post]
func (h *GenerationHandler) GenerateDialogue(c *gin.Context) {
	var req services.GenerateDialogueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating dialogue", "keyword", req.Keyword, "with_audio", req.WithAudio)

	result, err := h.generationService.GenerateDialogue(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Translate renders dialogue text into Japanese for the learner.
// @Summary Translate dialogue
// @Tags generation
// @Accept json
// @Produce json
// @Param request body TranslateRequest true "Text to translate"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /translate [post]
func (h *GenerationHandler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	translation, err := h.generationService.Translate(c.Request.Context(), req.Text)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"translation": translation})
}

func (h *GenerationHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lesson not found",
		})
	case errors.Is(err, services.ErrTranscriptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lesson transcript not found",
		})
	case errors.Is(err, services.ErrGenerationFailed),
		errors.Is(err, services.ErrTranslationFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Generation provider request failed",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled generation service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
