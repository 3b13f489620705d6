package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/repositories"
	"github.com/echo-english/practice-service/internal/services"
	"github.com/echo-english/practice-service/internal/utils"
	"github.com/echo-english/practice-service/internal/validator"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
	importService services.ImportExportService
	validator     *validator.Validator
}

func NewLessonHandler(
	lessonService services.LessonService,
	importService services.ImportExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
		importService: importService,
		validator:     validator,
	}
}

// ListLessons returns the lesson catalog, filterable by level and keyword.
// @Summary List lessons
// @Tags lessons
// @Produce json
// @Param level query string false "CEFR level filter"
// @Param keyword query string false "Keyword substring filter"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} SuccessResponse
// @Router /lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	size := parseIntQuery(c, "size", 20)

	filters := repositories.LessonFilters{
		Keyword: c.Query("keyword"),
		Limit:   size,
		Offset:  (page - 1) * size,
	}
	if level := c.Query("level"); level != "" {
		cefr := models.CEFRLevel(level)
		if !cefr.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid level",
				Details: "must be a valid CEFR level (A1, A2, B1, B2, C1, C2)",
			})
			return
		}
		filters.Level = &cefr
	}

	lessons, total, err := h.lessonService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lessons": lessons,
		"total":   total,
		"page":    page,
		"size":    size,
	})
}

// GetLesson returns one lesson's metadata.
// @Summary Get lesson
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} models.Lesson
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}

	lesson, err := h.lessonService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// GetTranscript returns the lesson transcript parsed into timestamped lines.
// @Summary Get lesson transcript
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} models.Transcript
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id}/transcript [get]
func (h *LessonHandler) GetTranscript(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}

	transcript, err := h.lessonService.GetTranscript(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, transcript)
}

// GetClozeItems returns the lesson's pre-authored cloze items.
// @Summary Get lesson cloze items
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id}/cloze [get]
func (h *LessonHandler) GetClozeItems(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}

	items, err := h.lessonService.GetClozeItems(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// ImportLessons ingests a CSV or Excel file of lessons and cloze questions.
// @Summary Import lessons from file
// @Tags lessons
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /lessons/import [post]
func (h *LessonHandler) ImportLessons(c *gin.Context) {
	h.LogRequest(c, "Importing lessons")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	result, err := h.importService.ImportLessonsFromFile(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *LessonHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: validationError.Message,
			Details: validationError,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lesson not found",
		})
	case errors.Is(err, services.ErrTranscriptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lesson transcript not found",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled lesson service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
