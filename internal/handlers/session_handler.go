package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/services"
	"github.com/echo-english/practice-service/internal/utils"
	"github.com/echo-english/practice-service/internal/validator"
)

type SessionHandler struct {
	BaseHandler
	sessionService    services.SessionService
	lessonService     services.LessonService
	generationService services.GenerationService
	exportService     services.ImportExportService
	validator         *validator.Validator
}

// CreateSessionRequest starts a practice session. Items can come from three
// places, in order of precedence: inline candidates, the lesson's pre-authored
// questions, or fresh generation when generate is set.
type CreateSessionRequest struct {
	LessonID *uint                   `json:"lesson_id" validate:"omitempty,min=1"`
	Items    []models.ClozeCandidate `json:"items" validate:"omitempty,max=50"`
	Generate bool                    `json:"generate"`
	Count    int                     `json:"count" validate:"omitempty,min=1,max=10"`
	Level    models.CEFRLevel        `json:"level" validate:"omitempty,cefr_level"`
}

// SubmitAnswerRequest carries one learner submission for grading.
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

func NewSessionHandler(
	sessionService services.SessionService,
	lessonService services.LessonService,
	generationService services.GenerationService,
	exportService services.ImportExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:       NewBaseHandler(logger),
		sessionService:    sessionService,
		lessonService:     lessonService,
		generationService: generationService,
		exportService:     exportService,
		validator:         validator,
	}
}

// CreateSession starts a new cloze practice session.
// @Summary Create practice session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest true "Session parameters"
// @Success 201 {object} models.ClozeSession
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating practice session", "lesson_id", req.LessonID, "inline_items", len(req.Items))

	items, err := h.resolveItems(c, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	params := &services.CreateSessionParams{
		LearnerID: h.extractLearnerID(c),
		Items:     items,
	}
	if req.LessonID != nil {
		params.LessonID = *req.LessonID
	}

	session, err := h.sessionService.Create(c.Request.Context(), params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// resolveItems picks the item source for a new session.
func (h *SessionHandler) resolveItems(c *gin.Context, req *CreateSessionRequest) ([]models.ClozeItem, error) {
	if len(req.Items) > 0 {
		items, rejected := h.validator.Cloze().ValidateBatch(req.Items)
		if rejected > 0 {
			h.LogWarn(c, "Rejected invalid inline cloze candidates", "rejected", rejected)
		}
		return items, nil
	}

	if req.LessonID == nil {
		return nil, fmt.Errorf("%w: lesson_id or items is required", services.ErrValidationFailed)
	}

	items, err := h.lessonService.GetClozeItems(c.Request.Context(), *req.LessonID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 && req.Generate {
		result, err := h.generationService.GenerateClozeItems(c.Request.Context(), &services.GenerateClozeRequest{
			LessonID: *req.LessonID,
			Count:    req.Count,
			Level:    req.Level,
		})
		if err != nil {
			return nil, err
		}
		items = result.Items
	}

	return items, nil
}

// GetSession returns the full session state including attempt history.
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ClozeSession
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAnswer grades one submission against the item at the given index.
// @Summary Submit answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index (zero-based)"
// @Param answer body SubmitAnswerRequest true "Submission"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/items/{index}/submit [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid index",
			Details: err.Error(),
		})
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), sessionID, index, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScore returns the session score.
// @Summary Get session score
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionScore
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/score [get]
func (h *SessionHandler) GetScore(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	score, err := h.sessionService.Score(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}

// ExportResults downloads the session results as a spreadsheet.
// @Summary Export session results
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) ExportResults(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Exporting session results", "session_id", sessionID)

	data, err := h.exportService.ExportSessionResults(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("session-%s.xlsx", sessionID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// DiscardSession drops the session and its attempt history.
// @Summary Discard session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DiscardSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	if err := h.sessionService.Discard(c.Request.Context(), sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
		})
	case errors.Is(err, services.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lesson not found",
		})
	case errors.Is(err, services.ErrEmptySession):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Session requires at least one item",
		})
	case errors.Is(err, services.ErrItemIndexOutOfRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Item index out of range",
			Details: err.Error(),
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled session service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
