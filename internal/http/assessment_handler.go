package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"psyscreen/internal/repository"
	"psyscreen/internal/service"
)

// AssessmentHandler exposes the assessment engine to the delivering channel.
type AssessmentHandler struct {
	logger  *zap.Logger
	manager *service.SessionManager
}

func NewAssessmentHandler(logger *zap.Logger, manager *service.SessionManager) *AssessmentHandler {
	return &AssessmentHandler{
		logger:  logger,
		manager: manager,
	}
}

// StartAssessment handles POST /assessments.
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id" binding:"required"`
		DisplayName  string `json:"display_name"`
		InstrumentID string `json:"instrument_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid start assessment request", zap.Error(err))
		writeError(c, http.StatusBadRequest, "bad_request", "invalid request")
		return
	}

	step, err := h.manager.Start(c.Request.Context(), req.UserID, req.DisplayName, req.InstrumentID)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, step)
}

// SubmitAnswer handles POST /assessments/:id/answers.
func (h *AssessmentHandler) SubmitAnswer(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Value      *int   `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit answer request", zap.Error(err))
		writeError(c, http.StatusBadRequest, "bad_request", "invalid request")
		return
	}

	step, err := h.manager.SubmitAnswer(c.Request.Context(), sessionID, req.QuestionID, *req.Value)
	if err != nil {
		h.writeRejection(c, sessionID, err)
		return
	}

	c.JSON(http.StatusOK, step)
}

// CurrentQuestion handles GET /assessments/:id/question.
func (h *AssessmentHandler) CurrentQuestion(c *gin.Context) {
	step, err := h.manager.CurrentPrompt(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

// GetProfile handles GET /users/:id/profile.
func (h *AssessmentHandler) GetProfile(c *gin.Context) {
	profile, err := h.manager.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			writeError(c, http.StatusNotFound, "profile_not_found", "user profile not found")
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal", "could not load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ListResults handles GET /users/:id/results.
func (h *AssessmentHandler) ListResults(c *gin.Context) {
	results, err := h.manager.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("list results failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal", "could not load results")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// writeRejection maps a submit failure to its status and, for sequence and
// option rejections, re-issues the unchanged current prompt so the channel
// can re-render it.
func (h *AssessmentHandler) writeRejection(c *gin.Context, sessionID string, err error) {
	switch {
	case errors.Is(err, service.ErrOutOfSequence), errors.Is(err, service.ErrInvalidOption):
		status := http.StatusConflict
		kind := "out_of_sequence"
		if errors.Is(err, service.ErrInvalidOption) {
			status = http.StatusUnprocessableEntity
			kind = "invalid_option"
		}
		body := gin.H{"error": gin.H{"kind": kind, "message": err.Error()}}
		if step, promptErr := h.manager.CurrentPrompt(c.Request.Context(), sessionID); promptErr == nil {
			body["current"] = step
		}
		c.JSON(status, body)
	default:
		h.writeEngineError(c, err)
	}
}

func (h *AssessmentHandler) writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInstrumentNotFound):
		writeError(c, http.StatusNotFound, "instrument_not_found", "unknown instrument")
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "session_not_found", "no active session")
	case errors.Is(err, service.ErrPersistenceFailure):
		writeError(c, http.StatusServiceUnavailable, "persistence_failure", "could not store the result, please retry")
	default:
		h.logger.Error("assessment request failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"error": gin.H{"kind": kind, "message": message}})
}
