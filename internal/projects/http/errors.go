package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/planner"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

func fail(c *gin.Context, status int, msg, details string) {
	body := gin.H{"success": false, "error": msg}
	if details != "" {
		body["details"] = details
	}
	c.JSON(status, body)
}

// respondError translates service errors into the API error body.
func (h *Handler) respondError(c *gin.Context, log *zap.Logger, err error) {
	// Before ErrNotFound: a rejected write is never reported as a missing project.
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		log.Error("failed to persist generated plan", zap.Error(pe.Err))
		details := "Database write failed"
		if errors.Is(pe.Err, domain.ErrNotInProgress) {
			details = "Generation was cancelled before the plan could be saved"
		}
		fail(c, http.StatusInternalServerError, "Failed to update project", details)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Project not found", "")
	case errors.Is(err, domain.ErrGenerationInProgress):
		fail(c, http.StatusConflict, "Generation already in progress for this project", "")
	case errors.Is(err, planner.ErrContentFormat):
		fail(c, http.StatusInternalServerError, "Invalid response format from AI", "Response is not valid JSON")
	case errors.Is(err, planner.ErrParse):
		fail(c, http.StatusInternalServerError, "Failed to parse AI generated content", err.Error())
	default:
		if ge, ok := llm.AsError(err); ok {
			fail(c, llm.StatusCode(err), llm.UserMessage(err), ge.Message)
			return
		}
		log.Error("request failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error", "")
	}
}
