package recommendations

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/planner"
)

const failedMsg = "Failed to generate recommendations"

type Recommender interface {
	Recommend(ctx context.Context, form planner.ProfileForm) (*Result, error)
}

type Handler struct {
	svc Recommender
	log *zap.Logger
}

func NewHandler(svc Recommender, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts POST /business-recommendation. extra runs before the
// handler, typically a rate limiter.
func (h *Handler) Register(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.POST("/business-recommendation", append(append([]gin.HandlerFunc(nil), extra...), h.recommend)...)
}

func (h *Handler) recommend(c *gin.Context) {
	var form planner.ProfileForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid profile", "details": err.Error()})
		return
	}

	res, err := h.svc.Recommend(c.Request.Context(), form)
	if err != nil {
		logger.For(c.Request.Context(), h.log, "business_recommendation").Error("recommendation failed", zap.Error(err))
		status, details := http.StatusInternalServerError, ""
		if _, ok := llm.AsError(err); ok {
			status, details = llm.StatusCode(err), llm.UserMessage(err)
		} else if errors.Is(err, planner.ErrContentFormat) {
			details = "Response is not valid JSON"
		}
		body := gin.H{"success": false, "error": failedMsg}
		if details != "" {
			body["details"] = details
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, res)
}
