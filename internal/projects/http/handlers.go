package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/auth"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, "invalid body", "")
		return
	}

	p, err := h.projects.Create(c.Request.Context(), domain.CreateProjectRequest{
		UserID:             auth.UserID(c),
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		InvestmentRequired: req.InvestmentRequired,
		TimeCommitment:     req.TimeCommitment,
		RiskLevel:          req.RiskLevel,
		PotentialReturns:   req.PotentialReturns,
	})
	if err != nil {
		h.respondError(c, logger.For(c.Request.Context(), h.log, "create_project"), err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "project": toResponse(p, false)})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, logger.For(c.Request.Context(), h.log, "list_projects"), err)
		return
	}

	out := make([]projectResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i], false))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "projects": out})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, logger.For(c.Request.Context(), h.log, "get_project"), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "project": toResponse(p, true)})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.respondError(c, logger.For(c.Request.Context(), h.log, "delete_project"), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// generate runs the business-plan generation synchronously. The response is
// only written once the project has reached SUCCESS or CANCELLED.
func (h *Handler) generate(c *gin.Context) {
	var req generateReq
	_ = c.ShouldBindJSON(&req)
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		fail(c, http.StatusBadRequest, "Project ID is required", "")
		return
	}

	log := logger.For(c.Request.Context(), h.log, "generate_project_detail").With(zap.String("project_id", projectID))
	if err := h.generation.Generate(c.Request.Context(), auth.UserID(c), projectID); err != nil {
		log.Warn("generation failed", zap.Error(err))
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
