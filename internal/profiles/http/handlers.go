package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/auth"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/profiles/domain"
)

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	p, err := h.profiles.Get(c.Request.Context(), uid)
	if err != nil {
		h.internalError(c, "get_profile", "failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": p})
}

// UpdateProfile updates the user's profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	p, err := h.profiles.Update(c.Request.Context(), uid, domain.UpdateProfileRequest{
		FullName: req.FullName,
		Bio:      req.Bio,
		Company:  req.Company,
	})
	if err != nil {
		h.internalError(c, "update_profile", "failed to save profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": p})
}

func (h *Handler) UpdateNotifications(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	var req updateNotificationsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	p, err := h.profiles.UpdateNotifications(c.Request.Context(), uid, domain.UpdateNotificationsRequest{
		EmailNotifications: req.EmailNotifications,
		MarketingEmails:    req.MarketingEmails,
		ProductUpdates:     req.ProductUpdates,
	})
	if err != nil {
		h.internalError(c, "update_notifications", "failed to save notification settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notification_settings": p.NotificationSettings})
}

func (h *Handler) internalError(c *gin.Context, op, msg string, err error) {
	logger.For(c.Request.Context(), h.log, op).Error("profile request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": msg})
}
