package http

import (
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/profiles/service"
)

type Handler struct {
	profiles *service.ProfileService
	log      *zap.Logger
}

func New(profiles *service.ProfileService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{profiles: profiles, log: log}
}

type updateProfileReq struct {
	FullName *string `json:"full_name" binding:"omitempty,max=200"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
	Company  *string `json:"company" binding:"omitempty,max=200"`
}

type updateNotificationsReq struct {
	EmailNotifications *bool `json:"email_notifications"`
	MarketingEmails    *bool `json:"marketing_emails"`
	ProductUpdates     *bool `json:"product_updates"`
}
