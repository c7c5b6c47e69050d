package http

import (
	"time"

	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/service"
)

const defaultPollInterval = time.Second

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects   *service.ProjectService
	generation *service.GenerationService
	chat       *service.ChatService
	log        *zap.Logger

	// PollInterval is how often the status stream re-reads the project.
	PollInterval time.Duration
	// KeepAlive is the SSE comment ping period.
	KeepAlive time.Duration
}

func New(projects *service.ProjectService, generation *service.GenerationService, chat *service.ChatService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		projects:     projects,
		generation:   generation,
		chat:         chat,
		log:          log,
		PollInterval: defaultPollInterval,
		KeepAlive:    15 * time.Second,
	}
}

type createReq struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description"`
	InvestmentRequired *string `json:"investment_required"`
	TimeCommitment     *string `json:"time_commitment"`
	RiskLevel          *string `json:"risk_level"`
	PotentialReturns   *string `json:"potential_returns"`
}

type generateReq struct {
	ProjectID string `json:"projectId"`
}

type chatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant system"`
	Content string `json:"content" binding:"required"`
}

type chatReq struct {
	ChatHistory []chatMessage `json:"chatHistory" binding:"dive"`
	ProjectID   string        `json:"projectId"`
}

// projectResponse is a project with its composite columns decoded.
type projectResponse struct {
	*domain.Project
	HasGeneratedDetails bool            `json:"has_generated_details"`
	Details             *domain.Details `json:"details,omitempty"`
}

func toResponse(p *domain.Project, withDetails bool) projectResponse {
	r := projectResponse{Project: p, HasGeneratedDetails: p.HasGeneratedDetails()}
	if withDetails && r.HasGeneratedDetails {
		d := p.Details()
		r.Details = &d
	}
	return r
}

type statusEvent struct {
	ID                  string         `json:"id"`
	Status              domain.Status  `json:"status"`
	HasGeneratedDetails bool           `json:"has_generated_details"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func toStatusEvent(p *domain.Project) statusEvent {
	return statusEvent{
		ID:                  p.ID,
		Status:              p.Status,
		HasGeneratedDetails: p.HasGeneratedDetails(),
		UpdatedAt:           p.UpdatedAt,
	}
}
