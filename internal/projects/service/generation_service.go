package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/planner"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

const (
	planTemperature = 0.5
	planMaxTokens   = 4000
	cancelTimeout   = 10 * time.Second
)

// GenerationService runs the business plan pipeline for one project and
// owns its status transitions.
type GenerationService struct {
	repo  Repository
	llm   Gateway
	model string
	log   *zap.Logger
}

func NewGenerationService(repo Repository, gw Gateway, model string, log *zap.Logger) *GenerationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerationService{repo: repo, llm: gw, model: model, log: log}
}

// Generate moves the project to IN_PROGRESS, asks the model for a plan and
// stores it. Any failure after the project entered IN_PROGRESS leaves it
// CANCELLED.
func (s *GenerationService) Generate(ctx context.Context, userID, projectID string) error {
	log := logger.For(ctx, s.log, "generate_project_detail").With(zap.String("project_id", projectID))

	p, err := s.repo.Get(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if err := s.begin(ctx, p); err != nil {
		return err
	}
	log.Info("generation started", zap.String("model", s.model))

	start := time.Now()
	if err := s.run(ctx, log, p); err != nil {
		log.Warn("generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		s.cancel(ctx, log, userID, projectID)
		return err
	}

	log.Info("generation succeeded", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// begin performs PENDING -> IN_PROGRESS, re-entering PENDING first when the
// previous attempt is over.
func (s *GenerationService) begin(ctx context.Context, p *domain.Project) error {
	if p.Status == domain.StatusInProgress {
		return domain.ErrGenerationInProgress
	}

	if p.Status.Terminal() {
		if _, err := p.Status.Transition(domain.StatusPending); err != nil {
			return err
		}
		err := s.repo.SetStatus(ctx, p.UserID, p.ID, []domain.Status{domain.StatusSuccess, domain.StatusCancelled}, domain.StatusPending)
		if err != nil {
			return claimError(err)
		}
		p.Status = domain.StatusPending
	}

	if _, err := p.Status.Transition(domain.StatusInProgress); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, p.UserID, p.ID, []domain.Status{domain.StatusPending}, domain.StatusInProgress); err != nil {
		return claimError(err)
	}
	p.Status = domain.StatusInProgress
	return nil
}

// A conditional update that matched nothing means another request claimed
// the project first.
func claimError(err error) error {
	if errors.Is(err, domain.ErrInvalidTransition) {
		return domain.ErrGenerationInProgress
	}
	return err
}

func (s *GenerationService) run(ctx context.Context, log *zap.Logger, p *domain.Project) error {
	resp, err := s.llm.Complete(ctx, llm.ChatCompletionRequest{
		Model:          s.model,
		Messages:       planner.BuildPlanPrompt(p),
		Temperature:    llm.Float(planTemperature),
		MaxTokens:      llm.Int(planMaxTokens),
		ResponseFormat: llm.JSONSchemaFormat(planner.PlanSchemaName, planner.PlanSchema()),
	})
	if err != nil {
		return err
	}

	content := resp.Content()
	log.Debug("model output received",
		zap.Int("content_length", len(content)),
		zap.String("finish_reason", resp.FinishReason()),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	ex, err := planner.Extract(content, planner.ObjectPayload)
	if err != nil {
		return err
	}
	if ex.Reasoning != "" {
		log.Debug("reasoning trace stripped", zap.Int("reasoning_length", len(ex.Reasoning)))
	}

	plan, err := planner.DecodePlan(ex.JSON)
	if err != nil {
		return err
	}

	fields := plan.Fields()
	if err := s.repo.SaveGenerated(ctx, p.UserID, p.ID, fields); err != nil {
		return &domain.PersistenceError{Err: err}
	}
	p.Apply(fields)
	p.Status = domain.StatusSuccess
	return nil
}

// cancel runs detached from the request so a disconnecting client cannot
// leave the project IN_PROGRESS.
func (s *GenerationService) cancel(ctx context.Context, log *zap.Logger, userID, projectID string) {
	cctx, done := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
	defer done()

	err := s.repo.SetStatus(cctx, userID, projectID, []domain.Status{domain.StatusInProgress}, domain.StatusCancelled)
	if err != nil {
		log.Error("failed to cancel generation", zap.Error(err))
		return
	}
	log.Info("generation cancelled")
}
