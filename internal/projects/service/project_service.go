package service

import (
	"context"
	"time"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

// Repository is the persistence the project services depend on.
type Repository interface {
	Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error)
	Get(ctx context.Context, userID, id string) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]domain.Project, error)
	Delete(ctx context.Context, userID, id string) error
	SetStatus(ctx context.Context, userID, id string, from []domain.Status, to domain.Status) error
	SaveGenerated(ctx context.Context, userID, id string, fields domain.Fields) error
}

// StaleCanceller is implemented by repositories that can sweep abandoned
// generations.
type StaleCanceller interface {
	CancelStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Gateway is the chat-completions client.
type Gateway interface {
	Complete(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo Repository
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository) *ProjectService {
	return &ProjectService{repo: repo}
}

// Create saves a new idea for the user.
func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	return s.repo.Create(ctx, req)
}

// List returns all projects for a user
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.repo.List(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, userID, id)
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
