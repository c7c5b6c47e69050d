// Package projectstest provides an in-memory project repository for tests.
package projectstest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

// MemRepo is a concurrency-safe in-memory project store that records every
// status change it applies.
type MemRepo struct {
	// SaveErr and GetErr, when set, are returned by SaveGenerated and Get.
	SaveErr error
	GetErr  error

	mu       sync.Mutex
	projects map[string]*domain.Project
	history  []domain.Status
	saved    domain.Fields
}

func NewMemRepo(projects ...*domain.Project) *MemRepo {
	r := &MemRepo{projects: map[string]*domain.Project{}}
	for _, p := range projects {
		cp := *p
		r.projects[p.ID] = &cp
	}
	return r
}

func (r *MemRepo) Create(_ context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	p := &domain.Project{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		Title:              req.Title,
		Description:        req.Description,
		Status:             domain.StatusPending,
		InvestmentRequired: req.InvestmentRequired,
		TimeCommitment:     req.TimeCommitment,
		RiskLevel:          req.RiskLevel,
		PotentialReturns:   req.PotentialReturns,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	r.projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *MemRepo) Get(_ context.Context, userID, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemRepo) List(_ context.Context, userID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *MemRepo) SetStatus(_ context.Context, userID, id string, from []domain.Status, to domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok || p.UserID != userID || !slices.Contains(from, p.Status) {
		return domain.ErrInvalidTransition
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	r.history = append(r.history, to)
	return nil
}

func (r *MemRepo) SaveGenerated(_ context.Context, userID, id string, fields domain.Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	if err := fields.Validate(); err != nil {
		return err
	}
	p, ok := r.projects[id]
	if !ok || p.UserID != userID || p.Status != domain.StatusInProgress {
		return domain.ErrNotInProgress
	}
	p.Apply(fields)
	p.Status = domain.StatusSuccess
	p.UpdatedAt = time.Now().UTC()
	r.history = append(r.history, domain.StatusSuccess)
	r.saved = fields
	return nil
}

func (r *MemRepo) CancelStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.projects {
		if p.Status == domain.StatusInProgress && p.UpdatedAt.Before(cutoff) {
			p.Status = domain.StatusCancelled
			p.UpdatedAt = time.Now().UTC()
			r.history = append(r.history, domain.StatusCancelled)
			n++
		}
	}
	return n, nil
}

// History returns the statuses applied so far, in order.
func (r *MemRepo) History() []domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// Saved returns the fields of the last successful SaveGenerated call.
func (r *MemRepo) Saved() domain.Fields {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved
}

// Status returns the current status of id, or "" when it does not exist.
func (r *MemRepo) Status(id string) domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		return p.Status
	}
	return ""
}

// Touch sets the project's UpdatedAt, for tests that depend on age.
func (r *MemRepo) Touch(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		p.UpdatedAt = at
	}
}
