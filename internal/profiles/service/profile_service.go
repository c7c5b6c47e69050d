package service

import (
	"context"
	"errors"

	"github.com/gapmap-ai/gapmap-backend/internal/profiles/domain"
)

type Repository interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
}

type ProfileService struct {
	repo Repository
}

func NewProfileService(repo Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the user's profile, or an unsaved default one.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.NewProfile(userID), nil
	}
	return p, err
}

// Update merges the provided fields into the stored profile.
func (s *ProfileService) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Apply(req)
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateNotifications merges the provided toggles into the stored settings.
func (s *ProfileService) UpdateNotifications(ctx context.Context, userID string, req domain.UpdateNotificationsRequest) (*domain.Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.NotificationSettings.Apply(req)
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
