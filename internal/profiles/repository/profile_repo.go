package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gapmap-ai/gapmap-backend/internal/profiles/domain"
)

// DB is the subset of pgxpool.Pool the profile repository needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ProfileRepository struct {
	db DB
}

func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves a profile by user id.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	const query = `
		SELECT id, full_name, bio, company, notification_settings, updated_at
		FROM profiles
		WHERE id = $1`

	var (
		p         domain.Profile
		settings  []byte
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.FullName, &p.Bio, &p.Company, &settings, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.UpdatedAt = &updatedAt

	// Missing keys keep their defaults.
	p.NotificationSettings = domain.DefaultNotificationSettings()
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &p.NotificationSettings); err != nil {
			p.NotificationSettings = domain.DefaultNotificationSettings()
		}
	}
	return &p, nil
}

// Upsert writes the whole profile and stamps updated_at.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	settings, err := json.Marshal(p.NotificationSettings)
	if err != nil {
		return fmt.Errorf("encode notification settings: %w", err)
	}

	const query = `
		INSERT INTO profiles (id, full_name, bio, company, notification_settings, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    bio = EXCLUDED.bio,
		    company = EXCLUDED.company,
		    notification_settings = EXCLUDED.notification_settings,
		    updated_at = now()
		RETURNING updated_at`

	var updatedAt time.Time
	if err := r.db.QueryRow(ctx, query, p.ID, p.FullName, p.Bio, p.Company, string(settings)).Scan(&updatedAt); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	p.UpdatedAt = &updatedAt
	return nil
}
