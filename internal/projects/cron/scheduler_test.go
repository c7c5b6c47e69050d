package cronjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/projectstest"
)

func TestRunOnce_CancelsOnlyStaleInProgress(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := projectstest.NewMemRepo(
		&domain.Project{ID: "stale", UserID: "u", Status: domain.StatusInProgress},
		&domain.Project{ID: "fresh", UserID: "u", Status: domain.StatusInProgress},
		&domain.Project{ID: "pending", UserID: "u", Status: domain.StatusPending},
	)
	repo.Touch("stale", now.Add(-20*time.Minute))
	repo.Touch("fresh", now.Add(-time.Minute))
	repo.Touch("pending", now.Add(-time.Hour))

	s := NewScheduler(repo, 15*time.Minute, "0 * * * * *", nil)
	s.now = func() time.Time { return now }

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, domain.StatusCancelled, repo.Status("stale"))
	assert.Equal(t, domain.StatusInProgress, repo.Status("fresh"))
	assert.Equal(t, domain.StatusPending, repo.Status("pending"))
}

type failingRepo struct{}

func (failingRepo) CancelStale(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestRunOnce_Error(t *testing.T) {
	s := NewScheduler(failingRepo{}, time.Minute, "0 * * * * *", nil)

	_, err := s.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(failingRepo{}, time.Minute, "every minute", nil)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(projectstest.NewMemRepo(), time.Minute, "*/1 * * * * *", nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
