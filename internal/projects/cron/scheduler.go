package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/projects/service"
)

// Scheduler periodically cancels generations whose worker vanished, so a
// project never stays IN_PROGRESS after a crash or redeploy.
type Scheduler struct {
	repo       service.StaleCanceller
	staleAfter time.Duration
	schedule   string
	log        *zap.Logger
	now        func() time.Time

	c *cron.Cron
}

func NewScheduler(repo service.StaleCanceller, staleAfter time.Duration, schedule string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		repo:       repo,
		staleAfter: staleAfter,
		schedule:   schedule,
		log:        log.With(zap.String("job", "stale_generation_sweep")),
		now:        time.Now,
	}
}

// Start registers the sweep and starts the cron runner. The schedule uses
// the six-field seconds format.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.schedule, err)
	}

	s.c = c
	c.Start()
	s.log.Info("cron scheduler started", zap.String("schedule", s.schedule), zap.Duration("stale_after", s.staleAfter))
	return nil
}

// Stop halts the runner and waits for a running sweep to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.c == nil {
		return
	}
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce cancels every IN_PROGRESS project untouched for longer than
// staleAfter.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)
	n, err := s.repo.CancelStale(ctx, cutoff)
	if err != nil {
		s.log.Error("sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.log.Warn("cancelled stale generations", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}
