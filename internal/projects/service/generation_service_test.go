package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/planner"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/projectstest"
)

const validPlan = `<think>planning</think>{
	"market_analysis": {"market_size": "$4B", "target_audience": "Students", "customer_personas": "x", "pain_points": "y"},
	"financial_projections": {"initial_investment": "1200.5", "break_even_point": 7.6, "profit_margin": "abc", "revenue_streams": []},
	"executive_summary": "Summary"
}`

func pendingProject(status domain.Status) *domain.Project {
	return &domain.Project{ID: "p-1", UserID: "user-1", Title: "Coffee Cart", Status: status}
}

func TestGenerate_Success(t *testing.T) {
	repo := projectstest.NewMemRepo(pendingProject(domain.StatusPending))
	gw := &fakeGateway{content: validPlan}
	svc := NewGenerationService(repo, gw, "sonar-deep-research", nil)

	require.NoError(t, svc.Generate(context.Background(), "user-1", "p-1"))

	assert.Equal(t, []domain.Status{domain.StatusInProgress, domain.StatusSuccess}, repo.History())
	assert.Equal(t, domain.StatusSuccess, repo.Status("p-1"))
	assert.Equal(t, "$4B", repo.Saved()[domain.ColMarketSize])
	assert.Equal(t, 1200.5, repo.Saved()[domain.ColInitialInvestment])
	assert.Equal(t, int64(8), repo.Saved()[domain.ColBreakEventPoint])
	assert.Nil(t, repo.Saved()[domain.ColProfitMargin])

	require.Len(t, gw.requests, 1)
	req := gw.requests[0]
	assert.Equal(t, "sonar-deep-research", req.Model)
	assert.Equal(t, 0.5, *req.Temperature)
	assert.Equal(t, 4000, *req.MaxTokens)
	assert.Equal(t, planner.PlanSchemaName, req.ResponseFormat.JSONSchema.Name)
}

func TestGenerate_RetryFromTerminalReentersPending(t *testing.T) {
	for _, status := range []domain.Status{domain.StatusSuccess, domain.StatusCancelled} {
		repo := projectstest.NewMemRepo(pendingProject(status))
		svc := NewGenerationService(repo, &fakeGateway{content: validPlan}, "m", nil)

		require.NoError(t, svc.Generate(context.Background(), "user-1", "p-1"))
		assert.Equal(t, []domain.Status{domain.StatusPending, domain.StatusInProgress, domain.StatusSuccess}, repo.History(), status)
	}
}

func TestGenerate_AlreadyInProgress(t *testing.T) {
	repo := projectstest.NewMemRepo(pendingProject(domain.StatusInProgress))
	gw := &fakeGateway{content: validPlan}
	svc := NewGenerationService(repo, gw, "m", nil)

	err := svc.Generate(context.Background(), "user-1", "p-1")
	assert.ErrorIs(t, err, domain.ErrGenerationInProgress)
	assert.Empty(t, gw.requests)
	assert.Empty(t, repo.History())
	assert.Equal(t, domain.StatusInProgress, repo.Status("p-1"))
}

func TestGenerate_NotFound(t *testing.T) {
	repo := projectstest.NewMemRepo(pendingProject(domain.StatusPending))
	svc := NewGenerationService(repo, &fakeGateway{}, "m", nil)

	err := svc.Generate(context.Background(), "someone-else", "p-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.History())
}

func TestGenerate_FailuresEndCancelled(t *testing.T) {
	tests := []struct {
		name    string
		gw      *fakeGateway
		saveErr error
		check   func(t *testing.T, err error)
	}{
		{
			name: "gateway rate limited",
			gw:   &fakeGateway{err: &llm.Error{Kind: llm.KindRateLimited, StatusCode: 429}},
			check: func(t *testing.T, err error) {
				assert.True(t, llm.IsKind(err, llm.KindRateLimited))
			},
		},
		{
			name: "content not json",
			gw:   &fakeGateway{content: "I cannot help with that."},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, planner.ErrContentFormat)
			},
		},
		{
			name: "malformed json",
			gw:   &fakeGateway{content: `{"market_analysis": [1,2}`},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, planner.ErrParse)
			},
		},
		{
			name:    "persistence",
			gw:      &fakeGateway{content: validPlan},
			saveErr: errBoom,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrPersistence)
				assert.ErrorIs(t, err, errBoom)
				assert.NotErrorIs(t, err, planner.ErrParse)

				var pe *domain.PersistenceError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, errBoom, pe.Err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := projectstest.NewMemRepo(pendingProject(domain.StatusPending))
			repo.SaveErr = tt.saveErr
			svc := NewGenerationService(repo, tt.gw, "m", nil)

			err := svc.Generate(context.Background(), "user-1", "p-1")
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, []domain.Status{domain.StatusInProgress, domain.StatusCancelled}, repo.History())
			assert.Nil(t, repo.Saved(), "no generated fields are written")
		})
	}
}

func TestGenerate_ClientDisconnectStillCancels(t *testing.T) {
	repo := projectstest.NewMemRepo(pendingProject(domain.StatusPending))
	gw := &fakeGateway{block: make(chan struct{})}
	svc := NewGenerationService(repo, gw, "m", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Generate(ctx, "user-1", "p-1") }()

	require.Eventually(t, func() bool { return repo.Status("p-1") == domain.StatusInProgress }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("generate did not return after cancellation")
	}
	assert.Equal(t, domain.StatusCancelled, repo.Status("p-1"))
}

func TestGenerate_ConcurrentRequestsOnlyOneRuns(t *testing.T) {
	repo := projectstest.NewMemRepo(pendingProject(domain.StatusPending))
	gw := &fakeGateway{content: validPlan, block: make(chan struct{})}
	svc := NewGenerationService(repo, gw, "m", nil)

	first := make(chan error, 1)
	go func() { first <- svc.Generate(context.Background(), "user-1", "p-1") }()
	require.Eventually(t, func() bool { return repo.Status("p-1") == domain.StatusInProgress }, time.Second, 5*time.Millisecond)

	err := svc.Generate(context.Background(), "user-1", "p-1")
	assert.ErrorIs(t, err, domain.ErrGenerationInProgress)

	close(gw.block)
	require.NoError(t, <-first)
	assert.Equal(t, domain.StatusSuccess, repo.Status("p-1"))
}
