package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

// DB is the subset of pgxpool.Pool used by the repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Composite columns are jsonb; they are read back as text and decoded by
// domain.Project.Details.
const selectColumns = `
	id, user_id, title, description, status, created_at, updated_at,
	investment_required, time_commitment, risk_level, potential_returns,
	market_size, target_audience, customer_personas, pain_points,
	executive_summary, business_model, brand_positioning, business_structure,
	key_competitors, initial_investment, break_event_point, profit_margin,
	revenue_streams::text, growth_opportunities::text, operational_requirements::text,
	implementation_timeline::text, digital_marketing::text, physical_marketing::text,
	required_permits_licenses::text, insurance_needs::text, main_risks::text,
	risk_mitigations::text, swot_analysis::text, differentiation::text,
	competitor_links::text, citations::text, learning_materials::text, tools::text,
	demand_forecast::text, tam_sam_som::text, market_statistics::text`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p      domain.Project
		status string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &status, &p.CreatedAt, &p.UpdatedAt,
		&p.InvestmentRequired, &p.TimeCommitment, &p.RiskLevel, &p.PotentialReturns,
		&p.MarketSize, &p.TargetAudience, &p.CustomerPersonas, &p.PainPoints,
		&p.ExecutiveSummary, &p.BusinessModel, &p.BrandPositioning, &p.BusinessStructure,
		&p.KeyCompetitors, &p.InitialInvestment, &p.BreakEventPoint, &p.ProfitMargin,
		&p.RevenueStreams, &p.GrowthOpportunities, &p.OperationalRequirements,
		&p.ImplementationTimeline, &p.DigitalMarketing, &p.PhysicalMarketing,
		&p.RequiredPermitsLicenses, &p.InsuranceNeeds, &p.MainRisks,
		&p.RiskMitigations, &p.SwotAnalysis, &p.Differentiation,
		&p.CompetitorLinks, &p.Citations, &p.LearningMaterials, &p.Tools,
		&p.DemandForecast, &p.TamSamSom, &p.MarketStatistics,
	)
	if err != nil {
		return nil, err
	}
	if p.Status, err = domain.ParseStatus(status); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project for the given user. New projects start PENDING.
func (r *ProjectRepository) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title required")
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("user id required")
	}

	p := &domain.Project{
		ID:                 uuid.NewString(),
		UserID:             req.UserID,
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Status:             domain.StatusPending,
		InvestmentRequired: req.InvestmentRequired,
		TimeCommitment:     req.TimeCommitment,
		RiskLevel:          req.RiskLevel,
		PotentialReturns:   req.PotentialReturns,
	}

	const q = `
INSERT INTO project (id, user_id, title, description, status,
	investment_required, time_commitment, risk_level, potential_returns)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q,
		p.ID, p.UserID, p.Title, p.Description, string(p.Status),
		p.InvestmentRequired, p.TimeCommitment, p.RiskLevel, p.PotentialReturns,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// Get returns one project owned by userID.
func (r *ProjectRepository) Get(ctx context.Context, userID, id string) (*domain.Project, error) {
	q := `SELECT ` + selectColumns + ` FROM project WHERE id = $1 AND user_id = $2`
	p, err := scanProject(r.db.QueryRow(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns all projects of the given user, newest first.
func (r *ProjectRepository) List(ctx context.Context, userID string) ([]domain.Project, error) {
	q := `SELECT ` + selectColumns + ` FROM project WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM project WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus moves the project to `to` only while its status is one of from.
// Zero matched rows is reported as ErrInvalidTransition.
func (r *ProjectRepository) SetStatus(ctx context.Context, userID, id string, from []domain.Status, to domain.Status) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	const q = `
UPDATE project
SET status = $3, updated_at = now()
WHERE id = $1 AND user_id = $2 AND status = ANY($4);
`
	tag, err := r.db.Exec(ctx, q, id, userID, string(to), allowed)
	if err != nil {
		return fmt.Errorf("set status %s: %w", to, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: project %s not in %v", domain.ErrInvalidTransition, id, allowed)
	}
	return nil
}

// SaveGenerated writes every generated field and marks the project SUCCESS in
// a single statement. It only applies while the project is IN_PROGRESS.
func (r *ProjectRepository) SaveGenerated(ctx context.Context, userID, id string, fields domain.Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	cols := fields.Columns()
	sets := make([]string, 0, len(cols)+2)
	args := make([]any, 0, len(cols)+2)
	args = append(args, id, userID)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+3))
		args = append(args, fields[col])
	}
	sets = append(sets, "status = '"+string(domain.StatusSuccess)+"'", "updated_at = now()")

	q := "UPDATE project SET " + strings.Join(sets, ", ") +
		" WHERE id = $1 AND user_id = $2 AND status = '" + string(domain.StatusInProgress) + "'"

	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("save generated fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save generated fields: %w", domain.ErrNotInProgress)
	}
	return nil
}

// CancelStale cancels generations that have been IN_PROGRESS since before
// cutoff and returns how many were cancelled.
func (r *ProjectRepository) CancelStale(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
UPDATE project
SET status = 'CANCELLED', updated_at = now()
WHERE status = 'IN_PROGRESS' AND updated_at < $1;
`
	tag, err := r.db.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cancel stale generations: %w", err)
	}
	return tag.RowsAffected(), nil
}
