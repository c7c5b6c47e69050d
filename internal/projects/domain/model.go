package domain

import (
	"fmt"
	"sort"
	"time"
)

// Project is one business-opportunity idea owned by a single user, plus the
// business plan generated for it. Generated columns stay nil until a
// generation attempt succeeds.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	InvestmentRequired *string `json:"investment_required,omitempty"`
	TimeCommitment     *string `json:"time_commitment,omitempty"`
	RiskLevel          *string `json:"risk_level,omitempty"`
	PotentialReturns   *string `json:"potential_returns,omitempty"`

	MarketSize        *string `json:"market_size,omitempty"`
	TargetAudience    *string `json:"target_audience,omitempty"`
	CustomerPersonas  *string `json:"customer_personas,omitempty"`
	PainPoints        *string `json:"pain_points,omitempty"`
	ExecutiveSummary  *string `json:"executive_summary,omitempty"`
	BusinessModel     *string `json:"business_model,omitempty"`
	BrandPositioning  *string `json:"brand_positioning,omitempty"`
	BusinessStructure *string `json:"business_structure,omitempty"`
	KeyCompetitors    *string `json:"key_competitors,omitempty"`

	InitialInvestment *float64 `json:"initial_investment,omitempty"`
	BreakEventPoint   *int64   `json:"break_event_point,omitempty"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`

	// JSON-encoded composite values, see details.go for their shapes.
	RevenueStreams          *string `json:"revenue_streams,omitempty"`
	GrowthOpportunities     *string `json:"growth_opportunities,omitempty"`
	OperationalRequirements *string `json:"operational_requirements,omitempty"`
	ImplementationTimeline  *string `json:"implementation_timeline,omitempty"`
	DigitalMarketing        *string `json:"digital_marketing,omitempty"`
	PhysicalMarketing       *string `json:"physical_marketing,omitempty"`
	RequiredPermitsLicenses *string `json:"required_permits_licenses,omitempty"`
	InsuranceNeeds          *string `json:"insurance_needs,omitempty"`
	MainRisks               *string `json:"main_risks,omitempty"`
	RiskMitigations         *string `json:"risk_mitigations,omitempty"`
	SwotAnalysis            *string `json:"swot_analysis,omitempty"`
	Differentiation         *string `json:"differentiation,omitempty"`
	CompetitorLinks         *string `json:"competitor_links,omitempty"`
	Citations               *string `json:"citations,omitempty"`
	LearningMaterials       *string `json:"learning_materials,omitempty"`
	Tools                   *string `json:"tools,omitempty"`
	DemandForecast          *string `json:"demand_forecast,omitempty"`
	TamSamSom               *string `json:"tam_sam_som,omitempty"`
	MarketStatistics        *string `json:"market_statistics,omitempty"`
}

// Generated column names. break_event_point keeps the historic spelling of
// the table column.
const (
	ColMarketSize        = "market_size"
	ColTargetAudience    = "target_audience"
	ColCustomerPersonas  = "customer_personas"
	ColPainPoints        = "pain_points"
	ColExecutiveSummary  = "executive_summary"
	ColBusinessModel     = "business_model"
	ColBrandPositioning  = "brand_positioning"
	ColBusinessStructure = "business_structure"
	ColKeyCompetitors    = "key_competitors"

	ColInitialInvestment = "initial_investment"
	ColBreakEventPoint   = "break_event_point"
	ColProfitMargin      = "profit_margin"

	ColRevenueStreams          = "revenue_streams"
	ColGrowthOpportunities     = "growth_opportunities"
	ColOperationalRequirements = "operational_requirements"
	ColImplementationTimeline  = "implementation_timeline"
	ColDigitalMarketing        = "digital_marketing"
	ColPhysicalMarketing       = "physical_marketing"
	ColRequiredPermitsLicenses = "required_permits_licenses"
	ColInsuranceNeeds          = "insurance_needs"
	ColMainRisks               = "main_risks"
	ColRiskMitigations         = "risk_mitigations"
	ColSwotAnalysis            = "swot_analysis"
	ColDifferentiation         = "differentiation"
	ColCompetitorLinks         = "competitor_links"
	ColCitations               = "citations"
	ColLearningMaterials       = "learning_materials"
	ColTools                   = "tools"
	ColDemandForecast          = "demand_forecast"
	ColTamSamSom               = "tam_sam_som"
	ColMarketStatistics        = "market_statistics"
)

// GeneratedColumns is the set of columns a generation attempt may write.
var GeneratedColumns = map[string]struct{}{
	ColMarketSize: {}, ColTargetAudience: {}, ColCustomerPersonas: {}, ColPainPoints: {},
	ColExecutiveSummary: {}, ColBusinessModel: {}, ColBrandPositioning: {},
	ColBusinessStructure: {}, ColKeyCompetitors: {},
	ColInitialInvestment: {}, ColBreakEventPoint: {}, ColProfitMargin: {},
	ColRevenueStreams: {}, ColGrowthOpportunities: {}, ColOperationalRequirements: {},
	ColImplementationTimeline: {}, ColDigitalMarketing: {}, ColPhysicalMarketing: {},
	ColRequiredPermitsLicenses: {}, ColInsuranceNeeds: {}, ColMainRisks: {},
	ColRiskMitigations: {}, ColSwotAnalysis: {}, ColDifferentiation: {},
	ColCompetitorLinks: {}, ColCitations: {}, ColLearningMaterials: {}, ColTools: {},
	ColDemandForecast: {}, ColTamSamSom: {}, ColMarketStatistics: {},
}

// Fields maps generated column names to values. A nil value is written as
// NULL.
type Fields map[string]any

// Columns returns the keys in a stable order.
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for k := range f {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Validate rejects columns outside GeneratedColumns.
func (f Fields) Validate() error {
	for k := range f {
		if _, ok := GeneratedColumns[k]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, k)
		}
	}
	return nil
}

// HasGeneratedDetails reports whether any generated column holds a value.
// Views are gated on this rather than on Status.
func (p *Project) HasGeneratedDetails() bool {
	for _, s := range p.generatedText() {
		if s != nil && *s != "" {
			return true
		}
	}
	return p.InitialInvestment != nil || p.BreakEventPoint != nil || p.ProfitMargin != nil
}

func (p *Project) generatedText() []*string {
	return []*string{
		p.MarketSize, p.TargetAudience, p.CustomerPersonas, p.PainPoints,
		p.ExecutiveSummary, p.BusinessModel, p.BrandPositioning,
		p.BusinessStructure, p.KeyCompetitors,
		p.RevenueStreams, p.GrowthOpportunities, p.OperationalRequirements,
		p.ImplementationTimeline, p.DigitalMarketing, p.PhysicalMarketing,
		p.RequiredPermitsLicenses, p.InsuranceNeeds, p.MainRisks,
		p.RiskMitigations, p.SwotAnalysis, p.Differentiation, p.CompetitorLinks,
		p.Citations, p.LearningMaterials, p.Tools, p.DemandForecast,
		p.TamSamSom, p.MarketStatistics,
	}
}

// Apply copies generated values onto the in-memory project. Unknown columns
// are ignored; callers validate first.
func (p *Project) Apply(f Fields) {
	for col, v := range f {
		switch col {
		case ColInitialInvestment:
			p.InitialInvestment = floatPtr(v)
		case ColProfitMargin:
			p.ProfitMargin = floatPtr(v)
		case ColBreakEventPoint:
			p.BreakEventPoint = intPtr(v)
		default:
			if dst := p.textColumn(col); dst != nil {
				*dst = stringPtr(v)
			}
		}
	}
}

func (p *Project) textColumn(col string) **string {
	switch col {
	case ColMarketSize:
		return &p.MarketSize
	case ColTargetAudience:
		return &p.TargetAudience
	case ColCustomerPersonas:
		return &p.CustomerPersonas
	case ColPainPoints:
		return &p.PainPoints
	case ColExecutiveSummary:
		return &p.ExecutiveSummary
	case ColBusinessModel:
		return &p.BusinessModel
	case ColBrandPositioning:
		return &p.BrandPositioning
	case ColBusinessStructure:
		return &p.BusinessStructure
	case ColKeyCompetitors:
		return &p.KeyCompetitors
	case ColRevenueStreams:
		return &p.RevenueStreams
	case ColGrowthOpportunities:
		return &p.GrowthOpportunities
	case ColOperationalRequirements:
		return &p.OperationalRequirements
	case ColImplementationTimeline:
		return &p.ImplementationTimeline
	case ColDigitalMarketing:
		return &p.DigitalMarketing
	case ColPhysicalMarketing:
		return &p.PhysicalMarketing
	case ColRequiredPermitsLicenses:
		return &p.RequiredPermitsLicenses
	case ColInsuranceNeeds:
		return &p.InsuranceNeeds
	case ColMainRisks:
		return &p.MainRisks
	case ColRiskMitigations:
		return &p.RiskMitigations
	case ColSwotAnalysis:
		return &p.SwotAnalysis
	case ColDifferentiation:
		return &p.Differentiation
	case ColCompetitorLinks:
		return &p.CompetitorLinks
	case ColCitations:
		return &p.Citations
	case ColLearningMaterials:
		return &p.LearningMaterials
	case ColTools:
		return &p.Tools
	case ColDemandForecast:
		return &p.DemandForecast
	case ColTamSamSom:
		return &p.TamSamSom
	case ColMarketStatistics:
		return &p.MarketStatistics
	}
	return nil
}

func stringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func floatPtr(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func intPtr(v any) *int64 {
	if n, ok := v.(int64); ok {
		return &n
	}
	return nil
}

// CreateProjectRequest carries the attributes set when a user saves an idea.
type CreateProjectRequest struct {
	UserID             string
	Title              string
	Description        string
	InvestmentRequired *string
	TimeCommitment     *string
	RiskLevel          *string
	PotentialReturns   *string
}
