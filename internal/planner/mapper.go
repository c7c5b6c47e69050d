package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

var errTextNotScalar = errors.New("expected a text value, got a JSON object or array")

// Text is a scalar text value that remembers whether the key was present.
// Numbers and booleans are kept in their JSON spelling.
type Text struct {
	Set   bool
	Valid bool
	Value string
}

func (t *Text) UnmarshalJSON(b []byte) error {
	t.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		t.Valid = false
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &t.Value); err != nil {
			return err
		}
		t.Valid = true
		return nil
	}
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return errTextNotScalar
	}
	t.Value = string(b)
	t.Valid = true
	return nil
}

// Number accepts a JSON number or a numeric string. A string is read the way
// parseFloat reads it: the longest leading decimal prefix. Anything else is
// invalid rather than an error.
type Number struct {
	Valid bool
	Value float64
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.set(ParseLeadingFloat(s))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		v, err := strconv.ParseFloat(string(b), 64)
		n.set(v, err == nil)
	}
	return nil
}

func (n *Number) set(v float64, ok bool) {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	n.Valid = true
	n.Value = v
}

// ParseLeadingFloat parses the leading decimal number of s.
func ParseLeadingFloat(s string) (float64, bool) {
	m := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type MarketAnalysis struct {
	MarketSize       Text            `json:"market_size"`
	TargetAudience   Text            `json:"target_audience"`
	CustomerPersonas Text            `json:"customer_personas"`
	PainPoints       Text            `json:"pain_points"`
	DemandForecast   json.RawMessage `json:"demand_forecast"`
	TamSamSom        json.RawMessage `json:"tam_sam_som"`
	MarketStatistics json.RawMessage `json:"market_statistics"`
}

type FinancialProjections struct {
	InitialInvestment Number          `json:"initial_investment"`
	BreakEvenPoint    Number          `json:"break_even_point"`
	ProfitMargin      Number          `json:"profit_margin"`
	RevenueStreams    json.RawMessage `json:"revenue_streams"`
}

type RiskAnalysis struct {
	MainRisks       json.RawMessage `json:"main_risks"`
	RiskMitigations json.RawMessage `json:"risk_mitigations"`
}

type MarketingStrategy struct {
	BrandPositioning  Text            `json:"brand_positioning"`
	DigitalMarketing  json.RawMessage `json:"digital_marketing"`
	PhysicalMarketing json.RawMessage `json:"physical_marketing"`
}

type CompetitiveAnalysis struct {
	KeyCompetitors  Text            `json:"key_competitors"`
	SwotAnalysis    json.RawMessage `json:"swot_analysis"`
	Differentiation json.RawMessage `json:"differentiation"`
	CompetitorLinks json.RawMessage `json:"competitor_links"`
}

type LegalRegulatory struct {
	BusinessStructure       Text            `json:"business_structure"`
	RequiredPermitsLicenses json.RawMessage `json:"required_permits_licenses"`
	InsuranceNeeds          json.RawMessage `json:"insurance_needs"`
}

type Resources struct {
	LearningMaterials json.RawMessage `json:"learning_materials"`
	Tools             json.RawMessage `json:"tools"`
}

// Plan is the decoded business plan. Optional groups are nil when the model
// left them out.
type Plan struct {
	MarketAnalysis          *MarketAnalysis       `json:"market_analysis"`
	FinancialProjections    *FinancialProjections `json:"financial_projections"`
	GrowthOpportunities     json.RawMessage       `json:"growth_opportunities"`
	OperationalRequirements json.RawMessage       `json:"operational_requirements"`
	ExecutiveSummary        Text                  `json:"executive_summary"`
	BusinessModel           Text                  `json:"business_model"`
	RiskAnalysis            *RiskAnalysis         `json:"risk_analysis"`
	ImplementationTimeline  json.RawMessage       `json:"implementation_timeline"`
	MarketingStrategy       *MarketingStrategy    `json:"marketing_strategy"`
	CompetitiveAnalysis     *CompetitiveAnalysis  `json:"competitive_analysis"`
	LegalRegulatory         *LegalRegulatory      `json:"legal_regulatory"`
	Citations               json.RawMessage       `json:"citations"`
	Resources               *Resources            `json:"resources"`
}

// DecodePlan parses a JSON candidate. Malformed JSON or a group of the wrong
// type is a *ParseError.
func DecodePlan(candidate string) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &p, nil
}

// Fields flattens the plan into project columns. Keys absent from the plan
// produce no column at all; explicit nulls produce NULL. When the financial
// group is present its numeric columns are always written, with NULL for
// values that do not parse.
func (p *Plan) Fields() domain.Fields {
	f := domain.Fields{}

	if m := p.MarketAnalysis; m != nil {
		setText(f, domain.ColMarketSize, m.MarketSize)
		setText(f, domain.ColTargetAudience, m.TargetAudience)
		setText(f, domain.ColCustomerPersonas, m.CustomerPersonas)
		setText(f, domain.ColPainPoints, m.PainPoints)
		setComposite(f, domain.ColDemandForecast, m.DemandForecast)
		setComposite(f, domain.ColTamSamSom, m.TamSamSom)
		setComposite(f, domain.ColMarketStatistics, m.MarketStatistics)
	}

	if fp := p.FinancialProjections; fp != nil {
		f[domain.ColInitialInvestment] = floatOrNil(fp.InitialInvestment)
		f[domain.ColBreakEventPoint] = roundedOrNil(fp.BreakEvenPoint)
		f[domain.ColProfitMargin] = floatOrNil(fp.ProfitMargin)
		setComposite(f, domain.ColRevenueStreams, fp.RevenueStreams)
	}

	setComposite(f, domain.ColGrowthOpportunities, p.GrowthOpportunities)
	setComposite(f, domain.ColOperationalRequirements, p.OperationalRequirements)
	setText(f, domain.ColExecutiveSummary, p.ExecutiveSummary)
	setComposite(f, domain.ColImplementationTimeline, p.ImplementationTimeline)
	setText(f, domain.ColBusinessModel, p.BusinessModel)

	if ms := p.MarketingStrategy; ms != nil {
		setText(f, domain.ColBrandPositioning, ms.BrandPositioning)
		setComposite(f, domain.ColDigitalMarketing, ms.DigitalMarketing)
		setComposite(f, domain.ColPhysicalMarketing, ms.PhysicalMarketing)
	}

	if lr := p.LegalRegulatory; lr != nil {
		setText(f, domain.ColBusinessStructure, lr.BusinessStructure)
		setComposite(f, domain.ColRequiredPermitsLicenses, lr.RequiredPermitsLicenses)
		setComposite(f, domain.ColInsuranceNeeds, lr.InsuranceNeeds)
	}

	if ca := p.CompetitiveAnalysis; ca != nil {
		setText(f, domain.ColKeyCompetitors, ca.KeyCompetitors)
		setComposite(f, domain.ColSwotAnalysis, ca.SwotAnalysis)
		setComposite(f, domain.ColDifferentiation, ca.Differentiation)
		setComposite(f, domain.ColCompetitorLinks, ca.CompetitorLinks)
	}

	if ra := p.RiskAnalysis; ra != nil {
		setComposite(f, domain.ColMainRisks, ra.MainRisks)
		setComposite(f, domain.ColRiskMitigations, ra.RiskMitigations)
	}

	if rs := p.Resources; rs != nil {
		setComposite(f, domain.ColLearningMaterials, rs.LearningMaterials)
		setComposite(f, domain.ColTools, rs.Tools)
	}

	setComposite(f, domain.ColCitations, p.Citations)

	return f
}

func setText(f domain.Fields, col string, t Text) {
	if !t.Set {
		return
	}
	if !t.Valid {
		f[col] = nil
		return
	}
	f[col] = t.Value
}

// setComposite stores a nested value as compact JSON text.
func setComposite(f domain.Fields, col string, raw json.RawMessage) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return
	}
	if bytes.Equal(raw, []byte("null")) {
		f[col] = nil
		return
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		f[col] = string(raw)
		return
	}
	f[col] = buf.String()
}

func floatOrNil(n Number) any {
	if !n.Valid {
		return nil
	}
	return n.Value
}

// roundedOrNil rounds half up, matching Math.round, so -2.5 becomes -2.
func roundedOrNil(n Number) any {
	if !n.Valid {
		return nil
	}
	r := math.Floor(n.Value + 0.5)
	if r >= 1<<63 || r < -(1<<63) {
		return nil
	}
	return int64(r)
}
