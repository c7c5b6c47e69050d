package domain

import (
	"encoding/json"
	"fmt"
)

type TamSamSomEntry struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

type TamSamSom struct {
	Tam TamSamSomEntry `json:"tam"`
	Sam TamSamSomEntry `json:"sam"`
	Som TamSamSomEntry `json:"som"`
}

type GrowthPrediction struct {
	Period     string  `json:"period"`
	Users      float64 `json:"users"`
	Revenue    float64 `json:"revenue"`
	GrowthRate float64 `json:"growth_rate"`
}

type DemandForecast struct {
	Summary           string             `json:"summary"`
	GrowthPredictions []GrowthPrediction `json:"growth_predictions"`
	KeyDrivers        []string           `json:"key_drivers"`
}

type MarketStatistic struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Source string `json:"source"`
	Link   string `json:"link"`
}

type RevenueStream struct {
	Stream     string  `json:"stream"`
	Percentage float64 `json:"percentage"`
}

type StaffingNeed struct {
	Period      string `json:"period"`
	Description string `json:"description"`
}

type Equipment struct {
	Item string `json:"item"`
	Cost string `json:"cost"`
}

type LocationRequirements struct {
	Description          string `json:"description"`
	EstimatedMonthlyRent string `json:"estimatedMonthlyRent"`
}

type OperationalRequirements struct {
	StaffingNeeds        []StaffingNeed       `json:"staffingNeeds"`
	Equipment            []Equipment          `json:"equipment"`
	LocationRequirements LocationRequirements `json:"locationRequirements"`
}

type TimelinePhase struct {
	Period string   `json:"period"`
	Phase  string   `json:"phase"`
	Tasks  []string `json:"tasks"`
}

type ImplementationTimeline struct {
	Timeline []TimelinePhase `json:"timeline"`
}

type SwotAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type ComparisonRow struct {
	Feature      string `json:"feature"`
	YourBusiness string `json:"your_business"`
	Competitors  string `json:"competitors"`
}

type Differentiation struct {
	ComparisonTable []ComparisonRow `json:"comparison_table"`
}

type CompetitorLink struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

type Citation struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type LearningMaterial struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Type        string `json:"type"`
}

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
}

// Details is the structured read-side view of the JSON composite columns.
type Details struct {
	RevenueStreams          []RevenueStream          `json:"revenue_streams"`
	GrowthOpportunities     []string                 `json:"growth_opportunities"`
	OperationalRequirements *OperationalRequirements `json:"operational_requirements"`
	ImplementationTimeline  *ImplementationTimeline  `json:"implementation_timeline"`
	DigitalMarketing        []string                 `json:"digital_marketing"`
	PhysicalMarketing       []string                 `json:"physical_marketing"`
	RequiredPermitsLicenses []string                 `json:"required_permits_licenses"`
	InsuranceNeeds          []string                 `json:"insurance_needs"`
	MainRisks               []string                 `json:"main_risks"`
	RiskMitigations         []string                 `json:"risk_mitigations"`
	SwotAnalysis            *SwotAnalysis            `json:"swot_analysis"`
	Differentiation         *Differentiation         `json:"differentiation"`
	CompetitorLinks         []CompetitorLink         `json:"competitor_links"`
	Citations               []Citation               `json:"citations"`
	LearningMaterials       []LearningMaterial       `json:"learning_materials"`
	Tools                   []Tool                   `json:"tools"`
	DemandForecast          *DemandForecast          `json:"demand_forecast"`
	TamSamSom               *TamSamSom               `json:"tam_sam_som"`
	MarketStatistics        []MarketStatistic        `json:"market_statistics"`
}

// Encode serializes a composite value into its column representation.
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode composite: %w", err)
	}
	return string(b), nil
}

// Decode parses a column value into out. A nil or empty column leaves out
// untouched.
func Decode(raw *string, out any) error {
	if raw == nil || *raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(*raw), out); err != nil {
		return fmt.Errorf("decode composite: %w", err)
	}
	return nil
}

// Details decodes every composite column. A malformed column yields its zero
// value; the remaining columns still decode.
func (p *Project) Details() Details {
	var d Details

	decodeInto(p.RevenueStreams, &d.RevenueStreams)
	decodeInto(p.GrowthOpportunities, &d.GrowthOpportunities)
	decodeInto(p.DigitalMarketing, &d.DigitalMarketing)
	decodeInto(p.PhysicalMarketing, &d.PhysicalMarketing)
	decodeInto(p.RequiredPermitsLicenses, &d.RequiredPermitsLicenses)
	decodeInto(p.InsuranceNeeds, &d.InsuranceNeeds)
	decodeInto(p.MainRisks, &d.MainRisks)
	decodeInto(p.RiskMitigations, &d.RiskMitigations)
	decodeInto(p.CompetitorLinks, &d.CompetitorLinks)
	decodeInto(p.Citations, &d.Citations)
	decodeInto(p.LearningMaterials, &d.LearningMaterials)
	decodeInto(p.Tools, &d.Tools)
	decodeInto(p.MarketStatistics, &d.MarketStatistics)

	d.OperationalRequirements = decodePtr[OperationalRequirements](p.OperationalRequirements)
	d.ImplementationTimeline = decodePtr[ImplementationTimeline](p.ImplementationTimeline)
	d.SwotAnalysis = decodePtr[SwotAnalysis](p.SwotAnalysis)
	d.Differentiation = decodePtr[Differentiation](p.Differentiation)
	d.DemandForecast = decodePtr[DemandForecast](p.DemandForecast)
	d.TamSamSom = decodePtr[TamSamSom](p.TamSamSom)

	return d
}

func decodeInto[T any](raw *string, out *T) {
	var v T
	if err := Decode(raw, &v); err != nil {
		return
	}
	*out = v
}

func decodePtr[T any](raw *string) *T {
	if raw == nil || *raw == "" || *raw == "null" {
		return nil
	}
	var v T
	if err := Decode(raw, &v); err != nil {
		return nil
	}
	return &v
}
