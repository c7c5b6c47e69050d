package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:    {StatusInProgress},
		StatusInProgress: {StatusSuccess, StatusCancelled},
		StatusSuccess:    {StatusPending},
		StatusCancelled:  {StatusPending},
	}
	all := []Status{StatusPending, StatusInProgress, StatusSuccess, StatusCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)

			got, err := from.Transition(to)
			if want {
				require.NoError(t, err)
				assert.Equal(t, to, got)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, from, got)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s)

	s, err = ParseStatus("SUCCESS")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, s)
	assert.True(t, s.Terminal())

	_, err = ParseStatus("DONE")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestHasGeneratedDetails(t *testing.T) {
	p := &Project{Status: StatusSuccess}
	assert.False(t, p.HasGeneratedDetails(), "status alone does not imply details")

	empty := ""
	p.MarketSize = &empty
	assert.False(t, p.HasGeneratedDetails())

	tools := `[{"name":"Canva"}]`
	p.Tools = &tools
	assert.True(t, p.HasGeneratedDetails())

	margin := 12.5
	q := &Project{ProfitMargin: &margin}
	assert.True(t, q.HasGeneratedDetails())
}

func TestFieldsValidateAndApply(t *testing.T) {
	f := Fields{
		ColMarketSize:        "$4B",
		ColInitialInvestment: 1200.5,
		ColBreakEventPoint:   int64(8),
		ColProfitMargin:      nil,
	}
	require.NoError(t, f.Validate())
	assert.Equal(t, []string{ColBreakEventPoint, ColInitialInvestment, ColMarketSize, ColProfitMargin}, f.Columns())

	p := &Project{}
	p.Apply(f)
	require.NotNil(t, p.MarketSize)
	assert.Equal(t, "$4B", *p.MarketSize)
	require.NotNil(t, p.InitialInvestment)
	assert.Equal(t, 1200.5, *p.InitialInvestment)
	require.NotNil(t, p.BreakEventPoint)
	assert.Equal(t, int64(8), *p.BreakEventPoint)
	assert.Nil(t, p.ProfitMargin)

	bad := Fields{"status": "SUCCESS"}
	assert.ErrorIs(t, bad.Validate(), ErrUnknownColumn)
}

func TestCompositeCodecRoundTrip(t *testing.T) {
	cases := []any{
		&TamSamSom{
			Tam: TamSamSomEntry{Value: "$10B", Description: "global"},
			Sam: TamSamSomEntry{Value: "$1B", Description: "region"},
			Som: TamSamSomEntry{Value: "$10M", Description: "year one"},
		},
		&DemandForecast{
			Summary:           "steady",
			GrowthPredictions: []GrowthPrediction{{Period: "Month 6", Users: 120, Revenue: 4000, GrowthRate: 12.5}},
			KeyDrivers:        []string{"remote work"},
		},
		&SwotAnalysis{Strengths: []string{"a"}, Weaknesses: []string{"b"}, Opportunities: []string{"c"}, Threats: []string{"d"}},
		&Differentiation{ComparisonTable: []ComparisonRow{{Feature: "price", YourBusiness: "low", Competitors: "high"}}},
		&OperationalRequirements{
			StaffingNeeds:        []StaffingNeed{{Period: "Year 1", Description: "two staff"}},
			Equipment:            []Equipment{{Item: "oven", Cost: "$2,000"}},
			LocationRequirements: LocationRequirements{Description: "street front", EstimatedMonthlyRent: "$1,500"},
		},
		&ImplementationTimeline{Timeline: []TimelinePhase{{Period: "Month 1", Phase: "Setup", Tasks: []string{"register"}}}},
		&[]CompetitorLink{{Name: "Acme", Website: "https://acme.example", Description: "incumbent"}},
		&[]Citation{{Title: "Report", URL: "https://example.com", Description: "market data"}},
		&[]LearningMaterial{{Title: "Guide", Description: "basics", URL: "https://example.com/g", Type: "article"}},
		&[]Tool{{Name: "Canva", Description: "design", URL: "https://canva.com", Category: "design"}},
		&[]RevenueStream{{Stream: "sales", Percentage: 80}},
		&[]MarketStatistic{{Metric: "CAGR", Value: "7%", Source: "Statista", Link: "https://statista.com"}},
		&[]string{"one", "two"},
	}

	for _, in := range cases {
		raw, err := Encode(in)
		require.NoError(t, err)

		out := newLike(in)
		require.NoError(t, Decode(&raw, out))
		assert.Equal(t, in, out)
	}
}

func newLike(v any) any {
	switch v.(type) {
	case *TamSamSom:
		return &TamSamSom{}
	case *DemandForecast:
		return &DemandForecast{}
	case *SwotAnalysis:
		return &SwotAnalysis{}
	case *Differentiation:
		return &Differentiation{}
	case *OperationalRequirements:
		return &OperationalRequirements{}
	case *ImplementationTimeline:
		return &ImplementationTimeline{}
	case *[]CompetitorLink:
		return &[]CompetitorLink{}
	case *[]Citation:
		return &[]Citation{}
	case *[]LearningMaterial:
		return &[]LearningMaterial{}
	case *[]Tool:
		return &[]Tool{}
	case *[]RevenueStream:
		return &[]RevenueStream{}
	case *[]MarketStatistic:
		return &[]MarketStatistic{}
	case *[]string:
		return &[]string{}
	}
	return nil
}

func TestDetailsToleratesMalformedColumns(t *testing.T) {
	bad := "{not json"
	swot := `{"strengths":["fast"],"weaknesses":[],"opportunities":[],"threats":[]}`
	null := "null"
	p := &Project{
		Tools:          &bad,
		SwotAnalysis:   &swot,
		TamSamSom:      &null,
		DemandForecast: &bad,
	}

	d := p.Details()
	assert.Nil(t, d.Tools)
	assert.Nil(t, d.TamSamSom)
	assert.Nil(t, d.DemandForecast)
	require.NotNil(t, d.SwotAnalysis)
	assert.Equal(t, []string{"fast"}, d.SwotAnalysis.Strengths)
}

func TestPersistenceError(t *testing.T) {
	cause := fmt.Errorf("save generated fields: %w", ErrNotInProgress)
	var err error = &PersistenceError{Err: cause}

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, ErrNotInProgress)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "persistence failed: save generated fields: project is not in progress", err.Error())
}
