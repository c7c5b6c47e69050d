package recommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/planner"
)

// ErrInvalidPayload means the model's array did not match the recommendation
// schema.
var ErrInvalidPayload = errors.New("recommendations do not match schema")

type Recommendation struct {
	ID                 float64 `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	InvestmentRequired string  `json:"investmentRequired"`
	TimeCommitment     string  `json:"timeCommitment"`
	RiskLevel          string  `json:"riskLevel"`
	PotentialReturns   string  `json:"potentialReturns"`
	MatchScore         float64 `json:"matchScore"`
}

type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Reason          string           `json:"reason"`
	Citations       []string         `json:"citations"`
}

type Gateway interface {
	Complete(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
}

type Service struct {
	llm    Gateway
	model  string
	schema *jsonschema.Schema
	log    *zap.Logger
}

// NewService compiles the recommendation schema once; it fails only if the
// schema itself is broken.
func NewService(gw Gateway, model string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	raw, err := json.Marshal(planner.RecommendationSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal recommendation schema: %w", err)
	}
	schema, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile recommendation schema: %w", err)
	}
	return &Service{llm: gw, model: model, schema: schema, log: log}, nil
}

// Recommend asks the model for opportunities matching the profile and returns
// them best match first.
func (s *Service) Recommend(ctx context.Context, form planner.ProfileForm) (*Result, error) {
	log := logger.For(ctx, s.log, "business_recommendation")

	resp, err := s.llm.Complete(ctx, llm.ChatCompletionRequest{
		Model:       s.model,
		Messages:    planner.BuildRecommendationPrompt(form),
		Temperature: llm.Float(0.7),
		MaxTokens:   llm.Int(2048),
		ResponseFormat: llm.JSONSchemaFormat(
			planner.RecommendationSchemaName,
			planner.RecommendationSchema(),
		),
	})
	if err != nil {
		return nil, err
	}

	ex, err := planner.Extract(resp.Content(), planner.ArrayPayload)
	if err != nil {
		log.Warn("unusable recommendation content", zap.Error(err))
		return nil, err
	}

	var generic any
	if err := json.Unmarshal([]byte(ex.JSON), &generic); err != nil {
		return nil, &planner.ParseError{Err: err}
	}
	if res := s.schema.Validate(generic); !res.IsValid() {
		msgs := make([]string, 0, len(res.Errors))
		for field, e := range res.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Error()))
		}
		sort.Strings(msgs)
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}

	var recs []Recommendation
	if err := json.Unmarshal([]byte(ex.JSON), &recs); err != nil {
		return nil, &planner.ParseError{Err: err}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].MatchScore > recs[j].MatchScore })

	citations := resp.Citations
	if citations == nil {
		citations = []string{}
	}
	log.Info("recommendations generated", zap.Int("count", len(recs)))
	return &Result{Recommendations: recs, Reason: ex.Reasoning, Citations: citations}, nil
}
