package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gapmap-ai/gapmap-backend/internal/logger"
)

// Client talks to a Perplexity-compatible chat-completions API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has no timeout; deep
// research completions routinely run for minutes.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit paces outbound calls. perSecond <= 0 disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete performs one chat completion. It never retries.
func (c *Client) Complete(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	log := logger.For(ctx, c.log, "llm_complete").With(zap.String("model", req.Model))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindNetwork, Message: "rate limiter wait", Err: err}
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("upstream request failed", zap.Error(err), zap.Duration("latency", time.Since(start)))
		return nil, &Error{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Message: "read response body", Err: err}
	}

	log.Info("upstream responded",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gerr := classify(resp.StatusCode, raw)
		log.Warn("upstream error", zap.String("kind", string(gerr.Kind)), zap.String("body", truncate(gerr.Body, 500)))
		return nil, gerr
	}

	var out ChatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Kind: KindInvalidResponse, StatusCode: resp.StatusCode, Message: "decode response", Body: truncate(string(raw), 500), Err: err}
	}
	if len(out.Choices) == 0 {
		return nil, &Error{Kind: KindInvalidResponse, StatusCode: resp.StatusCode, Message: "response has no choices"}
	}
	return &out, nil
}

type upstreamError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func classify(status int, raw []byte) *Error {
	var ue upstreamError
	_ = json.Unmarshal(raw, &ue)
	msg := ue.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	e := &Error{StatusCode: status, Message: msg, Body: string(raw)}
	lower := strings.ToLower(ue.Error.Message)
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusBadRequest && strings.Contains(lower, "token") && strings.Contains(lower, "limit"):
		e.Kind = KindTokenLimit
	case status == http.StatusBadRequest:
		e.Kind = KindBadRequest
	default:
		e.Kind = KindUpstream
	}
	return e
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Temporary reports whether a later identical call might succeed.
func Temporary(err error) bool {
	var ge *Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Kind == KindRateLimited || ge.Kind == KindNetwork || ge.Kind == KindUpstream
}
