package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sonar", req.Model)
		require.Len(t, req.Messages, 2)
		require.NotNil(t, req.Temperature)
		assert.Equal(t, 0.5, *req.Temperature)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_schema", req.ResponseFormat.Type)
		assert.Equal(t, "plan", req.ResponseFormat.JSONSchema.Name)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"model": "sonar",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
			"citations": ["https://example.com"]
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "test-key")
	resp, err := c.Complete(context.Background(), ChatCompletionRequest{
		Model: "sonar",
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "hi"},
		},
		Temperature:    Float(0.5),
		ResponseFormat: JSONSchemaFormat("plan", map[string]any{"type": "object"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content())
	assert.Equal(t, "stop", resp.FinishReason())
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, []string{"https://example.com"}, resp.Citations)
}

func TestClient_CompleteClassifiesErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		kind       Kind
		apiStatus  int
		userPrefix string
	}{
		{"rate limited", 429, `{"error":{"message":"slow down"}}`, KindRateLimited, 429, "Rate limit exceeded"},
		{"unauthorized", 401, `{"error":{"message":"bad key"}}`, KindAuth, 401, "Authentication error"},
		{"forbidden", 403, `{}`, KindAuth, 403, "Authentication error"},
		{"token limit", 400, `{"error":{"message":"Token LIMIT exceeded for model"}}`, KindTokenLimit, 400, "The conversation has reached the token limit"},
		{"bad request", 400, `{"error":{"message":"messages must alternate"}}`, KindBadRequest, 400, "Invalid request format"},
		{"server error", 500, `oops`, KindUpstream, 502, "Internal Server Error"},
		{"unavailable", 503, `{"error":{"message":"overloaded"}}`, KindUpstream, 502, "overloaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, "k").Complete(context.Background(), ChatCompletionRequest{Model: "sonar"})
			require.Error(t, err)

			ge, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, ge.Kind)
			assert.Equal(t, tt.status, ge.StatusCode)
			assert.Equal(t, tt.apiStatus, StatusCode(err))
			assert.Contains(t, UserMessage(err), tt.userPrefix)
		})
	}
}

func TestClient_CompleteInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "k").Complete(context.Background(), ChatCompletionRequest{Model: "sonar"})
	assert.True(t, IsKind(err, KindInvalidResponse))
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}

func TestClient_CompleteNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, "k").Complete(context.Background(), ChatCompletionRequest{Model: "sonar"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.True(t, Temporary(err))
}

func TestStatusCode_NonGatewayError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, "Internal server error", UserMessage(err))
	assert.False(t, Temporary(err))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", WithRateLimit(0.001))
	_, err := c.Complete(context.Background(), ChatCompletionRequest{Model: "sonar"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Complete(ctx, ChatCompletionRequest{Model: "sonar"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
