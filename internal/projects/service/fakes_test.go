package service

import (
	"context"
	"errors"
	"sync"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
)

// fakeGateway returns a canned completion or error and records requests.
type fakeGateway struct {
	mu       sync.Mutex
	content  string
	err      error
	requests []llm.ChatCompletionRequest
	block    chan struct{}
}

func (g *fakeGateway) Complete(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, &llm.Error{Kind: llm.KindNetwork, Message: "context done", Err: ctx.Err()}
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &llm.ChatCompletionResponse{
		Model:   req.Model,
		Choices: []llm.Choice{{Message: llm.Message{Role: llm.RoleAssistant, Content: g.content}, FinishReason: "stop"}},
		Usage:   llm.Usage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18},
	}, nil
}

var errBoom = errors.New("boom")
