package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/planner"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

// ChatRequest is one advisor turn. History is the full conversation so far,
// ending with the user's new message. Nothing is persisted.
type ChatRequest struct {
	ProjectID string
	History   []llm.Message
}

type ChatMetadata struct {
	Tokens           int    `json:"tokens"`
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	Model            string `json:"model"`
	FinishReason     string `json:"finishReason"`
}

type ChatReply struct {
	Response  string       `json:"response"`
	Timestamp string       `json:"timestamp"`
	Metadata  ChatMetadata `json:"metadata"`
}

// ChatService handles chat-related business logic
type ChatService struct {
	repo  Repository
	llm   Gateway
	model string
	log   *zap.Logger
	now   func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(repo Repository, gw Gateway, model string, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{repo: repo, llm: gw, model: model, log: log, now: time.Now}
}

// Reply asks the advisor model for the next assistant message. A project that
// cannot be loaded only degrades the prompt to the generic one.
func (s *ChatService) Reply(ctx context.Context, userID string, req ChatRequest) (*ChatReply, error) {
	log := logger.For(ctx, s.log, "chat").With(zap.String("project_id", req.ProjectID))

	var project *domain.Project
	if req.ProjectID != "" {
		p, err := s.repo.Get(ctx, userID, req.ProjectID)
		if err != nil {
			log.Warn("project context unavailable, using generic prompt", zap.Error(err))
		} else {
			project = p
		}
	}

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: planner.BuildChatSystemPrompt(req.ProjectID, project),
	})
	messages = append(messages, req.History...)

	log.Info("sending chat", zap.Int("message_count", len(messages)))
	resp, err := s.llm.Complete(ctx, llm.ChatCompletionRequest{Model: s.model, Messages: messages})
	if err != nil {
		return nil, err
	}

	model := resp.Model
	if model == "" {
		model = s.model
	}
	finish := resp.FinishReason()
	if finish == "" {
		finish = "unknown"
	}

	return &ChatReply{
		Response:  resp.Content(),
		Timestamp: s.now().Format("15:04"),
		Metadata: ChatMetadata{
			Tokens:           resp.Usage.TotalTokens,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			Model:            model,
			FinishReason:     finish,
		},
	}, nil
}
