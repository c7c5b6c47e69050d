package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gapmap-ai/gapmap-backend/internal/auth"
	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/service"
)

func (h *Handler) chatReply(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if len(req.ChatHistory) == 0 {
		fail(c, http.StatusBadRequest, "chatHistory must not be empty", "")
		return
	}

	history := make([]llm.Message, 0, len(req.ChatHistory))
	for _, m := range req.ChatHistory {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := h.chat.Reply(c.Request.Context(), auth.UserID(c), service.ChatRequest{
		ProjectID: strings.TrimSpace(req.ProjectID),
		History:   history,
	})
	if err != nil {
		h.respondError(c, logger.For(c.Request.Context(), h.log, "chat"), err)
		return
	}

	c.JSON(http.StatusOK, reply)
}
