package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gapmap-ai/gapmap-backend/internal/auth"
	"github.com/gapmap-ai/gapmap-backend/internal/logger"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

func writeEvent(c *gin.Context, f http.Flusher, name string, v any) {
	data, _ := json.Marshal(v)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
	f.Flush()
}

// streamStatus pushes the project's generation status over Server-Sent
// Events until it reaches SUCCESS or CANCELLED, or the client goes away.
func (h *Handler) streamStatus(c *gin.Context) {
	id := c.Param("id")
	userID := auth.UserID(c)

	p, err := h.projects.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.respondError(c, logger.For(c.Request.Context(), h.log, "stream_status"), err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		fail(c, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	writeEvent(c, flusher, "initial", toStatusEvent(p))
	if p.Status.Terminal() {
		writeEvent(c, flusher, "done", toStatusEvent(p))
		return
	}

	ctx := c.Request.Context()

	keepAlive := time.NewTicker(h.KeepAlive)
	defer keepAlive.Stop()
	poll := time.NewTicker(h.PollInterval)
	defer poll.Stop()

	last := p
	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-poll.C:
			cur, err := h.projects.Get(ctx, userID, id)
			if errors.Is(err, domain.ErrNotFound) {
				writeEvent(c, flusher, "deleted", gin.H{"id": id})
				return
			}
			if err != nil {
				continue
			}

			if cur.Status != last.Status || cur.UpdatedAt.After(last.UpdatedAt) {
				last = cur
				writeEvent(c, flusher, "update", toStatusEvent(cur))
			}
			if cur.Status.Terminal() {
				writeEvent(c, flusher, "done", toStatusEvent(cur))
				return
			}
		}
	}
}
