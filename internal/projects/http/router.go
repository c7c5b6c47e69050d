package http

import "github.com/gin-gonic/gin"

// Register attaches project CRUD routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.DELETE("/:id", h.delete)
	rg.GET("/:id/status/stream", h.streamStatus)
}

// RegisterAI attaches the model-backed endpoints. extra runs before each
// handler, typically a rate limiter.
func (h *Handler) RegisterAI(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.POST("/generate-project-detail", chain(extra, h.generate)...)
	rg.POST("/chat", chain(extra, h.chatReply)...)
}

func chain(extra []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc(nil), extra...), h)
}
