package bootstrap

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gapmap-ai/gapmap-backend/config"
	httpapi "github.com/gapmap-ai/gapmap-backend/internal/api/http"
	"github.com/gapmap-ai/gapmap-backend/internal/api/http/middleware"
	profilehttp "github.com/gapmap-ai/gapmap-backend/internal/profiles/http"
	profileservice "github.com/gapmap-ai/gapmap-backend/internal/profiles/service"
	projecthttp "github.com/gapmap-ai/gapmap-backend/internal/projects/http"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/service"
	"github.com/gapmap-ai/gapmap-backend/internal/recommendations"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Log            *zap.Logger

	// DBPing is normally the pgx pool. Redis is optional.
	DBPing httpapi.Pinger
	Redis  *redis.Client

	// Auth identifies the caller on every /api route.
	Auth gin.HandlerFunc

	Projects service.Repository
	Profiles profileservice.Repository
	LLM      service.Gateway
	Models   config.LLMConfig
	Limits   config.RateLimitConfig
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-User-Id", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func llmLimiter(dep RouterDeps) []gin.HandlerFunc {
	if dep.Limits.RequestsPerWindow <= 0 {
		return nil
	}
	var l middleware.Limiter
	if dep.Redis != nil {
		l = middleware.NewRedisLimiter(dep.Redis, dep.Limits.RequestsPerWindow, dep.Limits.Window)
	} else {
		l = middleware.NewMemoryLimiter(dep.Limits.RequestsPerWindow, dep.Limits.Window)
	}
	return []gin.HandlerFunc{middleware.RateLimit(l, "llm", dep.Log)}
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	if dep.Log == nil {
		dep.Log = zap.NewNop()
	}
	if dep.Auth == nil {
		return nil, fmt.Errorf("router: auth middleware is required")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	var redisPing httpapi.Pinger
	if dep.Redis != nil {
		redisPing = redisPinger{dep.Redis}
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DBPing, redisPing).RegisterRoutes(r)

	recSvc, err := recommendations.NewService(dep.LLM, dep.Models.RecommendationModel, dep.Log)
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	projectsHandler := projecthttp.New(
		service.NewProjectService(dep.Projects),
		service.NewGenerationService(dep.Projects, dep.LLM, dep.Models.GenerationModel, dep.Log),
		service.NewChatService(dep.Projects, dep.LLM, dep.Models.ChatModel, dep.Log),
		dep.Log,
	)
	limit := llmLimiter(dep)

	api := r.Group("/api")
	api.Use(dep.Auth)

	recommendations.NewHandler(recSvc, dep.Log).Register(api, limit...)
	projectsHandler.RegisterAI(api, limit...)

	v1 := api.Group("/v1")
	projectsHandler.Register(v1.Group("/projects"))
	profilehttp.New(profileservice.NewProfileService(dep.Profiles), dep.Log).Register(v1)

	return r, nil
}
