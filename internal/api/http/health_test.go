package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		db     Pinger
		redis  Pinger
		code   int
		status string
		dbS    string
		redisS string
	}{
		{"all up", pinger{}, pinger{}, http.StatusOK, "healthy", "up", "up"},
		{"no redis", pinger{}, nil, http.StatusOK, "healthy", "up", "disabled"},
		{"redis down", pinger{}, pinger{errors.New("x")}, http.StatusOK, "healthy", "up", "down"},
		{"db down", pinger{errors.New("x")}, nil, http.StatusServiceUnavailable, "unhealthy", "down", "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("gapmap-api", "1.2.3", tt.db, tt.redis).RegisterRoutes(r)

			for _, path := range []string{"/health", "/healthz"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, tt.code, w.Code)

				var resp HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.status, resp.Status)
				assert.Equal(t, "gapmap-api", resp.Service)
				assert.Equal(t, "1.2.3", resp.Version)
				assert.Equal(t, tt.dbS, resp.DB)
				assert.Equal(t, tt.redisS, resp.Redis)
			}
		})
	}
}
