package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/handler/health"
	promhandler "github.com/jwalitptl/dental-admin/internal/handler/prometheus"
	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/pkg/auth"
)

type okPinger struct{}

func (okPinger) PingContext(ctx context.Context) error { return nil }

type whoami struct{}

func (whoami) RegisterRoutes(r gin.IRouter) {
	r.GET("/whoami", func(c *gin.Context) {
		actor, _ := middleware.Actor(c)
		c.String(http.StatusOK, actor.StaffID.String())
	})
}

func newTestRouter(t *testing.T, jwt auth.JWTService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := NewRouter(
		jwt,
		health.NewHandler(okPinger{}),
		promhandler.New(prometheus.NewRegistry()),
		RouterConfig{
			RateLimitEnabled: true,
			RateLimit:        100,
			RateBurst:        10,
			RequestTimeout:   time.Second,
			MaxBodyBytes:     1 << 16,
		},
		whoami{},
	)
	r.Setup()
	return r.Engine()
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	jwt := auth.NewJWTService("s3cret", "dental-admin", time.Hour)
	engine := newTestRouter(t, jwt)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	staffID := uuid.New()
	token, err := jwt.GenerateAccessToken(model.Actor{StaffID: staffID, ClinicID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, staffID.String(), w.Body.String())
}
