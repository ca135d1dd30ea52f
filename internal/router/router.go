package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-admin/internal/handler/health"
	promhandler "github.com/jwalitptl/dental-admin/internal/handler/prometheus"
	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/pkg/auth"
)

type Handler interface {
	RegisterRoutes(gin.IRouter)
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	AllowedOrigins   []string
	RequestTimeout   time.Duration
	MaxBodyBytes     int64
}

type Router struct {
	engine  *gin.Engine
	jwt     auth.JWTService
	health  *health.Handler
	metrics *promhandler.Handler
	api     []Handler
	config  RouterConfig
}

// NewRouter builds the engine. Health and metrics are public; every handler
// in api is mounted under /api/v1 behind bearer authentication.
func NewRouter(
	jwt auth.JWTService,
	healthH *health.Handler,
	metricsH *promhandler.Handler,
	config RouterConfig,
	api ...Handler,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:  engine,
		jwt:     jwt,
		health:  healthH,
		metrics: metricsH,
		api:     api,
		config:  config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		metricsH.Middleware(),
		middleware.CORS(config.AllowedOrigins),
	)
	return r
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.Timeout(r.config.RequestTimeout),
		middleware.Authenticate(r.jwt),
	)
	if r.config.MaxBodyBytes > 0 {
		api.Use(middleware.BodyLimit(r.config.MaxBodyBytes))
	}
	if r.config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  r.config.RateLimit,
			Burst: r.config.RateBurst,
		})
		api.Use(limiter.RateLimit())
	}

	for _, h := range r.api {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
