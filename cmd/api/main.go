package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/handler/health"
	promhandler "github.com/jwalitptl/dental-admin/internal/handler/prometheus"
	referenceHandler "github.com/jwalitptl/dental-admin/internal/handler/reference"
	workspaceHandler "github.com/jwalitptl/dental-admin/internal/handler/workspace"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/cache"
	"github.com/jwalitptl/dental-admin/internal/repository/calllog"
	"github.com/jwalitptl/dental-admin/internal/repository/postgres"
	"github.com/jwalitptl/dental-admin/internal/router"
	"github.com/jwalitptl/dental-admin/internal/service/confirmation"
	eventService "github.com/jwalitptl/dental-admin/internal/service/event"
	"github.com/jwalitptl/dental-admin/internal/service/note"
	"github.com/jwalitptl/dental-admin/internal/service/source"
	"github.com/jwalitptl/dental-admin/internal/service/workspace"
	"github.com/jwalitptl/dental-admin/pkg/auth"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/tracing"
)

const (
	serviceName  = "dental-admin-api"
	maxBodyBytes = 1 << 20
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("DENTAL_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt secret is not set (DENTAL_JWT_SECRET)")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = appLogger.ZL
	if cfg.Log.JSON {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.Tracing)
	if err != nil {
		appLogger.Fatal(err, "failed to set up tracing")
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	baseRepo := postgres.NewBaseRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(baseRepo)
	holdRepo := postgres.NewHoldRepository(baseRepo)
	staffRepo := postgres.NewStaffAssignmentRepository(baseRepo)
	callRepo := postgres.NewCallRepository(baseRepo)
	noteRepo := postgres.NewClinicalNoteRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)
	referenceRepo := cache.NewReferenceRepository(postgres.NewReferenceRepository(baseRepo), cfg.Cache.ReferenceTTL)

	var callLogRepo repository.CallLogRepository
	if cfg.CallLog.BaseURL != "" {
		callLogRepo = calllog.NewClient(calllog.Config{
			BaseURL:    cfg.CallLog.BaseURL,
			APIKey:     cfg.CallLog.APIKey,
			Timeout:    cfg.CallLog.Timeout,
			RetryCount: cfg.CallLog.RetryCount,
		}, appLogger)
	} else {
		callLogRepo = postgres.NewCallLogRepository(baseRepo)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New("dental_admin", registry)

	// Initialize services
	events := eventService.NewEventService(outboxRepo)
	notes := note.NewReconciler(noteRepo, appLogger, appMetrics)
	resolver := source.NewResolver(holdRepo, callRepo, callLogRepo, appLogger, appMetrics)
	engine := confirmation.NewEngine(confirmation.Deps{
		Appointments: appointmentRepo,
		Holds:        holdRepo,
		Staff:        staffRepo,
		Reference:    referenceRepo,
		Notes:        notes,
		Events:       events,
		Logger:       appLogger,
		Metrics:      appMetrics,
	})
	store := workspace.NewStore(cfg.Cache.WorkspaceTTL, engine.Snapshot, time.Now)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Initialize handlers
	r := router.NewRouter(
		jwtService,
		health.NewHandler(db),
		promhandler.New(registry),
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			RequestTimeout:   cfg.Server.WriteTimeout,
			MaxBodyBytes:     maxBodyBytes,
		},
		workspaceHandler.NewHandler(engine, store, resolver, notes, staffRepo, appLogger),
		referenceHandler.NewHandler(referenceRepo),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(r.Engine(), serviceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error(err, "failed to flush traces")
	}
	appLogger.Info("server exited")
}
