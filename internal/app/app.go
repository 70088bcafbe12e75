// Package app wires configuration, logging, telemetry, the dashboard
// service and the HTTP transport into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shoppulse/internal/config"
	apierrors "shoppulse/internal/errors"
	"shoppulse/internal/infrastructure"
	customMiddleware "shoppulse/internal/middleware"
	"shoppulse/internal/services"
	transport "shoppulse/internal/transport/http"
)

const (
	// AppName is the application name used in startup logs.
	AppName = "ShopPulse Dashboard"
	// VERSION is the application version.
	VERSION = "1.0.0"
)

// Application holds all application components.
type Application struct {
	Config           *config.Config
	Logger           *slog.Logger
	Router           *chi.Mux
	Server           *http.Server
	DashboardService *services.DashboardService
	ErrorHandler     *apierrors.ErrorHandler
	OTelProviders    *infrastructure.OTelProviders
	BusinessMetrics  *infrastructure.BusinessMetrics
}

// NewApplication creates and initializes a new application instance.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), a.Logger)
	if err != nil {
		a.Logger.Warn("OpenTelemetry initialization failed, continuing without metrics",
			slog.String("error", err.Error()))
	} else {
		a.OTelProviders = providers
		metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
		if err != nil {
			a.Logger.Warn("failed to create business metrics",
				slog.String("error", err.Error()))
		} else {
			a.BusinessMetrics = metrics
		}
	}

	a.DashboardService = services.NewDashboardServiceWithLogger(a.Config, a.Logger)
	if a.BusinessMetrics != nil {
		a.DashboardService.SetMetrics(a.BusinessMetrics)
	}

	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	if a.BusinessMetrics != nil {
		r.Use(customMiddleware.Metrics(a.BusinessMetrics))
	}
	r.Use(customMiddleware.Recoverer(a.Logger))
	if a.Config.Security.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	a.setupAPIRoutes(r)

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	dashboardHandler := transport.NewDashboardHandler(a.DashboardService, a.Logger, a.ErrorHandler)
	healthHandler := transport.NewHealthHandler(a.DashboardService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)

		r.Mount("/", dashboardHandler.Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server and warms the dataset cache.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.Data.Dir),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	// Warm the dataset cache so the first request does not pay the load cost.
	go func() {
		if _, err := a.DashboardService.Store(infrastructure.EnsureTraceID(context.Background())); err != nil {
			a.Logger.Warn("dataset warm-up failed",
				slog.String("error", err.Error()),
				slog.String("data_dir", a.Config.Data.Dir))
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully shuts down the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing log file: %v\n", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
