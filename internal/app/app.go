package app

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
	"github.com/sirupsen/logrus"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/handler"
	"contact-relay-go/internal/logging"
	"contact-relay-go/internal/mailer"
	"contact-relay-go/internal/metrics"
	"contact-relay-go/internal/ratelimit"
	"contact-relay-go/internal/router"
	"contact-relay-go/internal/scheduler"
	"contact-relay-go/internal/service"
)

const shutdownTimeout = 30 * time.Second

// App holds the wired components of the relay.
type App struct {
	cfg       *config.Config
	router    *gin.Engine
	scheduler *scheduler.Scheduler
	server    *http.Server
}

// New wires every component from cfg. Metrics are registered with reg.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	production := cfg.IsProduction()

	transport, err := mailer.NewTransport(ctx, cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create email transport: %w", err)
	}
	if transport == nil {
		logrus.WithField("provider", cfg.Email.Provider).Warn("No email credentials configured")
	} else {
		logrus.WithField("provider", transport.Name()).Info("Email transport ready")
	}

	if cfg.Contact.ToEmail == "" {
		logrus.Warn("CONTACT_TO_EMAIL is not set; submissions will fail with missing_to_email")
	}

	m := metrics.NewMetrics(reg)
	limiter := ratelimit.New()

	dispatcher := mailer.NewDispatcher(transport, mailer.Options{
		FallbackFrom: cfg.Email.FallbackFrom,
		Production:   production,
		Timeout:      cfg.Email.Timeout,
	})

	svc := service.NewContactService(dispatcher, limiter, m, service.Options{
		ToEmail:    cfg.Contact.ToEmail,
		FromEmail:  cfg.Contact.FromEmail,
		StudioName: cfg.Contact.StudioName,
		MinElapsed: cfg.Contact.MinElapsed,
		RateLimit:  cfg.RateLimit,
		Production: production,
	})

	sched := scheduler.NewScheduler(&cfg.Scheduler, limiter, m)

	h := handler.NewHandlers(svc, sched, limiter, handler.Options{
		MaxBodyBytes:    int64(cfg.Server.MaxBodyKB) << 10,
		EmailConfigured: dispatcher.Configured(),
		Production:      production,
	})
	r := router.SetupRouter(h, cfg.Server, production)

	return &App{
		cfg:       cfg,
		router:    r,
		scheduler: sched,
		server: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// Handler returns the HTTP handler serving all routes.
func (a *App) Handler() http.Handler {
	return a.router
}

// Serve starts the sweeper and the HTTP server and blocks until ctx is
// cancelled, then shuts both down.
func (a *App) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting HTTP server on port %s", a.cfg.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		logrus.Errorf("HTTP server error: %v", serveErr)
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	a.scheduler.Wait()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	logrus.Info("Server stopped gracefully")
	return nil
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	logging.Setup(cfg.Log)

	logrus.WithField("env", cfg.App.Env).Info("Starting Contact Relay Service")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}
