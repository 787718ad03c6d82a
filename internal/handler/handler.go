package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contact-relay-go/internal/model"
	"contact-relay-go/internal/service"
)

// ContactSubmitter runs a submission through the contact pipeline.
type ContactSubmitter interface {
	Submit(ctx context.Context, sub model.Submission, clientKey string) (*service.Outcome, error)
}

// SweepStatus reports the state of the rate limit sweeper.
type SweepStatus interface {
	IsRunning() bool
	GetNextRun() time.Time
	GetLastRun() time.Time
}

// EntryCounter reports how many keys the rate limiter tracks.
type EntryCounter interface {
	Len() int
}

// Options configures the handlers.
type Options struct {
	MaxBodyBytes    int64
	EmailConfigured bool
	Production      bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	contact   ContactSubmitter
	scheduler SweepStatus
	limiter   EntryCounter
	opts      Options
}

// NewHandlers creates new HTTP handlers
func NewHandlers(contact ContactSubmitter, scheduler SweepStatus, limiter EntryCounter, opts Options) *Handlers {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}
	return &Handlers{
		contact:   contact,
		scheduler: scheduler,
		limiter:   limiter,
		opts:      opts,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/contact", h.SubmitContact)
		api.OPTIONS("/contact", h.Preflight)
	}
}
