package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Email:     "ok",
		Metrics:   make(map[string]string),
	}

	if !h.opts.EmailConfigured {
		response.Email = "not_configured"
		if h.opts.Production {
			response.Status = "degraded"
			logrus.Warn("Health check: no email provider credentials in production")
		}
	}

	if h.scheduler != nil && h.scheduler.IsRunning() {
		response.Metrics["sweeper"] = "running"
		response.Metrics["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
		if last := h.scheduler.GetLastRun(); !last.IsZero() {
			response.Metrics["last_run"] = last.Format(time.RFC3339)
		}
	} else {
		response.Metrics["sweeper"] = "stopped"
	}

	if h.limiter != nil {
		response.Metrics["rate_limit_entries"] = strconv.Itoa(h.limiter.Len())
	}

	c.JSON(http.StatusOK, response)
}
