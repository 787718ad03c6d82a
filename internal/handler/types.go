package handler

import (
	"time"

	"contact-relay-go/internal/service"
)

// ContactResponse is the body of every /api/contact response.
type ContactResponse struct {
	OK    bool           `json:"ok"`
	Error string         `json:"error,omitempty"`
	Debug *service.Debug `json:"debug,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Email     string            `json:"email"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}
