package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay-go/internal/config"
)

func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	t.Setenv("EMAIL_API_KEY", "")
	t.Setenv("RESEND_API_KEY", "")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.LoadConfig(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func postContact(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Jo","email":"jo@x.com","message":"1234567890","formStartedAt":%d}`,
		time.Now().Add(-3*time.Second).UnixMilli())
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestNewDevelopmentWithoutCredentials(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{
		"APP_ENV":          "development",
		"CONTACT_TO_EMAIL": "owner@studio.test",
	})

	a, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	w, out := postContact(t, a.Handler())

	assert.Equal(t, http.StatusOK, w.Code)
	owner := out["debug"].(map[string]any)["owner"].(map[string]any)
	assert.Equal(t, "missing_api_key", owner["skipped"])
}

func TestNewProductionWithoutCredentials(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{
		"APP_ENV":          "production",
		"CONTACT_TO_EMAIL": "owner@studio.test",
	})

	a, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	w, out := postContact(t, a.Handler())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"ok": false, "error": "email_not_configured"}, out)
}

func TestNewMissingToEmail(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{"CONTACT_TO_EMAIL": ""})

	a, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	w, out := postContact(t, a.Handler())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "missing_to_email", out["error"])
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{"SERVER_PORT": "0"})

	a, err := New(context.Background(), cfg, prometheus.NewRegistry())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	require.Eventually(t, a.scheduler.IsRunning, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.False(t, a.scheduler.IsRunning())
}
