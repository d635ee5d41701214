package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(t, http.MethodGet, "/health", "")
	if err := NewHealthHandler(nil).Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]HealthCheck
		code   int
		status string
	}{
		{"all up", map[string]HealthCheck{"postgres": ok, "mongodb": ok, "redis": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]HealthCheck{"postgres": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(t, http.MethodGet, "/health/ready", "")
			if err := NewHealthHandler(tt.checks).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.status || len(resp.Dependencies) != len(tt.checks) {
				t.Fatalf("unexpected body: %+v", resp)
			}
		})
	}
}
