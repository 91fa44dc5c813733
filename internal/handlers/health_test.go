package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return p.err
}

func TestHealthHandler_Root(t *testing.T) {
	db := &stubPinger{err: errors.New("down")}
	handler := NewHealthHandler(db, "test")

	router := setupTestRouter()
	router.GET("/", handler.Root)

	w := performRequest(router, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Banner, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Zero(t, db.calls, "liveness must not touch the database")
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "database connected",
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: "connected"},
		},
		{
			name:           "database unreachable",
			pingErr:        errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "disconnected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &stubPinger{err: tt.pingErr}
			router := setupTestRouter()
			router.GET("/health/ready", NewHealthHandler(db, "test").Ready)

			w := performRequest(router, http.MethodGet, "/health/ready")

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response ReadyResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody, response)
			assert.Equal(t, 1, db.calls)
		})
	}
}

func TestHealthHandler_Info(t *testing.T) {
	handler := &HealthHandler{startTime: time.Now().Add(-26 * time.Hour), env: "production"}

	router := setupTestRouter()
	router.GET("/health/info", handler.Info)

	w := performRequest(router, http.MethodGet, "/health/info")

	require.Equal(t, http.StatusOK, w.Code)
	var response InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, Version, response.Version)
	assert.Equal(t, "production", response.Environment)
	assert.Contains(t, response.Uptime, "1d 2h")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "0h 0m 0s"},
		{45 * time.Second, "0h 0m 45s"},
		{2*time.Hour + 15*time.Minute + 45*time.Second, "2h 15m 45s"},
		{24 * time.Hour, "1d 0h 0m 0s"},
		{3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, "3d 5h 30m 15s"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}
