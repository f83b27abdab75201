package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textprep/internal/logger"
)

type sampleRequest struct {
	Text string `json:"text" validate:"required,max=10"`
	Mode string `json:"mode" validate:"omitempty,oneof=a b"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantBody   string
	}{
		{"valid", `{"text":"hello","mode":"a"}`, true, http.StatusOK, ""},
		{"malformed", `{"text":`, false, http.StatusBadRequest, "invalid JSON body"},
		{"missing field", `{"mode":"a"}`, false, http.StatusBadRequest, `"text": "is required"`},
		{"bad enum", `{"text":"x","mode":"c"}`, false, http.StatusBadRequest, `"mode": "must be one of: a b"`},
		{"too long", `{"text":"01234567890"}`, false, http.StatusBadRequest, `"text": "must be at most 10"`},
		{"over limit", `{"text":"` + strings.Repeat("x", 100) + `"}`, false, http.StatusRequestEntityTooLarge, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst sampleRequest
			ok := DecodeJSON(logger.Discard(), rec, req, 64, &dst)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestFailDefaultsToInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(logger.Discard(), rec, "boom", nil, 0)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom\n", rec.Body.String())
}

func TestRouterRecoversPanics(t *testing.T) {
	r := NewRouter(logger.Discard())
	r.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	r.Get("/healthz", HealthHandler(logger.Discard()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServeHealthStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeHealth(ctx, 0, logger.Discard(), "test") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not stop")
	}
}
