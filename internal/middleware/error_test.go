package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		requestID string
		wantCode  int
	}{
		{
			name: "toggle succeeds",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			requestID: "toggle-1",
			wantCode:  http.StatusOK,
		},
		{
			name: "panic in toggle",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("completion store exploded")
			},
			requestID: "toggle-2",
			wantCode:  http.StatusInternalServerError,
		},
		{
			name: "nil map write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var completed map[string]bool
				completed["Two Sum"] = true
			},
			requestID: "toggle-3",
			wantCode:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.ErrorLevel)
			h := RequestID(ErrorHandler(zap.New(core))(tt.handler))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/completions/toggle", nil)
			req.Header.Set(RequestIDHeader, tt.requestID)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				if logs.Len() != 0 {
					t.Errorf("unexpected error logs: %v", logs.All())
				}
				return
			}

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			want := ErrorResponse{
				Error:     "Internal Server Error",
				Message:   "An unexpected error occurred",
				Path:      "/api/v1/completions/toggle",
				RequestID: tt.requestID,
			}
			body.Timestamp = ""
			if body != want {
				t.Errorf("body = %+v, want %+v", body, want)
			}

			entries := logs.FilterMessage("panic_recovered").All()
			if len(entries) != 1 {
				t.Fatalf("panic_recovered logged %d times", len(entries))
			}
			if got := entries[0].ContextMap()["request_id"]; got != tt.requestID {
				t.Errorf("logged request_id = %v, want %s", got, tt.requestID)
			}
		})
	}
}

func TestErrorHandler_NoRequestID(t *testing.T) {
	t.Parallel()

	h := ErrorHandler(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("settings merge failed")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/v1/settings", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "request_id") {
		t.Errorf("request_id should be omitted without a request ID: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"path":"/api/v1/settings"`) {
		t.Errorf("expected the request path in %s", w.Body.String())
	}
}
