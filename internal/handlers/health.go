package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker handles health and version requests
type HealthChecker struct {
	storage Pinger
	version string
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(storage Pinger, version string) *HealthChecker {
	return &HealthChecker{storage: storage, version: version}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// RegisterRoutes registers /healthz and /version
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.Version).Methods("GET")
}

// HealthCheck handles the /healthz endpoint. ?mode=extended also pings the storage backend.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)
		switch {
		case h.storage == nil:
			checks["storage"] = "not_configured"
		default:
			if err := h.checkStorage(r.Context()); err != nil {
				response.Status = "unhealthy"
				checks["storage"] = "unhealthy: " + sanitizeErrorMessage(err.Error())
				statusCode = http.StatusServiceUnavailable
			} else {
				checks["storage"] = "healthy"
			}
		}
		response.Checks = checks
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// Version handles the /version endpoint
func (h *HealthChecker) Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthChecker) checkStorage(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.storage.Ping(ctx)
}
