package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/problem-dashboard/internal/dashboard"
	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/settings"
	"github.com/benvon/problem-dashboard/internal/validation"
)

// APIHandler serves the JSON API
type APIHandler struct {
	svc    *dashboard.Service
	logger *zap.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(svc *dashboard.Service, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers API routes on a router mounted at /api/v1
func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/companies", h.ListCompanies).Methods("GET")
	r.HandleFunc("/tags", h.ListTags).Methods("GET")
	r.HandleFunc("/problems", h.ListProblems).Methods("GET")
	r.HandleFunc("/completions", h.GetCompletions).Methods("GET")
	r.HandleFunc("/completions", h.ResetCompletions).Methods("DELETE")
	r.HandleFunc("/completions/toggle", h.ToggleCompletion).Methods("POST")
	r.HandleFunc("/settings", h.GetSettings).Methods("GET")
	r.HandleFunc("/settings", h.PatchSettings).Methods("PATCH")
}

// ListCompanies handles GET /api/v1/companies
func (h *APIHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Companies())
}

// ListTags handles GET /api/v1/tags?search=&selected=a,b
func (h *APIHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondJSON(w, http.StatusOK, h.svc.Tags(q.Get("search"), splitList(q.Get("selected"))))
}

// ListProblems handles GET /api/v1/problems
func (h *APIHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := validation.ProblemsQuery{
		Company:  q.Get("company"),
		Duration: q.Get("duration"),
		Tags:     splitList(q.Get("tags")),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
	}
	if err := validation.Struct(params); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	field, order, err := dashboard.ParseSort(params.Sort, params.Order)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	view, err := h.svc.Problems(r.Context(), dashboard.Query{
		Company:  params.Company,
		Duration: params.Duration,
		Tags:     params.Tags,
		Sort:     field,
		Order:    order,
	})
	if err != nil {
		if errors.Is(err, dashboard.ErrMissingSelection) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		h.logger.Warn("problems_unavailable",
			zap.String("company", logpkg.SanitizeName(params.Company)),
			zap.String("duration", logpkg.SanitizeName(params.Duration)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to load problems for "+params.Company+" - "+params.Duration)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// GetCompletions handles GET /api/v1/completions
func (h *APIHandler) GetCompletions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Completions().GetAll(r.Context()))
}

// ToggleCompletion handles POST /api/v1/completions/toggle
func (h *APIHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	var req validation.ToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.svc.Completions().Toggle(r.Context(), req.Title))
}

// ResetCompletions handles DELETE /api/v1/completions
func (h *APIHandler) ResetCompletions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Completions().Reset(r.Context()))
}

// GetSettings handles GET /api/v1/settings
func (h *APIHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Settings().GetAll(r.Context()))
}

// PatchSettings handles PATCH /api/v1/settings with a {key, value} body
func (h *APIHandler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var req validation.SettingsPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := validation.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	key, err := settings.ParseKey(req.Key)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	value, err := settings.DecodeValue(key, req.Value)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.svc.Settings().Set(r.Context(), key, value); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.svc.Settings().GetAll(r.Context()))
}
