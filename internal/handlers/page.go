package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/problem-dashboard/internal/dashboard"
	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/problems"
	"github.com/benvon/problem-dashboard/internal/validation"
)

//go:embed web/dashboard.html web/dashboard.css
var webFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).ParseFS(webFS, "web/dashboard.html"))

// maxFormSize bounds urlencoded form bodies
const maxFormSize = 16 << 10

// PageHandler serves the server-rendered dashboard backed by a single Session
type PageHandler struct {
	session *dashboard.Session
	svc     *dashboard.Service
	logger  *zap.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(session *dashboard.Session, svc *dashboard.Service, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{session: session, svc: svc, logger: logger}
}

// RegisterRoutes registers the page, its form actions and the stylesheet
func (h *PageHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Show).Methods("GET")
	r.HandleFunc("/select", h.Select).Methods("POST")
	r.HandleFunc("/toggle", h.Toggle).Methods("POST")
	r.HandleFunc("/tags", h.Tags).Methods("POST")
	r.HandleFunc("/show-tags", h.ShowTags).Methods("POST")
	r.HandleFunc("/reset", h.Reset).Methods("POST")
	r.HandleFunc("/static/dashboard.css", h.Stylesheet).Methods("GET")
}

type column struct {
	Label string
	Href  string
	Arrow string
}

type pageData struct {
	State       dashboard.State
	View        dashboard.View
	Companies   []models.CompanyData
	Durations   []string
	Suggestions []string
	Columns     []column
	Sort        string
	Order       string
	Error       string
}

// Show handles GET /?sort=&order=
func (h *PageHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "")
}

// Select handles POST /select with either a company or a duration field
func (h *PageHandler) Select(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	form := validation.SelectionForm{
		Company:  r.PostForm.Get("company"),
		Duration: r.PostForm.Get("duration"),
	}
	if err := validation.Struct(form); err != nil {
		h.render(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var err error
	switch {
	case r.PostForm.Has("company"):
		err = h.session.SelectCompany(r.Context(), form.Company)
	case r.PostForm.Has("duration"):
		err = h.session.SelectDuration(r.Context(), form.Duration)
	default:
		err = h.session.Reload(r.Context())
	}
	switch {
	case err == nil:
	case errors.Is(err, problems.ErrUnknownCompany), errors.Is(err, dashboard.ErrUnknownDuration):
		h.render(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, dashboard.ErrMissingSelection):
	default:
		// The failure is kept as the session warning and shown after the redirect
		h.logger.Warn("page_load_failed", zap.String("error", logpkg.SanitizeError(err)))
	}
	h.redirect(w, r)
}

// Toggle handles POST /toggle with a title field
func (h *PageHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	req := validation.ToggleRequest{Title: r.PostForm.Get("title")}
	if err := validation.Struct(req); err != nil {
		h.render(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.session.Toggle(r.Context(), req.Title)
	h.redirect(w, r)
}

// Tags handles POST /tags with action add, remove or clear
func (h *PageHandler) Tags(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	tag := validation.SanitizeText(r.PostForm.Get("tag"))

	var err error
	switch r.PostForm.Get("action") {
	case "add":
		if tag != "" {
			err = h.session.AddTag(r.Context(), tag)
		}
	case "remove":
		err = h.session.RemoveTag(r.Context(), tag)
	case "clear":
		err = h.session.SetTags(r.Context(), nil)
	default:
		h.render(w, r, http.StatusBadRequest, "action must be one of: add, remove, clear")
		return
	}
	if err != nil {
		h.render(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.redirect(w, r)
}

// ShowTags handles POST /show-tags with show=true|false
func (h *PageHandler) ShowTags(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if err := h.session.SetShowTags(r.Context(), r.PostForm.Get("show") == "true"); err != nil {
		h.render(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.redirect(w, r)
}

// Reset handles POST /reset, clearing all completion state
func (h *PageHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.ResetCompletions(r.Context())
	h.redirect(w, r)
}

// Stylesheet serves the embedded page stylesheet
func (h *PageHandler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	data, err := webFS.ReadFile("web/dashboard.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

func (h *PageHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "invalid form submission")
		return false
	}
	return true
}

// redirect sends the browser back to the page, keeping the sort state
func (h *PageHandler) redirect(w http.ResponseWriter, r *http.Request) {
	field, order := sortParams(r.PostForm.Get("sort"), r.PostForm.Get("order"))
	http.Redirect(w, r, pageURL(field, order), http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	var field dashboard.SortField
	var order dashboard.Order
	if r.Method == http.MethodGet {
		field, order = sortParams(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	} else {
		field, order = sortParams(r.PostForm.Get("sort"), r.PostForm.Get("order"))
	}

	state := h.session.Snapshot(r.Context())
	data := pageData{
		State:       state,
		View:        state.View(field, order),
		Companies:   h.svc.Companies(),
		Durations:   h.svc.Catalog().Durations(state.Company),
		Suggestions: h.svc.Tags("", state.Tags),
		Columns:     columns(field, order),
		Sort:        string(field),
		Order:       string(order),
		Error:       errMsg,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("page_render_failed", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// sortParams parses sort parameters, falling back to CSV order on bad input
func sortParams(field, order string) (dashboard.SortField, dashboard.Order) {
	f, o, err := dashboard.ParseSort(field, order)
	if err != nil {
		return dashboard.SortNone, dashboard.OrderAsc
	}
	return f, o
}

func pageURL(field dashboard.SortField, order dashboard.Order) string {
	if field == dashboard.SortNone {
		return "/"
	}
	v := url.Values{}
	v.Set("sort", string(field))
	v.Set("order", string(order))
	return "/?" + v.Encode()
}

// columns builds the sortable headers; clicking the active column flips its order
func columns(active dashboard.SortField, order dashboard.Order) []column {
	defs := []struct {
		field dashboard.SortField
		label string
	}{
		{dashboard.SortDifficulty, "Difficulty"},
		{dashboard.SortTitle, "Title"},
		{dashboard.SortFrequency, "Frequency"},
		{dashboard.SortAcceptance, "Acceptance"},
	}

	out := make([]column, len(defs))
	for i, d := range defs {
		next := dashboard.OrderAsc
		arrow := ""
		if d.field == active {
			if order == dashboard.OrderAsc {
				next, arrow = dashboard.OrderDesc, " ▲"
			} else {
				arrow = " ▼"
			}
		}
		out[i] = column{Label: d.label, Href: pageURL(d.field, next), Arrow: arrow}
	}
	return out
}
