package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/benvon/problem-dashboard/internal/models"
)

// decodeBody decodes an envelope and checks the fields every response carries
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantSuccess bool) map[string]any {
	t.Helper()

	if w.Code != wantStatus {
		t.Errorf("status = %d, want %d", w.Code, wantStatus)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if success, _ := body["success"].(bool); success != wantSuccess {
		t.Errorf("success = %v, want %v", body["success"], wantSuccess)
	}
	ts, _ := body["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}
	return body
}

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data any
		want any
	}{
		{
			name: "completion mapping",
			data: models.CompletedProblems{"Two Sum": true, "LRU Cache": false},
			want: map[string]any{"Two Sum": true, "LRU Cache": false},
		},
		{
			name: "company names",
			data: []string{"Google", "Meta"},
			want: []any{"Google", "Meta"},
		},
		{
			name: "empty settings",
			data: models.PartialSettings{},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSON(w, http.StatusOK, tt.data)

			body := decodeBody(t, w, http.StatusOK, true)
			if !reflect.DeepEqual(body["data"], tt.want) {
				t.Errorf("data = %#v, want %#v", body["data"], tt.want)
			}
			if _, ok := body["error"]; ok {
				t.Error("success envelope must not carry an error")
			}
		})
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		errorType   string
		message     string
		wantMessage string
	}{
		{
			name:        "missing selection",
			status:      http.StatusBadRequest,
			errorType:   "Bad Request",
			message:     "company and duration are required",
			wantMessage: "company and duration are required",
		},
		{
			name:        "problems unavailable",
			status:      http.StatusBadGateway,
			errorType:   "Bad Gateway",
			message:     "Failed to load problems for Google - 30 Days",
			wantMessage: "Failed to load problems for Google - 30 Days",
		},
		{
			name:        "long company name is truncated",
			status:      http.StatusBadGateway,
			errorType:   "Bad Gateway",
			message:     "Failed to load problems for " + strings.Repeat("A", 300) + " - All",
			wantMessage: ("Failed to load problems for " + strings.Repeat("A", 300))[:maxErrorMessageLength] + "...",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondJSONError(w, tt.status, tt.errorType, tt.message)

			body := decodeBody(t, w, tt.status, false)
			if body["error"] != tt.errorType {
				t.Errorf("error = %v, want %q", body["error"], tt.errorType)
			}
			if body["message"] != tt.wantMessage {
				t.Errorf("message = %v, want %q", body["message"], tt.wantMessage)
			}
			if _, ok := body["data"]; ok {
				t.Error("error envelope must not carry data")
			}
		})
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	t.Parallel()

	short := "company is required"
	if got := sanitizeErrorMessage(short); got != short {
		t.Errorf("sanitizeErrorMessage(%q) = %q", short, got)
	}

	long := strings.Repeat("x", maxErrorMessageLength+50)
	got := sanitizeErrorMessage(long)
	if len(got) != maxErrorMessageLength+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("sanitizeErrorMessage(long) has length %d", len(got))
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name        string
		body        string
		want        string
		errContains string
	}{
		{name: "valid", body: `{"title":"Two Sum"}`, want: "Two Sum"},
		{name: "empty", body: ``, errContains: "empty"},
		{name: "unknown field", body: `{"title":"a","extra":1}`, errContains: "invalid JSON body"},
		{name: "two objects", body: `{"title":"a"}{"title":"b"}`, errContains: "single JSON object"},
		{name: "malformed", body: `{"title":`, errContains: "invalid JSON body"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := decodeJSON(req, &got)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("decodeJSON() error = %v, want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeJSON() error = %v", err)
			}
			if got.Title != tt.want {
				t.Errorf("Title = %q, want %q", got.Title, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"Array", []string{"Array"}},
		{" Array , ,Hash Table,", []string{"Array", "Hash Table"}},
	}

	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// newTestRequest creates a test request with a JSON body
func newTestRequest(method, path string, body any) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}
