package problems

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultRoot is the path segment all problem files live under
	DefaultRoot = "problems"
	// maxCSVSize bounds how much of a response body is read
	maxCSVSize int64 = 8 << 20
)

// Source fetches the raw CSV text of one company file
type Source interface {
	Fetch(ctx context.Context, company, file string) (string, error)
}

// ResourcePath returns the request path for a company file, e.g.
// "/problems/Google/1. Thirty Days.csv"
func ResourcePath(root, company, file string) string {
	return "/" + root + "/" + company + "/" + file
}

// StatusError reports a non-2xx fetch response
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPSource fetches files from <baseURL>/<root>/<company>/<file>
type HTTPSource struct {
	baseURL string
	root    string
	client  *http.Client
}

// NewHTTPSource creates an HTTP source. A nil client gets one with the given timeout.
func NewHTTPSource(baseURL, root string, client *http.Client, timeout time.Duration) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if root == "" {
		root = DefaultRoot
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		root:    root,
		client:  client,
	}
}

// URL returns the escaped request URL for a company file
func (s *HTTPSource) URL(company, file string) string {
	return s.baseURL + "/" + url.PathEscape(s.root) + "/" + url.PathEscape(company) + "/" + url.PathEscape(file)
}

// Fetch performs a single GET; there are no retries
func (s *HTTPSource) Fetch(ctx context.Context, company, file string) (string, error) {
	target := s.URL(company, file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVSize))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// DirSource reads files from a file system laid out as <company>/<file>
type DirSource struct {
	fsys fs.FS
}

// NewDirSource creates a source over fsys, typically os.DirFS(problemsDir)
func NewDirSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

func (s *DirSource) Fetch(ctx context.Context, company, file string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := company + "/" + file
	if !fs.ValidPath(name) || strings.Contains(company, "/") {
		return "", fmt.Errorf("invalid problem file path %q", name)
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer func() {
		_ = f.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(f, maxCSVSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(body), nil
}
