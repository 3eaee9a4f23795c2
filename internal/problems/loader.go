package problems

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/benvon/problem-dashboard/internal/catalog"
	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/parser"
)

// Origin values describe where a loaded list came from
const (
	OriginCSV    = "csv"
	OriginSample = "sample"
)

var (
	// ErrNoFile is returned when a duration label maps to no CSV file
	ErrNoFile = errors.New("no problem file for duration")
	// ErrUnknownCompany is returned when a company is not in the catalog
	ErrUnknownCompany = errors.New("unknown company")
)

// FallbackError accompanies sample rows returned in place of a list that failed to load.
// Its message is the advisory shown to the user.
type FallbackError struct {
	Company  string
	Duration string
	Path     string
	Err      error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("Failed to load problems for %s - %s. Please ensure the CSV file exists at the correct path.", e.Company, e.Duration)
}

func (e *FallbackError) Unwrap() error {
	return e.Err
}

// LoadObserver receives the outcome of each load
type LoadObserver interface {
	ObserveLoad(company, duration, origin string, rows int, elapsed time.Duration)
}

const tracerName = "github.com/benvon/problem-dashboard/internal/problems"

// Loader resolves, fetches and parses company problem lists
type Loader struct {
	source   Source
	root     string
	fallback bool
	intN     func(int) int
	logger   *zap.Logger
	tracer   trace.Tracer
	observer LoadObserver
}

// Option configures a Loader
type Option func(*Loader)

// WithFallback enables or disables sample data on load failure. Enabled by default.
func WithFallback(enabled bool) Option {
	return func(l *Loader) { l.fallback = enabled }
}

// WithRandom sets the random source used for sample frequency and acceptance values
func WithRandom(intN func(int) int) Option {
	return func(l *Loader) {
		if intN != nil {
			l.intN = intN
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithObserver registers a load observer, typically the metrics recorder
func WithObserver(o LoadObserver) Option {
	return func(l *Loader) { l.observer = o }
}

// WithTracerProvider sets the provider load spans are recorded with
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Loader) {
		if tp != nil {
			l.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithRoot sets the path segment used when reporting resource paths
func WithRoot(root string) Option {
	return func(l *Loader) {
		if root != "" {
			l.root = root
		}
	}
}

// NewLoader creates a loader reading from source
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source:   source,
		root:     DefaultRoot,
		fallback: true,
		intN:     rand.Intn,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FallbackEnabled reports whether the loader substitutes sample data on failure
func (l *Loader) FallbackEnabled() bool {
	return l.fallback
}

// Load fetches and parses the list for company and duration, assigning each row its ID.
//
// On any fetch or read failure with fallback enabled it returns sample rows together
// with a *FallbackError. With fallback disabled it returns nil rows and the failure.
// A file with only a header yields an empty list and no error.
func (l *Loader) Load(ctx context.Context, company, duration string) ([]models.Problem, error) {
	ctx, span := l.tracer.Start(ctx, "problems.Load", trace.WithAttributes(
		attribute.String("problems.company", company),
		attribute.String("problems.duration", duration),
	))
	defer span.End()

	start := time.Now()
	file := catalog.FileName(duration)
	path := ResourcePath(l.root, company, file)

	text, err := l.fetch(ctx, company, file)
	if err != nil {
		span.RecordError(err)
		l.logger.Warn("problem_list_load_failed",
			zap.String("company", logpkg.SanitizeName(company)),
			zap.String("duration", logpkg.SanitizeName(duration)),
			zap.String("path", logpkg.SanitizePath(path)),
			zap.String("error", logpkg.SanitizeError(err)),
		)

		if !l.fallback {
			span.SetStatus(codes.Error, "load failed")
			l.observe(company, duration, "error", 0, start)
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		rows := SampleProblems(company, duration, l.intN)
		span.SetAttributes(attribute.String("problems.origin", OriginSample), attribute.Int("problems.rows", len(rows)))
		l.observe(company, duration, OriginSample, len(rows), start)
		return rows, &FallbackError{Company: company, Duration: duration, Path: path, Err: err}
	}

	rows := parser.Parse(text)
	ids := make([]string, len(rows))
	for i := range rows {
		rows[i].ID = GenerateID(company, duration, rows[i].Title)
		ids[i] = rows[i].ID
	}
	if dups := DuplicateIDs(ids); len(dups) > 0 {
		l.logger.Warn("problem_id_collision",
			zap.String("company", logpkg.SanitizeName(company)),
			zap.String("duration", logpkg.SanitizeName(duration)),
			zap.Strings("ids", dups),
		)
	}

	span.SetAttributes(attribute.String("problems.origin", OriginCSV), attribute.Int("problems.rows", len(rows)))
	l.observe(company, duration, OriginCSV, len(rows), start)
	l.logger.Debug("problem_list_loaded",
		zap.String("company", logpkg.SanitizeName(company)),
		zap.String("duration", logpkg.SanitizeName(duration)),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

func (l *Loader) fetch(ctx context.Context, company, file string) (string, error) {
	if file == "" {
		return "", ErrNoFile
	}
	return l.source.Fetch(ctx, company, file)
}

func (l *Loader) observe(company, duration, origin string, rows int, start time.Time) {
	if l.observer == nil {
		return
	}
	l.observer.ObserveLoad(company, duration, origin, rows, time.Since(start))
}

// Origin classifies a Load result: OriginSample when err is a *FallbackError,
// OriginCSV when err is nil, and "" otherwise.
func Origin(err error) string {
	if err == nil {
		return OriginCSV
	}
	var fb *FallbackError
	if errors.As(err, &fb) {
		return OriginSample
	}
	return ""
}
