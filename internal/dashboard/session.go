package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/problems"
	"github.com/benvon/problem-dashboard/internal/settings"
	"github.com/benvon/problem-dashboard/internal/tags"
)

// DefaultLoadTimeout bounds a session load when no WithLoadTimeout option is given
const DefaultLoadTimeout = 10 * time.Second

// State is a point-in-time copy of a session
type State struct {
	Company   string
	Duration  string
	Tags      []string
	ShowTags  bool
	Problems  []models.Problem
	Warning   string
	Source    string
	Completed models.CompletedProblems
	Loading   bool
}

// Session holds the selection and the loaded list of the single dashboard
// user. Every selection change is persisted through the settings store.
// Completion state is not cached: it is read from the completion store
// whenever a snapshot is taken, so writes made through the API or the CLI
// show up on the next render.
//
// Session state outlives any request, so loads and writes run on a context
// detached from the caller's cancellation. Each load is tagged with a
// generation and bounded by the load timeout. Starting a load, or changing
// the company, cancels the one in flight, and a result whose generation is
// no longer current is discarded.
type Session struct {
	svc         *Service
	logger      *zap.Logger
	loadTimeout time.Duration

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLoadTimeout bounds every load started by the session
func WithLoadTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// NewSession creates an empty session. Call Restore to apply stored settings.
func NewSession(svc *Service, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := models.DefaultSettings()
	s := &Session{
		svc:         svc,
		logger:      logger,
		loadTimeout: DefaultLoadTimeout,
		state: State{
			Tags:     defaults.SelectedTags,
			ShowTags: defaults.ShowTags,
			Problems: []models.Problem{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore applies the stored settings, then loads the list when both company
// and duration are set.
func (s *Session) Restore(ctx context.Context) error {
	stored := s.svc.settings.Resolved(ctx)

	s.mu.Lock()
	s.state.Company = stored.SelectedCompany
	s.state.Duration = stored.SelectedDuration
	s.state.Tags = nonNil(stored.SelectedTags)
	s.state.ShowTags = stored.ShowTags
	ready := s.ready()
	s.mu.Unlock()

	if !ready {
		return nil
	}
	return s.Reload(ctx)
}

// SelectCompany changes the company and clears the duration and the list
func (s *Session) SelectCompany(ctx context.Context, company string) error {
	if err := s.svc.ValidateSelection(company, ""); err != nil {
		return err
	}

	s.mu.Lock()
	s.invalidate()
	s.state.Company = company
	s.state.Duration = ""
	s.clearList()
	s.mu.Unlock()

	empty := ""
	return s.svc.settings.Merge(context.WithoutCancel(ctx), models.PartialSettings{
		SelectedCompany:  &company,
		SelectedDuration: &empty,
	})
}

// SelectDuration changes the duration and loads the list when a company is
// selected. The duration must be one the selected company offers.
func (s *Session) SelectDuration(ctx context.Context, duration string) error {
	s.mu.Lock()
	company := s.state.Company
	s.mu.Unlock()
	if err := s.svc.ValidateSelection(company, duration); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.Duration = duration
	ready := s.ready()
	if !ready {
		s.invalidate()
		s.clearList()
	}
	s.mu.Unlock()

	if err := s.svc.settings.Set(context.WithoutCancel(ctx), settings.KeySelectedDuration, duration); err != nil {
		return err
	}
	if !ready {
		return nil
	}
	return s.Reload(ctx)
}

// SetTags replaces the selected tags
func (s *Session) SetTags(ctx context.Context, selected []string) error {
	selected = nonNil(slices.Clone(selected))

	s.mu.Lock()
	s.state.Tags = selected
	s.mu.Unlock()

	return s.svc.settings.Merge(context.WithoutCancel(ctx), models.PartialSettings{SelectedTags: selected})
}

// AddTag selects tag; selecting an already selected tag is a no-op
func (s *Session) AddTag(ctx context.Context, tag string) error {
	return s.SetTags(ctx, tags.Add(s.selectedTags(), tag))
}

// RemoveTag deselects tag
func (s *Session) RemoveTag(ctx context.Context, tag string) error {
	return s.SetTags(ctx, tags.Remove(s.selectedTags(), tag))
}

// SetShowTags toggles the topic column
func (s *Session) SetShowTags(ctx context.Context, show bool) error {
	s.mu.Lock()
	s.state.ShowTags = show
	s.mu.Unlock()

	return s.svc.settings.Merge(context.WithoutCancel(ctx), models.PartialSettings{ShowTags: &show})
}

// Toggle flips the completion flag of title and returns the new mapping
func (s *Session) Toggle(ctx context.Context, title string) models.CompletedProblems {
	return s.svc.completions.Toggle(context.WithoutCancel(ctx), title)
}

// ResetCompletions clears all completion state
func (s *Session) ResetCompletions(ctx context.Context) {
	s.svc.completions.Reset(context.WithoutCancel(ctx))
}

// Reload loads the list for the current selection, replacing any load in flight.
// A load superseded by a newer one returns nil and leaves the state untouched.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	if !s.ready() {
		s.mu.Unlock()
		return ErrMissingSelection
	}
	s.invalidate()
	gen := s.gen
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	s.cancel = cancel
	company, duration := s.state.Company, s.state.Duration
	s.state.Loading = true
	s.mu.Unlock()
	defer cancel()

	rows, err := s.svc.loader.Load(loadCtx, company, duration)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		s.logger.Debug("problem_load_discarded",
			zap.String("company", logpkg.SanitizeName(company)),
			zap.String("duration", logpkg.SanitizeName(duration)),
			zap.Uint64("generation", gen),
		)
		return nil
	}

	s.cancel = nil
	s.state.Loading = false
	origin := problems.Origin(err)
	if origin == "" {
		s.state.Problems = []models.Problem{}
		s.state.Warning = err.Error()
		s.state.Source = ""
		return err
	}

	s.state.Problems = rows
	s.state.Source = origin
	s.state.Warning = ""
	if err != nil {
		s.state.Warning = err.Error()
	}
	return nil
}

// Snapshot returns a copy of the current state with the stored completion mapping
func (s *Session) Snapshot(ctx context.Context) State {
	completed := s.svc.completions.GetAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Tags = slices.Clone(s.state.Tags)
	st.Problems = slices.Clone(s.state.Problems)
	st.Completed = completed
	return st
}

// View builds the displayed table for the current state
func (s *Session) View(ctx context.Context, field SortField, order Order) View {
	return s.Snapshot(ctx).View(field, order)
}

// View builds the displayed table for st
func (st State) View(field SortField, order Order) View {
	view := BuildView(st.Problems, st.Completed, st.Tags, field, order)
	view.Warning = st.Warning
	view.Source = st.Source
	return view
}

func (s *Session) selectedTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Tags)
}

func (s *Session) ready() bool {
	return s.state.Company != "" && s.state.Duration != ""
}

// invalidate cancels the load in flight and retires its generation. Caller holds mu.
func (s *Session) invalidate() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.state.Loading = false
}

// clearList empties the list and advisory. Caller holds mu.
func (s *Session) clearList() {
	s.state.Problems = []models.Problem{}
	s.state.Warning = ""
	s.state.Source = ""
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
