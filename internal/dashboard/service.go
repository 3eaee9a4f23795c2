// Package dashboard composes the catalog, loader, completion and settings
// stores into the views served by the HTTP API, the dashboard page and the CLI.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/benvon/problem-dashboard/internal/catalog"
	"github.com/benvon/problem-dashboard/internal/completion"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/problems"
	"github.com/benvon/problem-dashboard/internal/settings"
	"github.com/benvon/problem-dashboard/internal/tags"
)

var (
	// ErrMissingSelection is returned when a company or duration is not given
	ErrMissingSelection = errors.New("company and duration are required")
	// ErrUnknownDuration is returned for a duration label with no file mapping
	ErrUnknownDuration = errors.New("unknown duration")
)

// Query selects and shapes one problem list
type Query struct {
	Company  string
	Duration string
	Tags     []string
	Sort     SortField
	Order    Order
}

// Service is the stateless entry point shared by the API and the CLI
type Service struct {
	catalog     *catalog.Catalog
	loader      *problems.Loader
	completions *completion.Store
	settings    *settings.Store
}

// NewService creates a service
func NewService(cat *catalog.Catalog, loader *problems.Loader, completions *completion.Store, settingsStore *settings.Store) *Service {
	return &Service{
		catalog:     cat,
		loader:      loader,
		completions: completions,
		settings:    settingsStore,
	}
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }
func (s *Service) Loader() *problems.Loader { return s.loader }
func (s *Service) Completions() *completion.Store { return s.completions }
func (s *Service) Settings() *settings.Store { return s.settings }
func (s *Service) Companies() []models.CompanyData { return s.catalog.Companies() }

// Problems loads the list for q and builds its view.
//
// A fallback load is not an error here: the sample rows are returned with the
// advisory in View.Warning and Source "sample". Any other load failure is returned.
func (s *Service) Problems(ctx context.Context, q Query) (View, error) {
	if q.Company == "" || q.Duration == "" {
		return View{}, ErrMissingSelection
	}

	rows, err := s.loader.Load(ctx, q.Company, q.Duration)
	origin := problems.Origin(err)
	if origin == "" {
		return View{}, err
	}

	view := BuildView(rows, s.completions.GetAll(ctx), q.Tags, q.Sort, q.Order)
	view.Source = origin
	if err != nil {
		view.Warning = err.Error()
	}
	return view, nil
}

// Tags returns tag suggestions for the picker. With an empty search every
// canonical tag not yet selected is returned.
func (s *Service) Tags(search string, selected []string) []string {
	return tags.Suggest(tags.Canonical, selected, search)
}

// ValidateSelection checks company and duration against the catalog. With both
// given, the duration must be one the company offers.
func (s *Service) ValidateSelection(company, duration string) error {
	if company != "" && !s.catalog.Has(company) {
		return fmt.Errorf("%w: %q", problems.ErrUnknownCompany, company)
	}
	if duration == "" {
		return nil
	}
	if !catalog.IsDuration(duration) {
		return fmt.Errorf("%w: %q", ErrUnknownDuration, duration)
	}
	if company != "" && !slices.Contains(s.catalog.Durations(company), duration) {
		return fmt.Errorf("%w: %q is not offered for %s", ErrUnknownDuration, duration, company)
	}
	return nil
}
