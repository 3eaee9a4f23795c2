// Package completion tracks which problems the user has marked as done.
//
// State is one JSON object mapping canonical problem titles to booleans,
// stored under a single key. Every toggle reads, flips and writes the whole
// object as one storage.Update, so concurrent toggles never lose each other.
// Storage failures are logged and swallowed: callers always receive the
// updated mapping for the current session.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"

	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/storage"
	"go.uber.org/zap"
)

// StorageKey is the key holding the completion blob
const StorageKey = "coding-problems-completed"

// companyPrefix matches a leading "<Company> - " added to sample data titles
var companyPrefix = regexp.MustCompile(`^[A-Za-z]+ - `)

// ExtractProblemTitle strips a single leading "<Word> - " prefix and trims the result.
// Titles without the prefix are only trimmed.
func ExtractProblemTitle(title string) string {
	return strings.TrimSpace(companyPrefix.ReplaceAllString(title, ""))
}

// Store persists completion state in a key-value backend
type Store struct {
	kv     storage.Store
	logger *zap.Logger

	// mu serializes toggles and resets made through this Store
	mu sync.Mutex
}

// NewStore creates a completion store over kv
func NewStore(kv storage.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// GetAll returns the stored completion mapping. A missing key, a read error or
// an undecodable blob all yield an empty mapping.
func (s *Store) GetAll(ctx context.Context) models.CompletedProblems {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("completion_load_failed", zap.String("error", logpkg.SanitizeError(err)))
		}
		return models.CompletedProblems{}
	}
	return s.decode(raw)
}

func (s *Store) decode(raw string) models.CompletedProblems {
	var completed models.CompletedProblems
	if err := json.Unmarshal([]byte(raw), &completed); err != nil {
		s.logger.Error("completion_decode_failed", zap.String("error", logpkg.SanitizeError(err)))
		return models.CompletedProblems{}
	}
	if completed == nil {
		completed = models.CompletedProblems{}
	}
	return completed
}

// Toggle flips the completion flag of the canonical form of title, persists the
// whole mapping and returns it. The returned mapping reflects the toggle even
// when the read or the write fails.
func (s *Store) Toggle(ctx context.Context, title string) models.CompletedProblems {
	key := ExtractProblemTitle(title)

	s.mu.Lock()
	defer s.mu.Unlock()

	var completed models.CompletedProblems
	err := storage.Update(ctx, s.kv, StorageKey, func(current string, found bool) (string, error) {
		completed = models.CompletedProblems{}
		if found {
			completed = s.decode(current)
		}
		completed[key] = !completed[key]
		data, err := json.Marshal(completed)
		return string(data), err
	})
	if completed == nil {
		completed = models.CompletedProblems{key: true}
	}
	if err != nil {
		s.logger.Error("completion_save_failed",
			zap.Int("entries", len(completed)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	return completed
}

// Reset removes all completion state
func (s *Store) Reset(ctx context.Context) models.CompletedProblems {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.logger.Error("completion_reset_failed", zap.String("error", logpkg.SanitizeError(err)))
	}
	return models.CompletedProblems{}
}

// IsCompleted looks up the canonical form of title in snapshot; absence means false
func IsCompleted(title string, snapshot models.CompletedProblems) bool {
	return snapshot[ExtractProblemTitle(title)]
}

// CountCompleted returns how many of problems are completed in snapshot
func CountCompleted(problems []models.Problem, snapshot models.CompletedProblems) int {
	n := 0
	for _, p := range problems {
		if IsCompleted(p.Title, snapshot) {
			n++
		}
	}
	return n
}
