// Package settings persists the dashboard UI preferences.
//
// All settings live in one JSON object. Writes are read-modify-write merges
// applied as one storage.Update: a setter only replaces its own key and keeps
// every sibling key as stored, including keys written concurrently.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/storage"
	"go.uber.org/zap"
)

// StorageKey is the key holding the settings blob
const StorageKey = "coding-problems-settings"

// Key names a single setting
type Key string

const (
	KeySelectedCompany  Key = "selectedCompany"
	KeySelectedDuration Key = "selectedDuration"
	KeySelectedTags     Key = "selectedTags"
	KeyShowTags         Key = "showTags"
)

var (
	// ErrUnknownKey is returned for a key that is not one of the AppSettings fields
	ErrUnknownKey = errors.New("unknown settings key")
	// ErrInvalidValue is returned when a value has the wrong type for its key
	ErrInvalidValue = errors.New("invalid settings value")
)

// ParseKey validates a key name
func ParseKey(name string) (Key, error) {
	switch k := Key(name); k {
	case KeySelectedCompany, KeySelectedDuration, KeySelectedTags, KeyShowTags:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
}

// DecodeValue decodes a raw JSON value into the Go type expected for key
func DecodeValue(key Key, raw json.RawMessage) (any, error) {
	var (
		v   any
		err error
	)
	switch key {
	case KeySelectedCompany, KeySelectedDuration:
		var s string
		err = json.Unmarshal(raw, &s)
		v = s
	case KeySelectedTags:
		var tags []string
		err = json.Unmarshal(raw, &tags)
		if tags == nil {
			tags = []string{}
		}
		v = tags
	case KeyShowTags:
		var b bool
		err = json.Unmarshal(raw, &b)
		v = b
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
	}
	return v, nil
}

func checkValue(key Key, value any) error {
	ok := false
	switch key {
	case KeySelectedCompany, KeySelectedDuration:
		_, ok = value.(string)
	case KeySelectedTags:
		_, ok = value.([]string)
	case KeyShowTags:
		_, ok = value.(bool)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !ok {
		return fmt.Errorf("%w for %s: got %T", ErrInvalidValue, key, value)
	}
	return nil
}

// Store persists AppSettings in a key-value backend
type Store struct {
	kv     storage.Store
	logger *zap.Logger

	// mu serializes merges made through this Store
	mu sync.Mutex
}

// NewStore creates a settings store over kv
func NewStore(kv storage.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// GetAll returns whatever settings are stored. Missing or corrupt storage yields
// an empty PartialSettings.
func (s *Store) GetAll(ctx context.Context) models.PartialSettings {
	raw, ok := s.load(ctx)
	if !ok {
		return models.PartialSettings{}
	}
	var out models.PartialSettings
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.Error("settings_decode_failed", zap.String("error", logpkg.SanitizeError(err)))
		return models.PartialSettings{}
	}
	return out
}

// Resolved returns the stored settings with defaults for anything absent
func (s *Store) Resolved(ctx context.Context) models.AppSettings {
	return s.GetAll(ctx).Resolve(models.DefaultSettings())
}

// Set merges a single key onto the stored settings and writes the result back.
// Only an unknown key or a wrongly typed value is reported; storage failures are logged.
func (s *Store) Set(ctx context.Context, key Key, value any) error {
	if err := checkValue(key, value); err != nil {
		return err
	}
	return s.merge(ctx, map[Key]any{key: value})
}

// Merge writes every present field of partial onto the stored settings
func (s *Store) Merge(ctx context.Context, partial models.PartialSettings) error {
	updates := make(map[Key]any)
	if partial.SelectedCompany != nil {
		updates[KeySelectedCompany] = *partial.SelectedCompany
	}
	if partial.SelectedDuration != nil {
		updates[KeySelectedDuration] = *partial.SelectedDuration
	}
	if partial.SelectedTags != nil {
		updates[KeySelectedTags] = partial.SelectedTags
	}
	if partial.ShowTags != nil {
		updates[KeyShowTags] = *partial.ShowTags
	}
	if len(updates) == 0 {
		return nil
	}
	return s.merge(ctx, updates)
}

func (s *Store) merge(ctx context.Context, updates map[Key]any) error {
	encoded := make(map[string]json.RawMessage, len(updates))
	for key, value := range updates {
		data, err := json.Marshal(value)
		if err != nil {
			s.logger.Error("settings_encode_failed",
				zap.String("key", string(key)),
				zap.String("error", logpkg.SanitizeError(err)),
			)
			return nil
		}
		encoded[string(key)] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := storage.Update(ctx, s.kv, StorageKey, func(stored string, found bool) (string, error) {
		current := make(map[string]json.RawMessage)
		if found {
			if err := json.Unmarshal([]byte(stored), &current); err != nil || current == nil {
				// A corrupt blob is replaced rather than merged into
				current = make(map[string]json.RawMessage)
			}
		}
		for key, value := range encoded {
			current[key] = value
		}
		data, err := json.Marshal(current)
		return string(data), err
	})
	if err != nil {
		s.logger.Error("settings_save_failed", zap.String("error", logpkg.SanitizeError(err)))
	}
	return nil
}

func (s *Store) load(ctx context.Context) ([]byte, bool) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("settings_load_failed", zap.String("error", logpkg.SanitizeError(err)))
		}
		return nil, false
	}
	return []byte(raw), true
}
