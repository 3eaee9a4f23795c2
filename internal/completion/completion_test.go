package completion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benvon/problem-dashboard/internal/models"
	"github.com/benvon/problem-dashboard/internal/storage"
)

// failingStore wraps a store and fails the selected operations
type failingStore struct {
	storage.Store
	failGet bool
	failSet bool
	failDel bool
}

var errBroken = errors.New("storage broken")

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errBroken
	}
	return f.Store.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errBroken
	}
	return f.Store.Set(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.failDel {
		return errBroken
	}
	return f.Store.Delete(ctx, key)
}

// slowStore delays every read like a networked backend would
type slowStore struct {
	storage.Store
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.Store.Get(ctx, key)
	time.Sleep(s.delay)
	return v, err
}

func TestExtractProblemTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Google - Two Sum", "Two Sum"},
		{"Meta - 3Sum", "3Sum"},
		{"Two Sum", "Two Sum"},
		{"  Two Sum  ", "Two Sum"},
		// Only a single letters-only word is a prefix
		{"BNY Mellon - Two Sum", "BNY Mellon - Two Sum"},
		{"J.P. Morgan - Two Sum", "J.P. Morgan - Two Sum"},
		{"Google - Meta - Two Sum", "Meta - Two Sum"},
		{"Google-Two Sum", "Google-Two Sum"},
		{"3Sum - Closest", "3Sum - Closest"},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			if got := ExtractProblemTitle(tt.title); got != tt.want {
				t.Errorf("ExtractProblemTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestExtractProblemTitle_StripsCompanyPrefix(t *testing.T) {
	t.Parallel()

	titles := []string{"Two Sum", "LRU Cache", "String to Integer (atoi)", "3Sum Closest", "Median of Two Sorted Arrays"}
	for _, title := range titles {
		if got := ExtractProblemTitle("Google - " + title); got != title {
			t.Errorf("ExtractProblemTitle(Google - %q) = %q", title, got)
		}
	}
}

func TestStore_GetAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stored string
		write  bool
		want   models.CompletedProblems
	}{
		{name: "missing key", want: models.CompletedProblems{}},
		{name: "valid blob", stored: `{"Two Sum":true,"3Sum":false}`, write: true, want: models.CompletedProblems{"Two Sum": true, "3Sum": false}},
		{name: "corrupt blob", stored: `{not json`, write: true, want: models.CompletedProblems{}},
		{name: "null blob", stored: `null`, write: true, want: models.CompletedProblems{}},
		{name: "wrong shape", stored: `["Two Sum"]`, write: true, want: models.CompletedProblems{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kv := storage.NewMemory()
			if tt.write {
				_ = kv.Set(context.Background(), StorageKey, tt.stored)
			}
			got := NewStore(kv, nil).GetAll(context.Background())
			if got == nil {
				t.Fatal("GetAll returned nil map")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("GetAll() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("GetAll()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestStore_GetAll_ReadError(t *testing.T) {
	t.Parallel()

	s := NewStore(&failingStore{Store: storage.NewMemory(), failGet: true}, nil)
	if got := s.GetAll(context.Background()); len(got) != 0 {
		t.Errorf("Expected empty mapping on read error, got %v", got)
	}
}

func TestStore_Toggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(kv, nil)

	got := s.Toggle(ctx, "Google - Two Sum")
	if !got["Two Sum"] {
		t.Fatalf("Expected Two Sum completed after toggle, got %v", got)
	}
	if !IsCompleted("Two Sum", s.GetAll(ctx)) {
		t.Error("Expected toggle to be persisted")
	}
	// Same canonical title from another company prefix
	if !IsCompleted("Meta - Two Sum", s.GetAll(ctx)) {
		t.Error("Expected prefixed title to share completion state")
	}

	got = s.Toggle(ctx, "Two Sum")
	if got["Two Sum"] {
		t.Errorf("Expected Two Sum not completed after second toggle, got %v", got)
	}
	// The key stays materialized as false once toggled
	if v, ok := got["Two Sum"]; !ok || v {
		t.Errorf("Expected explicit false entry, got %v (present=%v)", v, ok)
	}
}

func TestStore_ToggleTwiceRestores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	titles := []string{"Two Sum", "Apple - LRU Cache", "BNY Mellon - Trap"}
	for _, title := range titles {
		s := NewStore(storage.NewMemory(), nil)
		before := IsCompleted(title, s.GetAll(ctx))
		s.Toggle(ctx, title)
		after := s.Toggle(ctx, title)
		if IsCompleted(title, after) != before {
			t.Errorf("double toggle of %q changed state", title)
		}
	}
}

func TestStore_Toggle_WriteFailureKeepsSessionState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore(&failingStore{Store: storage.NewMemory(), failSet: true}, nil)

	got := s.Toggle(ctx, "Two Sum")
	if !got["Two Sum"] {
		t.Errorf("Expected in-memory toggle despite write failure, got %v", got)
	}
	if len(s.GetAll(ctx)) != 0 {
		t.Error("Expected nothing persisted")
	}
}

func TestStore_ConcurrentTogglesKeepEveryTitle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(&slowStore{Store: kv, delay: 5 * time.Millisecond}, nil)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Toggle(ctx, fmt.Sprintf("Problem %d", i))
		}(i)
	}
	wg.Wait()

	got := NewStore(kv, nil).GetAll(ctx)
	if len(got) != n {
		t.Fatalf("persisted %d completions, want %d: %v", len(got), n, got)
	}
	for i := 0; i < n; i++ {
		if title := fmt.Sprintf("Problem %d", i); !got[title] {
			t.Errorf("%q not completed", title)
		}
	}
}

func TestStore_ConcurrentTogglesAcrossStores(t *testing.T) {
	t.Parallel()

	// Two Store values over one backend, like the server and the CLI
	ctx := context.Background()
	kv := storage.NewMemory()
	a, b := NewStore(kv, nil), NewStore(kv, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			a.Toggle(ctx, fmt.Sprintf("A %d", i))
		}(i)
		go func(i int) {
			defer wg.Done()
			b.Toggle(ctx, fmt.Sprintf("B %d", i))
		}(i)
	}
	wg.Wait()

	if got := a.GetAll(ctx); len(got) != 20 {
		t.Errorf("persisted %d completions, want 20", len(got))
	}
}

func TestStore_Toggle_ReadFailureStillToggles(t *testing.T) {
	t.Parallel()

	s := NewStore(&failingStore{Store: storage.NewMemory(), failGet: true}, nil)
	if got := s.Toggle(context.Background(), "Google - Two Sum"); !got["Two Sum"] {
		t.Errorf("Toggle() with failing read = %v", got)
	}
}

func TestStore_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore(storage.NewMemory(), nil)
	s.Toggle(ctx, "Two Sum")

	if got := s.Reset(ctx); len(got) != 0 {
		t.Errorf("Reset() = %v", got)
	}
	if got := s.GetAll(ctx); len(got) != 0 {
		t.Errorf("GetAll() after Reset = %v", got)
	}

	failing := NewStore(&failingStore{Store: storage.NewMemory(), failDel: true}, nil)
	if got := failing.Reset(ctx); len(got) != 0 {
		t.Errorf("Reset() with failing delete = %v", got)
	}
}

func TestIsCompleted(t *testing.T) {
	t.Parallel()

	snapshot := models.CompletedProblems{"Two Sum": true, "3Sum": false}

	tests := []struct {
		title string
		want  bool
	}{
		{"Two Sum", true},
		{"Google - Two Sum", true},
		{"3Sum", false},
		{"Missing", false},
	}
	for _, tt := range tests {
		if got := IsCompleted(tt.title, snapshot); got != tt.want {
			t.Errorf("IsCompleted(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}

	if IsCompleted("Two Sum", nil) {
		t.Error("Expected nil snapshot to report not completed")
	}
}

func TestCountCompleted(t *testing.T) {
	t.Parallel()

	problems := []models.Problem{
		{Title: "Google - Two Sum"},
		{Title: "Two Sum"},
		{Title: "3Sum"},
		{Title: "LRU Cache"},
	}
	snapshot := models.CompletedProblems{"Two Sum": true, "LRU Cache": true}

	if got := CountCompleted(problems, snapshot); got != 3 {
		t.Errorf("CountCompleted() = %d, want 3", got)
	}
	if got := CountCompleted(nil, snapshot); got != 0 {
		t.Errorf("CountCompleted(nil) = %d, want 0", got)
	}
}
