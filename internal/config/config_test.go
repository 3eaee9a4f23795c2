package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/benvon/problem-dashboard/internal/problems"
)

// configEnvVars lists every variable Load reads; each case starts from a clean slate
var configEnvVars = []string{
	"SERVER_PORT", "BASE_URL", "FRONTEND_URL",
	"PROBLEMS_DIR", "PROBLEMS_BASE_URL", "PROBLEMS_FETCH_TIMEOUT", "SAMPLE_FALLBACK_ENABLED", "COMPANIES_FILE",
	"STORAGE_BACKEND", "STORAGE_DIR", "STORAGE_NAMESPACE", "REDIS_URL", "DATABASE_URL",
	"RATE_LIMIT", "ENABLE_HSTS", "SERVER_DEBUG_MODE", "LOG_FORMAT", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "8080" {
					t.Errorf("Expected default ServerPort to be '8080', got '%s'", cfg.ServerPort)
				}
				if cfg.ProblemsDir != "./problems" {
					t.Errorf("Expected default ProblemsDir to be './problems', got '%s'", cfg.ProblemsDir)
				}
				if cfg.ProblemsFetchTimeout != 10*time.Second {
					t.Errorf("Expected default ProblemsFetchTimeout to be 10s, got %v", cfg.ProblemsFetchTimeout)
				}
				if !cfg.SampleFallbackEnabled {
					t.Error("Expected SampleFallbackEnabled to default to true")
				}
				if cfg.StorageBackend != "sqlite" || cfg.StorageDir != "./data" || cfg.StorageNamespace != "default" {
					t.Errorf("Unexpected storage defaults: %q %q %q", cfg.StorageBackend, cfg.StorageDir, cfg.StorageNamespace)
				}
				if cfg.RateLimit != "20-S" {
					t.Errorf("Expected default RateLimit to be '20-S', got '%s'", cfg.RateLimit)
				}
				if cfg.LogFormat != "json" {
					t.Errorf("Expected default LogFormat to be 'json', got '%s'", cfg.LogFormat)
				}
				if cfg.EnableHSTS || cfg.OTELEnabled || cfg.ServerDebugMode {
					t.Error("Expected boolean flags to default to false")
				}
			},
		},
		{
			name: "overrides",
			envVars: map[string]string{
				"SERVER_PORT":             "9090",
				"PROBLEMS_BASE_URL":       "https://cdn.example.com",
				"PROBLEMS_FETCH_TIMEOUT":  "3",
				"SAMPLE_FALLBACK_ENABLED": "false",
				"STORAGE_BACKEND":         "MEMORY",
				"STORAGE_NAMESPACE":       "alice",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != "9090" {
					t.Errorf("Expected ServerPort '9090', got '%s'", cfg.ServerPort)
				}
				if cfg.ProblemsBaseURL != "https://cdn.example.com" {
					t.Errorf("Unexpected ProblemsBaseURL '%s'", cfg.ProblemsBaseURL)
				}
				if cfg.ProblemsFetchTimeout != 3*time.Second {
					t.Errorf("Expected 3s timeout, got %v", cfg.ProblemsFetchTimeout)
				}
				if cfg.SampleFallbackEnabled {
					t.Error("Expected SampleFallbackEnabled false")
				}
				if cfg.StorageBackend != "memory" {
					t.Errorf("Expected backend 'memory', got '%s'", cfg.StorageBackend)
				}
				if opts := cfg.StorageOptions(); opts.Namespace != "alice" || opts.Backend != "memory" {
					t.Errorf("Unexpected storage options %+v", opts)
				}
			},
		},
		{
			name:        "redis backend requires REDIS_URL",
			envVars:     map[string]string{"STORAGE_BACKEND": "redis"},
			expectError: true,
		},
		{
			name:    "redis backend with REDIS_URL",
			envVars: map[string]string{"STORAGE_BACKEND": "redis", "REDIS_URL": "redis://localhost:6379/0"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.RedisURL != "redis://localhost:6379/0" {
					t.Errorf("Unexpected RedisURL '%s'", cfg.RedisURL)
				}
			},
		},
		{
			name:        "postgres backend requires DATABASE_URL",
			envVars:     map[string]string{"STORAGE_BACKEND": "postgres"},
			expectError: true,
		},
		{
			name:        "unknown backend",
			envVars:     map[string]string{"STORAGE_BACKEND": "etcd"},
			expectError: true,
		},
		{
			name:        "zero timeout",
			envVars:     map[string]string{"PROBLEMS_FETCH_TIMEOUT": "0s"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.envVars)

			cfg, err := Load()

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if cfg == nil {
				t.Fatal("Config is nil")
			}

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestFrontendOrigins(t *testing.T) {
	t.Parallel()

	cfg := &Config{FrontendURL: " http://a.test ,http://b.test,, "}
	want := []string{"http://a.test", "http://b.test"}
	if got := cfg.FrontendOrigins(); !reflect.DeepEqual(got, want) {
		t.Errorf("FrontendOrigins() = %v, want %v", got, want)
	}
}

func TestProblemSource(t *testing.T) {
	t.Parallel()

	dir := &Config{ProblemsDir: t.TempDir(), ProblemsFetchTimeout: time.Second}
	if _, ok := dir.ProblemSource().(*problems.DirSource); !ok {
		t.Errorf("ProblemSource() = %T, want *problems.DirSource", dir.ProblemSource())
	}

	remote := &Config{ProblemsBaseURL: "http://localhost:8080", ProblemsFetchTimeout: time.Second}
	if _, ok := remote.ProblemSource().(*problems.HTTPSource); !ok {
		t.Errorf("ProblemSource() = %T, want *problems.HTTPSource", remote.ProblemSource())
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_KEY", "test-value")
	t.Setenv("TEST_KEY_NOT_SET", "")

	if got := getEnv("TEST_KEY", "default"); got != "test-value" {
		t.Errorf("getEnv(TEST_KEY) = %s, want test-value", got)
	}
	if got := getEnv("TEST_KEY_NOT_SET", "default"); got != "default" {
		t.Errorf("getEnv(TEST_KEY_NOT_SET) = %s, want default", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"1", "1", false, true},
		{"yes", "yes", false, true},
		{"false", "false", true, false},
		{"garbage", "maybe", true, false},
		{"unset uses default", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_KEY", tt.value)
			if got := getEnvBool("TEST_BOOL_KEY", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"go duration", "1500ms", 1500 * time.Millisecond},
		{"seconds", "7", 7 * time.Second},
		{"invalid uses default", "soon", 10 * time.Second},
		{"unset uses default", "", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION_KEY", tt.value)
			if got := getEnvDuration("TEST_DURATION_KEY", 10*time.Second); got != tt.want {
				t.Errorf("getEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
