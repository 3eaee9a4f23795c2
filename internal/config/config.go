package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/problem-dashboard/internal/problems"
	"github.com/benvon/problem-dashboard/internal/storage"
)

// Config holds application configuration
type Config struct {
	ServerPort  string
	BaseURL     string
	FrontendURL string

	ProblemsDir           string
	ProblemsBaseURL       string
	ProblemsFetchTimeout  time.Duration
	SampleFallbackEnabled bool
	CompaniesFile         string

	StorageBackend   string
	StorageDir       string
	StorageNamespace string
	RedisURL         string
	DatabaseURL      string

	RateLimit       string
	EnableHSTS      bool
	ServerDebugMode bool
	LogFormat       string
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		ProblemsDir:           getEnv("PROBLEMS_DIR", "./problems"),
		ProblemsBaseURL:       getEnv("PROBLEMS_BASE_URL", ""),
		ProblemsFetchTimeout:  getEnvDuration("PROBLEMS_FETCH_TIMEOUT", 10*time.Second),
		SampleFallbackEnabled: getEnvBool("SAMPLE_FALLBACK_ENABLED", true),
		CompaniesFile:         getEnv("COMPANIES_FILE", ""),

		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", storage.BackendSQLite)),
		StorageDir:       getEnv("STORAGE_DIR", "./data"),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", "default"),
		RedisURL:         getEnv("REDIS_URL", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),

		RateLimit:       getEnv("RATE_LIMIT", "20-S"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	switch cfg.StorageBackend {
	case storage.BackendSQLite, storage.BackendMemory:
	case storage.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORAGE_BACKEND=redis")
		}
	case storage.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.ProblemsFetchTimeout <= 0 {
		return nil, fmt.Errorf("PROBLEMS_FETCH_TIMEOUT must be positive")
	}

	return cfg, nil
}

// FrontendOrigins returns the comma-separated FRONTEND_URL entries
func (c *Config) FrontendOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// StorageOptions returns the options for storage.Open
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.StorageBackend,
		Dir:         c.StorageDir,
		RedisURL:    c.RedisURL,
		DatabaseURL: c.DatabaseURL,
		Namespace:   c.StorageNamespace,
	}
}

// ProblemSource reads CSV files over HTTP when PROBLEMS_BASE_URL is set and
// from PROBLEMS_DIR otherwise
func (c *Config) ProblemSource() problems.Source {
	if c.ProblemsBaseURL != "" {
		return problems.NewHTTPSource(c.ProblemsBaseURL, problems.DefaultRoot, nil, c.ProblemsFetchTimeout)
	}
	return problems.NewDirSource(os.DirFS(c.ProblemsDir))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("10s") or a whole number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs := getEnvInt(key, -1); secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
