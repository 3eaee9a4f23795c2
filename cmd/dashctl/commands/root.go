// Package commands implements the dashctl subcommands over the same stores
// and loader the server uses.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/problem-dashboard/internal/catalog"
	"github.com/benvon/problem-dashboard/internal/completion"
	"github.com/benvon/problem-dashboard/internal/config"
	"github.com/benvon/problem-dashboard/internal/dashboard"
	"github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/problems"
	"github.com/benvon/problem-dashboard/internal/settings"
	"github.com/benvon/problem-dashboard/internal/storage"
)

// Env is what a command runs against
type Env struct {
	Service *dashboard.Service
	Close   func() error
}

// Opener builds the Env for one command invocation
type Opener func(ctx context.Context) (*Env, error)

// NewRootCmd creates the dashctl root command
func NewRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "Command line client for the coding problems dashboard",
		Long:          "Browse company problem lists and manage completion state and settings using the same storage as the dashboard server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewCompaniesCmd(open))
	rootCmd.AddCommand(NewProblemsCmd(open))
	rootCmd.AddCommand(NewCompletionsCmd(open))
	rootCmd.AddCommand(NewSettingsCmd(open))

	return rootCmd
}

// OpenFromConfig builds an Env from the server's environment configuration.
// Loader warnings are logged to stderr in console format.
func OpenFromConfig(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := logger.New(logger.FormatConsole, cfg.ServerDebugMode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	kv, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}

	cat, err := catalog.Load(cfg.CompaniesFile)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("load company catalog: %w", err)
	}

	loader := problems.NewLoader(cfg.ProblemSource(),
		problems.WithFallback(cfg.SampleFallbackEnabled),
		problems.WithLogger(zapLogger),
	)

	svc := dashboard.NewService(cat, loader,
		completion.NewStore(kv, zapLogger),
		settings.NewStore(kv, zapLogger),
	)
	return &Env{
		Service: svc,
		Close: func() error {
			_ = logger.Sync(zapLogger)
			return kv.Close()
		},
	}, nil
}

// withEnv opens an Env, runs fn and closes the Env
func withEnv(cmd *cobra.Command, open Opener, fn func(ctx context.Context, svc *dashboard.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if env.Close == nil {
			return
		}
		if err := env.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close storage: %v\n", err)
		}
	}()
	return fn(ctx, env.Service)
}
