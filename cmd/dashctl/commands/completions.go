package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/benvon/problem-dashboard/internal/completion"
	"github.com/benvon/problem-dashboard/internal/dashboard"
)

// NewCompletionsCmd creates the completions command with list, toggle and reset subcommands
func NewCompletionsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completions",
		Short: "Manage problem completion state",
	}
	cmd.AddCommand(newCompletionsListCmd(open))
	cmd.AddCommand(newCompletionsToggleCmd(open))
	cmd.AddCommand(newCompletionsResetCmd(open))
	return cmd
}

func newCompletionsListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List completed problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, svc *dashboard.Service) error {
				var titles []string
				for title, done := range svc.Completions().GetAll(ctx) {
					if done {
						titles = append(titles, title)
					}
				}
				out := cmd.OutOrStdout()
				if len(titles) == 0 {
					fmt.Fprintln(out, "No completed problems")
					return nil
				}
				slices.Sort(titles)
				for _, t := range titles {
					fmt.Fprintln(out, t)
				}
				return nil
			})
		},
	}
}

func newCompletionsToggleCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <title>",
		Short: "Toggle the completion flag of a problem",
		Long:  "Toggle the completion flag of a problem. A leading \"Company - \" prefix is ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, svc *dashboard.Service) error {
				completed := svc.Completions().Toggle(ctx, args[0])
				title := completion.ExtractProblemTitle(args[0])
				state := "not completed"
				if completed[title] {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", title, state)
				return nil
			})
		},
	}
}

func newCompletionsResetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear all completion state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, svc *dashboard.Service) error {
				svc.Completions().Reset(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Completion state cleared.")
				return nil
			})
		},
	}
}
