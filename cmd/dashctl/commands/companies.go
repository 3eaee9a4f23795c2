package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/problem-dashboard/internal/dashboard"
)

// NewCompaniesCmd creates the companies command
func NewCompaniesCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List companies and their durations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(_ context.Context, svc *dashboard.Service) error {
				out := cmd.OutOrStdout()
				for _, c := range svc.Companies() {
					fmt.Fprintf(out, "%s\t%s\n", c.Name, strings.Join(c.Durations, ", "))
				}
				return nil
			})
		},
	}
}
