package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benvon/problem-dashboard/internal/dashboard"
)

// Output formats for the problems command
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

type problemsOptions struct {
	company  string
	duration string
	tags     []string
	sort     string
	order    string
	showTags bool
	output   string
}

// NewProblemsCmd creates the problems command. Company, duration, tags and the
// topic column default to the stored dashboard settings.
func NewProblemsCmd(open Opener) *cobra.Command {
	opts := &problemsOptions{}
	cmd := &cobra.Command{
		Use:   "problems",
		Short: "Show a company problem list with completion state",
		Long: "Load the problem list for a company and duration, filter it by tags and sort it.\n" +
			"Unset flags fall back to the selection stored by the dashboard.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, svc *dashboard.Service) error {
				return runProblems(ctx, cmd, svc, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.company, "company", "", "Company name (default: stored selection)")
	cmd.Flags().StringVar(&opts.duration, "duration", "", "Duration: 30 Days, 3 Months, 6 Months or All (default: stored selection)")
	cmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "Topic tag to filter by; repeatable (default: stored tags)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Sort by difficulty, title, frequency or acceptance")
	cmd.Flags().StringVar(&opts.order, "order", "asc", "Sort order: asc or desc")
	cmd.Flags().BoolVar(&opts.showTags, "show-tags", false, "Show the topics column (default: stored setting)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", OutputTable, "Output format: table or json")

	return cmd
}

func runProblems(ctx context.Context, cmd *cobra.Command, svc *dashboard.Service, opts *problemsOptions) error {
	if opts.output != OutputTable && opts.output != OutputJSON {
		return fmt.Errorf("unsupported output %q (use %s or %s)", opts.output, OutputTable, OutputJSON)
	}
	field, order, err := dashboard.ParseSort(opts.sort, opts.order)
	if err != nil {
		return err
	}

	stored := svc.Settings().Resolved(ctx)
	q := dashboard.Query{
		Company:  opts.company,
		Duration: opts.duration,
		Tags:     opts.tags,
		Sort:     field,
		Order:    order,
	}
	if q.Company == "" {
		q.Company = stored.SelectedCompany
	}
	if q.Duration == "" {
		q.Duration = stored.SelectedDuration
	}
	if !cmd.Flags().Changed("tag") {
		q.Tags = stored.SelectedTags
	}
	showTags := opts.showTags
	if !cmd.Flags().Changed("show-tags") {
		showTags = stored.ShowTags
	}

	if q.Company == "" || q.Duration == "" {
		return fmt.Errorf("--company and --duration are required when no selection is stored")
	}
	if err := svc.ValidateSelection(q.Company, q.Duration); err != nil {
		return err
	}
	view, err := svc.Problems(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to load problems for %s - %s: %w", q.Company, q.Duration, err)
	}

	if view.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", view.Warning)
	}

	out := cmd.OutOrStdout()
	if opts.output == OutputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Fprintf(out, "%s - %s: %d/%d completed (%d%%)\n",
		q.Company, q.Duration, view.Progress.Completed, view.Progress.Total, view.Progress.Percent)
	if len(q.Tags) > 0 {
		fmt.Fprintf(out, "Tags %s: showing %d of %d\n", strings.Join(q.Tags, ", "), view.Visible, view.Total)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := "DONE\tDIFFICULTY\tTITLE\tFREQUENCY\tACCEPTANCE"
	if showTags {
		header += "\tTOPICS"
	}
	fmt.Fprintln(tw, header)
	for _, row := range view.Problems {
		done := "[ ]"
		if row.Completed {
			done = "[x]"
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", done, row.Difficulty, row.Title, row.Frequency, row.AcceptanceRate)
		if showTags {
			line += "\t" + strings.Join(row.TopicList, ", ")
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}
