package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benvon/problem-dashboard/internal/dashboard"
	"github.com/benvon/problem-dashboard/internal/settings"
)

// NewSettingsCmd creates the settings command with get and set subcommands
func NewSettingsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored dashboard settings",
	}
	cmd.AddCommand(newSettingsGetCmd(open))
	cmd.AddCommand(newSettingsSetCmd(open))
	return cmd
}

func newSettingsGetCmd(open Opener) *cobra.Command {
	var resolved bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, svc *dashboard.Service) error {
				var v any = svc.Settings().GetAll(ctx)
				if resolved {
					v = svc.Settings().Resolved(ctx)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(v)
			})
		},
	}
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Fill unset settings with their defaults")
	return cmd
}

func newSettingsSetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one setting",
		Long: "Set one setting. Keys: selectedCompany, selectedDuration, selectedTags, showTags.\n" +
			"selectedTags takes a JSON array or a comma-separated list; showTags takes true or false.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := settings.ParseKey(args[0])
			if err != nil {
				return err
			}
			value, err := settings.DecodeValue(key, rawValue(key, args[1]))
			if err != nil {
				return err
			}
			return withEnv(cmd, open, func(ctx context.Context, svc *dashboard.Service) error {
				if err := svc.Settings().Set(ctx, key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s updated.\n", key)
				return nil
			})
		},
	}
}

// rawValue turns a command line argument into the JSON form DecodeValue expects
func rawValue(key settings.Key, arg string) json.RawMessage {
	switch key {
	case settings.KeySelectedCompany, settings.KeySelectedDuration:
		b, _ := json.Marshal(arg)
		return b
	case settings.KeySelectedTags:
		if trimmed := strings.TrimSpace(arg); strings.HasPrefix(trimmed, "[") {
			return json.RawMessage(trimmed)
		}
		tags := []string{}
		for _, t := range strings.Split(arg, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		b, _ := json.Marshal(tags)
		return b
	default:
		return json.RawMessage(strings.TrimSpace(arg))
	}
}
