// Package threshold implements the threshold get, set and list commands.
package threshold

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
)

// Command creates the threshold command group.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Show or change the minimum passing score",
	}
	cmd.AddCommand(getCommand(ctx), setCommand(ctx), listCommand(ctx))
	return cmd
}

func getCommand(ctx *app.Context) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the threshold of a scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope, err := parseScope(scope)
			if err != nil {
				return err
			}

			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			setting, err := svc.Thresholds.Get(cmd.Context(), scope)
			if err != nil {
				return err
			}
			if setting == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not set\n", scope)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f\n", setting.Scope, setting.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", alerting.ScopeGlobal, "Threshold scope: global or a form type")
	return cmd
}

func setCommand(ctx *app.Context) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "set <value>",
		Short: "Set the threshold of a scope (0-100)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid threshold %q: %w", args[0], err)
			}
			scope, err := parseScope(scope)
			if err != nil {
				return err
			}

			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			setting, err := svc.Thresholds.Set(cmd.Context(), scope, value)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s threshold set to %.1f\n", setting.Scope, setting.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", alerting.ScopeGlobal, "Threshold scope: global or a form type")
	return cmd
}

func listCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			settings, err := svc.Thresholds.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCOPE\tVALUE\tENABLED\tUPDATED")
			for _, s := range settings {
				fmt.Fprintf(w, "%s\t%.1f\t%t\t%s\n", s.Scope, s.Value, s.Enabled, s.UpdatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}

// parseScope accepts "global" or a form type in any common spelling.
func parseScope(s string) (string, error) {
	if s == "" || s == alerting.ScopeGlobal {
		return alerting.ScopeGlobal, nil
	}
	ft, ok := alerting.ParseFormType(s)
	if !ok {
		return "", fmt.Errorf("unknown scope %q", s)
	}
	return string(ft), nil
}
