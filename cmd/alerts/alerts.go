// Package alerts implements the alert queue commands.
package alerts

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
)

// Command creates the alerts command group.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review and acknowledge threshold alerts",
	}
	cmd.AddCommand(
		listCommand(ctx),
		statsCommand(ctx),
		ackCommand(ctx),
		ackAllCommand(ctx),
		clearCommand(ctx),
		watchCommand(ctx),
	)
	return cmd
}

func listCommand(ctx *app.Context) *cobra.Command {
	var (
		status   string
		formType string
		limit    int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts, unacknowledged first and newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formType, err := parseFormType(formType)
			if err != nil {
				return err
			}

			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			list, err := svc.Query.ListLimit(cmd.Context(), alerting.StatusFilter(status), formType, limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no alerts")
				return nil
			}
			return writeAlertTable(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(alerting.StatusAll), "Filter by status: all, unacknowledged or acknowledged")
	cmd.Flags().StringVar(&formType, "type", alerting.FormTypeAll, "Filter by form type")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of alerts to print, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func statsCommand(ctx *app.Context) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print alert totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			stats, err := svc.Query.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total:          %d\n", stats.Total)
			fmt.Fprintf(out, "unacknowledged: %d\n", stats.Unacknowledged)
			fmt.Fprintf(out, "acknowledged:   %d\n", stats.Acknowledged)
			if stats.Latest != nil {
				fmt.Fprintf(out, "latest:         %s\n", stats.Latest.Local().Format(time.DateTime))
			}
			for _, ft := range slices.Sorted(maps.Keys(stats.ByFormType)) {
				fmt.Fprintf(out, "  %-28s %d\n", alerting.FormType(ft).Label(), stats.ByFormType[ft])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func ackCommand(ctx *app.Context) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge one alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid alert id %q", args[0])
			}

			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			alert, err := svc.Lifecycle.Acknowledge(cmd.Context(), uint(id), actor)
			if err != nil {
				return err
			}
			by := ""
			if alert.AcknowledgedBy != nil {
				by = *alert.AcknowledgedBy
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert %d acknowledged by %s\n", alert.ID, by)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", defaultActor(), "Name recorded as the acknowledger")
	return cmd
}

func ackAllCommand(ctx *app.Context) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "ack-all",
		Short: "Acknowledge every open alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			count, err := svc.Lifecycle.AcknowledgeAll(cmd.Context(), actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d alerts acknowledged\n", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", defaultActor(), "Name recorded as the acknowledger")
	return cmd
}

func clearCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every acknowledged alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			count, err := svc.Lifecycle.ClearAcknowledged(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d acknowledged alerts deleted\n", count)
			return nil
		},
	}
}

func watchCommand(ctx *app.Context) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the unacknowledged alert count whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = ctx.Settings.Alerting.PollInterval
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := ctx.OpenServices(sigCtx)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			alerting.NewPoller(svc.Query, interval, func(count int64) {
				fmt.Fprintf(out, "%s unacknowledged alerts: %d\n", time.Now().Format(time.TimeOnly), count)
			}, ctx.Logger).Run(sigCtx)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", alerting.DefaultPollInterval, "Polling interval")
	return cmd
}

func parseFormType(s string) (string, error) {
	if s == "" || s == alerting.FormTypeAll {
		return alerting.FormTypeAll, nil
	}
	ft, ok := alerting.ParseFormType(s)
	if !ok {
		return "", fmt.Errorf("unknown form type %q", s)
	}
	return string(ft), nil
}

func defaultActor() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return os.Getenv("USERNAME")
}

func writeAlertTable(out io.Writer, list []alerting.Alert) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tFORM\tINSPECTION\tINSPECTOR\tSCORE\tTHRESHOLD\tSTATUS")
	for i := range list {
		a := &list[i]
		status := "open"
		if a.Acknowledged {
			status = "acknowledged"
			if a.AcknowledgedBy != nil {
				status += " by " + *a.AcknowledgedBy
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%.1f\t%.1f\t%s\n",
			a.ID,
			a.CreatedAt.Local().Format(time.DateTime),
			alerting.FormType(a.FormType).Label(),
			a.InspectionID,
			a.InspectorName,
			a.Score,
			a.ThresholdValue,
			status)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
