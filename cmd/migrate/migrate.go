// Package migrate implements the command that copies a SQLite alert
// database into the configured backend.
package migrate

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/datastore"
)

// Command creates the migrate command.
func Command(ctx *app.Context) *cobra.Command {
	var (
		from      string
		batchSize int
		clean     bool
		verify    bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy thresholds and alerts from a SQLite file into the configured database",
		Long: `Copy thresholds and alerts from a SQLite database into the database
selected in the configuration, typically MySQL. Primary keys are kept and
rows already present in the target are skipped, so an interrupted copy can
be re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := &ctx.Settings.Database
			if target.Type == conf.DatabaseSQLite && samePath(target.SQLite.Path, from) {
				return fmt.Errorf("source %s is the configured database", from)
			}

			srcSettings := *ctx.Settings
			srcSettings.Database.Type = conf.DatabaseSQLite
			srcSettings.Database.SQLite.Path = from

			src, err := datastore.Open(&srcSettings, ctx.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = datastore.Close(src) }()

			dst, err := datastore.Open(ctx.Settings, ctx.Logger)
			if err != nil {
				return err
			}
			defer func() { _ = datastore.Close(dst) }()

			start := time.Now()
			stats, err := datastore.Copy(cmd.Context(), src, dst, datastore.CopyOptions{
				BatchSize: batchSize,
				Clean:     clean,
				Logger:    ctx.Logger,
			})
			if err != nil {
				return err
			}

			writeSummary(cmd, stats, time.Since(start))
			if verify {
				return stats.Verify()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Path to the source SQLite database")
	cmd.Flags().IntVar(&batchSize, "batch-size", datastore.DefaultCopyBatchSize, "Rows per insert batch")
	cmd.Flags().BoolVar(&clean, "clean", false, "Delete existing target rows before copying")
	cmd.Flags().BoolVar(&verify, "verify", true, "Fail when the target holds fewer rows than the source")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func writeSummary(cmd *cobra.Command, stats *datastore.CopyStats, elapsed time.Duration) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tSOURCE\tCOPIED\tSKIPPED\tTARGET")
	for _, t := range stats.Tables {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", t.Name, t.Source, t.Copied, t.Skipped, t.Target)
	}
	_ = w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "done in %s\n", elapsed.Round(time.Millisecond))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
