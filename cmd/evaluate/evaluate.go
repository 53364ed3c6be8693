// Package evaluate runs one inspection submission through the threshold check.
package evaluate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
)

// Command creates the evaluate command.
func Command(ctx *app.Context) *cobra.Command {
	var (
		sub      alerting.Submission
		formType string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a saved inspection against the threshold",
		Long: "Run the submission hook for an inspection that has already been saved. " +
			"An alert is recorded when the score is below the effective threshold.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ft, ok := alerting.ParseFormType(formType)
			if !ok {
				return fmt.Errorf("unknown form type %q", formType)
			}
			sub.FormType = string(ft)

			svc, err := ctx.OpenServices(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			alert, outcome, err := svc.Evaluator.Evaluate(cmd.Context(), sub)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch outcome {
			case alerting.OutcomeCreated:
				fmt.Fprintf(out, "alert %d created: score %.1f is below threshold %.1f\n",
					alert.ID, alert.Score, alert.ThresholdValue)
			case alerting.OutcomeDuplicate:
				fmt.Fprintf(out, "inspection %d already has open alert %d\n", sub.InspectionID, alert.ID)
			case alerting.OutcomeAboveThreshold:
				fmt.Fprintf(out, "score %.1f meets the threshold, no alert\n", sub.Score)
			case alerting.OutcomeNoThreshold:
				fmt.Fprintln(out, "no threshold configured, no alert")
			default:
				fmt.Fprintf(out, "evaluation skipped: %s\n", outcome)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&sub.InspectionID, "inspection", 0, "Inspection id")
	flags.StringVar(&sub.InspectorName, "inspector", "", "Inspector name")
	flags.StringVar(&formType, "form", "", "Form type, e.g. food_establishment")
	flags.Float64Var(&sub.Score, "score", 0, "Overall inspection score")
	_ = cmd.MarkFlagRequired("inspection")
	_ = cmd.MarkFlagRequired("form")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}
