// Package notification pushes newly created threshold alerts to external
// providers: shoutrrr service URLs, a monitoring webhook and an MQTT topic.
package notification

import (
	"context"
	"fmt"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
)

// Provider defines a push delivery backend.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Send(ctx context.Context, alert *alerting.Alert) error
}

// alertTitle returns the short subject line for an alert.
func alertTitle(alert *alerting.Alert) string {
	return fmt.Sprintf("Low inspection score: %s", alerting.FormType(alert.FormType).Label())
}

// alertMessage returns the human readable body for an alert.
func alertMessage(alert *alerting.Alert) string {
	inspector := alert.InspectorName
	if inspector == "" {
		inspector = "unknown inspector"
	}
	return fmt.Sprintf("Inspection #%d by %s scored %.1f, below the threshold of %.1f.",
		alert.InspectionID, inspector, alert.Score, alert.ThresholdValue)
}
