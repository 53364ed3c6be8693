// Package telemetry reports errors to Sentry with privacy filtering.
package telemetry

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

var (
	initialized atomic.Bool
	// transport overrides the SDK's HTTP transport when set.
	transport sentry.Transport
)

// reportedCategories are the error categories forwarded to Sentry.
// Validation and not-found errors are caller mistakes, not faults.
var reportedCategories = []errors.ErrorCategory{
	errors.CategoryDatabase,
	errors.CategoryConfiguration,
	errors.CategorySystem,
	errors.CategoryNetwork,
	errors.CategoryTimeout,
	errors.CategoryNotification,
	errors.CategoryMQTTConnect,
	errors.CategoryMQTTPublish,
	errors.CategoryThreshold,
	errors.CategoryEvaluation,
}

// InitSentry initializes the Sentry SDK when enabled in settings and
// installs the enhanced error reporter. It is a no-op when disabled.
func InitSentry(settings *conf.Settings, log logger.Logger) error {
	log = logger.OrDiscard(log).Module("telemetry")

	if !settings.Sentry.Enabled {
		log.Debug("sentry telemetry is disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		Transport:        transport,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      settings.Sentry.Environment,
		ServerName:       "",
		Release:          fmt.Sprintf("zozi-alerts@%s", settings.Version),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("version", settings.Version)
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true, reportedCategories...))
	initialized.Store(true)

	log.Info("sentry telemetry initialized",
		logger.String("environment", settings.Sentry.Environment),
		logger.String("version", settings.Version))
	return nil
}

// applyPrivacyFilters strips host and user identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) {
	if !initialized.Load() {
		return
	}
	sentry.Flush(timeout)
}

// Shutdown flushes pending events and detaches the error reporter.
func Shutdown(timeout time.Duration) {
	if !initialized.Swap(false) {
		return
	}
	errors.SetTelemetryReporter(nil)
	sentry.Flush(timeout)
}
