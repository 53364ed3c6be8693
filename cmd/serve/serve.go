// Package serve implements the long running alert service command.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/api"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/app"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/mqtt"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/notification"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/telemetry"
)

const (
	mqttConnectTimeout   = 30 * time.Second
	telemetryFlushPeriod = 2 * time.Second
)

// Command creates the serve command.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the alert API and notification dispatcher",
		Long: "Open the alert database, seed the default threshold and serve the HTTP API " +
			"until interrupted. Created alerts are pushed to the configured notification providers.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(sigCtx, ctx.Settings, ctx.Logger)
		},
	}
}

// Run starts every service component and blocks until ctx is cancelled
// or a component fails. Components are stopped in reverse start order.
func Run(ctx context.Context, settings *conf.Settings, log logger.Logger) error {
	log = logger.OrDiscard(log)
	serveLog := log.Module("serve")

	if err := telemetry.InitSentry(settings, log); err != nil {
		return err
	}
	defer telemetry.Shutdown(telemetryFlushPeriod)

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	var mqttClient mqtt.Client
	if settings.MQTT.Enabled {
		mqttClient = mqtt.NewClient(mqtt.ConfigFromSettings(settings), m.MQTT, log)
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err := mqttClient.Connect(connectCtx)
		cancel()
		if err != nil {
			// alerts are still stored and served; MQTT deliveries fail until a restart
			serveLog.Warn("MQTT connection failed, continuing without broker",
				logger.String("broker", settings.MQTT.Broker),
				logger.Error(err))
		} else {
			serveLog.Info("connected to MQTT broker", logger.String("broker", settings.MQTT.Broker))
		}
		defer mqttClient.Disconnect()
	}

	dispatcher, err := notification.NewDispatcherFromSettings(settings, mqttClient, m.Notification, log)
	if err != nil {
		return err
	}
	dispatcher.Start()
	defer dispatcher.Stop()

	svc, err := app.Open(ctx, settings, app.Options{
		Metrics:  m.Alerting,
		Notifier: dispatcher,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			serveLog.Warn("failed to close database", logger.Error(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if settings.WebServer.Enabled {
		server, err := api.New(settings,
			api.WithLogger(log),
			api.WithMetrics(m),
			api.WithServices(svc.API()))
		if err != nil {
			return err
		}
		g.Go(func() error { return server.Start(gctx) })
	}

	// keeps the unacknowledged gauge current between API reads
	poller := alerting.NewPoller(svc.Query, settings.Alerting.PollInterval, func(count int64) {
		serveLog.Debug("unacknowledged alerts changed", logger.Int64("count", count))
	}, log)
	g.Go(func() error {
		poller.Run(gctx)
		return nil
	})

	serveLog.Info("alert service started",
		logger.String("version", settings.Version),
		logger.Bool("web_server", settings.WebServer.Enabled),
		logger.Any("providers", dispatcher.Providers()))

	err = g.Wait()
	serveLog.Info("alert service stopping")
	return err
}
