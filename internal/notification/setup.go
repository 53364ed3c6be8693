package notification

import (
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/mqtt"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

var _ alerting.Notifier = (*Dispatcher)(nil)

// ProvidersFromSettings builds the enabled providers. mqttClient may be
// nil when MQTT is disabled.
func ProvidersFromSettings(settings *conf.Settings, mqttClient mqtt.Client) ([]Provider, error) {
	var providers []Provider

	if sc := settings.Notification.Shoutrrr; sc.Enabled {
		p, err := NewShoutrrrProvider(sc.URLs, sc.Timeout)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if wc := settings.Notification.Webhook; wc.Enabled {
		providers = append(providers, NewWebhookProvider(wc.URL, wc.InstallationID, wc.Timeout))
	}

	if settings.MQTT.Enabled && mqttClient != nil {
		topic := mqtt.ConfigFromSettings(settings).AlertsTopic()
		providers = append(providers, NewMQTTProvider(mqttClient, topic))
	}

	return providers, nil
}

// NewDispatcherFromSettings wires the providers and limits configured in settings.
func NewDispatcherFromSettings(settings *conf.Settings, mqttClient mqtt.Client, m *metrics.NotificationMetrics, log logger.Logger) (*Dispatcher, error) {
	providers, err := ProvidersFromSettings(settings, mqttClient)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(DispatcherOptions{
		QueueSize: settings.Alerting.DispatchQueueSize,
		PerMinute: settings.Notification.RateLimit.PerMinute,
		Burst:     settings.Notification.RateLimit.Burst,
		Metrics:   m,
		Logger:    log,
	}, providers...), nil
}
