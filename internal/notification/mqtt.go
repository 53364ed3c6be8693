package notification

import (
	"context"
	"encoding/json"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/mqtt"
)

// ProviderMQTT is the provider name used in logs and metrics.
const ProviderMQTT = "mqtt"

// MQTTProvider publishes alert JSON to a broker topic.
type MQTTProvider struct {
	client mqtt.Client
	topic  string
}

// NewMQTTProvider publishes through client to topic.
func NewMQTTProvider(client mqtt.Client, topic string) *MQTTProvider {
	return &MQTTProvider{client: client, topic: topic}
}

func (m *MQTTProvider) Name() string { return ProviderMQTT }

func (m *MQTTProvider) Send(ctx context.Context, alert *alerting.Alert) error {
	if !m.client.IsConnected() {
		return errors.Newf("MQTT client is not connected").
			Component("notification").
			Category(errors.CategoryMQTTPublish).
			Context("topic", m.topic).
			Build()
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNotification).
			Context("operation", "encode_mqtt_payload").
			Build()
	}

	return m.client.Publish(ctx, m.topic, string(payload))
}
