package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
)

type fakeMQTTClient struct {
	connected bool
	topic     string
	payload   string
}

func (f *fakeMQTTClient) Connect(context.Context) error { f.connected = true; return nil }
func (f *fakeMQTTClient) Publish(_ context.Context, topic, payload string) error {
	f.topic, f.payload = topic, payload
	return nil
}
func (f *fakeMQTTClient) IsConnected() bool { return f.connected }
func (f *fakeMQTTClient) Disconnect()       { f.connected = false }

func TestMQTTProviderPublishesAlertJSON(t *testing.T) {
	t.Parallel()
	client := &fakeMQTTClient{connected: true}
	p := NewMQTTProvider(client, "zozi/alerts")

	alert := testAlert(5)
	require.NoError(t, p.Send(t.Context(), &alert))
	assert.Equal(t, "zozi/alerts", client.topic)

	var got alerting.Alert
	require.NoError(t, json.Unmarshal([]byte(client.payload), &got))
	assert.Equal(t, alert.ID, got.ID)
	assert.Equal(t, alert.FormType, got.FormType)
}

func TestMQTTProviderRequiresConnection(t *testing.T) {
	t.Parallel()
	client := &fakeMQTTClient{}
	p := NewMQTTProvider(client, "zozi/alerts")

	alert := testAlert(5)
	require.Error(t, p.Send(t.Context(), &alert))
	assert.Empty(t, client.payload)
}

func TestProvidersFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	providers, err := ProvidersFromSettings(settings, nil)
	require.NoError(t, err)
	assert.Empty(t, providers)

	settings.Notification.Webhook = conf.WebhookSettings{Enabled: true, URL: testWebhookURL}
	settings.MQTT = conf.MQTTSettings{Enabled: true, Topic: "health"}
	providers, err = ProvidersFromSettings(settings, &fakeMQTTClient{})
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, ProviderWebhook, providers[0].Name())
	assert.Equal(t, "health/alerts", providers[1].(*MQTTProvider).topic)

	settings.Notification.Shoutrrr = conf.ShoutrrrSettings{Enabled: true}
	_, err = ProvidersFromSettings(settings, nil)
	require.Error(t, err)
}
