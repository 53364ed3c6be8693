package mqtt

import (
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

// doneToken is a completed paho token.
type doneToken struct {
	err  error
	done chan struct{}
}

func newDoneToken(err error) *doneToken {
	t := &doneToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}          { return t.done }
func (t *doneToken) Error() error                   { return t.err }

// pendingToken never completes.
type pendingToken struct{ done chan struct{} }

func (t pendingToken) Wait() bool                     { return false }
func (t pendingToken) WaitTimeout(time.Duration) bool { return false }
func (t pendingToken) Done() <-chan struct{}          { return t.done }
func (t pendingToken) Error() error                   { return nil }

type published struct {
	topic    string
	retained bool
	payload  string
}

// fakePaho records publishes instead of talking to a broker.
type fakePaho struct {
	mu         sync.Mutex
	connected  bool
	connectErr error
	hang       bool
	messages   []published
	opts       *paho.ClientOptions
}

func (f *fakePaho) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}
func (f *fakePaho) IsConnectionOpen() bool { return f.IsConnected() }
func (f *fakePaho) Connect() paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr == nil {
		f.connected = true
	}
	return newDoneToken(f.connectErr)
}
func (f *fakePaho) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}
func (f *fakePaho) Publish(topic string, _ byte, retained bool, payload any) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hang {
		return pendingToken{done: make(chan struct{})}
	}
	f.messages = append(f.messages, published{topic: topic, retained: retained, payload: payload.(string)})
	return newDoneToken(nil)
}
func (f *fakePaho) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return newDoneToken(nil)
}
func (f *fakePaho) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return newDoneToken(nil)
}
func (f *fakePaho) Unsubscribe(...string) paho.Token           { return newDoneToken(nil) }
func (f *fakePaho) AddRoute(string, paho.MessageHandler)       {}
func (f *fakePaho) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func newTestClient(t *testing.T, fake *fakePaho, cfg Config) (*client, *metrics.MQTTMetrics) {
	t.Helper()
	m, err := metrics.NewMQTTMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	c := NewClient(cfg, m, nil).(*client)
	c.newPaho = func(opts *paho.ClientOptions) paho.Client {
		fake.opts = opts
		return fake
	}
	return c, m
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Broker = "tcp://127.0.0.1:1883"
	cfg.ClientID = "zozi-test"
	cfg.Topic = "zozi"
	cfg.Retain = true
	cfg.PublishTimeout = 50 * time.Millisecond
	return cfg
}

func TestClientConnectAndPublish(t *testing.T) {
	t.Parallel()
	fake := &fakePaho{}
	c, m := newTestClient(t, fake, testConfig())

	require.NoError(t, c.Connect(t.Context()))
	assert.True(t, c.IsConnected())
	assert.Equal(t, "zozi-test", fake.opts.ClientID)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ConnectionStatus), 0)

	require.NoError(t, c.Publish(t.Context(), "zozi/alerts", `{"id":1}`))
	require.Len(t, fake.messages, 1)
	assert.Equal(t, published{topic: "zozi/alerts", retained: true, payload: `{"id":1}`}, fake.messages[0])
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.MessagesDelivered), 0)

	c.Disconnect()
	assert.False(t, c.IsConnected())
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.ConnectionStatus), 0)
}

func TestClientPublishRequiresConnection(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, &fakePaho{}, testConfig())

	err := c.Publish(t.Context(), "zozi/alerts", "x")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTPublish))
}

func TestClientConnectErrors(t *testing.T) {
	t.Parallel()

	fake := &fakePaho{connectErr: errors.NewStd("not authorized")}
	c, m := newTestClient(t, fake, testConfig())
	err := c.Connect(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTConnect))
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Errors), 0)

	cfg := testConfig()
	cfg.Broker = "::not a url"
	c, _ = newTestClient(t, &fakePaho{}, cfg)
	err = c.Connect(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestClientPublishTimeout(t *testing.T) {
	t.Parallel()
	fake := &fakePaho{hang: true}
	c, m := newTestClient(t, fake, testConfig())
	require.NoError(t, c.Connect(t.Context()))

	err := c.Publish(t.Context(), "zozi/alerts", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.MessagesDelivered), 0)
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Main.Name = "parish-office"
	settings.MQTT = conf.MQTTSettings{Broker: "tcp://broker:1883", Topic: "health", Username: "u", Password: "p", Retain: true}

	cfg := ConfigFromSettings(settings)
	assert.Equal(t, "parish-office", cfg.ClientID)
	assert.Equal(t, "health/alerts", cfg.AlertsTopic())
	assert.True(t, cfg.Retain)
	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
	assert.Equal(t, "alerts", Config{}.AlertsTopic())
}
