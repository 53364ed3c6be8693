package notification

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
	internaltestutil "github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/testutil"
)

func TestDispatcherDeliversToEveryProvider(t *testing.T) {
	t.Parallel()
	m := newTestMetrics(t)
	first := &recordingProvider{name: "first"}
	second := &recordingProvider{name: "second"}

	d := NewDispatcher(DispatcherOptions{Metrics: m}, first, second)
	d.Start()

	require.True(t, d.Notify(testAlert(1)))
	require.True(t, d.Notify(testAlert(2)))
	d.Stop()

	assert.Equal(t, 2, first.count())
	assert.Equal(t, 2, second.count())
	assert.Equal(t, uint(1), first.delivered[0].ID)
	assert.Equal(t, []string{"first", "second"}, d.Providers())
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.NotificationDispatchTotal), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("first", metrics.StatusSuccess)), 0)
}

func TestDispatcherFailingProviderDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	m := newTestMetrics(t)
	broken := &recordingProvider{name: "broken", fail: errProviderDown}
	healthy := &recordingProvider{name: "healthy"}

	d := NewDispatcher(DispatcherOptions{Metrics: m}, broken, healthy)
	d.Start()
	require.True(t, d.Notify(testAlert(1)))
	d.Stop()

	assert.Equal(t, 1, healthy.count())
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("broken", metrics.StatusError)), 0)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	t.Parallel()
	m := newTestMetrics(t)
	slow := &recordingProvider{name: "slow", block: make(chan struct{})}

	d := NewDispatcher(DispatcherOptions{QueueSize: 1, Metrics: m}, slow)
	d.Start()

	// the worker takes the first alert and blocks in Send
	require.True(t, d.Notify(testAlert(1)))
	internaltestutil.WaitFor(t, time.Second, func() bool { return len(d.queue) == 0 }, "worker did not pick up alert")

	require.True(t, d.Notify(testAlert(2)))
	assert.False(t, d.Notify(testAlert(3)), "queue is full")
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.NotificationDroppedTotal), 0)

	close(slow.block)
	d.Stop()
	assert.Equal(t, 2, slow.count())
}

func TestDispatcherRateLimitsPerProvider(t *testing.T) {
	t.Parallel()
	m := newTestMetrics(t)
	p := &recordingProvider{name: "limited"}

	d := NewDispatcher(DispatcherOptions{PerMinute: 1, Burst: 2, Metrics: m}, p)
	d.Start()
	for i := range 5 {
		require.True(t, d.Notify(testAlert(uint(i+1))))
	}
	d.Stop()

	assert.Equal(t, 2, p.count())
	assert.InDelta(t, 3.0, testutil.ToFloat64(m.ProviderDeliveriesTotal.WithLabelValues("limited", metrics.StatusLimited)), 0)
}

func TestDispatcherStopDrainsQueue(t *testing.T) {
	t.Parallel()
	p := &recordingProvider{name: "p"}
	d := NewDispatcher(DispatcherOptions{QueueSize: 10}, p)

	// queued before Start, delivered after
	for i := range 3 {
		require.True(t, d.Notify(testAlert(uint(i+1))))
	}
	d.Start()
	d.Stop()
	assert.Equal(t, 3, p.count())

	assert.False(t, d.Notify(testAlert(9)), "stopped dispatcher rejects alerts")
	d.Stop()
}

func TestDispatcherStopWithoutStart(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(DispatcherOptions{})
	require.True(t, d.Notify(testAlert(1)))
	d.Stop()
	assert.False(t, d.Notify(testAlert(2)))
}
