package notification

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/alerting"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability/metrics"
)

const (
	defaultQueueSize   = 100
	defaultSendTimeout = 15 * time.Second
)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	QueueSize int
	// PerMinute and Burst throttle each provider independently.
	PerMinute int
	Burst     int
	// SendTimeout bounds a single provider delivery.
	SendTimeout    time.Duration
	CircuitBreaker CircuitBreakerConfig
	Metrics        *metrics.NotificationMetrics
	Logger         logger.Logger
}

type registeredProvider struct {
	prov    Provider
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

// Dispatcher fans created alerts out to the configured providers from a
// single worker goroutine. Notify never blocks the caller.
type Dispatcher struct {
	providers   []registeredProvider
	queue       chan alerting.Alert
	sendTimeout time.Duration
	metrics     *metrics.NotificationMetrics
	log         logger.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher for providers. Call Start before
// alerts are delivered; alerts queued earlier wait in the queue.
func NewDispatcher(opts DispatcherOptions, providers ...Provider) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}
	if opts.PerMinute <= 0 {
		opts.PerMinute = 60
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.CircuitBreaker.MaxFailures == 0 {
		opts.CircuitBreaker = DefaultCircuitBreakerConfig()
	}

	log := logger.OrDiscard(opts.Logger).Module("notification")
	d := &Dispatcher{
		queue:       make(chan alerting.Alert, opts.QueueSize),
		sendTimeout: opts.SendTimeout,
		metrics:     opts.Metrics,
		log:         log,
	}

	perSecond := rate.Limit(float64(opts.PerMinute) / 60)
	for _, p := range providers {
		d.providers = append(d.providers, registeredProvider{
			prov:    p,
			limiter: rate.NewLimiter(perSecond, opts.Burst),
			breaker: NewCircuitBreaker(opts.CircuitBreaker, opts.Metrics, p.Name(), log),
		})
	}
	return d
}

// Providers returns the names of the registered providers.
func (d *Dispatcher) Providers() []string {
	names := make([]string, 0, len(d.providers))
	for _, rp := range d.providers {
		names = append(names, rp.prov.Name())
	}
	return names
}

// Notify queues alert for delivery. It returns false when the queue is
// full or the dispatcher has been stopped.
func (d *Dispatcher) Notify(alert alerting.Alert) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return false
	}

	select {
	case d.queue <- alert:
		d.metrics.RecordQueued(len(d.queue))
		return true
	default:
		d.metrics.RecordDropped()
		d.log.Warn("notification queue full, dropping alert",
			logger.Uint64("alert_id", uint64(alert.ID)),
			logger.Int64("inspection_id", alert.InspectionID),
			logger.Int("queue_size", cap(d.queue)))
		return false
	}
}

// Start launches the delivery worker. Calling Start more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	d.started = true
	d.wg.Go(d.run)

	d.log.Info("notification dispatcher started",
		logger.Int("providers", len(d.providers)),
		logger.Int("queue_size", cap(d.queue)))
}

// Stop stops accepting alerts, delivers what is already queued and waits
// for the worker to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		// nobody will drain the queue
		return
	}
	d.wg.Wait()
	d.log.Info("notification dispatcher stopped")
}

func (d *Dispatcher) run() {
	for alert := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.deliver(&alert)
	}
}

// deliver sends alert to every provider. Failures are logged and counted.
func (d *Dispatcher) deliver(alert *alerting.Alert) {
	for _, rp := range d.providers {
		name := rp.prov.Name()

		if !rp.limiter.Allow() {
			d.metrics.RecordDelivery(name, metrics.StatusLimited, 0)
			d.log.Warn("notification rate limited",
				logger.String("provider", name),
				logger.Uint64("alert_id", uint64(alert.ID)))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		start := time.Now()
		err := rp.breaker.Call(ctx, func(ctx context.Context) error {
			return rp.prov.Send(ctx, alert)
		})
		cancel()
		elapsed := time.Since(start)

		if err != nil {
			d.metrics.RecordDelivery(name, metrics.StatusError, elapsed)
			d.log.Error("notification delivery failed",
				logger.String("provider", name),
				logger.Uint64("alert_id", uint64(alert.ID)),
				logger.Error(err))
			continue
		}

		d.metrics.RecordDelivery(name, metrics.StatusSuccess, elapsed)
		d.log.Debug("notification delivered",
			logger.String("provider", name),
			logger.Uint64("alert_id", uint64(alert.ID)),
			logger.Duration("elapsed", elapsed))
	}
}
