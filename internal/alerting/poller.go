package alerting

import (
	"context"
	"time"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
)

// DefaultPollInterval is the badge refresh interval.
const DefaultPollInterval = 30 * time.Second

// CountSource reports the number of unacknowledged alerts.
type CountSource interface {
	UnacknowledgedCount(ctx context.Context) (int64, error)
}

// Poller periodically reads the unacknowledged count and calls onChange
// whenever it differs from the previous successful read.
type Poller struct {
	source   CountSource
	interval time.Duration
	onChange func(count int64)
	log      logger.Logger
}

// NewPoller creates a Poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(source CountSource, interval time.Duration, onChange func(count int64), log logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		source:   source,
		interval: interval,
		onChange: onChange,
		log:      logger.OrDiscard(log).Module("alerting"),
	}
}

// Run polls immediately and then every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := int64(-1)
	poll := func() {
		count, err := p.source.UnacknowledgedCount(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Warn("failed to poll unacknowledged alerts", logger.Error(err))
			}
			return
		}
		if count != last {
			last = count
			if p.onChange != nil {
				p.onChange(count)
			}
		}
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
