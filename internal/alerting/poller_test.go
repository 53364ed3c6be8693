package alerting

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/errors"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type scriptedCounts struct {
	mu     sync.Mutex
	values []int64
	calls  atomic.Int32
}

func (s *scriptedCounts) UnacknowledgedCount(context.Context) (int64, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0, errors.NewStd("no more values")
	}
	v := s.values[0]
	if len(s.values) > 1 {
		s.values = s.values[1:]
	}
	return v, nil
}

func TestPoller_ReportsChangesOnly(t *testing.T) {
	source := &scriptedCounts{values: []int64{2, 2, 3, 3, 0}}
	var (
		mu   sync.Mutex
		seen []int64
	)
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})

	p := NewPoller(source, 5*time.Millisecond, func(count int64) {
		mu.Lock()
		seen = append(seen, count)
		mu.Unlock()
	}, nil)
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	testutil.WaitFor(t, testutil.DefaultTestTimeout, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, "poller did not report all changes")

	cancel()
	testutil.WaitForChannel(t, done, testutil.ShortTestTimeout, "poller did not stop")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{2, 3, 0}, seen)
}

func TestPoller_ErrorsDoNotStopPolling(t *testing.T) {
	source := &scriptedCounts{}
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})

	p := NewPoller(source, 5*time.Millisecond, nil, nil)
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	testutil.WaitFor(t, testutil.DefaultTestTimeout, func() bool {
		return source.calls.Load() >= 3
	}, "poller stopped after errors")

	cancel()
	testutil.WaitForChannel(t, done, testutil.ShortTestTimeout, "poller did not stop")
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	t.Parallel()
	p := NewPoller(&scriptedCounts{}, 0, nil, nil)
	assert.Equal(t, DefaultPollInterval, p.interval)
}
