package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okailora/okailora/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newManualTicker() *manualTicker {
	return &manualTicker{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() { close(m.stopped) }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestCurrentEpoch(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name                string
		step, steps, epochs int
		expected            int
	}{
		{name: "start", step: 0, steps: 120, epochs: 3, expected: 1},
		{name: "mid second epoch", step: 45, steps: 120, epochs: 3, expected: 2},
		{name: "epoch boundary", step: 80, steps: 120, epochs: 3, expected: 3},
		{name: "capped at total", step: 200, steps: 120, epochs: 3, expected: 3},
		{name: "uneven split", step: 50, steps: 100, epochs: 3, expected: 2},
		{name: "no totals", step: 10, steps: 0, epochs: 0, expected: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, monitor.CurrentEpoch(tc.step, tc.steps, tc.epochs))
		})
	}
}

func TestEstimateRemaining(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 90*time.Second, monitor.EstimateRemaining(30*time.Second, 30, 120))
	assert.Equal(t, time.Duration(0), monitor.EstimateRemaining(30*time.Second, 0, 120))
	assert.Equal(t, time.Duration(0), monitor.EstimateRemaining(30*time.Second, 150, 120))
}

func TestHelpers(t *testing.T) {
	t.Parallel()
	pts := []monitor.MetricPoint{{Value: 0.4}, {Value: 0.9}, {Value: 0.7}}

	assert.InDelta(t, 0.7, monitor.Latest(pts), 1e-9)
	assert.InDelta(t, 0.9, monitor.Best(pts), 1e-9)
	assert.Zero(t, monitor.Latest(nil))
	assert.Zero(t, monitor.Best(nil))
	assert.InDelta(t, 37.5, monitor.ProgressPercent(45, 120), 1e-9)
	assert.Zero(t, monitor.ProgressPercent(45, 0))
}

func TestTrackerApply(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := monitor.NewTracker(monitor.Config{Label: "Training"})
	tr.Start(start)

	loss := make([]float64, 45)
	for i := range loss {
		loss[i] = 1 / float64(i+1)
	}

	now := start.Add(45 * time.Second)
	snap := tr.Apply(monitor.Report{TrainLoss: loss, ValAcc: []float64{0.5, 0.8, 0.6}}, now)

	assert.Equal(t, monitor.Running, snap.Status.State)
	assert.Equal(t, 45, snap.Status.CurrentStep)
	assert.Equal(t, 2, snap.Status.CurrentEpoch)
	assert.Equal(t, 120, snap.Status.TotalSteps)
	assert.Equal(t, 3, snap.Status.TotalEpochs)
	assert.InDelta(t, 1e-5, snap.Status.LearningRate, 1e-12)
	assert.Equal(t, 45*time.Second, snap.Status.Elapsed)
	assert.Equal(t, 75*time.Second, snap.Status.EstimatedRemaining)
	assert.InDelta(t, 37.5, snap.Status.Progress(), 1e-9)

	require.Len(t, snap.Metrics.TrainLoss, 45)
	assert.Equal(t, monitor.MetricPoint{Epoch: 1, Step: 1, Value: 1, Timestamp: now}, snap.Metrics.TrainLoss[0])
	assert.Equal(t, 2, snap.Metrics.TrainLoss[44].Epoch)
	assert.InDelta(t, 1.0/45, snap.CurrentLoss(), 1e-9)
	assert.InDelta(t, 0.8, snap.BestAccuracy(), 1e-9)
	assert.Empty(t, snap.Metrics.ValLoss)

	snap = tr.Apply(monitor.Report{Finished: true, TrainLoss: loss}, now.Add(time.Second))
	assert.Equal(t, monitor.Completed, snap.Status.State)
	assert.Zero(t, snap.Status.EstimatedRemaining)
	assert.Equal(t, []string{"Training completed successfully!"}, snap.Logs)

	snap = tr.Apply(monitor.Report{TrainLoss: loss[:1]}, now.Add(2*time.Second))
	assert.Equal(t, 45, snap.Status.CurrentStep)
}

func TestPollerStopsWhenFinished(t *testing.T) {
	t.Parallel()
	ticker := newManualTicker()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	p := monitor.NewPoller(
		monitor.WithClock(clock.Now),
		monitor.WithTicker(func(time.Duration) monitor.Ticker { return ticker }),
	)

	calls := 0
	fetch := func(context.Context) (monitor.Report, error) {
		calls++

		return monitor.Report{
			Finished:  calls == 3,
			TrainLoss: make([]float64, calls*10),
		}, nil
	}

	var ticks []monitor.Snapshot
	done := make(chan struct{})
	var (
		final monitor.Snapshot
		err   error
	)
	go func() {
		defer close(done)
		final, err = p.Run(context.Background(), monitor.NewTracker(monitor.Config{}), fetch, func(s monitor.Snapshot) {
			ticks = append(ticks, s)
		})
	}()

	for range 3 {
		ticker.ch <- clock.now
	}
	<-done

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, ticks, 3)
	assert.Equal(t, monitor.Completed, final.Status.State)
	assert.Zero(t, final.Status.EstimatedRemaining)
	assert.Equal(t, 30, final.Status.CurrentStep)

	select {
	case <-ticker.stopped:
	default:
		t.Fatal("ticker was not stopped")
	}
}

func TestPollerStopsOnError(t *testing.T) {
	t.Parallel()
	ticker := newManualTicker()
	p := monitor.NewPoller(monitor.WithTicker(func(time.Duration) monitor.Ticker { return ticker }))

	errFetch := errors.New("connection reset")
	calls := 0
	fetch := func(context.Context) (monitor.Report, error) {
		calls++
		if calls == 2 {
			return monitor.Report{}, errFetch
		}

		return monitor.Report{TrainLoss: []float64{0.5}}, nil
	}

	done := make(chan struct{})
	var (
		final monitor.Snapshot
		err   error
	)
	go func() {
		defer close(done)
		final, err = p.Run(context.Background(), monitor.NewTracker(monitor.Config{Label: "Training"}), fetch, nil)
	}()

	ticker.ch <- time.Now()
	ticker.ch <- time.Now()
	<-done

	assert.ErrorIs(t, err, errFetch)
	assert.Equal(t, 2, calls)
	assert.Equal(t, monitor.Failed, final.Status.State)
	assert.Equal(t, 1, final.Status.CurrentStep)
	require.Len(t, final.Logs, 1)
	assert.Contains(t, final.Logs[0], "connection reset")
}

func TestPollerStopsOnCancel(t *testing.T) {
	t.Parallel()
	ticker := newManualTicker()
	p := monitor.NewPoller(monitor.WithTicker(func(time.Duration) monitor.Ticker { return ticker }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := p.Run(ctx, monitor.NewTracker(monitor.Config{}), func(context.Context) (monitor.Report, error) {
		return monitor.Report{}, nil
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, monitor.Running, snap.Status.State)
}

func TestPollerIntervalFallback(t *testing.T) {
	t.Parallel()
	for _, d := range []time.Duration{0, -time.Second} {
		var got time.Duration
		ticker := newManualTicker()
		p := monitor.NewPoller(
			monitor.WithInterval(d),
			monitor.WithTicker(func(interval time.Duration) monitor.Ticker {
				got = interval
				return ticker
			}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Run(ctx, monitor.NewTracker(monitor.Config{}), func(context.Context) (monitor.Report, error) {
			return monitor.Report{}, nil
		}, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, monitor.DefPollInterval, got)
	}
}

func TestRandomWalkBounds(t *testing.T) {
	t.Parallel()
	w := monitor.NewRandomWalk(42)

	for range 500 {
		r, err := w.Next(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.GPUMemoryGB, 12.0)
		assert.LessOrEqual(t, r.GPUMemoryGB, 15.8)
		assert.GreaterOrEqual(t, r.CPUPercent, 45.0)
		assert.LessOrEqual(t, r.CPUPercent, 85.0)
		assert.GreaterOrEqual(t, r.DiskIOMBps, 5.0)
		assert.LessOrEqual(t, r.DiskIOMBps, 65.0)
		assert.GreaterOrEqual(t, r.NetworkIOMBps, 2.0)
		assert.LessOrEqual(t, r.NetworkIOMBps, 35.0)
	}
}

func TestSample(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []monitor.Resources
	err := monitor.Sample(ctx, monitor.NewRandomWalk(1), time.Millisecond, func(r monitor.Resources) {
		got = append(got, r)
		if len(got) == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 3)
}

func TestSampleNonPositiveInterval(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := monitor.Sample(ctx, monitor.NewRandomWalk(1), 0, func(monitor.Resources) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
