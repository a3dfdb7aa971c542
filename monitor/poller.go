package monitor

import (
	"context"
	"log/slog"
	"time"
)

const DefPollInterval = time.Second

// Fetcher returns the current status of the job being followed.
type Fetcher func(ctx context.Context) (Report, error)

// Ticker abstracts time.Ticker so polling can be driven by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

func NewTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

func WithClock(now func() time.Time) PollerOption {
	return func(p *Poller) { p.now = now }
}

func WithTicker(newTicker func(time.Duration) Ticker) PollerOption {
	return func(p *Poller) { p.newTicker = newTicker }
}

func WithPollLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) { p.logger = l }
}

// Poller requests the job status once per interval until the job reports
// finished, a request fails, or the context ends. Failed requests are not retried.
type Poller struct {
	interval  time.Duration
	now       func() time.Time
	newTicker func(time.Duration) Ticker
	logger    *slog.Logger
}

func NewPoller(opts ...PollerOption) *Poller {
	p := &Poller{
		interval:  DefPollInterval,
		now:       time.Now,
		newTicker: NewTicker,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval <= 0 {
		p.interval = DefPollInterval
	}

	return p
}

// Run polls fetch into tracker, calling onTick (if set) after every poll.
// It returns the final snapshot together with the fetch or context error
// that stopped it.
func (p *Poller) Run(ctx context.Context, tracker *Tracker, fetch Fetcher, onTick func(Snapshot)) (Snapshot, error) {
	tracker.Start(p.now())

	ticker := p.newTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return tracker.Snapshot(), ctx.Err()
		case <-ticker.C():
			r, err := fetch(ctx)
			if err != nil {
				snap := tracker.Fail(err, p.now())
				p.logger.Error("Failed to fetch job status", slog.Any("error", err))
				if onTick != nil {
					onTick(snap)
				}

				return snap, err
			}

			snap := tracker.Apply(r, p.now())
			if onTick != nil {
				onTick(snap)
			}
			if snap.Status.State == Completed {
				return snap, nil
			}
		}
	}
}
