// Package monitor follows a running job: it polls the job status on a fixed
// interval, turns the metric arrays it receives into time-stamped series and
// derives progress, epoch and remaining time from them.
package monitor

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"time"
)

const (
	DefTotalSteps   = 120
	DefTotalEpochs  = 3
	DefLearningRate = 1e-5
)

type State string

const (
	NotStarted State = "not_started"
	Running    State = "running"
	Completed  State = "completed"
	Failed     State = "failed"
)

func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

type MetricPoint struct {
	Epoch     int       `json:"epoch"`
	Step      int       `json:"step"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

type Series struct {
	TrainLoss []MetricPoint `json:"train_loss"`
	ValLoss   []MetricPoint `json:"val_loss"`
	TrainAcc  []MetricPoint `json:"train_acc"`
	ValAcc    []MetricPoint `json:"val_acc"`
}

type Status struct {
	State              State         `json:"state"`
	CurrentEpoch       int           `json:"current_epoch"`
	TotalEpochs        int           `json:"total_epochs"`
	CurrentStep        int           `json:"current_step"`
	TotalSteps         int           `json:"total_steps"`
	StartTime          time.Time     `json:"start_time"`
	Elapsed            time.Duration `json:"elapsed"`
	EstimatedRemaining time.Duration `json:"estimated_remaining"`
	LearningRate       float64       `json:"learning_rate"`
}

// Progress is the completed share of TotalSteps, in percent.
func (s Status) Progress() float64 {
	return ProgressPercent(s.CurrentStep, s.TotalSteps)
}

type Snapshot struct {
	Status  Status   `json:"status"`
	Metrics Series   `json:"metrics"`
	Logs    []string `json:"logs,omitempty"`
}

// CurrentLoss is the latest training loss, or 0 before the first point.
func (s Snapshot) CurrentLoss() float64 {
	return Latest(s.Metrics.TrainLoss)
}

// BestAccuracy is the highest validation accuracy seen so far.
func (s Snapshot) BestAccuracy() float64 {
	return Best(s.Metrics.ValAcc)
}

// Report is one status reply: a completion flag and the metric arrays
// reported so far, one value per step.
type Report struct {
	Finished  bool
	TrainLoss []float64
	ValLoss   []float64
	TrainAcc  []float64
	ValAcc    []float64
}

type Config struct {
	// Label names the job in log lines, e.g. "Training".
	Label        string
	TotalSteps   int
	TotalEpochs  int
	LearningRate float64
}

func (c Config) withDefaults() Config {
	if c.Label == "" {
		c.Label = "Job"
	}
	if c.TotalSteps <= 0 {
		c.TotalSteps = DefTotalSteps
	}
	if c.TotalEpochs <= 0 {
		c.TotalEpochs = DefTotalEpochs
	}
	if c.LearningRate <= 0 {
		c.LearningRate = DefLearningRate
	}

	return c
}

// Tracker holds the state of one job as successive reports arrive.
type Tracker struct {
	mu      sync.Mutex
	label   string
	status  Status
	metrics Series
	logs    []string
}

func NewTracker(cfg Config) *Tracker {
	cfg = cfg.withDefaults()

	return &Tracker{
		label: cfg.Label,
		status: Status{
			State:        NotStarted,
			CurrentEpoch: 1,
			TotalEpochs:  cfg.TotalEpochs,
			TotalSteps:   cfg.TotalSteps,
			LearningRate: cfg.LearningRate,
		},
	}
}

// Start marks the job running from now. Later calls are ignored.
func (t *Tracker) Start(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.State != NotStarted {
		return
	}
	t.status.State = Running
	t.status.StartTime = now
}

// Apply folds a report into the tracked state. Reports after a terminal
// state are ignored.
func (t *Tracker) Apply(r Report, now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.State.Terminal() {
		return t.snapshot()
	}
	if t.status.State == NotStarted {
		t.status.State = Running
		t.status.StartTime = now
	}

	s := &t.status
	t.metrics = Series{
		TrainLoss: points(r.TrainLoss, now, s.TotalSteps, s.TotalEpochs),
		ValLoss:   points(r.ValLoss, now, s.TotalSteps, s.TotalEpochs),
		TrainAcc:  points(r.TrainAcc, now, s.TotalSteps, s.TotalEpochs),
		ValAcc:    points(r.ValAcc, now, s.TotalSteps, s.TotalEpochs),
	}

	s.CurrentStep = len(r.TrainLoss)
	s.CurrentEpoch = CurrentEpoch(s.CurrentStep, s.TotalSteps, s.TotalEpochs)
	s.Elapsed = now.Sub(s.StartTime)
	s.EstimatedRemaining = EstimateRemaining(s.Elapsed, s.CurrentStep, s.TotalSteps)

	if r.Finished {
		s.State = Completed
		s.EstimatedRemaining = 0
		t.logs = append(t.logs, t.label+" completed successfully!")
	}

	return t.snapshot()
}

// Fail marks the job failed after err.
func (t *Tracker) Fail(err error, now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.State.Terminal() {
		return t.snapshot()
	}
	t.status.State = Failed
	if !t.status.StartTime.IsZero() {
		t.status.Elapsed = now.Sub(t.status.StartTime)
	}
	t.logs = append(t.logs, fmt.Sprintf("Failed to fetch %s status: %s", t.label, err))

	return t.snapshot()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshot()
}

func (t *Tracker) snapshot() Snapshot {
	return Snapshot{
		Status: t.status,
		Metrics: Series{
			TrainLoss: slices.Clone(t.metrics.TrainLoss),
			ValLoss:   slices.Clone(t.metrics.ValLoss),
			TrainAcc:  slices.Clone(t.metrics.TrainAcc),
			ValAcc:    slices.Clone(t.metrics.ValAcc),
		},
		Logs: slices.Clone(t.logs),
	}
}

func points(values []float64, now time.Time, totalSteps, totalEpochs int) []MetricPoint {
	res := make([]MetricPoint, len(values))
	for i, v := range values {
		res[i] = MetricPoint{
			Epoch:     CurrentEpoch(i+1, totalSteps, totalEpochs),
			Step:      i + 1,
			Value:     v,
			Timestamp: now,
		}
	}

	return res
}

// CurrentEpoch derives the epoch from the step count, assuming steps are
// spread evenly over epochs: min(E, floor(step/(S/E))+1).
func CurrentEpoch(step, totalSteps, totalEpochs int) int {
	if totalSteps <= 0 || totalEpochs <= 0 {
		return 1
	}
	perEpoch := float64(totalSteps) / float64(totalEpochs)

	return min(totalEpochs, int(math.Floor(float64(step)/perEpoch))+1)
}

// EstimateRemaining extrapolates the time left from the average time per step so far.
func EstimateRemaining(elapsed time.Duration, step, totalSteps int) time.Duration {
	if step <= 0 || totalSteps <= 0 {
		return 0
	}
	total := float64(elapsed) / float64(step) * float64(totalSteps)

	return max(0, time.Duration(total)-elapsed)
}

func ProgressPercent(step, totalSteps int) float64 {
	if totalSteps <= 0 {
		return 0
	}

	return float64(step) / float64(totalSteps) * 100
}

// Latest returns the last value of a series, or 0 for an empty one.
func Latest(points []MetricPoint) float64 {
	if len(points) == 0 {
		return 0
	}

	return points[len(points)-1].Value
}

// Best returns the maximum value of a series, or 0 for an empty one.
func Best(points []MetricPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	best := points[0].Value
	for _, p := range points[1:] {
		best = max(best, p.Value)
	}

	return best
}
