package backend

import (
	"archive/zip"
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/storage"
)

const trainedDescription = "sample description"

var labels = []string{"normal", "benign", "malignant"}

type Config struct {
	Epochs         int           `env:"EPOCHS"          envDefault:"10"`
	EpochDelay     time.Duration `env:"EPOCH_DELAY"     envDefault:"2s"`
	InferenceDelay time.Duration `env:"INFERENCE_DELAY" envDefault:"3s"`
	Seed           uint64        `env:"SEED"            envDefault:"1"`
}

type job struct {
	mu      sync.Mutex
	points  []LogPoint
	results []InferenceResult
	done    bool
	cancel  context.CancelFunc
}

func (j *job) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
}

var _ Service = (*Simulator)(nil)

// Simulator runs every job on its own goroutine until the job completes or
// the simulator is closed.
type Simulator struct {
	cfg      Config
	registry *Registry
	uploads  storage.Storage
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	seq       uint64
	training  map[string]*job
	inference map[string]*job
}

func NewSimulator(cfg Config, registry *Registry, uploads storage.Storage, logger *slog.Logger) *Simulator {
	if cfg.Epochs <= 0 {
		cfg.Epochs = 10
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Simulator{
		cfg:       cfg,
		registry:  registry,
		uploads:   uploads,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		training:  make(map[string]*job),
		inference: make(map[string]*job),
	}
}

// Close stops all running jobs and waits for them to return.
func (s *Simulator) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Simulator) ListDeployments(ctx context.Context) ([]Deployment, error) {
	return s.registry.All(ctx)
}

func uploadKey(kind Kind, deploymentID string) string {
	return string(kind) + "/" + deploymentID
}

// SaveData keeps the latest upload per kind and deployment.
func (s *Simulator) SaveData(ctx context.Context, kind Kind, deploymentID string, data []byte) error {
	if deploymentID == "" {
		return pkgerrors.ErrEmptyKey
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty upload", pkgerrors.ErrInvalidArgument)
	}

	key := uploadKey(kind, deploymentID)
	if err := s.uploads.Create(ctx, key, data); err != nil {
		if !errors.Is(err, pkgerrors.ErrEntityExists) {
			return err
		}

		return s.uploads.Update(ctx, key, data)
	}

	return nil
}

func (s *Simulator) data(ctx context.Context, kind Kind, deploymentID string) ([]byte, error) {
	v, err := s.uploads.Get(ctx, uploadKey(kind, deploymentID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrMissingData, deploymentID)
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, pkgerrors.ErrInvalidData
	}

	return data, nil
}

func (s *Simulator) StartTraining(ctx context.Context, deploymentID string, modelType sdk.ModelType) error {
	if err := modelType.Validate(); err != nil {
		return fmt.Errorf("%w: %w", pkgerrors.ErrInvalidArgument, err)
	}
	if _, err := s.data(ctx, TrainData, deploymentID); err != nil {
		return err
	}

	d := Deployment{
		ID:          deploymentID,
		Type:        modelType.String(),
		Description: trainedDescription,
	}
	if err := s.registry.Put(ctx, d); err != nil {
		return err
	}

	j, jctx, rng := s.newJob(s.training, deploymentID)
	s.run(func() {
		s.train(jctx, j, rng, modelType)
	})
	s.logger.Info("Started simulated training",
		slog.String("deployment_id", deploymentID),
		slog.String("model_type", modelType.String()),
		slog.Int("epochs", s.cfg.Epochs),
	)

	return nil
}

func (s *Simulator) TrainStatus(_ context.Context, deploymentID string) (TrainStatus, error) {
	res := TrainStatus{
		ValLoss:   []float64{},
		TrainLoss: []float64{},
		ValAcc:    []float64{},
		TrainAcc:  []float64{},
	}

	s.mu.Lock()
	j, ok := s.training[deploymentID]
	s.mu.Unlock()
	if !ok {
		return res, nil
	}

	j.mu.Lock()
	pts := slices.Clone(j.points)
	res.Finished = j.done
	j.mu.Unlock()

	slices.SortStableFunc(pts, func(a, b LogPoint) int { return cmp.Compare(a.Epoch, b.Epoch) })
	for _, p := range pts {
		res.TrainLoss = append(res.TrainLoss, p.TrainLoss)
		res.ValLoss = append(res.ValLoss, p.ValLoss)
		if p.TrainAcc != nil {
			res.TrainAcc = append(res.TrainAcc, *p.TrainAcc)
		}
		if p.ValAcc != nil {
			res.ValAcc = append(res.ValAcc, *p.ValAcc)
		}
	}

	return res, nil
}

func (s *Simulator) StartInference(ctx context.Context, deploymentID string, params map[string]any) error {
	if _, err := s.registry.Get(ctx, deploymentID); err != nil {
		return err
	}
	data, err := s.data(ctx, InferenceData, deploymentID)
	if err != nil {
		return err
	}
	images := archiveImages(data)

	j, jctx, rng := s.newJob(s.inference, deploymentID)
	s.run(func() {
		s.infer(jctx, j, rng, images)
	})
	s.logger.Info("Started simulated inference",
		slog.String("deployment_id", deploymentID),
		slog.Int("images", len(images)),
		slog.Any("params", params),
	)

	return nil
}

func (s *Simulator) InferenceStatus(_ context.Context, deploymentID string) (InferenceStatus, error) {
	s.mu.Lock()
	j, ok := s.inference[deploymentID]
	s.mu.Unlock()
	if !ok {
		return InferenceStatus{}, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	return InferenceStatus{
		Finished: j.done,
		Result:   slices.Clone(j.results),
	}, nil
}

func (s *Simulator) Weights(ctx context.Context, deploymentID string) (map[string]any, error) {
	if _, err := s.registry.Get(ctx, deploymentID); err != nil {
		return nil, err
	}

	return nil, nil
}

// newJob replaces any job already running for deploymentID.
func (s *Simulator) newJob(jobs map[string]*job, deploymentID string) (*job, context.Context, *rand.Rand) {
	ctx, cancel := context.WithCancel(s.ctx)
	j := &job{cancel: cancel}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := jobs[deploymentID]; ok {
		old.cancel()
	}
	jobs[deploymentID] = j
	s.seq++

	return j, ctx, rand.New(rand.NewPCG(s.cfg.Seed, s.seq))
}

func (s *Simulator) run(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// train logs one point per epoch. Losses decay exponentially and accuracy
// saturates, both with a little noise.
func (s *Simulator) train(ctx context.Context, j *job, rng *rand.Rand, modelType sdk.ModelType) {
	defer j.cancel()

	ticker := time.NewTicker(s.cfg.EpochDelay)
	defer ticker.Stop()

	for epoch := 1; epoch <= s.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		p := simulatePoint(rng, epoch, modelType)
		j.mu.Lock()
		j.points = append(j.points, p)
		j.mu.Unlock()
	}
	j.finish()
}

func simulatePoint(rng *rand.Rand, epoch int, modelType sdk.ModelType) LogPoint {
	noise := func(scale float64) float64 { return (rng.Float64()*2 - 1) * scale }

	trainLoss := 2.0*math.Exp(-0.35*float64(epoch)) + 0.1 + noise(0.03)
	p := LogPoint{
		Epoch:     epoch,
		TrainLoss: round4(trainLoss),
		ValLoss:   round4(trainLoss*1.1 + noise(0.04)),
	}
	if modelType == sdk.Generation {
		return p
	}

	trainAcc := math.Min(0.99, 0.5+0.45*(1-math.Exp(-0.4*float64(epoch)))+noise(0.02))
	valAcc := math.Max(0, trainAcc-0.03+noise(0.02))
	trainAcc, valAcc = round4(trainAcc), round4(valAcc)
	p.TrainAcc = &trainAcc
	p.ValAcc = &valAcc

	return p
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func (s *Simulator) infer(ctx context.Context, j *job, rng *rand.Rand, images []string) {
	defer j.cancel()

	timer := time.NewTimer(s.cfg.InferenceDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	results := make([]InferenceResult, len(images))
	for i, img := range images {
		results[i] = InferenceResult{
			Image:          img,
			Classification: labels[rng.IntN(len(labels))],
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = results
	j.done = true
}

// archiveImages lists the files of a ZIP upload. Data that is not a readable
// archive counts as a single image.
func archiveImages(data []byte) []string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return []string{"image_1.png"}
	}

	var images []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(path.Base(f.Name), ".") {
			continue
		}
		images = append(images, f.Name)
	}
	if len(images) == 0 {
		return []string{"image_1.png"}
	}

	return images
}
