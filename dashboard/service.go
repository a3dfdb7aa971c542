package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/google/uuid"
	"github.com/okailora/okailora/catalog"
	"github.com/okailora/okailora/monitor"
	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/storage"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
)

type Config struct {
	PollInterval     time.Duration
	TotalSteps       int
	ProgressInterval time.Duration
	ProgressStep     int
	ProgressCap      int
	ShareBaseURL     string
}

type service struct {
	sessions storage.Storage
	client   sdk.SDK
	models   *catalog.Catalog
	alerter  staging.Alerter
	logger   *slog.Logger
	names    namegenerator.NameGenerator
	cfg      Config
}

func NewService(sessions storage.Storage, client sdk.SDK, models *catalog.Catalog, alerter staging.Alerter, logger *slog.Logger, cfg Config) Service {
	if alerter == nil {
		alerter = staging.AlertFunc(func(string) {})
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = monitor.DefPollInterval
	}

	return &service{
		sessions: sessions,
		client:   client,
		models:   models,
		alerter:  alerter,
		logger:   logger,
		names:    namegenerator.NewGenerator(),
		cfg:      cfg,
	}
}

func (svc *service) CreateSession(ctx context.Context, workflow wizard.Workflow) (Session, error) {
	if _, err := wizard.ParseWorkflow(string(workflow)); err != nil {
		return Session{}, err
	}

	s := &session{
		id:        uuid.NewString(),
		name:      svc.names.Generate(),
		workflow:  workflow,
		createdAt: time.Now(),
		hp:        DefaultHyperparameters(),
	}

	qopts := []staging.Option{
		staging.WithAlerter(svc.alerter),
		staging.WithLogger(svc.logger),
	}
	if svc.cfg.ProgressInterval > 0 {
		qopts = append(qopts, staging.WithProgress(svc.cfg.ProgressInterval, svc.cfg.ProgressStep, svc.cfg.ProgressCap))
	}
	s.queue = staging.NewQueue(qopts...)

	w, err := wizard.New(steps(s, func(ctx context.Context) error {
		_, err := svc.commit(ctx, s)

		return err
	})...)
	if err != nil {
		return Session{}, err
	}
	s.wizard = w

	if err := svc.sessions.Create(ctx, s.id, s); err != nil {
		return Session{}, err
	}

	return s.view(), nil
}

func (svc *service) GetSession(ctx context.Context, id string) (Session, error) {
	s, err := svc.session(ctx, id)
	if err != nil {
		return Session{}, err
	}

	return s.view(), nil
}

func (svc *service) ListSessions(ctx context.Context, offset, limit uint64) (SessionPage, error) {
	data, total, err := svc.sessions.List(ctx, offset, limit)
	if err != nil {
		return SessionPage{}, err
	}

	sessions := make([]Session, 0, len(data))
	for _, d := range data {
		s, ok := d.(*session)
		if !ok {
			return SessionPage{}, pkgerrors.ErrInvalidData
		}
		sessions = append(sessions, s.view())
	}

	return SessionPage{
		Offset:   offset,
		Limit:    limit,
		Total:    total,
		Sessions: sessions,
	}, nil
}

func (svc *service) ListModels(ctx context.Context, f catalog.Filter) ([]catalog.Model, error) {
	if err := svc.models.Refresh(ctx, svc.client); err != nil {
		svc.logger.Warn("Failed to refresh models, using fallback list", slog.Any("error", err))
	}

	return svc.models.Filter(f), nil
}

func (svc *service) SelectModel(ctx context.Context, sessionID, modelID string) (Session, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if _, err := svc.models.Get(modelID); err != nil {
		// Deployments created after the last listing are only known remotely.
		if err := svc.models.Refresh(ctx, svc.client); err != nil {
			svc.logger.Warn("Failed to refresh models, using fallback list", slog.Any("error", err))
		}
		if _, err := svc.models.Get(modelID); err != nil {
			return Session{}, err
		}
	}

	s.mu.Lock()
	s.modelID = modelID
	s.mu.Unlock()

	return s.view(), nil
}

func (svc *service) Configure(ctx context.Context, sessionID string, hp Hyperparameters) (Session, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !s.workflow.Trains() {
		return Session{}, fmt.Errorf("%w: configure %s", ErrUnsupported, s.workflow)
	}
	if err := hp.Validate(); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	if s.tracker != nil {
		s.mu.Unlock()

		return Session{}, ErrJobAlreadyStarted
	}
	s.hp = hp
	s.mu.Unlock()

	return s.view(), nil
}

func (svc *service) StageFiles(ctx context.Context, sessionID string, inputs ...staging.Input) ([]staging.UploadedFile, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.workflow == wizard.Share {
		return nil, fmt.Errorf("%w: upload to %s", ErrUnsupported, s.workflow)
	}

	return s.queue.Add(inputs...), nil
}

func (svc *service) RemoveFile(ctx context.Context, sessionID, fileID string) error {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return err
	}

	return s.queue.Remove(fileID)
}

func (svc *service) UploadFiles(ctx context.Context, sessionID string) (staging.CommitResult, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return staging.CommitResult{}, err
	}

	return svc.commit(ctx, s)
}

func (svc *service) Advance(ctx context.Context, sessionID string) (Session, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.wizard.Advance(ctx); err != nil {
		return Session{}, err
	}

	return s.view(), nil
}

func (svc *service) Retreat(ctx context.Context, sessionID string) (Session, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.wizard.Retreat(); err != nil {
		return Session{}, err
	}

	return s.view(), nil
}

func (svc *service) StartJob(ctx context.Context, sessionID string) (Session, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !s.wizard.IsFinal() {
		return Session{}, ErrNotFinalStep
	}
	modelID := s.model()
	if modelID == "" {
		return Session{}, ErrModelNotSelected
	}
	if err := s.reserveStart(); err != nil {
		return Session{}, err
	}
	defer s.releaseStart()

	switch {
	case s.workflow.Trains():
		err = svc.startTraining(ctx, s, modelID)
	case s.workflow == wizard.Inference:
		err = svc.startInference(ctx, s, modelID)
	default:
		svc.share(s, modelID)
	}
	if err != nil {
		return Session{}, err
	}

	return s.view(), nil
}

func (svc *service) startTraining(ctx context.Context, s *session, modelID string) error {
	model, err := svc.models.Get(modelID)
	if err != nil {
		// A model that left the catalog still trains, with the generic task type.
		model = catalog.Model{ID: modelID}
	}
	modelType := catalog.ModelTypeFor(model)

	if err := svc.client.StartTraining(ctx, s.id, modelType); err != nil {
		svc.alerter.Alert(msgTrainingFailed)

		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deploymentID = s.id
	s.tracker = monitor.NewTracker(monitor.Config{
		Label:        "Training",
		TotalSteps:   svc.cfg.TotalSteps,
		TotalEpochs:  s.hp.Epochs,
		LearningRate: s.hp.LearningRate,
	})
	s.tracker.Start(time.Now())

	return nil
}

func (svc *service) startInference(ctx context.Context, s *session, modelID string) error {
	if err := svc.client.StartInference(ctx, modelID, nil); err != nil {
		svc.alerter.Alert(msgInferenceFailed)

		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deploymentID = modelID
	s.tracker = monitor.NewTracker(monitor.Config{
		Label:      "Inference",
		TotalSteps: svc.cfg.TotalSteps,
	})
	s.tracker.Start(time.Now())

	return nil
}

func (svc *service) share(s *session, modelID string) {
	link := strings.TrimSuffix(svc.cfg.ShareBaseURL, "/") + wizard.Share.Path(s.id) + "?model=" + url.QueryEscape(modelID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shareURL = link
}

func (svc *service) WatchJob(ctx context.Context, sessionID string, onTick func(monitor.Snapshot)) (monitor.Snapshot, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return monitor.Snapshot{}, err
	}
	tracker := s.job()
	if tracker == nil {
		return monitor.Snapshot{}, ErrJobNotStarted
	}

	var fetch monitor.Fetcher
	deploymentID := s.deployment()
	if s.workflow.Trains() {
		fetch = func(ctx context.Context) (monitor.Report, error) {
			st, err := svc.client.TrainStatus(ctx, deploymentID)
			if err != nil {
				return monitor.Report{}, err
			}

			return monitor.Report{
				Finished:  st.Finished,
				TrainLoss: st.TrainLoss,
				ValLoss:   st.ValLoss,
				TrainAcc:  st.TrainAcc,
				ValAcc:    st.ValAcc,
			}, nil
		}
	} else {
		fetch = func(ctx context.Context) (monitor.Report, error) {
			st, err := svc.client.InferenceStatus(ctx, deploymentID)
			if err != nil {
				return monitor.Report{}, err
			}
			s.mu.Lock()
			s.results = st.Result
			s.mu.Unlock()

			return monitor.Report{Finished: st.Finished}, nil
		}
	}

	poller := monitor.NewPoller(
		monitor.WithInterval(svc.cfg.PollInterval),
		monitor.WithPollLogger(svc.logger),
	)

	return poller.Run(ctx, tracker, fetch, onTick)
}

func (svc *service) Results(ctx context.Context, sessionID string) ([]sdk.InferenceResult, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.workflow != wizard.Inference {
		return nil, fmt.Errorf("%w: results of %s", ErrUnsupported, s.workflow)
	}
	deploymentID := s.deployment()
	if deploymentID == "" {
		return nil, ErrJobNotStarted
	}

	st, err := svc.client.InferenceStatus(ctx, deploymentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.results = st.Result
	s.mu.Unlock()

	return st.Result, nil
}

func (svc *service) Weights(ctx context.Context, sessionID string) (map[string]any, error) {
	s, err := svc.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	deploymentID := s.deployment()
	if deploymentID == "" {
		return nil, ErrJobNotStarted
	}

	return svc.client.InferenceWeights(ctx, deploymentID)
}

// commit uploads the session's ready files. Training data goes to the
// session's own deployment; inference data to the deployment of the selected model.
func (svc *service) commit(ctx context.Context, s *session) (staging.CommitResult, error) {
	if !s.queue.HasStatus(staging.Ready) {
		return staging.CommitResult{}, nil
	}

	var upload func(ctx context.Context, deploymentID string, file sdk.File) error
	var deploymentID string
	switch {
	case s.workflow.Trains():
		deploymentID = s.id
		upload = svc.client.UploadTrainData
	case s.workflow == wizard.Inference:
		id, err := svc.resolveDeployment(ctx, s.model())
		if err != nil {
			svc.alerter.Alert(msgDeploymentNotFound)

			return staging.CommitResult{}, err
		}
		deploymentID = id
		upload = svc.client.UploadInferenceData
	default:
		return staging.CommitResult{}, fmt.Errorf("%w: upload to %s", ErrUnsupported, s.workflow)
	}

	s.mu.Lock()
	s.deploymentID = deploymentID
	s.mu.Unlock()

	return s.queue.Commit(ctx, staging.UploaderFunc(func(ctx context.Context, f staging.UploadedFile, r io.Reader) error {
		return upload(ctx, deploymentID, sdk.File{Name: f.Name, Reader: r})
	}))
}

func (svc *service) resolveDeployment(ctx context.Context, modelID string) (string, error) {
	if modelID == "" {
		return "", ErrModelNotSelected
	}

	ds, err := svc.client.ListDeployments(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDeploymentNotFound, err)
	}
	for _, d := range ds {
		if d.ID == modelID {
			return d.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrDeploymentNotFound, modelID)
}

func (svc *service) session(ctx context.Context, id string) (*session, error) {
	data, err := svc.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s, ok := data.(*session)
	if !ok {
		return nil, pkgerrors.ErrInvalidData
	}

	return s, nil
}
