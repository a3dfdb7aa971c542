package dashboard

import (
	"slices"
	"sync"
	"time"

	"github.com/okailora/okailora/monitor"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/staging"
	"github.com/okailora/okailora/wizard"
)

type session struct {
	mu sync.Mutex

	id        string
	name      string
	workflow  wizard.Workflow
	createdAt time.Time

	modelID      string
	deploymentID string
	hp           Hyperparameters
	tracker      *monitor.Tracker
	results      []sdk.InferenceResult
	shareURL     string
	starting     bool

	wizard *wizard.Controller
	queue  *staging.Queue
}

func (s *session) model() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.modelID
}

func (s *session) deployment() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deploymentID
}

func (s *session) job() *monitor.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tracker
}

// reserveStart marks a job start as in flight so concurrent callers are
// rejected before reaching the platform.
func (s *session) reserveStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker != nil || s.starting {
		return ErrJobAlreadyStarted
	}
	s.starting = true

	return nil
}

func (s *session) releaseStart() {
	s.mu.Lock()
	s.starting = false
	s.mu.Unlock()
}

func (s *session) view() Session {
	step := s.wizard.Current()
	canAdvance := s.wizard.CanAdvance()
	files := s.queue.Files()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := Session{
		ID:           s.id,
		Name:         s.name,
		Workflow:     s.workflow,
		Path:         s.workflow.Path(s.id),
		Step:         step.Number,
		StepTitle:    step.Title,
		Steps:        s.workflow.Titles(),
		CanAdvance:   canAdvance,
		ModelID:      s.modelID,
		DeploymentID: s.deploymentID,
		Files:        files,
		Results:      slices.Clone(s.results),
		ShareURL:     s.shareURL,
		CreatedAt:    s.createdAt,
	}
	if s.workflow.Trains() {
		hp := s.hp
		v.Hyperparameters = &hp
	}
	if s.tracker != nil {
		snap := s.tracker.Snapshot()
		v.Job = &snap
	}

	return v
}

// steps builds the wizard of a workflow. Entering the step after the upload
// step first commits the staged files through commit.
func steps(s *session, commit wizard.Hook) []wizard.Step {
	titles := s.workflow.Titles()
	modelSelected := func() bool { return s.model() != "" }
	filesStaged := func() bool { return s.queue.HasStatus(staging.Ready, staging.Completed) }
	filesUploaded := func() bool { return s.queue.HasStatus(staging.Completed) }

	switch s.workflow {
	case wizard.Train, wizard.Finetune:
		return []wizard.Step{
			{Title: titles[0]},
			{Title: titles[1], Enabled: modelSelected},
			{Title: titles[2], Enabled: filesStaged, Before: commit},
			{Title: titles[3], Enabled: filesUploaded},
		}
	case wizard.Inference:
		return []wizard.Step{
			{Title: titles[0]},
			{Title: titles[1], Enabled: modelSelected},
			{Title: titles[2], Enabled: filesStaged, Before: commit},
		}
	default:
		return []wizard.Step{
			{Title: titles[0]},
			{Title: titles[1], Enabled: modelSelected},
		}
	}
}
