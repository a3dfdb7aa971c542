package wizard

import (
	"errors"
	"fmt"
)

var ErrUnknownWorkflow = errors.New("unknown workflow")

type Workflow string

const (
	Train     Workflow = "train"
	Finetune  Workflow = "finetune"
	Inference Workflow = "inference"
	Share     Workflow = "share"
)

func Workflows() []Workflow {
	return []Workflow{Train, Finetune, Inference, Share}
}

func ParseWorkflow(s string) (Workflow, error) {
	for _, w := range Workflows() {
		if string(w) == s {
			return w, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownWorkflow, s)
}

func (w Workflow) String() string {
	return string(w)
}

// Path is the route a session of this workflow lives under.
func (w Workflow) Path(sessionID string) string {
	return "/" + string(w) + "/" + sessionID
}

// Trains reports whether the workflow produces a training job.
func (w Workflow) Trains() bool {
	return w == Train || w == Finetune
}

func (w Workflow) Theme() Theme {
	if w == Inference {
		return Green
	}

	return Blue
}

// Titles lists the step titles of the workflow in order.
func (w Workflow) Titles() []string {
	switch w {
	case Train, Finetune:
		return []string{"Select Base Model", "Upload Training Data", "Configure Parameters", "Review & Start"}
	case Inference:
		return []string{"Select Model", "Upload Data", "Review & Start"}
	case Share:
		return []string{"Select Model", "Review & Share"}
	default:
		return nil
	}
}

type Theme string

const (
	Blue  Theme = "blue"
	Green Theme = "green"
)
