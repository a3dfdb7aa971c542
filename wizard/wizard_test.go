package wizard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okailora/okailora/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepGating(t *testing.T) {
	t.Parallel()
	var modelSelected, fileReady bool

	c, err := wizard.New(
		wizard.Step{Title: "Select Model"},
		wizard.Step{Title: "Upload Data", Enabled: func() bool { return modelSelected }},
		wizard.Step{Title: "Review & Start", Enabled: func() bool { return fileReady }},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Current().Number)

	assert.False(t, c.CanAdvance())
	_, err = c.Advance(context.Background())
	assert.ErrorIs(t, err, wizard.ErrStepDisabled)
	assert.Equal(t, 1, c.Current().Number)

	modelSelected = true
	step, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, step.Number)
	assert.Equal(t, "Upload Data", step.Title)

	_, err = c.Advance(context.Background())
	assert.ErrorIs(t, err, wizard.ErrStepDisabled)

	fileReady = true
	step, err = c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, step.Number)
	assert.True(t, c.IsFinal())

	_, err = c.Advance(context.Background())
	assert.ErrorIs(t, err, wizard.ErrNoNextStep)
}

func TestRetreatIgnoresPredicates(t *testing.T) {
	t.Parallel()
	enabled := true
	c, err := wizard.New(
		wizard.Step{Title: "one"},
		wizard.Step{Title: "two", Enabled: func() bool { return enabled }},
	)
	require.NoError(t, err)

	_, err = c.Advance(context.Background())
	require.NoError(t, err)

	enabled = false
	step, err := c.Retreat()
	require.NoError(t, err)
	assert.Equal(t, 1, step.Number)

	_, err = c.Retreat()
	assert.ErrorIs(t, err, wizard.ErrNoPreviousStep)
}

func TestBeforeHook(t *testing.T) {
	t.Parallel()
	errUpload := errors.New("upload failed")
	calls := 0
	fail := true

	c, err := wizard.New(
		wizard.Step{Title: "one"},
		wizard.Step{Title: "two", Before: func(context.Context) error {
			calls++
			if fail {
				return errUpload
			}

			return nil
		}},
	)
	require.NoError(t, err)

	_, err = c.Advance(context.Background())
	assert.ErrorIs(t, err, errUpload)
	assert.Equal(t, 1, c.Current().Number)

	fail = false
	_, err = c.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Current().Number)
	assert.Equal(t, 2, calls)
}

func TestGoTo(t *testing.T) {
	t.Parallel()
	c, err := wizard.New(wizard.Step{}, wizard.Step{}, wizard.Step{})
	require.NoError(t, err)

	_, err = c.GoTo(2)
	assert.ErrorIs(t, err, wizard.ErrInvalidStep)

	_, err = c.Advance(context.Background())
	require.NoError(t, err)
	_, err = c.Advance(context.Background())
	require.NoError(t, err)

	step, err := c.GoTo(1)
	require.NoError(t, err)
	assert.Equal(t, 1, step.Number)

	_, err = c.GoTo(0)
	assert.ErrorIs(t, err, wizard.ErrInvalidStep)
}

func TestNewWithoutSteps(t *testing.T) {
	t.Parallel()
	_, err := wizard.New()
	assert.ErrorIs(t, err, wizard.ErrNoSteps)
}

func TestWorkflows(t *testing.T) {
	t.Parallel()
	cases := []struct {
		workflow wizard.Workflow
		steps    int
		theme    wizard.Theme
		trains   bool
	}{
		{workflow: wizard.Train, steps: 4, theme: wizard.Blue, trains: true},
		{workflow: wizard.Finetune, steps: 4, theme: wizard.Blue, trains: true},
		{workflow: wizard.Inference, steps: 3, theme: wizard.Green},
		{workflow: wizard.Share, steps: 2, theme: wizard.Blue},
	}

	for _, tc := range cases {
		t.Run(tc.workflow.String(), func(t *testing.T) {
			t.Parallel()
			w, err := wizard.ParseWorkflow(tc.workflow.String())
			require.NoError(t, err)
			assert.Equal(t, tc.workflow, w)
			assert.Len(t, w.Titles(), tc.steps)
			assert.Equal(t, tc.theme, w.Theme())
			assert.Equal(t, tc.trains, w.Trains())
			assert.Equal(t, "/"+tc.workflow.String()+"/abc", w.Path("abc"))
		})
	}

	_, err := wizard.ParseWorkflow("deploy")
	assert.ErrorIs(t, err, wizard.ErrUnknownWorkflow)
}
