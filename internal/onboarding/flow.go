// Package onboarding drives the first-run questionnaire as a step graph.
package onboarding

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/nurture/internal/age"
	"github.com/hyperengineering/nurture/internal/session"
	"github.com/hyperengineering/nurture/internal/types"
)

// ErrInvalidTransition indicates an action that the current step does not allow.
var ErrInvalidTransition = errors.New("invalid onboarding transition")

// DefaultChildName is used when the caregiver leaves the name blank.
const DefaultChildName = "Little One"

// StepID names a step of the flow.
type StepID string

const (
	StepWelcome    StepID = "welcome"
	StepParentType StepID = "parent-type"
	StepChildStage StepID = "child-stage"
	StepChildName  StepID = "child-name"
	StepComplete   StepID = "complete"
)

// Input is the kind of value a step collects.
type Input string

const (
	InputNone       Input = ""
	InputParentType Input = "parent_type"
	InputStage      Input = "stage"
	InputName       Input = "name"
)

// Step describes one node of the graph.
type Step struct {
	ID    StepID `json:"id"`
	Next  StepID `json:"next,omitempty"`
	Back  StepID `json:"back,omitempty"`
	Input Input  `json:"input,omitempty"`
	// Skippable reports whether skip is allowed given the answers so far.
	Skippable func(State) bool `json:"-"`
}

// Flow is an ordered step graph.
type Flow struct {
	steps []Step
	index map[StepID]int
}

func always(State) bool { return true }

func parentChosen(s State) bool { return s.ParentType != "" }

// Default is the onboarding flow.
var Default = NewFlow([]Step{
	{ID: StepWelcome, Next: StepParentType, Skippable: always},
	{ID: StepParentType, Next: StepChildStage, Back: StepWelcome, Input: InputParentType, Skippable: parentChosen},
	{ID: StepChildStage, Next: StepChildName, Back: StepParentType, Input: InputStage, Skippable: parentChosen},
	{ID: StepChildName, Next: StepComplete, Back: StepChildStage, Input: InputName, Skippable: always},
	{ID: StepComplete, Back: StepChildName},
})

// NewFlow indexes steps. The first step is the entry point.
func NewFlow(steps []Step) *Flow {
	f := &Flow{steps: steps, index: make(map[StepID]int, len(steps))}
	for i, s := range steps {
		f.index[s.ID] = i
	}
	return f
}

// Steps returns the steps in order.
func (f *Flow) Steps() []Step { return f.steps }

// Step looks up a step by id.
func (f *Flow) Step(id StepID) (Step, bool) {
	i, ok := f.index[id]
	if !ok {
		return Step{}, false
	}
	return f.steps[i], true
}

// Start returns the initial state.
func (f *Flow) Start() State {
	return State{Step: f.steps[0].ID}
}

// Progress returns the 1-based position of the current step and the
// number of steps.
func (f *Flow) Progress(s State) (int, int) {
	return f.index[s.Step] + 1, len(f.steps)
}

// State is the answers collected so far and the current step.
type State struct {
	Step       StepID           `json:"step"`
	ParentType types.ParentType `json:"parent_type,omitempty"`
	Stage      types.Stage      `json:"stage,omitempty"`
	ChildName  string           `json:"child_name,omitempty"`
	Done       bool             `json:"done"`
	Skipped    bool             `json:"skipped,omitempty"`
}

// ActionKind is what the caregiver did.
type ActionKind string

const (
	ActionNext   ActionKind = "next"
	ActionSelect ActionKind = "select"
	ActionBack   ActionKind = "back"
	ActionSkip   ActionKind = "skip"
	ActionFinish ActionKind = "finish"
)

// Action is one input to the flow.
type Action struct {
	Kind  ActionKind `json:"action"`
	Value string     `json:"value,omitempty"`
}

// Apply returns the state after a. The input state is not modified.
func (f *Flow) Apply(s State, a Action) (State, error) {
	if s.Done {
		return s, fmt.Errorf("%w: onboarding already finished", ErrInvalidTransition)
	}
	step, ok := f.Step(s.Step)
	if !ok {
		return s, fmt.Errorf("%w: unknown step %q", ErrInvalidTransition, s.Step)
	}

	switch a.Kind {
	case ActionSelect:
		return selectValue(s, step, a.Value)

	case ActionNext:
		if step.Next == "" {
			return s, fmt.Errorf("%w: %s is the last step", ErrInvalidTransition, step.ID)
		}
		if !answered(s, step) {
			return s, fmt.Errorf("%w: %s needs a %s first", ErrInvalidTransition, step.ID, step.Input)
		}
		s.Step = step.Next
		return s, nil

	case ActionBack:
		if step.Back == "" {
			return s, fmt.Errorf("%w: %s has no previous step", ErrInvalidTransition, step.ID)
		}
		s.Step = step.Back
		return s, nil

	case ActionSkip:
		if step.Skippable == nil || !step.Skippable(s) {
			return s, fmt.Errorf("%w: %s cannot be skipped", ErrInvalidTransition, step.ID)
		}
		s.Step = StepComplete
		s.Done = true
		s.Skipped = true
		return s, nil

	case ActionFinish:
		if step.ID != StepComplete && step.ID != StepChildName {
			return s, fmt.Errorf("%w: cannot finish from %s", ErrInvalidTransition, step.ID)
		}
		if step.ID == StepChildName {
			if name := strings.TrimSpace(a.Value); name != "" {
				s.ChildName = name
			}
		}
		s.Step = StepComplete
		s.Done = true
		return s, nil
	}
	return s, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a.Kind)
}

func selectValue(s State, step Step, value string) (State, error) {
	switch step.Input {
	case InputParentType:
		pt := types.ParentType(value)
		if !contains(types.ParentTypes, pt) {
			return s, fmt.Errorf("%w: unknown parent type %q", ErrInvalidTransition, value)
		}
		s.ParentType = pt
	case InputStage:
		st := types.Stage(value)
		if !contains(types.Stages, st) {
			return s, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, value)
		}
		s.Stage = st
	case InputName:
		s.ChildName = strings.TrimSpace(value)
	default:
		return s, fmt.Errorf("%w: %s takes no input", ErrInvalidTransition, step.ID)
	}
	return s, nil
}

// answered reports whether the step's required input is present.
// The name is optional.
func answered(s State, step Step) bool {
	switch step.Input {
	case InputParentType:
		return s.ParentType != ""
	case InputStage:
		return s.Stage != ""
	}
	return true
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Starter measurements per stage, in kg and cm.
var starterMeasurements = map[types.Stage][2]float64{
	types.StageNewborn: {3.2, 50},
	types.StageInfant:  {7.5, 68},
}

var defaultMeasurements = [2]float64{12.5, 85}

// Patch converts a finished state into the profile update that completes
// onboarding. Skipping yields a newborn profile with parent type "other".
func Patch(s State, now time.Time) (session.ProfilePatch, error) {
	if !s.Done {
		return session.ProfilePatch{}, fmt.Errorf("%w: onboarding not finished", ErrInvalidTransition)
	}

	stage, parent := s.Stage, s.ParentType
	if s.Skipped {
		stage, parent = types.StageNewborn, types.ParentOther
	}
	if stage == "" {
		stage = types.StageNewborn
	}
	if parent == "" {
		parent = types.ParentOther
	}
	name := s.ChildName
	if name == "" {
		name = DefaultChildName
	}

	m, ok := starterMeasurements[stage]
	if !ok {
		m = defaultMeasurements
	}
	birth := age.EstimatedBirthDate(stage, now).Format(time.DateOnly)
	done := true

	return session.ProfilePatch{
		OnboardingCompleted: &done,
		Child: &session.ChildPatch{
			Name:       &name,
			Stage:      &stage,
			BirthDate:  &birth,
			Weight:     &m[0],
			Height:     &m[1],
			ParentType: &parent,
		},
	}, nil
}
