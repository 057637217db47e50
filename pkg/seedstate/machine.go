package seedstate

import (
	"slices"
	"time"

	"github.com/agentstation/liftmap/pkg/errors"
)

// Stage is a pipeline stage.
type Stage string

// Pipeline stages.
const (
	StageIdle        Stage = "idle"
	StageFetching    Stage = "fetching"
	StageNormalizing Stage = "normalizing"
	StageValidating  Stage = "validating"
	StageHashing     Stage = "hashing"
	StageImporting   Stage = "importing"
	StageDone        Stage = "done"
)

// String returns the string representation of a stage.
func (s Stage) String() string {
	return string(s)
}

// transitions lists the allowed moves out of each stage. Every stage other
// than idle may also move to done, which is how failures end a run.
var transitions = map[Stage][]Stage{
	StageIdle:        {StageFetching},
	StageFetching:    {StageValidating, StageNormalizing},
	StageNormalizing: {StageValidating, StageHashing},
	StageValidating:  {StageHashing},
	StageHashing:     {StageImporting, StageDone},
	StageImporting:   {StageDone},
	StageDone:        {StageIdle},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Stage) bool {
	if to == StageDone && from != StageIdle && from != StageDone {
		return true
	}
	return slices.Contains(transitions[from], to)
}

// Progress is reported on every stage transition and every persisted batch.
type Progress struct {
	Stage        Stage     `json:"stage"`
	StartedAt    time.Time `json:"started_at"`
	Batch        int       `json:"batch,omitempty"`
	TotalBatches int       `json:"total_batches,omitempty"`
}

// ProgressFunc receives progress updates.
type ProgressFunc func(Progress)

// Machine walks a run through the stage table.
type Machine struct {
	stage     Stage
	startedAt time.Time
	history   []Stage
	report    ProgressFunc
	now       func() time.Time
}

// NewMachine creates a machine in the idle stage. report may be nil.
func NewMachine(report ProgressFunc) *Machine {
	return &Machine{
		stage:   StageIdle,
		history: []Stage{StageIdle},
		report:  report,
		now:     time.Now,
	}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	return m.stage
}

// History returns every stage visited, in order.
func (m *Machine) History() []Stage {
	return slices.Clone(m.history)
}

// Advance moves to the next stage and reports it.
func (m *Machine) Advance(to Stage) error {
	if !CanTransition(m.stage, to) {
		return &errors.TransitionError{From: string(m.stage), To: string(to)}
	}
	m.stage = to
	m.startedAt = m.now()
	m.history = append(m.history, to)
	m.emit(0, 0)
	return nil
}

// Batch reports persistence progress. It is a no-op outside the importing stage.
func (m *Machine) Batch(batch, total int) {
	if m.stage != StageImporting {
		return
	}
	m.emit(batch, total)
}

// Finish moves to done from wherever the run stopped. It is a no-op for a
// machine that never started or already finished.
func (m *Machine) Finish() {
	if m.stage == StageDone || m.stage == StageIdle {
		return
	}
	_ = m.Advance(StageDone)
}

// Reset returns a finished machine to idle.
func (m *Machine) Reset() error {
	if m.stage == StageIdle {
		return nil
	}
	if err := m.Advance(StageIdle); err != nil {
		return err
	}
	m.history = []Stage{StageIdle}
	return nil
}

func (m *Machine) emit(batch, total int) {
	if m.report == nil {
		return
	}
	m.report(Progress{Stage: m.stage, StartedAt: m.startedAt, Batch: batch, TotalBatches: total})
}
