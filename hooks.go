package liftmap

import (
	"sync"

	"github.com/agentstation/liftmap/pkg/catalogs"
)

// Hook function types for catalog events
type (
	// ExerciseInsertedHook is called for each exercise a run added to the catalog
	ExerciseInsertedHook func(exercise catalogs.Exercise)

	// ExerciseUpdatedHook is called for each exercise a run changed
	ExerciseUpdatedHook func(old, new catalogs.Exercise)

	// RunCompletedHook is called when an operation finishes, whatever its status
	RunCompletedHook func(result *Result)
)

// Hooks provides event callback registration.
type Hooks interface {
	// OnExerciseInserted registers a callback for inserted exercises
	OnExerciseInserted(ExerciseInsertedHook)

	// OnExerciseUpdated registers a callback for updated exercises
	OnExerciseUpdated(ExerciseUpdatedHook)

	// OnRunCompleted registers a callback for finished operations
	OnRunCompleted(RunCompletedHook)
}

// hooks manages event callbacks. Exercise hooks only fire after the
// transaction holding the change committed.
type hooks struct {
	mu                 sync.RWMutex
	onExerciseInserted []ExerciseInsertedHook
	onExerciseUpdated  []ExerciseUpdatedHook
	onRunCompleted     []RunCompletedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnExerciseInserted registers a callback for when exercises are inserted
func (h *hooks) OnExerciseInserted(fn ExerciseInsertedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onExerciseInserted = append(h.onExerciseInserted, fn)
}

// OnExerciseUpdated registers a callback for when exercises are updated
func (h *hooks) OnExerciseUpdated(fn ExerciseUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onExerciseUpdated = append(h.onExerciseUpdated, fn)
}

// OnRunCompleted registers a callback for when an operation finishes
func (h *hooks) OnRunCompleted(fn RunCompletedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRunCompleted = append(h.onRunCompleted, fn)
}

// triggerWrites fires the exercise hooks for a committed write set.
// previous maps stable IDs to the stored records before the write.
func (h *hooks) triggerWrites(inserted, updated []catalogs.Exercise, previous map[string]catalogs.Exercise) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ex := range inserted {
		for _, hook := range h.onExerciseInserted {
			hook(ex)
		}
	}
	for _, ex := range updated {
		old := previous[ex.StableID]
		for _, hook := range h.onExerciseUpdated {
			hook(old, ex)
		}
	}
}

func (h *hooks) triggerRunCompleted(result *Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, hook := range h.onRunCompleted {
		hook(result)
	}
}
