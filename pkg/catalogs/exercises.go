package catalogs

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Exercises is a concurrent safe map of exercises keyed by stable ID.
type Exercises struct {
	mu        sync.RWMutex
	exercises map[string]*Exercise
}

// ExercisesOption defines a function that configures an Exercises instance.
type ExercisesOption func(*Exercises)

// WithExercisesCapacity sets the initial capacity of the map.
func WithExercisesCapacity(capacity int) ExercisesOption {
	return func(e *Exercises) {
		e.exercises = make(map[string]*Exercise, capacity)
	}
}

// WithExercisesMap initializes the map with existing exercises.
func WithExercisesMap(exercises map[string]*Exercise) ExercisesOption {
	return func(e *Exercises) {
		if exercises != nil {
			e.exercises = make(map[string]*Exercise, len(exercises))
			maps.Copy(e.exercises, exercises)
		}
	}
}

// NewExercises creates a new Exercises map with optional configuration.
func NewExercises(opts ...ExercisesOption) *Exercises {
	e := &Exercises{exercises: make(map[string]*Exercise)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Get returns an exercise by stable ID and whether it exists.
func (e *Exercises) Get(stableID string) (*Exercise, bool) {
	e.mu.RLock()
	ex, ok := e.exercises[stableID]
	e.mu.RUnlock()
	return ex, ok
}

// Set stores an exercise under its stable ID.
func (e *Exercises) Set(ex *Exercise) error {
	if ex == nil {
		return fmt.Errorf("exercise cannot be nil")
	}
	if ex.StableID == "" {
		return fmt.Errorf("exercise %q has no stable ID", ex.Name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exercises[ex.StableID] = ex
	return nil
}

// Add stores an exercise, returning an error if the stable ID is taken.
func (e *Exercises) Add(ex *Exercise) error {
	if ex == nil {
		return fmt.Errorf("exercise cannot be nil")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.exercises[ex.StableID]; exists {
		return fmt.Errorf("exercise with stable ID %s already exists", ex.StableID)
	}
	e.exercises[ex.StableID] = ex
	return nil
}

// Len returns the number of exercises.
func (e *Exercises) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.exercises)
}

// List returns the exercises ordered by stable ID.
func (e *Exercises) List() []*Exercise {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := slices.Sorted(maps.Keys(e.exercises))
	out := make([]*Exercise, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.exercises[k])
	}
	return out
}
