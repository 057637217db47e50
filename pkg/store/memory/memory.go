// Package memory is an in-process implementation of the catalog store.
//
// Update works on a deep copy of the data and swaps it in on commit, so a
// failed transaction leaves nothing behind and readers never see a partial
// write.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/mohae/deepcopy"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/store"
)

var errStoreClosed = errors.New("store is closed")

type dataset struct {
	Exercises map[string]catalogs.Exercise
	Equipment map[string]catalogs.Equipment
	Meta      map[string][]byte
}

func newDataset() *dataset {
	return &dataset{
		Exercises: make(map[string]catalogs.Exercise),
		Equipment: make(map[string]catalogs.Equipment),
		Meta:      make(map[string][]byte),
	}
}

// Store is an in-memory catalog store.
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	data    *dataset
	closed  bool
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{data: newDataset()}
}

// Update runs fn against a private copy of the data and publishes it when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return errors.NewPersistenceError("begin", errStoreClosed)
	}
	snapshot := deepcopy.Copy(s.data).(*dataset)
	s.mu.RUnlock()

	if err := fn(ctx, &reader{data: snapshot}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.NewPersistenceError("commit", err)
	}

	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
	return nil
}

// Close marks the store closed. Reads keep working; updates fail.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Store) view() *reader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &reader{data: s.data}
}

// CountExercises implements store.Reader.
func (s *Store) CountExercises(ctx context.Context) (int, error) {
	return s.view().CountExercises(ctx)
}

// CountEquipment implements store.Reader.
func (s *Store) CountEquipment(ctx context.Context) (int, error) {
	return s.view().CountEquipment(ctx)
}

// ExerciseByStableID implements store.Reader.
func (s *Store) ExerciseByStableID(ctx context.Context, id string) (*catalogs.Exercise, error) {
	return s.view().ExerciseByStableID(ctx, id)
}

// ExercisesByStableIDs implements store.Reader.
func (s *Store) ExercisesByStableIDs(ctx context.Context, ids []string) ([]catalogs.Exercise, error) {
	return s.view().ExercisesByStableIDs(ctx, ids)
}

// ListExercises implements store.Reader.
func (s *Store) ListExercises(ctx context.Context) ([]catalogs.Exercise, error) {
	return s.view().ListExercises(ctx)
}

// ListEquipment implements store.Reader.
func (s *Store) ListEquipment(ctx context.Context) ([]catalogs.Equipment, error) {
	return s.view().ListEquipment(ctx)
}

// Meta implements store.Reader.
func (s *Store) Meta(ctx context.Context, key string) ([]byte, error) {
	return s.view().Meta(ctx, key)
}

// reader serves reads from one dataset. Inside Update it is also the Tx,
// writing into the snapshot. Published datasets are never mutated, so
// readers need no lock once they hold one.
type reader struct {
	data *dataset
}

func (r *reader) CountExercises(context.Context) (int, error) {
	return len(r.data.Exercises), nil
}

func (r *reader) CountEquipment(context.Context) (int, error) {
	return len(r.data.Equipment), nil
}

func (r *reader) ExerciseByStableID(_ context.Context, id string) (*catalogs.Exercise, error) {
	ex, ok := r.data.Exercises[id]
	if !ok {
		return nil, errors.NewNotFoundError("exercise", id)
	}
	return ex.Clone(), nil
}

func (r *reader) ExercisesByStableIDs(_ context.Context, ids []string) ([]catalogs.Exercise, error) {
	out := make([]catalogs.Exercise, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if ex, ok := r.data.Exercises[id]; ok {
			out = append(out, *ex.Clone())
		}
	}
	sortExercises(out)
	return out, nil
}

func (r *reader) ListExercises(context.Context) ([]catalogs.Exercise, error) {
	out := make([]catalogs.Exercise, 0, len(r.data.Exercises))
	for _, ex := range r.data.Exercises {
		out = append(out, *ex.Clone())
	}
	sortExercises(out)
	return out, nil
}

func (r *reader) ListEquipment(context.Context) ([]catalogs.Equipment, error) {
	out := make([]catalogs.Equipment, 0, len(r.data.Equipment))
	for _, eq := range r.data.Equipment {
		out = append(out, *eq.Clone())
	}
	slices.SortFunc(out, func(a, b catalogs.Equipment) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *reader) Meta(_ context.Context, key string) ([]byte, error) {
	v, ok := r.data.Meta[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (r *reader) InsertExercises(_ context.Context, exercises []catalogs.Exercise) error {
	for i := range exercises {
		if err := checkExercise(&exercises[i]); err != nil {
			return err
		}
		if _, exists := r.data.Exercises[exercises[i].StableID]; exists {
			return errors.WrapResource("insert", "exercise", exercises[i].StableID, errors.ErrAlreadyExists)
		}
		r.data.Exercises[exercises[i].StableID] = *exercises[i].Clone()
	}
	return nil
}

func (r *reader) UpsertExercises(_ context.Context, exercises []catalogs.Exercise) error {
	for i := range exercises {
		if err := checkExercise(&exercises[i]); err != nil {
			return err
		}
		r.data.Exercises[exercises[i].StableID] = *exercises[i].Clone()
	}
	return nil
}

func (r *reader) InsertEquipment(_ context.Context, equipment []catalogs.Equipment) error {
	for i := range equipment {
		if equipment[i].ID == "" {
			return errors.NewValidationError("id", "", "equipment ID is required")
		}
		if _, exists := r.data.Equipment[equipment[i].ID]; exists {
			continue
		}
		r.data.Equipment[equipment[i].ID] = *equipment[i].Clone()
	}
	return nil
}

func (r *reader) PutMeta(_ context.Context, key string, value []byte) error {
	r.data.Meta[key] = slices.Clone(value)
	return nil
}

func checkExercise(ex *catalogs.Exercise) error {
	if ex.StableID == "" {
		return errors.NewValidationError("stable_id", "", "exercise stable ID is required")
	}
	return nil
}

func sortExercises(list []catalogs.Exercise) {
	slices.SortFunc(list, func(a, b catalogs.Exercise) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.StableID, b.StableID))
	})
}
