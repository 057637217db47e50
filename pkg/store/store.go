// Package store defines the persistence contract of the exercise catalog:
// exercises, equipment and a key/value meta collection, all mutated through
// one atomic transaction primitive.
//
// Implementations live in pkg/store/memory and internal/store/sqlite.
package store

import (
	"context"

	"github.com/agentstation/liftmap/pkg/catalogs"
)

// Reader is the read side of the store.
type Reader interface {
	// CountExercises returns the number of stored exercises.
	CountExercises(ctx context.Context) (int, error)

	// CountEquipment returns the number of stored equipment records.
	CountEquipment(ctx context.Context) (int, error)

	// ExerciseByStableID returns one exercise or a *errors.NotFoundError.
	ExerciseByStableID(ctx context.Context, stableID string) (*catalogs.Exercise, error)

	// ExercisesByStableIDs returns the stored exercises whose stable ID is any of ids.
	// Missing IDs are ignored.
	ExercisesByStableIDs(ctx context.Context, ids []string) ([]catalogs.Exercise, error)

	// ListExercises returns every exercise ordered by name, then stable ID.
	ListExercises(ctx context.Context) ([]catalogs.Exercise, error)

	// ListEquipment returns every equipment record ordered by ID.
	ListEquipment(ctx context.Context) ([]catalogs.Equipment, error)

	// Meta returns the value stored under key, or nil when the key is absent.
	Meta(ctx context.Context, key string) ([]byte, error)
}

// Writer is the write side of the store. It is only reachable inside Update.
type Writer interface {
	// InsertExercises adds new exercises. A stable ID that already exists
	// fails the call with errors.ErrAlreadyExists.
	InsertExercises(ctx context.Context, exercises []catalogs.Exercise) error

	// UpsertExercises inserts or replaces exercises keyed by stable ID.
	UpsertExercises(ctx context.Context, exercises []catalogs.Exercise) error

	// InsertEquipment adds equipment records, ignoring IDs that already exist.
	InsertEquipment(ctx context.Context, equipment []catalogs.Equipment) error

	// PutMeta stores value under key.
	PutMeta(ctx context.Context, key string, value []byte) error
}

// Tx is a transaction: reads see the transaction's own writes.
type Tx interface {
	Reader
	Writer
}

// Store is a catalog store.
type Store interface {
	Reader

	// Update runs fn in one transaction. The transaction commits when fn
	// returns nil; any error rolls back every write fn made.
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Close releases the store.
	Close() error
}

// Batches splits exercises into consecutive chunks of at most size records.
func Batches(exercises []catalogs.Exercise, size int) [][]catalogs.Exercise {
	if size <= 0 {
		size = len(exercises)
	}
	var out [][]catalogs.Exercise
	for start := 0; start < len(exercises); start += size {
		end := min(start+size, len(exercises))
		out = append(out, exercises[start:end])
	}
	return out
}
