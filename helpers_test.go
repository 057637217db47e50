package liftmap

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/identity"
	"github.com/agentstation/liftmap/pkg/logging"
	"github.com/agentstation/liftmap/pkg/normalize"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/sources"
	"github.com/agentstation/liftmap/pkg/store"
	"github.com/agentstation/liftmap/pkg/store/memory"
	"github.com/agentstation/utc"
)

var testNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() utc.Time {
	return utc.New(testNow)
}

// sequentialIDs returns an ID generator yielding ex-0001, ex-0002, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("ex-%04d", n)
	}
}

// rawExercise is one record in the free-exercise-db shape.
func rawExercise(i int) map[string]any {
	return map[string]any{
		"id":               fmt.Sprintf("Exercise_%03d", i),
		"name":             fmt.Sprintf("Exercise %03d", i),
		"equipment":        "barbell",
		"primaryMuscles":   []string{"quadriceps"},
		"secondaryMuscles": []string{"glutes"},
		"instructions":     []string{"Set up under the bar.", "Complete the rep."},
		"category":         "strength",
		"level":            "intermediate",
	}
}

// catalogPayload encodes n well-formed records. mutate may edit any record.
func catalogPayload(t *testing.T, n int, mutate func(i int, rec map[string]any)) []byte {
	t.Helper()
	records := make([]map[string]any, 0, n)
	for i := range n {
		rec := rawExercise(i)
		if mutate != nil {
			mutate(i, rec)
		}
		records = append(records, rec)
	}
	body, err := json.Marshal(records)
	require.NoError(t, err)
	return body
}

// stubSource serves a swappable JSON body or fails with err.
type stubSource struct {
	mu    sync.Mutex
	id    sources.ID
	body  []byte
	err   error
	calls int
}

func newStubSource(body []byte) *stubSource {
	return &stubSource{id: sources.PrimaryID, body: body}
}

func (s *stubSource) ID() sources.ID { return s.id }

func (s *stubSource) Fetch(ctx context.Context) (*sources.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	records, warnings, err := sources.Parse(s.body, sources.FormatJSON)
	if err != nil {
		return nil, err
	}
	return &sources.Payload{Source: s.id, Records: records, Warnings: warnings, FetchedAt: testNow}, nil
}

func (s *stubSource) set(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

// flakyStore fails chosen Update calls after running fn, so the writes fn
// made must be rolled back by the wrapped store.
type flakyStore struct {
	store.Store
	mu      sync.Mutex
	updates int
	failAt  map[int]error
}

func (s *flakyStore) Update(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	s.updates++
	failure := s.failAt[s.updates]
	s.mu.Unlock()

	if failure == nil {
		return s.Store.Update(ctx, fn)
	}
	return s.Store.Update(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return failure
	})
}

func newTestClient(t *testing.T, st store.Store, src sources.Source, opts ...Option) Client {
	t.Helper()
	logging.DisableLoggingForTest(t)
	base := []Option{
		WithStore(st),
		WithSources(src),
		WithClock(fixedClock),
		WithIDGenerator(sequentialIDs()),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func newMemoryClient(t *testing.T, src sources.Source, opts ...Option) (Client, *memory.Store) {
	t.Helper()
	st := memory.New()
	t.Cleanup(func() { _ = st.Close() })
	return newTestClient(t, st, src, opts...), st
}

// storedExercise normalizes raw and gives it an identity, ready to insert.
func storedExercise(t *testing.T, raw map[string]any, id string, source catalogs.Source) catalogs.Exercise {
	t.Helper()
	body, err := json.Marshal(raw)
	require.NoError(t, err)
	ex := normalize.Normalize(body)
	ex.StableID = identity.StableID(&ex)
	ex.ID = id
	ex.Source = source
	ex.CreatedAt = fixedClock()
	ex.UpdatedAt = fixedClock()
	return ex
}

func insert(t *testing.T, st store.Store, exercises ...catalogs.Exercise) {
	t.Helper()
	err := st.Update(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertExercises(ctx, exercises)
	})
	require.NoError(t, err)
}

func upsert(t *testing.T, st store.Store, exercises ...catalogs.Exercise) {
	t.Helper()
	err := st.Update(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.UpsertExercises(ctx, exercises)
	})
	require.NoError(t, err)
}

func readState(t *testing.T, st store.Reader) *seedstate.State {
	t.Helper()
	state, err := loadState(context.Background(), st)
	require.NoError(t, err)
	return state
}

func count(t *testing.T, st store.Reader) int {
	t.Helper()
	n, err := st.CountExercises(context.Background())
	require.NoError(t, err)
	return n
}
