package seedstate_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/validate"
)

func TestDecode(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, err := seedstate.Decode(nil)
		require.NoError(t, err)
		assert.Equal(t, constants.StateSchemaVersion, s.SchemaVersion)
		assert.Equal(t, seedstate.StageIdle, s.Stage)
		assert.NotNil(t, s.Audit)
	})

	t.Run("round trip", func(t *testing.T) {
		s := seedstate.New()
		s.CatalogVersion = "2026.10.1"
		s.Apply(seedstate.Outcome{
			Operation:   "import",
			Status:      seedstate.StatusSuccess,
			Message:     "imported 300 exercises",
			Source:      "primary",
			ContentHash: "abc",
			Stats:       &seedstate.RunStats{Inserted: 300},
			Validation:  &validate.Report{Total: 300, ValidCount: 300},
		})

		data, err := s.Encode()
		require.NoError(t, err)
		decoded, err := seedstate.Decode(data)
		require.NoError(t, err)

		assert.Equal(t, "abc", decoded.ContentHash)
		assert.Equal(t, seedstate.StatusSuccess, decoded.LastStatus)
		assert.Equal(t, 300, decoded.LastStats.Inserted)
		assert.Equal(t, 300, decoded.LastValidation.ValidCount)
		require.Len(t, decoded.Audit, 1)
		assert.Equal(t, s.Audit[0].ID, decoded.Audit[0].ID)
		assert.WithinDuration(t, s.LastRunAt.Time, decoded.LastRunAt.Time, time.Second)
	})

	t.Run("legacy without version", func(t *testing.T) {
		s, err := seedstate.Decode([]byte(`{"content_hash":"x","last_status":"SUCCESS"}`))
		require.NoError(t, err)
		assert.Equal(t, constants.StateSchemaVersion, s.SchemaVersion)
		assert.Equal(t, "x", s.ContentHash)
	})

	t.Run("newer schema", func(t *testing.T) {
		_, err := seedstate.Decode([]byte(`{"schema_version":99}`))
		require.Error(t, err)
		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("corrupt", func(t *testing.T) {
		_, err := seedstate.Decode([]byte(`{"schema_version":`))
		assert.Error(t, err)
	})
}

func TestRecordCapsAuditMostRecentFirst(t *testing.T) {
	s := seedstate.New()
	for i := range constants.MaxAuditEntries + 5 {
		s.Record(seedstate.AuditEntry{Operation: "import", Message: fmt.Sprintf("run %d", i)})
	}
	require.Len(t, s.Audit, constants.MaxAuditEntries)
	assert.Equal(t, fmt.Sprintf("run %d", constants.MaxAuditEntries+4), s.Audit[0].Message)
	assert.Equal(t, "run 5", s.Audit[len(s.Audit)-1].Message)
	assert.NotEmpty(t, s.Audit[0].ID)
	assert.False(t, s.Audit[0].At.Time.IsZero())
}

func TestApply(t *testing.T) {
	s := seedstate.New()
	s.Apply(seedstate.Outcome{Operation: "import", Status: seedstate.StatusSuccess, ContentHash: "h1", Source: "primary"})

	t.Run("failure keeps hash and source", func(t *testing.T) {
		s.Apply(seedstate.Outcome{Operation: "import", Status: seedstate.StatusFailure, Message: "boom", ErrorKind: "source_unavailable"})
		assert.Equal(t, "h1", s.ContentHash)
		assert.Equal(t, "primary", s.LastSource)
		assert.Equal(t, seedstate.StatusFailure, s.LastStatus)
		assert.Equal(t, "source_unavailable", s.Audit[0].ErrorKind)
	})

	t.Run("unchanged needs success", func(t *testing.T) {
		assert.False(t, s.Unchanged("h1"))
		s.Apply(seedstate.Outcome{Operation: "import", Status: seedstate.StatusSuccess, ContentHash: "h1"})
		assert.True(t, s.Unchanged("h1"))
		assert.False(t, s.Unchanged("h2"))
		assert.False(t, s.Unchanged(""))
	})
}

func TestImportReason(t *testing.T) {
	s := seedstate.New()
	assert.NotEmpty(t, s.ImportReason("v1"))

	s.CatalogVersion = "v1"
	assert.Equal(t, "no content hash recorded", s.ImportReason("v1"))

	s.ContentHash = "h"
	s.LastStatus = seedstate.StatusStarterOnly
	assert.Contains(t, s.ImportReason("v1"), "STARTER_ONLY")

	s.LastStatus = seedstate.StatusSuccess
	assert.Empty(t, s.ImportReason("v1"))
	assert.Contains(t, s.ImportReason("v2"), "v2")
}

func TestClone(t *testing.T) {
	s := seedstate.New()
	s.LastRunAt = utc.Now()
	s.Apply(seedstate.Outcome{Status: seedstate.StatusSuccess, Stats: &seedstate.RunStats{Inserted: 1}})

	c := s.Clone()
	c.LastStats.Inserted = 99
	c.Audit[0].Message = "changed"

	assert.Equal(t, 1, s.LastStats.Inserted)
	assert.NotEqual(t, "changed", s.Audit[0].Message)
	assert.Nil(t, (*seedstate.State)(nil).Clone())
}

func TestMachine(t *testing.T) {
	t.Run("import path", func(t *testing.T) {
		var seen []seedstate.Progress
		m := seedstate.NewMachine(func(p seedstate.Progress) { seen = append(seen, p) })

		for _, st := range []seedstate.Stage{seedstate.StageFetching, seedstate.StageValidating, seedstate.StageHashing, seedstate.StageImporting} {
			require.NoError(t, m.Advance(st))
		}
		m.Batch(1, 2)
		m.Batch(2, 2)
		require.NoError(t, m.Advance(seedstate.StageDone))

		require.Len(t, seen, 7)
		assert.Equal(t, seedstate.StageFetching, seen[0].Stage)
		assert.Zero(t, seen[0].TotalBatches)
		assert.Equal(t, seedstate.Progress{Stage: seedstate.StageImporting, StartedAt: seen[3].StartedAt, Batch: 2, TotalBatches: 2}, seen[5])
		assert.Equal(t, seedstate.StageDone, seen[6].Stage)
		assert.False(t, seen[0].StartedAt.IsZero())
	})

	t.Run("repair path", func(t *testing.T) {
		m := seedstate.NewMachine(nil)
		for _, st := range []seedstate.Stage{seedstate.StageFetching, seedstate.StageNormalizing, seedstate.StageHashing, seedstate.StageImporting, seedstate.StageDone} {
			require.NoError(t, m.Advance(st))
		}
		assert.Len(t, m.History(), 6)
	})

	t.Run("rejects skipping stages", func(t *testing.T) {
		m := seedstate.NewMachine(nil)
		err := m.Advance(seedstate.StageImporting)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidTransition)
		assert.Equal(t, seedstate.StageIdle, m.Stage())
	})

	t.Run("batch outside importing is ignored", func(t *testing.T) {
		calls := 0
		m := seedstate.NewMachine(func(seedstate.Progress) { calls++ })
		m.Batch(1, 1)
		assert.Zero(t, calls)
	})

	t.Run("finish and reset", func(t *testing.T) {
		m := seedstate.NewMachine(nil)
		m.Finish()
		assert.Equal(t, seedstate.StageIdle, m.Stage())

		require.NoError(t, m.Advance(seedstate.StageFetching))
		m.Finish()
		m.Finish()
		assert.Equal(t, seedstate.StageDone, m.Stage())

		require.NoError(t, m.Reset())
		assert.Equal(t, []seedstate.Stage{seedstate.StageIdle}, m.History())
	})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to seedstate.Stage
		want     bool
	}{
		{seedstate.StageIdle, seedstate.StageFetching, true},
		{seedstate.StageIdle, seedstate.StageDone, false},
		{seedstate.StageFetching, seedstate.StageDone, true},
		{seedstate.StageValidating, seedstate.StageImporting, false},
		{seedstate.StageHashing, seedstate.StageDone, true},
		{seedstate.StageDone, seedstate.StageIdle, true},
		{seedstate.StageDone, seedstate.StageFetching, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, seedstate.CanTransition(tt.from, tt.to))
		})
	}
}
