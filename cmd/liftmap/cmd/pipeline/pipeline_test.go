package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/internal/cmd/application"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/liftmap/pkg/sources"
	"github.com/agentstation/liftmap/pkg/store/memory"
)

func payload(t *testing.T, n int) []byte {
	t.Helper()
	records := make([]map[string]any, 0, n)
	for i := range n {
		records = append(records, map[string]any{
			"id":             fmt.Sprintf("Press_%02d", i),
			"name":           fmt.Sprintf("Press %02d", i),
			"equipment":      "dumbbell",
			"primaryMuscles": []string{"shoulders"},
			"instructions":   []string{"Press overhead."},
			"category":       "strength",
			"level":          "beginner",
		})
	}
	body, err := json.Marshal(records)
	require.NoError(t, err)
	return body
}

type failingSource struct{}

func (failingSource) ID() sources.ID { return sources.PrimaryID }

func (failingSource) Fetch(context.Context) (*sources.Payload, error) {
	return nil, fmt.Errorf("connection refused")
}

func newMock(t *testing.T, format string, src sources.Source) *application.Mock {
	t.Helper()
	c, err := liftmap.New(
		liftmap.WithStore(memory.New()),
		liftmap.WithSources(src),
		liftmap.WithMinCount(1),
	)
	require.NoError(t, err)
	return &application.Mock{
		ClientFunc:       func() (liftmap.Client, error) { return c, nil },
		OutputFormatFunc: func() string { return format },
	}
}

func run(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestImportCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		mock := newMock(t, "json", sources.NewEmbeddedSource(sources.EmbeddedID, payload(t, 5)))

		out, err := run(NewImportCommand(mock))
		require.NoError(t, err)
		assert.Contains(t, out, `"status": "success"`)
		assert.Contains(t, out, `"inserted": 5`)
	})

	t.Run("dry run table", func(t *testing.T) {
		mock := newMock(t, "table", sources.NewEmbeddedSource(sources.EmbeddedID, payload(t, 5)))

		out, err := run(NewImportCommand(mock), "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "Dry Run")
		assert.Contains(t, out, "Inserted")
	})

	t.Run("source failure exits non-zero", func(t *testing.T) {
		mock := newMock(t, "json", failingSource{})

		out, err := run(NewImportCommand(mock))
		require.Error(t, err)
		assert.Equal(t, errors.KindSourceUnavailable, errors.KindOf(err))
		assert.Contains(t, out, `"status": "error"`)
		assert.Contains(t, out, `"error_kind": "source_unavailable"`)
	})

	t.Run("client error", func(t *testing.T) {
		mock := &application.Mock{
			ClientFunc: func() (liftmap.Client, error) { return nil, fmt.Errorf("database is locked") },
		}

		_, err := run(NewImportCommand(mock))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
	})

	t.Run("rejects arguments", func(t *testing.T) {
		mock := newMock(t, "json", sources.NewEmbeddedSource(sources.EmbeddedID, payload(t, 5)))

		_, err := run(NewImportCommand(mock), "extra")
		assert.Error(t, err)
	})
}

func TestRepairCommand(t *testing.T) {
	mock := newMock(t, "json", sources.NewEmbeddedSource(sources.EmbeddedID, payload(t, 5)))
	_, err := run(NewImportCommand(mock))
	require.NoError(t, err)

	out, err := run(NewRepairCommand(mock), "--force")
	require.NoError(t, err)
	assert.Contains(t, out, `"operation": "repair"`)
	assert.Contains(t, out, `"inserted": 0`)
}

func TestLinksCommand(t *testing.T) {
	mock := newMock(t, "table", sources.NewEmbeddedSource(sources.EmbeddedID, payload(t, 5)))
	_, err := run(NewImportCommand(mock))
	require.NoError(t, err)

	out, err := run(NewLinksCommand(mock), "--force", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Linked")
	assert.NotContains(t, out, "Inserted")
}

func TestSeedCommand(t *testing.T) {
	mock := newMock(t, "yaml", sources.NewEmbeddedSource(sources.EmbeddedID, payload(t, 5)))

	out, err := run(NewSeedCommand(mock))
	require.NoError(t, err)
	assert.Contains(t, out, "operation: seed")
	assert.Contains(t, out, "status: success")
}
