package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.Run("import", "success", 120*time.Millisecond)
	r.Run("import", "error", time.Second)
	r.Exercises("import", "inserted", 300)
	r.Exercises("import", "updated", 0)
	r.SourceAttempt("primary", 1, errors.New("timeout"))
	r.SourceAttempt("fallback", 1, nil)
	r.CatalogSize(300)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("import", "success")))
	assert.Equal(t, 300.0, testutil.ToFloat64(r.exercises.WithLabelValues("import", "inserted")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.exercises))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceAttempts.WithLabelValues("primary", "failure", "1")))
	assert.Equal(t, 300.0, testutil.ToFloat64(r.catalogSize))

	expected := `
# HELP liftmap_runs_total Pipeline runs by operation and result status.
# TYPE liftmap_runs_total counter
liftmap_runs_total{operation="import",status="error"} 1
liftmap_runs_total{operation="import",status="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "liftmap_runs_total"))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Run("seed", "success", time.Millisecond)

	path := filepath.Join(t.TempDir(), "liftmap.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `liftmap_runs_total{operation="seed",status="success"} 1`)
}
