package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/cmd/application"
	"github.com/agentstation/liftmap/pkg/store/memory"
)

// catalogServer serves n catalog records as JSON.
func catalogServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	records := make([]map[string]any, 0, n)
	for i := range n {
		records = append(records, map[string]any{
			"id":             fmt.Sprintf("Row_%02d", i),
			"name":           fmt.Sprintf("Row %02d", i),
			"equipment":      "cable",
			"primaryMuscles": []string{"lats"},
			"instructions":   []string{"Pull the handle to your waist."},
			"category":       "strength",
			"level":          "beginner",
		})
	}
	body, err := json.Marshal(records)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testEnv isolates the app from the host environment and points it at a
// local catalog server and a temp database. It returns the temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	srv := catalogServer(t, 30)

	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "LIFTMAP_LOG_LEVEL", "LIFTMAP_MIN_COUNT", "LIFTMAP_BATCH_SIZE", "LIFTMAP_CATALOG_VERSION"} {
		t.Setenv(key, "")
	}
	t.Setenv("LIFTMAP_LOG_OUTPUT", "discard")
	t.Setenv("LIFTMAP_DB_PATH", filepath.Join(dir, "data", "liftmap.db"))
	t.Setenv("LIFTMAP_PRIMARY_URL", srv.URL+"/exercises.json")
	t.Setenv("LIFTMAP_FALLBACK_URL", srv.URL+"/exercises.min.json")
	t.Setenv("LIFTMAP_METRICS_FILE", filepath.Join(dir, "liftmap.prom"))
	return dir
}

func build(version, commit string) application.BuildInfo {
	return application.BuildInfo{Version: version, Commit: commit, Date: "2026-10-01", BuiltBy: "test"}
}

func execute(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := a.createRootCommand()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestNew(t *testing.T) {
	dir := testEnv(t)

	a, err := New(build("1.0.0", "abc123"))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", a.Build().Version)
	assert.Equal(t, "abc123", a.Build().Commit)
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Metrics())
	require.NotNil(t, a.Config())
	assert.Equal(t, filepath.Join(dir, "data", "liftmap.db"), a.Config().DBPath)
}

func TestClientSingleton(t *testing.T) {
	testEnv(t)
	a, err := New(build("1.0.0", "test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	const goroutines = 20
	var wg sync.WaitGroup
	clients := make([]liftmap.Client, goroutines)
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			clients[idx], errs[idx] = a.Client()
		}(i)
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Same(t, clients[0], clients[i])
	}
}

func TestWithClient(t *testing.T) {
	testEnv(t)
	c, err := liftmap.New(liftmap.WithStore(memory.New()))
	require.NoError(t, err)

	a, err := New(build("1.0.0", "test"), WithClient(c))
	require.NoError(t, err)

	got, err := a.Client()
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestExecute(t *testing.T) {
	dir := testEnv(t)
	a, err := New(build("1.2.3", "test"))
	require.NoError(t, err)

	out, err := execute(t, a, "-o", "json", "import")
	require.NoError(t, err)
	assert.Contains(t, out, `"inserted": 30`)
	assert.Contains(t, out, `"source": "primary"`)

	out, err = execute(t, a, "-o", "json", "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"exercise_count": 30`)

	out, err = execute(t, a, "-o", "table", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "liftmap version 1.2.3")

	out, err = execute(t, a, "-o", "json", "version")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "1.2.3"`)
	assert.Contains(t, out, `"catalog_version"`)

	require.NoError(t, a.Shutdown(context.Background()))

	_, err = os.Stat(filepath.Join(dir, "data", "liftmap.db"))
	assert.NoError(t, err)
	metrics, err := os.ReadFile(filepath.Join(dir, "liftmap.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "liftmap_")
}

func TestExecuteDBFlag(t *testing.T) {
	dir := testEnv(t)
	a, err := New(build("1.0.0", "test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	path := filepath.Join(dir, "other", "catalog.db")
	out, err := execute(t, a, "--db", path, "-o", "yaml", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "operation: seed")
	assert.Equal(t, path, a.Config().DBPath)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExecuteRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"-o", "xml", "status"}},
		{"missing config file", []string{"--config", "missing.yaml", "status"}},
		{"unknown command", []string{"export"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t)
			a, err := New(build("1.0.0", "test"))
			require.NoError(t, err)

			_, err = execute(t, a, tt.args...)
			assert.Error(t, err)
		})
	}
}
