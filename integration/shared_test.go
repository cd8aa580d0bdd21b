//go:build basic || database

// Package integration contains end-to-end tests for the starspin binary.
// These tests are excluded from normal test runs due to build tags.
// To run them: go test -tags basic ./integration
// Database backends need Docker: go test -tags database ./integration
package integration

import (
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedStarspinPath holds the path to a shared starspin binary built once for all tests.
	sharedStarspinPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getStarspinBinary returns the path to the starspin binary, building it once if needed.
func getStarspinBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "starspin-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		starspinPath := filepath.Join(tempDir, "starspin")
		buildCmd := exec.Command("go", "build", "-o", starspinPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build starspin: %v\n%s", err, out))
		}

		sharedStarspinPath = starspinPath
	})

	return sharedStarspinPath
}

// workspace is a scratch directory with a sample file and a light curve directory.
type workspace struct {
	dir     string
	dataDir string
	sample  string
}

// newWorkspace creates an empty workspace under t.TempDir.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "lightcurves")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	return &workspace{dir: dir, dataDir: dataDir, sample: filepath.Join(dir, "sample.csv")}
}

// writeSample writes a sample CSV with the given TIC identifiers.
func (w *workspace) writeSample(t *testing.T, ids ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("TIC_ID,Teff,logg,Tmag\n")
	for _, id := range ids {
		b.WriteString(id + ",5700,4.4,9.1\n")
	}
	require.NoError(t, os.WriteFile(w.sample, []byte(b.String()), 0o644))
}

// writeSinusoid writes a 27 day light curve at 30 minute cadence.
func (w *workspace) writeSinusoid(t *testing.T, id string, period, amplitude float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("time,flux\n")
	for i := range 27 * 48 {
		ts := float64(i) / 48
		flux := 1000 * (1 + amplitude*math.Sin(2*math.Pi*ts/period))
		fmt.Fprintf(&b, "%.6f,%.6f\n", ts, flux)
	}
	require.NoError(t, os.WriteFile(filepath.Join(w.dataDir, id+".csv"), []byte(b.String()), 0o644))
}

// writeShort writes a light curve with too few samples to analyze.
func (w *workspace) writeShort(t *testing.T, id string) {
	t.Helper()
	data := "time,flux\n0,1000\n0.01,1001\n0.02,999\n"
	require.NoError(t, os.WriteFile(filepath.Join(w.dataDir, id+".csv"), []byte(data), 0o644))
}

// runStarspin runs the binary from dir with HOME pointed at dir, so SQLite
// files land in the workspace. It returns stdout and stderr separately.
func runStarspin(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(getStarspinBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+dir)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), stderr.String(), err
}
