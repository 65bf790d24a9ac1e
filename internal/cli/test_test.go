package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/harness"
)

const scenariosDir = "../../testdata/scenarios"

func TestTestCommandPasses(t *testing.T) {
	out, err := execute(t, NewTestCommand(testOptions(t)), scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ rough_cut.yaml")
	assert.Contains(t, out, "Results: 3 passed, 0 failed, 3 total")
}

func TestTestCommandFilter(t *testing.T) {
	opts := testOptions(t)
	opts.Format = "json"

	out, err := execute(t, NewTestCommand(opts), scenariosDir, "--filter", "locked*")
	require.NoError(t, err)

	var resp struct {
		Data harness.SuiteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.TotalScenarios)
	assert.Equal(t, 1, resp.Data.Passed)
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	scenario := `
name: wrong type
description: expects the wrong track type
flow:
  - invoke: addTrack
    args: { type: audio }
    bind: [a1]
assertions:
  - type: track
    id: $a1
    expect: { type: video }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [\n"), 0o644))

	out, err := execute(t, NewTestCommand(testOptions(t)), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong type")
	assert.Contains(t, out, "✗ broken.yml")
	assert.Contains(t, out, "Results: 0 passed, 2 failed, 2 total")
}

func TestTestCommandErrors(t *testing.T) {
	_, err := execute(t, NewTestCommand(testOptions(t)), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, NewTestCommand(testOptions(t)), scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFilterScenarios(t *testing.T) {
	paths := []string{"a/rough_cut.yaml", "a/locked_track.yml", "b/staged.yaml"}

	kept, err := filterScenarios(paths, "*cut")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/rough_cut.yaml"}, kept)

	kept, err = filterScenarios(paths, "")
	require.NoError(t, err)
	assert.Equal(t, paths, kept)
}
