package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/store"
)

const demoScript = "../../testdata/scripts/demo.yaml"

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestExecDemoScript(t *testing.T) {
	opts := testOptions(t)

	out, err := execute(t, NewExecCommand(opts), demoScript)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ [1] addTrack Ok")
	assert.Contains(t, out, "✓ [4] splitClip Ok")
	assert.Contains(t, out, "$intro = ")

	st, err := store.Open(opts.Database)
	require.NoError(t, err)
	defer st.Close()
	entries, err := st.ReadSession(context.Background(), "demo")
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestExecResumesSession(t *testing.T) {
	opts := testOptions(t)

	_, err := execute(t, NewExecCommand(opts), demoScript)
	require.NoError(t, err)
	out, err := execute(t, NewExecCommand(opts), demoScript)
	require.NoError(t, err, out)
	assert.Contains(t, out, "[6] addTrack Ok", "seq continues after the replayed journal")

	st, err := store.Open(opts.Database)
	require.NoError(t, err)
	defer st.Close()
	last, err := st.LastSeqForSession(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, int64(10), last)
}

func TestExecStopsAtFailedStep(t *testing.T) {
	script := writeScript(t, `
steps:
  - invoke: addTrack
    bind: [v1]
  - invoke: addClip
    args: { trackId: $v1, start: 0, duration: 2 }
  - invoke: addClip
    args: { trackId: $v1, start: 1, duration: 2 }
  - invoke: addClip
    args: { trackId: $v1, start: 5, duration: 1 }
`)

	t.Run("stop", func(t *testing.T) {
		opts := testOptions(t)
		opts.Format = "json"
		out, err := execute(t, NewExecCommand(opts), script)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Data ExecResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, DefaultSession, resp.Data.Session)
		require.Len(t, resp.Data.Steps, 3)
		assert.Equal(t, "Conflict", resp.Data.Steps[2].Outcome.Case)
		assert.Contains(t, resp.Data.Steps[2].Error, "expected Ok, got Conflict")
		assert.Equal(t, 1, resp.Data.Failed)
	})

	t.Run("keep going", func(t *testing.T) {
		opts := testOptions(t)
		out, err := execute(t, NewExecCommand(opts), script, "--keep-going")
		require.Error(t, err)
		assert.Contains(t, out, "✗ [3] addClip Conflict")
		assert.Contains(t, out, "✓ [4] addClip Ok")
	})
}

func TestExecSessionFlagOverridesScript(t *testing.T) {
	opts := testOptions(t)
	opts.Session = "override"

	_, err := execute(t, NewExecCommand(opts), demoScript)
	require.NoError(t, err)

	st, err := store.Open(opts.Database)
	require.NoError(t, err)
	defer st.Close()
	sessions, err := st.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "override", sessions[0].Session)
}

func TestExecInvalidScript(t *testing.T) {
	opts := testOptions(t)

	_, err := execute(t, NewExecCommand(opts), writeScript(t, "steps: []\n"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, NewExecCommand(opts), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
