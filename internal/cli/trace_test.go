package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/queryir"
)

func TestTraceEmpty(t *testing.T) {
	opts := testOptions(t)
	opts.Session = "nothing"

	out, err := execute(t, NewTraceCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "No commands found for session: nothing")
}

func TestTraceText(t *testing.T) {
	opts := seedDemo(t)

	out, err := execute(t, NewTraceCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, `[1] demo addTrack {"type":"video"} -> Ok`)
	assert.Contains(t, out, `[5] demo setZoom {"zoom":1500000} -> Ok`)
	assert.Contains(t, out, "5 command(s), 0 failed")
}

func TestTraceFilters(t *testing.T) {
	opts := seedDemo(t)
	_, err := execute(t, NewInvokeCommand(&RootOptions{
		Format:   "text",
		Database: opts.Database,
		Session:  "demo",
		Config:   opts.Config,
		Logger:   opts.Logger,
	}), "deleteClip", "--args", `{"clipId":"gone"}`)
	require.Error(t, err)

	opts.Format = "json"
	opts.Session = "demo"

	t.Run("op", func(t *testing.T) {
		cmd := NewTraceCommand(opts)
		out, err := execute(t, cmd, "--op", "addClip")
		require.NoError(t, err)

		var resp struct {
			Data TraceResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Len(t, resp.Data.Events, 2)
		assert.Equal(t, "addClip", resp.Data.Events[0].Op)
		assert.Equal(t, float64(4_000_000), resp.Data.Events[0].Args["duration"])
		assert.Equal(t, 2, resp.Data.Stats.Created)
	})

	t.Run("failed", func(t *testing.T) {
		out, err := execute(t, NewTraceCommand(opts), "--failed")
		require.NoError(t, err)

		var resp struct {
			Data TraceResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Len(t, resp.Data.Events, 1)
		assert.Equal(t, "deleteClip", resp.Data.Events[0].Op)
		assert.NotEqual(t, "Ok", resp.Data.Events[0].Case)
		assert.Equal(t, int64(6), resp.Data.Events[0].Seq)
		assert.Equal(t, 1, resp.Data.Stats.Failed)
	})
}

func TestTraceSeqWindow(t *testing.T) {
	opts := seedDemo(t)
	opts.Format = "json"

	out, err := execute(t, NewTraceCommand(opts), "--since", "2", "--until", "4", "--limit", "2")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Events, 2)
	assert.Equal(t, int64(2), resp.Data.Events[0].Seq)
	assert.Equal(t, int64(3), resp.Data.Events[1].Seq)
}

func TestTraceInvalidWindow(t *testing.T) {
	_, err := execute(t, NewTraceCommand(testOptions(t)), "--since", "9", "--until", "2")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid trace filter")
}

func TestTraceQuery(t *testing.T) {
	opts := &TraceOptions{RootOptions: &RootOptions{Session: "s"}, Op: "seek", Failed: true}
	q := opts.query()

	and, ok := q.Filter.(queryir.And)
	require.True(t, ok)
	assert.Len(t, and.Predicates, 3)
	assert.Zero(t, q.Limit)

	assert.Nil(t, (&TraceOptions{RootOptions: &RootOptions{}}).query().Filter)
}
