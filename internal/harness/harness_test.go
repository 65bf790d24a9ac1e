package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/engine"
	"github.com/roach88/cutroom/internal/ir"
	"github.com/roach88/cutroom/internal/testutil"
	"github.com/roach88/cutroom/internal/timeline"
)

func intPtr(n int) *int { return &n }

// editScenario adds a video track and a 4s clip, splits it and merges the
// halves back.
func editScenario() *Scenario {
	return &Scenario{
		Name:        "split_merge",
		Description: "A split clip merges back into one",
		Session:     "test",
		Setup: []Step{
			{Invoke: "addTrack", Args: map[string]any{"type": "video"}, Bind: []string{"v1"}},
		},
		Flow: []Step{
			{
				Invoke: "addClip",
				Args:   map[string]any{"trackId": "$v1", "start": 0, "duration": 4.0, "content": "a.mp4"},
				Bind:   []string{"a"},
			},
			{
				Invoke: "splitClip",
				Args:   map[string]any{"clipId": "$a", "at": 1.5},
				Bind:   []string{"left", "right"},
				Expect: &Expect{Case: ir.CaseOk, Created: intPtr(2)},
			},
			{
				Invoke: "mergeClip",
				Args:   map[string]any{"clipId": "$left", "targetId": "$right"},
				Bind:   []string{"merged"},
			},
		},
		Assertions: []Assertion{
			{Type: AssertClip, ID: "$merged", Expect: map[string]any{"track": "$v1", "start": 0, "duration": 4, "offset": 0}},
			{Type: AssertClipMissing, ID: "$a"},
			{Type: AssertTraceOrder, Ops: []string{"addTrack", "addClip", "splitClip", "mergeClip"}},
			{Type: AssertValid},
			{Type: AssertReplay},
		},
	}
}

func TestRun_SplitMerge(t *testing.T) {
	result, err := Run(editScenario())
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, ir.OpName("splitClip"), result.Trace[2].Op)
	assert.Equal(t, int64(3), result.Trace[2].Seq)

	assert.Equal(t, map[string]string{
		"v1": "id-1", "a": "id-2", "left": "id-3", "right": "id-4", "merged": "id-5",
	}, result.Bindings)
	require.Len(t, result.Final.Clips, 1)
	assert.Equal(t, "id-5", result.Final.Clips[0].ID)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(editScenario())
	require.NoError(t, err)
	second, err := Run(editScenario())
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_ExpectedFailureCase(t *testing.T) {
	s := editScenario()
	s.Flow = append(s.Flow, Step{
		Invoke: "addClip",
		Args:   map[string]any{"trackId": "$v1", "start": 2, "duration": 1},
		Expect: &Expect{Case: "Conflict"},
	})
	s.Assertions = []Assertion{
		{Type: AssertTraceContains, Op: "addClip", Args: map[string]any{"start": 2}, Case: "Conflict"},
		{Type: AssertTraceCount, Op: "addClip", Count: 2},
		{Type: AssertReplay},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FlowMismatchIsCollected(t *testing.T) {
	s := editScenario()
	s.Flow[1].Expect = &Expect{Case: "Conflict"}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "flow step 1: splitClip: expected Conflict, got Ok")
}

func TestRun_SetupFailureAborts(t *testing.T) {
	s := editScenario()
	s.Setup = append(s.Setup, Step{Invoke: "removeTrack", Args: map[string]any{"trackId": "nope"}})

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup step 1")
	assert.Contains(t, err.Error(), "InvalidReference")
}

func TestRun_UnboundReference(t *testing.T) {
	s := editScenario()
	s.Flow[0].Args["trackId"] = "$missing"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "unbound reference $missing")
}

func TestRun_CreatedCountMismatch(t *testing.T) {
	s := editScenario()
	s.Flow[1].Expect.Created = intPtr(3)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected 3 created ids, got 2")
}

func TestRun_BindMoreThanCreated(t *testing.T) {
	s := editScenario()
	s.Flow[2].Bind = []string{"merged", "extra"}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "bind wants 2 ids, outcome created 1")
}

func TestRun_TemplatesAvailable(t *testing.T) {
	s := &Scenario{
		Name:        "template",
		Description: "addTrack resolves builtin templates",
		Flow: []Step{
			{Invoke: "addTrack", Args: map[string]any{"template": "voiceover"}, Bind: []string{"vo"}},
		},
		Assertions: []Assertion{
			{Type: AssertTrack, ID: "$vo", Expect: map[string]any{"name": "Voice Over", "type": "audio", "volume": 90}},
		},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_EngineOptions(t *testing.T) {
	s := editScenario()
	s.Flow = append(s.Flow, Step{
		Invoke: "addClip",
		Args:   map[string]any{"trackId": "$v1", "start": 2, "duration": 1},
	})
	s.Assertions = []Assertion{{Type: AssertValid}, {Type: AssertReplay}}

	opt := engine.WithTimelineOptions(timeline.Options{AllowOverlap: true})
	result, err := RunContext(context.Background(), s, opt)
	require.NoError(t, err)
	assert.True(t, result.Pass, "overlap allowed; errors: %v", result.Errors)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunContext(ctx, editScenario())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_UnknownOpNeverReachesEngine(t *testing.T) {
	e := engine.New(
		engine.WithIDGenerator(testutil.NewSequenceIDs("id")),
		engine.WithLogger(quietLogger()),
	)
	r := NewRunner(e, "test", quietLogger())

	out, err := r.Step(context.Background(), Step{Invoke: "teleport", Expect: &Expect{Case: "UnknownOp"}})
	require.NoError(t, err)
	assert.Equal(t, "UnknownOp", out.Case)

	out, err = r.Step(context.Background(), Step{
		Invoke: "seek",
		Args:   map[string]any{"time": "soon"},
		Expect: &Expect{Case: "InvalidArgument"},
	})
	require.NoError(t, err)
	assert.Equal(t, "InvalidArgument", out.Case)
	assert.Equal(t, int64(0), e.Clock().Current())
}

func TestRunner_ResolveNested(t *testing.T) {
	r := NewRunner(engine.New(engine.WithLogger(quietLogger())), "test", quietLogger())
	r.bindings["c"] = "id-9"

	got, err := r.resolveArgs(map[string]any{
		"clipId": "$c",
		"fields": map[string]any{"name": "$c", "tags": []any{"$c", "plain"}},
		"n":      3,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"clipId": "id-9",
		"fields": map[string]any{"name": "id-9", "tags": []any{"id-9", "plain"}},
		"n":      3,
	}, got)
}
