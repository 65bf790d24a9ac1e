package harness

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunWithGolden_TrackLifecycle(t *testing.T) {
	scenario := &Scenario{
		Name:        "track_lifecycle",
		Description: "Add, zoom, update and remove a track, then remove it again",
		Session:     "golden",
		Flow: []Step{
			{Invoke: "addTrack", Args: map[string]any{"type": "audio"}},
			{Invoke: "setZoom", Args: map[string]any{"zoom": 2}},
			{Invoke: "updateTrack", Args: map[string]any{"trackId": "id-1", "muted": true}},
			{Invoke: "removeTrack", Args: map[string]any{"trackId": "id-1"}},
			{Invoke: "removeTrack", Args: map[string]any{"trackId": "id-1"}, Expect: &Expect{Case: "InvalidReference"}},
			{Invoke: "listTracks", Args: map[string]any{}},
		},
		Assertions: []Assertion{{Type: AssertValid}},
	}

	require.NoError(t, RunWithGolden(t, scenario))
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	scenario := &Scenario{
		Name:        "track_lifecycle",
		Description: "same trace, compared after the run",
		Session:     "golden",
		Flow: []Step{
			{Invoke: "addTrack", Args: map[string]any{"type": "audio"}},
			{Invoke: "setZoom", Args: map[string]any{"zoom": 2.0}},
			{Invoke: "updateTrack", Args: map[string]any{"trackId": "id-1", "muted": true}},
			{Invoke: "removeTrack", Args: map[string]any{"trackId": "id-1"}},
			{Invoke: "removeTrack", Args: map[string]any{"trackId": "id-1"}, Expect: &Expect{Case: "InvalidReference"}},
		},
		Assertions: []Assertion{{Type: AssertValid}},
	}
	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, scenario, result))
}
