package export

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/testutil"
	"github.com/roach88/cutroom/internal/timeline"
)

func roughCut(t *testing.T) timeline.Snapshot {
	t.Helper()
	tl := timeline.New(timeline.WithIDGenerator(testutil.NewSequenceIDs("id")))

	track, err := tl.AddTrack(timeline.TrackVideo, nil)
	require.NoError(t, err)

	intro, err := tl.AddClip(timeline.ClipSpec{TrackID: track.ID, Name: "Intro", StartTime: 0, Duration: 2, ContentRef: "asset://intro.mp4"})
	require.NoError(t, err)
	_, err = tl.AddClip(timeline.ClipSpec{TrackID: track.ID, StartTime: 3.5, Duration: 1.5, ContentRef: "asset://b-roll.mov"})
	require.NoError(t, err)
	_, err = tl.AddClip(timeline.ClipSpec{TrackID: track.ID, StartTime: 6, Duration: 1, Type: timeline.ClipText, Text: "fin"})
	require.NoError(t, err)

	_, _, err = tl.SplitClip(intro.ID, 1)
	require.NoError(t, err)
	require.NoError(t, tl.Validate())
	return tl.Snapshot()
}

var media = MapResolver{
	"asset://intro.mp4":  {MediaURL: "/media/intro.mp4"},
	"asset://b-roll.mov": {MediaURL: "/media/b-roll.mov"},
}

func TestEventsForTrack(t *testing.T) {
	snap := roughCut(t)

	res, err := EventsForTrack(snap, "id-1", media)
	require.NoError(t, err)
	require.Len(t, res.Events, 3)
	assert.Equal(t, []string{"id-4"}, res.Unresolved, "text clip has no media")

	second := res.Events[1]
	assert.Equal(t, "id-6", second.ClipID)
	assert.InDelta(t, 1.0, second.SourceIn, 1e-9, "split keeps the source offset")
	assert.InDelta(t, 2.0, second.SourceOut, 1e-9)
	assert.InDelta(t, 1.0, second.RecordIn, 1e-9)

	broll := res.Events[2]
	assert.Equal(t, "b_roll", broll.Reel)
	assert.Equal(t, "b-roll.mov", broll.ClipName)
	assert.InDelta(t, 3.5, broll.RecordIn, 1e-9)

	_, err = EventsForTrack(snap, "nope", media)
	assert.Error(t, err)
}

func TestEventsForTrack_AudioChannel(t *testing.T) {
	tl := timeline.New(timeline.WithIDGenerator(testutil.NewSequenceIDs("id")))
	track, err := tl.AddTrack(timeline.TrackAudio, nil)
	require.NoError(t, err)
	_, err = tl.AddClip(timeline.ClipSpec{TrackID: track.ID, StartTime: 0, Duration: 4, ContentRef: "/audio/score.wav"})
	require.NoError(t, err)

	res, err := EventsForTrack(tl.Snapshot(), track.ID, nil)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "A", res.Events[0].Channel)
	assert.Equal(t, "score", res.Events[0].Reel)
}

func TestGenerateEDL_Golden(t *testing.T) {
	res, err := EventsForTrack(roughCut(t), "id-1", media)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "rough_cut", []byte(GenerateEDL("Rough Cut", 30, res.Events)))
}

func TestGenerateEDL_FrameRates(t *testing.T) {
	ev := []Event{{Reel: "A", SourceOut: 1, RecordOut: 1, ClipName: "x"}}

	assert.Contains(t, GenerateEDL("Drop", 29.97, ev), "FCM: DROP FRAME")
	assert.Contains(t, GenerateEDL("Zero", 0, ev), "00:00:01:00", "zero fps falls back to 30")
	assert.Contains(t, GenerateEDL("PAL", 25, ev), "00:00:00:00 00:00:01:00")
	assert.False(t, strings.Contains(GenerateEDL("NoPath", 30, ev), "MEDIA PATH"))
}

func TestSecondsToTimecode(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    string
	}{
		{0, 30, "00:00:00:00"},
		{1.5, 30, "00:00:01:15"},
		{61, 24, "00:01:01:00"},
		{3725.5, 30, "01:02:05:15"},
		{-2, 30, "00:00:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, secondsToTimecode(tt.seconds, tt.fps))
	}
}

func TestSanitizeReelName(t *testing.T) {
	assert.Equal(t, "my_clip_", SanitizeReelName("my clip!", 8))
	assert.Equal(t, "abcdefgh", SanitizeReelName("abcdefghij", 8))
	assert.Equal(t, "AX", SanitizeReelName("", 8))
}
