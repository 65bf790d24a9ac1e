package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/ir"
)

func TestClockAtResumesAfterStart(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next())
	assert.Equal(t, int64(42), c.Current())

	c.reset(7)
	assert.Equal(t, int64(8), c.Next())
}

func TestClockConcurrentNext(t *testing.T) {
	c := NewClock()

	var wg sync.WaitGroup
	seen := make([]int64, 400)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				seen[g*100+i] = c.Next()
			}
		}(g)
	}
	wg.Wait()

	unique := make(map[int64]struct{}, len(seen))
	for _, s := range seen {
		unique[s] = struct{}{}
	}
	assert.Len(t, unique, 400)
	assert.Equal(t, int64(400), c.Current())
}

func TestEngineStampsFromResumedClock(t *testing.T) {
	e := setupEngine(t, WithClock(NewClockAt(41)))

	out := run(t, e, "addTrack", map[string]any{"type": "audio"})
	mustOK(t, out)
	assert.Equal(t, int64(42), out.Seq)

	args, err := EncodeArgs("addTrack", map[string]any{"type": "audio"})
	require.NoError(t, err)
	assert.Equal(t, ir.MustCommandID("test", "addTrack", args, 42), out.CommandID)

	// Queries read the clock without advancing it.
	out = run(t, e, "listTracks", nil)
	assert.Equal(t, int64(42), out.Seq)

	// Failed edits still consume a seq; unknown ops do not.
	out = run(t, e, "deleteClip", map[string]any{"clipId": "nope"})
	assert.Equal(t, "InvalidReference", out.Case)
	assert.Equal(t, int64(43), out.Seq)

	out, err = e.Execute(context.Background(), "", "frobnicate", ir.IRObject{})
	require.NoError(t, err)
	assert.Equal(t, "UnknownOp", out.Case)
	assert.Equal(t, int64(43), e.Clock().Current())
}
