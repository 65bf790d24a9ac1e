package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cutroom/internal/ir"
)

func req(op string) request {
	return request{op: ir.OpName(op), reply: make(chan reply, 1)}
}

func TestRequestQueue_EnqueueDequeue(t *testing.T) {
	q := newRequestQueue()

	ok := q.Enqueue(req("addTrack"))
	require.True(t, ok, "enqueue should succeed")

	got, ok := q.TryDequeue()
	require.True(t, ok, "dequeue should succeed")
	assert.Equal(t, ir.OpName("addTrack"), got.op)
}

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue()

	for _, op := range []string{"A", "B", "C"} {
		q.Enqueue(req(op))
	}

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, ir.OpName(want), got.op)
	}
}

func TestRequestQueue_TryDequeue_Empty(t *testing.T) {
	q := newRequestQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestRequestQueue_WaitSignals(t *testing.T) {
	q := newRequestQueue()

	q.Enqueue(req("seek"))

	select {
	case <-q.Wait():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait did not fire after enqueue")
	}
}

func TestRequestQueue_Close(t *testing.T) {
	q := newRequestQueue()
	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(req("late")), "enqueue after close should return false")

	select {
	case _, open := <-q.Wait():
		assert.False(t, open)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait did not fire after close")
	}
}

func TestRequestQueue_Len(t *testing.T) {
	q := newRequestQueue()

	assert.Equal(t, 0, q.Len())
	q.Enqueue(req("1"))
	q.Enqueue(req("2"))
	assert.Equal(t, 2, q.Len())

	q.TryDequeue()
	assert.Equal(t, 1, q.Len())
	q.TryDequeue()
	assert.Equal(t, 0, q.Len())
}

func TestRequestQueue_ThreadSafe(t *testing.T) {
	q := newRequestQueue()

	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(req("op"))
			}
		}()
	}
	wg.Wait()

	n := 0
	for {
		if _, ok := q.TryDequeue(); !ok {
			break
		}
		n++
	}
	assert.Equal(t, producers*perProducer, n)
}

func TestEngine_SubmitRun(t *testing.T) {
	e := setupEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := e.Submit(ctx, "", "addTrack", ir.IRObject{"type": ir.IRString("video")})
			assert.NoError(t, err)
			assert.True(t, out.OK())
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), e.Clock().Current())
	assert.Len(t, e.Snapshot().Tracks, 5)

	e.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	_, err := e.Submit(ctx, "", "addTrack", nil)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestEngine_RunCancelled(t *testing.T) {
	e := setupEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
