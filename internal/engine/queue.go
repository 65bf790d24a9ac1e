package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/cutroom/internal/ir"
)

// ErrStopped is returned by Submit once the engine has been stopped.
var ErrStopped = errors.New("engine: stopped")

type request struct {
	ctx     context.Context
	session string
	op      ir.OpName
	args    ir.IRObject
	reply   chan reply // buffered, size 1
}

type reply struct {
	out ir.Outcome
	err error
}

// requestQueue is a thread-safe unbounded FIFO of pending requests.
//
// The signal channel lets Run wait on the queue and a context together.
type requestQueue struct {
	mu       sync.Mutex
	requests []request
	closed   bool
	signal   chan struct{} // buffered, size 1
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]request, 0, 64),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds r to the back of the queue. Returns false once closed.
func (q *requestQueue) Enqueue(r request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.requests = append(q.requests, r)

	// Buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front request without blocking.
func (q *requestQueue) TryDequeue() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return request{}, false
	}

	r := q.requests[0]
	// Clear the slot so the backing array does not pin the request.
	q.requests[0] = request{}
	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}

	return r, true
}

// Wait returns a channel that fires when requests may be available. It is
// closed by Close.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending requests.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close stops accepting requests and wakes any waiter.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}

// Submit queues an op for the Run loop and waits for its outcome. If ctx
// ends first the op may still run later; its outcome is then dropped.
func (e *Engine) Submit(ctx context.Context, session string, op ir.OpName, a ir.IRObject) (ir.Outcome, error) {
	r := request{ctx: ctx, session: session, op: op, args: a, reply: make(chan reply, 1)}
	if !e.queue.Enqueue(r) {
		return ir.Outcome{}, ErrStopped
	}
	select {
	case rep := <-r.reply:
		return rep.out, rep.err
	case <-ctx.Done():
		return ir.Outcome{}, ctx.Err()
	}
}

// Run drains submitted requests until ctx is cancelled or Stop is called.
// Must be called from exactly one goroutine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting", "session", e.session)

	for {
		if r, ok := e.queue.TryDequeue(); ok {
			out, err := e.Execute(r.ctx, r.session, r.op, r.args)
			r.reply <- reply{out: out, err: err}
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed by Close, so this fires
			// immediately once stopped.
			if e.queue.Len() == 0 && e.stopped() {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

func (e *Engine) stopped() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// Stop closes the queue. Run returns once the queue is drained.
func (e *Engine) Stop() {
	e.queue.Close()
}
