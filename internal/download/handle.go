package download

import (
	"context"
	"sync"
)

// Handle tracks one submitted task. The progress channel is closed once the
// task reaches a terminal state.
type Handle struct {
	task  Task
	seq   uint64
	index int

	ctx    context.Context
	cancel context.CancelFunc

	events chan Progress
	done   chan struct{}

	mu    sync.Mutex
	state State
	bytes int64
	total int64
	err   error
}

func (h *Handle) Task() Task { return h.task }

// Progress returns the event stream. Byte updates may be dropped if the
// consumer lags; state transitions are always recorded on the handle itself.
func (h *Handle) Progress() <-chan Progress { return h.events }

// Done is closed when the task reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel requests cooperative cancellation. Completed tasks are unaffected.
func (h *Handle) Cancel() { h.cancel() }

// Wait blocks until the task is terminal or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return h.Err()
	}
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) setBytes(done, total int64) {
	h.mu.Lock()
	h.bytes = done
	if total > 0 {
		h.total = total
	}
	ev := Progress{TaskID: h.task.ID, Done: h.bytes, Total: h.total, State: h.state}
	h.mu.Unlock()

	select {
	case h.events <- ev:
	default:
	}
}

func (h *Handle) transition(state State, err error) {
	h.mu.Lock()
	if h.state.Terminal() {
		h.mu.Unlock()
		return
	}
	h.state = state
	h.err = err
	ev := Progress{TaskID: h.task.ID, Done: h.bytes, Total: h.total, State: state}
	h.mu.Unlock()

	select {
	case h.events <- ev:
	default:
	}

	if state.Terminal() {
		close(h.events)
		close(h.done)
	}
}
