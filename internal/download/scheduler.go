package download

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mangolauncher/mango/internal/domain"
	"github.com/mangolauncher/mango/internal/hash"
	"github.com/mangolauncher/mango/internal/logctx"
)

const (
	defaultWorkers = 4
	maxAttempts    = 3
	copyBufSize    = 32 * 1024
)

// ErrClosed is returned for tasks submitted after Close.
var ErrClosed = errors.New("download: scheduler closed")

// Scheduler runs transfers on a fixed worker pool fed from a priority queue.
type Scheduler struct {
	client         *http.Client
	attemptTimeout time.Duration

	mu     sync.Mutex
	cond   *sync.Cond
	queue  taskHeap
	seq    uint64
	closed bool
	wg     sync.WaitGroup
}

// New starts a scheduler with the given pool size. Pass 0 for the default.
// attemptTimeout bounds each network attempt, not the whole retry budget.
func New(workers int, attemptTimeout time.Duration) *Scheduler {
	if workers <= 0 {
		workers = defaultWorkers
	}

	s := &Scheduler{
		// The per-attempt deadline comes from the request context, not a
		// client-wide timeout.
		client:         &http.Client{},
		attemptTimeout: attemptTimeout,
	}
	s.cond = sync.NewCond(&s.mu)

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}

	return s
}

// Submit enqueues a task and returns its handle. The task's context governs
// cancellation; cancelling it never affects sibling tasks.
func (s *Scheduler) Submit(ctx context.Context, task Task) *Handle {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	tctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		task:   task,
		ctx:    tctx,
		cancel: cancel,
		events: make(chan Progress, 32),
		done:   make(chan struct{}),
		state:  StateQueued,
		total:  task.Size,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		h.transition(StateFailed, ErrClosed)
		return h
	}
	s.seq++
	h.seq = s.seq
	heap.Push(&s.queue, h)
	s.cond.Signal()
	s.mu.Unlock()

	return h
}

// Close stops accepting tasks and waits for the workers to drain the queue.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) next() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return nil
	}
	return heap.Pop(&s.queue).(*Handle)
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		h := s.next()
		if h == nil {
			return
		}
		s.run(h)
	}
}

func (s *Scheduler) run(h *Handle) {
	logger := logctx.LoggerFromContext(h.ctx).With("task_id", h.task.ID, "url", h.task.URL)

	if h.ctx.Err() != nil {
		h.transition(StateCancelled, context.Canceled)
		return
	}

	h.transition(StateInFlight, nil)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond

	_, err := backoff.Retry(h.ctx, func() (struct{}, error) {
		return struct{}{}, s.attempt(h)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(maxAttempts))

	switch {
	case err == nil:
		logger.Debug("download complete", "dest", h.task.Dest)
		h.transition(StateDone, nil)
	case h.ctx.Err() != nil:
		logger.Debug("download cancelled")
		h.transition(StateCancelled, context.Canceled)
	default:
		logger.Warn("download failed", "err", err)
		h.transition(StateFailed, err)
	}
}

// attempt performs one full transfer into a temporary file, verifies the
// digest if one was supplied, and atomically renames onto the destination.
// The destination path is never observable in a partially-written state.
func (s *Scheduler) attempt(h *Handle) error {
	task := h.task
	tmp := task.Dest + ".part"

	// Partial files from prior attempts or prior runs are invalid.
	os.Remove(tmp)

	if err := os.MkdirAll(filepath.Dir(task.Dest), 0755); err != nil {
		return backoff.Permanent(&domain.FilesystemError{Path: filepath.Dir(task.Dest), Err: err})
	}

	actx, cancel := context.WithTimeout(h.ctx, s.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, task.URL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if h.ctx.Err() != nil {
			return backoff.Permanent(h.ctx.Err())
		}
		return &domain.NetworkError{Operation: "download", URL: task.URL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(&domain.NetworkError{Operation: "download", URL: task.URL, StatusCode: resp.StatusCode})
	default:
		return &domain.NetworkError{Operation: "download", URL: task.URL, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	if total <= 0 {
		total = task.Size
	}

	if err := s.streamToTemp(h, resp.Body, tmp, total); err != nil {
		return err
	}

	if task.SHA1 != "" {
		h.transition(StateVerifying, nil)

		actual, err := hash.SHA1File(tmp)
		if err != nil {
			os.Remove(tmp)
			return backoff.Permanent(&domain.FilesystemError{Path: tmp, Err: err})
		}
		if !hash.Equal(actual, task.SHA1) {
			os.Remove(tmp)
			// Retryable within the attempt budget; terminal once exhausted.
			return &domain.IntegrityError{Path: task.Dest, Expected: task.SHA1, Actual: actual}
		}
	}

	if err := os.Rename(tmp, task.Dest); err != nil {
		os.Remove(tmp)
		return backoff.Permanent(&domain.FilesystemError{Path: task.Dest, Err: err})
	}

	logctx.LoggerFromContext(h.ctx).Debug("wrote artifact",
		"dest", task.Dest, "size", humanize.Bytes(uint64(max(total, 0))))

	return nil
}

func (s *Scheduler) streamToTemp(h *Handle, body io.Reader, tmp string, total int64) error {
	f, err := os.Create(tmp)
	if err != nil {
		return backoff.Permanent(&domain.FilesystemError{Path: tmp, Err: err})
	}

	var written int64
	buf := make([]byte, copyBufSize)

	for {
		// Cooperative cancellation at buffer boundaries.
		if h.ctx.Err() != nil {
			f.Close()
			os.Remove(tmp)
			return backoff.Permanent(h.ctx.Err())
		}

		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				os.Remove(tmp)
				return backoff.Permanent(&domain.FilesystemError{Path: tmp, Err: werr})
			}
			written += int64(n)
			h.setBytes(written, total)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			os.Remove(tmp)
			if h.ctx.Err() != nil {
				return backoff.Permanent(h.ctx.Err())
			}
			return &domain.NetworkError{Operation: "download", URL: h.task.URL, Err: rerr}
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return backoff.Permanent(&domain.FilesystemError{Path: tmp, Err: err})
	}

	return nil
}
