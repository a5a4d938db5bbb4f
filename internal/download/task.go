// Package download implements a bounded-concurrency transfer engine with
// priority scheduling, retries, progress events and cooperative cancellation.
package download

type State string

const (
	StateQueued    State = "queued"
	StateInFlight  State = "in_flight"
	StateVerifying State = "verifying"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCancelled
}

// Task describes one transfer. Tasks are transient: created by a requester,
// consumed by the scheduler, discarded on completion.
type Task struct {
	ID       string
	URL      string
	Dest     string
	SHA1     string // optional expected digest, hex
	Size     int64  // optional expected size
	Priority int    // higher runs first; ties break by submission order
}

// Progress is one event on a task's progress stream.
type Progress struct {
	TaskID string
	Done   int64
	Total  int64 // 0 when unknown
	State  State
}
