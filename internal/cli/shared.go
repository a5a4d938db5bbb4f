package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/mangolauncher/mango/internal/download"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func withSpinner(ctx context.Context, desc string) (stop func()) {
	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				spinner.Finish()
				return
			default:
				spinner.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()
	return func() {
		close(done)
		spinner.Finish()
	}
}

// downloadReporter prints one line per finished artifact. Plugged into the
// resolver as its download observer.
type downloadReporter struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	count atomic.Int64
	bytes atomic.Int64
}

func (r *downloadReporter) observe(h *download.Handle) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		var last download.Progress
		for ev := range h.Progress() {
			last = ev
		}

		name := filepath.Base(h.Task().Dest)
		switch h.State() {
		case download.StateDone:
			r.count.Add(1)
			r.bytes.Add(last.Done)
			r.mu.Lock()
			fmt.Printf("  %s %s %s\n", green("↓"), name, dim(humanize.Bytes(uint64(last.Done))))
			r.mu.Unlock()
		case download.StateFailed:
			r.mu.Lock()
			fmt.Printf("  %s %s: %v\n", red("✗"), name, h.Err())
			r.mu.Unlock()
		}
	}()
}

// summary waits for all observed downloads to settle and returns a
// human-readable tally, empty when everything was already cached.
func (r *downloadReporter) summary() string {
	r.wg.Wait()

	n := r.count.Load()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d file(s), %s", n, humanize.Bytes(uint64(r.bytes.Load())))
}
