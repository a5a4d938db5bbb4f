package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/mangolauncher/mango/internal/domain"
	"github.com/mangolauncher/mango/internal/extract"
	"github.com/mangolauncher/mango/internal/logctx"
)

// State tracks a launch through its lifecycle. Transitions only move
// forward; Exited and Failed are terminal.
type State string

const (
	StatePreparing State = "preparing"
	StateLaunching State = "launching"
	StateRunning   State = "running"
	StateExited    State = "exited"
	StateFailed    State = "failed"
)

// Update is one lifecycle transition. ExitCode is meaningful only for
// StateExited, Err only for StateFailed.
type Update struct {
	State    State
	ExitCode int
	Err      error
}

// Orchestrator spawns game processes. Each launch gets its own natives
// directory under nativesRoot, removed once the process exits.
type Orchestrator struct {
	nativesRoot string
	sink        domain.LogSink
}

func NewOrchestrator(nativesRoot string, sink domain.LogSink) *Orchestrator {
	return &Orchestrator{nativesRoot: nativesRoot, sink: sink}
}

// Session is one running game process.
type Session struct {
	ID string

	cmd     *exec.Cmd
	updates chan Update
	done    chan struct{}

	mu       sync.Mutex
	exitCode int
	err      error
}

// States streams lifecycle updates. The channel closes after the terminal
// update; slow consumers never stall the process supervision.
func (s *Session) States() <-chan Update {
	return s.updates
}

// Wait blocks until the process reaches a terminal state or ctx is done.
func (s *Session) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode, s.err
}

func (s *Session) PID() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

func (s *Session) emit(u Update) {
	select {
	case s.updates <- u:
	default:
	}
}

func (s *Session) finish(code int, err error) {
	s.mu.Lock()
	s.exitCode = code
	s.err = err
	s.mu.Unlock()

	if err != nil {
		s.emit(Update{State: StateFailed, Err: err})
	} else {
		s.emit(Update{State: StateExited, ExitCode: code})
	}
	close(s.updates)
	close(s.done)
}

// Launch prepares the per-launch natives directory, builds the command line
// and spawns the JVM. Cancelling ctx kills the process. On error the
// returned session is already terminal with a Failed update on its stream.
func (o *Orchestrator) Launch(ctx context.Context, in Inputs) (*Session, error) {
	logger := logctx.LoggerFromContext(ctx).With("version", in.Resolved.Descriptor.ID)

	s := &Session{
		ID:      uuid.NewString(),
		updates: make(chan Update, 8),
		done:    make(chan struct{}),
	}
	s.emit(Update{State: StatePreparing})

	nativesDir := filepath.Join(o.nativesRoot, s.ID)
	fail := func(err error) (*Session, error) {
		os.RemoveAll(nativesDir)
		s.finish(0, err)
		return s, err
	}

	for _, jar := range in.Resolved.NativeJars {
		if _, err := extract.Natives(jar, nativesDir); err != nil {
			return fail(fmt.Errorf("extracting natives from %s: %w", filepath.Base(jar), err))
		}
	}
	in.NativesDir = nativesDir

	spec, err := in.BuildSpec()
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(spec.WorkDir, 0755); err != nil {
		return fail(&domain.FilesystemError{Path: spec.WorkDir, Err: err})
	}

	s.emit(Update{State: StateLaunching})

	cmd := exec.CommandContext(ctx, spec.JavaPath, spec.Args...)
	cmd.Dir = spec.WorkDir
	s.cmd = cmd

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fail(err)
	}

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("starting %s: %w", spec.JavaPath, err))
	}

	logger.Info("game process started", "pid", cmd.Process.Pid)
	s.emit(Update{State: StateRunning})

	var pumps sync.WaitGroup
	pumps.Add(2)
	go o.pump(&pumps, stdout, "stdout")
	go o.pump(&pumps, stderr, "stderr")

	go func() {
		pumps.Wait()
		waitErr := cmd.Wait()
		os.RemoveAll(nativesDir)

		if waitErr == nil {
			logger.Info("game process exited", "code", 0)
			s.finish(0, nil)
			return
		}

		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code := exitErr.ExitCode()
			logger.Warn("game process exited", "code", code)
			s.finish(code, nil)
			return
		}

		s.finish(0, waitErr)
	}()

	return s, nil
}

func (o *Orchestrator) pump(wg *sync.WaitGroup, r io.Reader, stream string) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if o.sink != nil {
			o.sink.Append(scanner.Text(), stream)
		}
	}
}
