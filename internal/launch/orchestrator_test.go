package launch

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu    sync.Mutex
	lines []string
}

func (s *memorySink) Append(line, level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, level+": "+line)
}

func (s *memorySink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func writeStubJava(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func stubInputs(t *testing.T, javaPath string) Inputs {
	in := testInputs()
	in.Java.Path = javaPath
	in.GameDir = t.TempDir()
	return in
}

func TestLaunchRunsToCleanExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	stub := writeStubJava(t, "#!/bin/sh\necho 'game starting'\necho 'warning line' >&2\nexit 0\n")
	sink := &memorySink{}
	o := NewOrchestrator(t.TempDir(), sink)

	s, err := o.Launch(context.Background(), stubInputs(t, stub))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	code, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	var states []State
	for u := range s.States() {
		states = append(states, u.State)
	}
	assert.Contains(t, states, StateRunning)
	assert.Equal(t, StateExited, states[len(states)-1])

	lines := sink.all()
	assert.Contains(t, lines, "stdout: game starting")
	assert.Contains(t, lines, "stderr: warning line")
}

func TestLaunchReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	stub := writeStubJava(t, "#!/bin/sh\nexit 7\n")
	o := NewOrchestrator(t.TempDir(), nil)

	s, err := o.Launch(context.Background(), stubInputs(t, stub))
	require.NoError(t, err)

	code, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestLaunchCleansUpNatives(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	dir := t.TempDir()
	jar := filepath.Join(dir, "natives.jar")
	f, err := os.Create(jar)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("liblwjgl.so")
	require.NoError(t, err)
	_, err = w.Write([]byte("elf"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	nativesRoot := t.TempDir()
	stub := writeStubJava(t, "#!/bin/sh\nexit 0\n")
	o := NewOrchestrator(nativesRoot, nil)

	in := stubInputs(t, stub)
	in.Resolved.NativeJars = []string{jar}

	s, err := o.Launch(context.Background(), in)
	require.NoError(t, err)

	_, err = s.Wait(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(nativesRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLaunchFailsOnMissingExecutable(t *testing.T) {
	o := NewOrchestrator(t.TempDir(), nil)

	in := stubInputs(t, filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := o.Launch(context.Background(), in)
	assert.Error(t, err)
}

func TestLaunchFailureReachesEventStream(t *testing.T) {
	o := NewOrchestrator(t.TempDir(), nil)

	in := stubInputs(t, filepath.Join(t.TempDir(), "does-not-exist"))
	s, err := o.Launch(context.Background(), in)
	require.Error(t, err)
	require.NotNil(t, s)

	var states []State
	var failure error
	for u := range s.States() {
		states = append(states, u.State)
		if u.State == StateFailed {
			failure = u.Err
		}
	}
	require.NotEmpty(t, states)
	assert.Equal(t, StatePreparing, states[0])
	assert.Equal(t, StateFailed, states[len(states)-1])
	assert.Error(t, failure)

	// The session is already terminal.
	_, werr := s.Wait(context.Background())
	assert.Error(t, werr)
}
