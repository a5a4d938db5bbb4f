// Package java discovers, validates and provisions Java runtimes.
package java

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/mangolauncher/mango/internal/domain"
	"github.com/mangolauncher/mango/internal/download"
	"github.com/mangolauncher/mango/internal/extract"
	"github.com/mangolauncher/mango/internal/logctx"
)

const adoptiumURL = "https://api.adoptium.net/v3/binary/latest/%d/ga/%s/%s/jre/hotspot/normal/eclipse"

type Manager struct {
	javaDir   string // launcher-managed runtimes live under javaDir/<major>/
	provision bool
	sched     *download.Scheduler

	// Roots are the system locations scanned during discovery. Overridable
	// in tests; the configured java_path is prepended when set.
	Roots []string

	// RuntimeURL builds the provisioning download URL for a major version.
	RuntimeURL func(major int) string

	flight singleflight.Group
}

func NewManager(javaDir, overridePath string, provision bool, sched *download.Scheduler) *Manager {
	roots := defaultRoots()
	if overridePath != "" {
		roots = append([]string{overridePath}, roots...)
	}

	return &Manager{
		javaDir:   javaDir,
		provision: provision,
		sched:     sched,
		Roots:     roots,
		RuntimeURL: func(major int) string {
			return fmt.Sprintf(adoptiumURL, major, adoptiumOS(), adoptiumArch())
		},
	}
}

// Discover probes every candidate executable under the search roots plus the
// launcher-managed directory. Invalid candidates are skipped, never fatal.
func (m *Manager) Discover(ctx context.Context) []domain.JavaInstallation {
	logger := logctx.LoggerFromContext(ctx)

	var found []domain.JavaInstallation
	seen := make(map[string]bool)

	probe := func(path string, source domain.JavaSource) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true

		major, vendor, err := probeExecutable(ctx, path)
		if err != nil {
			logger.Debug("skipping java candidate", "path", path, "err", err)
			return
		}
		found = append(found, domain.JavaInstallation{
			Path: path, Major: major, Vendor: vendor, Source: source,
		})
	}

	for _, root := range m.Roots {
		for _, candidate := range candidatesUnder(root) {
			probe(candidate, domain.JavaSourceSystem)
		}
	}

	entries, _ := os.ReadDir(m.javaDir)
	for _, e := range entries {
		if e.IsDir() {
			probe(findJavaExecutable(filepath.Join(m.javaDir, e.Name())), domain.JavaSourceManaged)
		}
	}

	return found
}

// Ensure returns an installation matching the required major version,
// provisioning one when discovery comes up empty and provisioning is
// permitted. Concurrent calls for the same major are coalesced.
func (m *Manager) Ensure(ctx context.Context, major int) (*domain.JavaInstallation, error) {
	v, err, _ := m.flight.Do(strconv.Itoa(major), func() (any, error) {
		for _, inst := range m.Discover(ctx) {
			if inst.Major == major {
				return &inst, nil
			}
		}

		if !m.provision {
			return nil, &domain.JavaUnavailableError{Major: major}
		}

		inst, err := m.provisionRuntime(ctx, major)
		if err != nil {
			return nil, &domain.JavaUnavailableError{Major: major, Err: err}
		}
		return inst, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.JavaInstallation), nil
}

func (m *Manager) provisionRuntime(ctx context.Context, major int) (*domain.JavaInstallation, error) {
	logger := logctx.LoggerFromContext(ctx).With("java_major", major)
	logger.Info("provisioning java runtime")

	ext := ".tar.gz"
	if runtime.GOOS == "windows" {
		ext = ".zip"
	}
	archive := filepath.Join(m.javaDir, fmt.Sprintf("jre-%d%s", major, ext))

	// Runtime packages take priority over library artifacts: nothing can
	// launch without them. The endpoint serves no inline digest, so the
	// extracted runtime is validated by probing instead.
	h := m.sched.Submit(ctx, download.Task{URL: m.RuntimeURL(major), Dest: archive, Priority: 5})
	if err := h.Wait(ctx); err != nil {
		return nil, fmt.Errorf("downloading runtime: %w", err)
	}
	defer os.Remove(archive)

	installDir := filepath.Join(m.javaDir, strconv.Itoa(major))
	if err := extract.Archive(archive, installDir); err != nil {
		return nil, fmt.Errorf("extracting runtime: %w", err)
	}

	exe := findJavaExecutable(installDir)
	if exe == "" {
		return nil, fmt.Errorf("no java executable in extracted runtime at %s", installDir)
	}

	probed, vendor, err := probeExecutable(ctx, exe)
	if err != nil {
		return nil, err
	}
	if probed != major {
		return nil, fmt.Errorf("provisioned runtime reports major %d, wanted %d", probed, major)
	}

	logger.Info("java runtime ready", "path", exe, "vendor", vendor)

	return &domain.JavaInstallation{
		Path: exe, Major: major, Vendor: vendor, Source: domain.JavaSourceManaged,
	}, nil
}

// candidatesUnder expands one search root into java executable paths. The
// root may itself be an executable, an install prefix, or a directory of
// install prefixes.
func candidatesUnder(root string) []string {
	info, err := os.Stat(root)
	if err != nil {
		return nil
	}

	if !info.IsDir() {
		return []string{root}
	}

	var out []string
	if exe := javaExeIn(root); exe != "" {
		out = append(out, exe)
	}

	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		prefix := filepath.Join(root, e.Name())
		if exe := javaExeIn(prefix); exe != "" {
			out = append(out, exe)
		}
		// macOS bundles nest the real prefix.
		if exe := javaExeIn(filepath.Join(prefix, "Contents", "Home")); exe != "" {
			out = append(out, exe)
		}
	}

	return out
}

func javaExeIn(prefix string) string {
	exe := filepath.Join(prefix, "bin", javaExeName())
	if info, err := os.Stat(exe); err == nil && !info.IsDir() {
		return exe
	}
	return ""
}

// findJavaExecutable walks an extracted runtime looking for bin/java,
// wherever the archive's top-level directory put it.
func findJavaExecutable(root string) string {
	var found string

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return fs.SkipAll
		}
		if !d.IsDir() && d.Name() == javaExeName() && filepath.Base(filepath.Dir(path)) == "bin" {
			found = path
			return fs.SkipAll
		}
		return nil
	})

	return found
}

func javaExeName() string {
	if runtime.GOOS == "windows" {
		return "java.exe"
	}
	return "java"
}

func defaultRoots() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\Java`,
			`C:\Program Files\Eclipse Adoptium`,
			`C:\Program Files (x86)\Java`,
		}
	case "darwin":
		return []string{
			"/Library/Java/JavaVirtualMachines",
			"/opt/homebrew/opt",
			"/usr/local/opt",
		}
	default:
		return []string{
			"/usr/lib/jvm",
			"/usr/java",
			"/opt/java",
			"/opt/jdk",
		}
	}
}

func adoptiumOS() string {
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "mac"
	default:
		return "linux"
	}
}

func adoptiumArch() string {
	switch runtime.GOARCH {
	case "arm64":
		return "aarch64"
	case "amd64":
		return "x64"
	default:
		return runtime.GOARCH
	}
}
