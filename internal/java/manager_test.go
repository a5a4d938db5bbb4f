package java

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangolauncher/mango/internal/domain"
	"github.com/mangolauncher/mango/internal/download"
)

const fakeJavaScript = `#!/bin/sh
echo 'openjdk version "17.0.9" 2023-10-17' >&2
echo 'OpenJDK Runtime Environment Temurin-17.0.9+9' >&2
`

// writeFakeJava puts an executable stub at <prefix>/bin/java that prints a
// Temurin 17 version banner.
func writeFakeJava(t *testing.T, prefix string) string {
	t.Helper()

	binDir := filepath.Join(prefix, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))

	exe := filepath.Join(binDir, "java")
	require.NoError(t, os.WriteFile(exe, []byte(fakeJavaScript), 0755))
	return exe
}

func runtimeTarGz(t *testing.T) []byte {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "jre-*.tar.gz")
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "jre-17/bin/java", Mode: 0755, Size: int64(len(fakeJavaScript)), Typeflag: tar.TypeReg,
	}))
	_, err = tw.Write([]byte(fakeJavaScript))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return data
}

func TestDiscoverFindsSystemInstallation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	root := t.TempDir()
	writeFakeJava(t, filepath.Join(root, "temurin-17"))

	m := NewManager(t.TempDir(), "", false, nil)
	m.Roots = []string{root}

	found := m.Discover(context.Background())
	require.Len(t, found, 1)
	assert.Equal(t, 17, found[0].Major)
	assert.Equal(t, "Eclipse Adoptium", found[0].Vendor)
	assert.Equal(t, domain.JavaSourceSystem, found[0].Source)
}

func TestDiscoverSkipsBrokenCandidates(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	root := t.TempDir()
	broken := filepath.Join(root, "broken", "bin")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "java"), []byte("not executable"), 0644))
	writeFakeJava(t, filepath.Join(root, "good"))

	m := NewManager(t.TempDir(), "", false, nil)
	m.Roots = []string{root}

	found := m.Discover(context.Background())
	require.Len(t, found, 1)
	assert.Equal(t, 17, found[0].Major)
}

func TestEnsureUsesExistingInstallation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	root := t.TempDir()
	exe := writeFakeJava(t, filepath.Join(root, "jdk17"))

	m := NewManager(t.TempDir(), "", false, nil)
	m.Roots = []string{root}

	inst, err := m.Ensure(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, exe, inst.Path)
}

func TestEnsureFailsWhenProvisioningDisabled(t *testing.T) {
	m := NewManager(t.TempDir(), "", false, nil)
	m.Roots = nil

	_, err := m.Ensure(context.Background(), 17)
	require.Error(t, err)

	var unavailable *domain.JavaUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 17, unavailable.Major)
}

func TestEnsureProvisionsRuntime(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script stub")
	}

	archive := runtimeTarGz(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	sched := download.New(2, 10*time.Second)
	defer sched.Close()

	javaDir := t.TempDir()
	m := NewManager(javaDir, "", true, sched)
	m.Roots = nil
	m.RuntimeURL = func(major int) string { return srv.URL }

	inst, err := m.Ensure(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, 17, inst.Major)
	assert.Equal(t, domain.JavaSourceManaged, inst.Source)
	assert.Contains(t, inst.Path, javaDir)

	// The archive is cleaned up, the runtime stays.
	_, err = os.Stat(filepath.Join(javaDir, "jre-17.tar.gz"))
	assert.True(t, os.IsNotExist(err))

	// A later discovery sees the managed runtime.
	found := m.Discover(context.Background())
	require.Len(t, found, 1)
	assert.Equal(t, domain.JavaSourceManaged, found[0].Source)
}
