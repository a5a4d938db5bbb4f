package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return idx
}

func TestLookupMissing(t *testing.T) {
	idx := openTestIndex(t)

	e, err := idx.Lookup("/nowhere")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestRecordAndLookup(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.Record("/libs/a.jar", "abc", 5))

	e, err := idx.Lookup("/libs/a.jar")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "abc", e.SHA1)
	assert.Equal(t, int64(5), e.Size)
	assert.False(t, e.VerifiedAt.IsZero())
}

func TestTrustedRequiresDigestMatchAndFile(t *testing.T) {
	idx := openTestIndex(t)

	path := filepath.Join(t.TempDir(), "a.jar")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sha := "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	require.NoError(t, idx.Record(path, sha, 5))

	ok, err := idx.Trusted(path, sha, false)
	require.NoError(t, err)
	assert.True(t, ok)

	// Digest disagreement is a miss even though the path matches.
	ok, err = idx.Trusted(path, "0000000000000000000000000000000000000000", false)
	require.NoError(t, err)
	assert.False(t, ok)

	// A recorded entry whose file vanished is a miss.
	require.NoError(t, os.Remove(path))
	ok, err = idx.Trusted(path, sha, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrustedRehashDetectsCorruption(t *testing.T) {
	idx := openTestIndex(t)

	path := filepath.Join(t.TempDir(), "a.jar")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sha := "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"
	require.NoError(t, idx.Record(path, sha, 5))

	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0644))

	ok, err := idx.Trusted(path, sha, false)
	require.NoError(t, err)
	assert.True(t, ok, "without rehash the stale record is still trusted")

	ok, err = idx.Trusted(path, sha, true)
	require.NoError(t, err)
	assert.False(t, ok, "rehash must catch corrupted bytes")
}

func TestSizeAndClear(t *testing.T) {
	idx := openTestIndex(t)

	require.NoError(t, idx.Record("/a", "x", 10))
	require.NoError(t, idx.Record("/b", "y", 32))

	size, err := idx.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(42), size)

	require.NoError(t, idx.Clear())

	size, err = idx.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
