package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryMarkUsedOrdersAndLimits(t *testing.T) {
	dir := t.TempDir()
	h := LoadHistory(dir)

	for _, id := range []string{"1.19", "1.20", "1.20.4", "1.21", "1.21.1", "1.21.4"} {
		require.NoError(t, h.MarkUsed(id))
	}

	recent := h.RecentVersions()
	require.Len(t, recent, 5)
	assert.Equal(t, "1.21.4", recent[0])
	assert.NotContains(t, recent, "1.19")

	// Relaunching an old version moves it to the front without duplicating.
	require.NoError(t, h.MarkUsed("1.20"))
	recent = h.RecentVersions()
	require.Len(t, recent, 5)
	assert.Equal(t, "1.20", recent[0])
	assert.Equal(t, "1.21.4", recent[1])
}

func TestHistoryPersists(t *testing.T) {
	dir := t.TempDir()

	h := LoadHistory(dir)
	require.NoError(t, h.MarkUsed("1.20.4"))

	reloaded := LoadHistory(dir)
	assert.Equal(t, []string{"1.20.4"}, reloaded.RecentVersions())
	assert.False(t, reloaded.LastUsed["1.20.4"].IsZero())
}
