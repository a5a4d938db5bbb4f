package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	historyFile         = "history.json"
	recentVersionsLimit = 5
)

// History remembers the most recently launched versions.
type History struct {
	mu   sync.Mutex
	path string

	Recent   []string             `json:"recent_versions"`
	LastUsed map[string]time.Time `json:"last_used"`
}

func LoadHistory(versionsDir string) *History {
	h := &History{
		path:     filepath.Join(versionsDir, historyFile),
		LastUsed: make(map[string]time.Time),
	}

	if data, err := os.ReadFile(h.path); err == nil {
		json.Unmarshal(data, h)
	}
	if h.LastUsed == nil {
		h.LastUsed = make(map[string]time.Time)
	}

	return h
}

// MarkUsed moves id to the front of the recent list and persists.
func (h *History) MarkUsed(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.LastUsed[id] = time.Now()

	recent := []string{id}
	for _, v := range h.Recent {
		if v != id && len(recent) < recentVersionsLimit {
			recent = append(recent, v)
		}
	}
	h.Recent = recent

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(h.path, data, 0644)
}

// RecentVersions returns the remembered ids, most recent first.
func (h *History) RecentVersions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.Recent))
	copy(out, h.Recent)

	return out
}
