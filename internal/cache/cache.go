// Package cache maintains the on-disk artifact index. An entry is trusted
// only when its recorded digest matches the digest the descriptor expects;
// a path match alone is never enough.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mangolauncher/mango/internal/hash"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    path        TEXT PRIMARY KEY,
    sha1        TEXT NOT NULL,
    size        INTEGER NOT NULL,
    verified_at TEXT NOT NULL
);
`

type Entry struct {
	Path       string
	SHA1       string
	Size       int64
	VerifiedAt time.Time
}

type Index struct {
	mu sync.RWMutex
	db *sql.DB
}

func Open(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Index{db: db}, nil
}

func (i *Index) Close() error {
	return i.db.Close()
}

// Lookup returns the recorded entry for path, or nil when none exists.
func (i *Index) Lookup(path string) (*Entry, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var e Entry
	var verifiedAt string

	err := i.db.QueryRow(
		"SELECT path, sha1, size, verified_at FROM artifacts WHERE path = ?", path).
		Scan(&e.Path, &e.SHA1, &e.Size, &verifiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.VerifiedAt, _ = time.Parse(time.RFC3339, verifiedAt)

	return &e, nil
}

// Trusted reports whether path can be used for an artifact expecting wantSHA1:
// the index entry must match, and the file must still exist. When rehash is
// set the file content is re-digested instead of trusting the recorded value.
func (i *Index) Trusted(path, wantSHA1 string, rehash bool) (bool, error) {
	e, err := i.Lookup(path)
	if err != nil {
		return false, err
	}
	if e == nil || !hash.Equal(e.SHA1, wantSHA1) {
		return false, nil
	}

	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	if rehash {
		actual, err := hash.SHA1File(path)
		if err != nil || !hash.Equal(actual, wantSHA1) {
			return false, nil
		}
	}

	return true, nil
}

// Record replaces the entry for path after a successful verification.
func (i *Index) Record(path, sha1 string, size int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	_, err := i.db.Exec(
		"INSERT OR REPLACE INTO artifacts (path, sha1, size, verified_at) VALUES (?, ?, ?, ?)",
		path, sha1, size, time.Now().Format(time.RFC3339))

	return err
}

func (i *Index) Invalidate(path string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	_, err := i.db.Exec("DELETE FROM artifacts WHERE path = ?", path)

	return err
}

// Size returns the total recorded byte size of all indexed artifacts.
func (i *Index) Size() (int64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var size sql.NullInt64
	if err := i.db.QueryRow("SELECT SUM(size) FROM artifacts").Scan(&size); err != nil {
		return 0, err
	}

	return size.Int64, nil
}

func (i *Index) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	_, err := i.db.Exec("DELETE FROM artifacts")

	return err
}
