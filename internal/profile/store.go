// Package profile persists per-user launch settings as a JSON document.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mangolauncher/mango/internal/domain"
)

// Store keeps all profiles in one JSON file, rewritten atomically on every
// mutation. Reads and writes are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	path     string
	profiles []*domain.Profile
}

type document struct {
	Profiles []*domain.Profile `json:"profiles"`
}

// Open loads the profile file, seeding it with the default profile when it
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.profiles = []*domain.Profile{domain.DefaultProfile()}
		if err := s.persist(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, &domain.FilesystemError{Path: path, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	s.profiles = doc.Profiles

	return s, nil
}

// Get returns the profile with the given name, matched case-insensitively.
func (s *Store) Get(name string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.find(name)
	if p == nil {
		return nil, fmt.Errorf("profile %q not found", name)
	}

	cp := *p
	return &cp, nil
}

// List returns all profiles sorted by name.
func (s *Store) List() ([]*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// Create adds a new profile with the given name and default settings.
func (s *Store) Create(name, username string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(name) != nil {
		return nil, fmt.Errorf("profile %q already exists", name)
	}

	p := domain.DefaultProfile()
	p.Name = name
	if username != "" {
		p.Username = username
	}
	s.profiles = append(s.profiles, p)

	if err := s.persist(); err != nil {
		return nil, err
	}

	cp := *p
	return &cp, nil
}

// Delete removes the named profile. The last remaining profile cannot be
// deleted; the launcher always needs one to fall back on.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.profiles) == 1 {
		return fmt.Errorf("cannot delete the last profile")
	}

	for i, p := range s.profiles {
		if strings.EqualFold(p.Name, name) {
			s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
			return s.persist()
		}
	}

	return fmt.Errorf("profile %q not found", name)
}

// Touch records that the named profile was just used for a launch.
func (s *Store) Touch(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(name)
	if p == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	p.LastUsed = time.Now()

	return s.persist()
}

func (s *Store) find(name string) *domain.Profile {
	for _, p := range s.profiles {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func (s *Store) persist() error {
	data, err := json.MarshalIndent(document{Profiles: s.profiles}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &domain.FilesystemError{Path: filepath.Dir(s.path), Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &domain.FilesystemError{Path: tmp, Err: err}
	}

	return os.Rename(tmp, s.path)
}
