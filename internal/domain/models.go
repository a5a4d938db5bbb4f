package domain

import (
	"time"

	"github.com/google/uuid"
)

// JavaSource says where an installation came from.
type JavaSource string

const (
	JavaSourceSystem  JavaSource = "system"
	JavaSourceManaged JavaSource = "managed"
)

// JavaInstallation is a validated Java runtime. It is never mutated after
// discovery, only re-probed before use.
type JavaInstallation struct {
	Path   string     `json:"path"`
	Major  int        `json:"major"`
	Vendor string     `json:"vendor"`
	Source JavaSource `json:"source"`
}

// Identity is what the auth collaborator hands the launcher: enough to fill
// the auth_* argument placeholders.
type Identity struct {
	Username    string
	UUID        string
	AccessToken string
	UserType    string
}

// Profile holds per-user launch settings. The launcher core reads it as an
// opaque record; only the profile store mutates it.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	MemoryMinMB int       `json:"memory_min_mb"`
	MemoryMaxMB int       `json:"memory_max_mb"`
	JavaArgs    []string  `json:"java_args,omitempty"`
	GameArgs    []string  `json:"game_args,omitempty"`
	ResolutionW int       `json:"resolution_width,omitempty"`
	ResolutionH int       `json:"resolution_height,omitempty"`
	Fullscreen  bool      `json:"fullscreen,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUsed    time.Time `json:"last_used,omitempty"`
}

// DefaultProfile is what a fresh install gets.
func DefaultProfile() *Profile {
	return &Profile{
		ID:          uuid.New(),
		Name:        "Default",
		Username:    "Player",
		MemoryMinMB: 512,
		MemoryMaxMB: 2048,
		JavaArgs:    []string{"-XX:+UseG1GC", "-XX:MaxGCPauseMillis=200"},
		CreatedAt:   time.Now(),
	}
}
