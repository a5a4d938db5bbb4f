package domain

import "fmt"

// NetworkError represents transport failures and 5xx responses. It is
// transient: the download scheduler retries it before it ever surfaces.
type NetworkError struct {
	Operation  string // e.g. "fetch_manifest", "download"
	URL        string
	StatusCode int // 0 for non-HTTP failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error during %s (HTTP %d): %s", e.Operation, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IntegrityError means an artifact's bytes did not match the expected digest
// after the retry budget. Fatal for the enclosing resolution.
type IntegrityError struct {
	Path     string // artifact path relative to the library root
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("digest mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// JavaUnavailableError means no usable runtime for the required major version
// could be discovered or provisioned.
type JavaUnavailableError struct {
	Major int
	Err   error
}

func (e *JavaUnavailableError) Error() string {
	return fmt.Sprintf("no usable Java %d installation found", e.Major)
}

func (e *JavaUnavailableError) Unwrap() error {
	return e.Err
}

// ArgumentTemplateError means a launch argument still contained an unresolved
// placeholder. The launch is aborted before any process is spawned.
type ArgumentTemplateError struct {
	Argument    string
	Placeholder string
}

func (e *ArgumentTemplateError) Error() string {
	return fmt.Sprintf("unresolved placeholder %s in argument %q", e.Placeholder, e.Argument)
}

// FilesystemError wraps local I/O failures with the offending path. Never
// retried.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
