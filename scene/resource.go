package scene

import (
	"fmt"
	"os"
)

// ResourceError wraps a staging or cleanup failure. Cleanup failures on
// release are surfaced but must never mask the error that preceded them;
// callers combine both sides explicitly.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("scene: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// A Resource is a staged temporary file owned by exactly one
// sender/receiver description. The owner is the only writer, one
// simulator invocation is the only reader, and the owner must Release
// it afterwards on every exit path.
type Resource struct {
	path     string
	released bool
}

// Stage content into a fresh temporary resource.
func Stage(prefix, content string) (*Resource, error) {
	f, err := os.CreateTemp("", prefix)
	if err != nil {
		return nil, &ResourceError{Op: "stage", Path: prefix, Err: err}
	}
	r := &Resource{path: f.Name()}
	if _, err = f.WriteString(content); err != nil {
		f.Close()
		r.Release()
		return nil, &ResourceError{Op: "write", Path: r.path, Err: err}
	}
	if err = f.Close(); err != nil {
		r.Release()
		return nil, &ResourceError{Op: "write", Path: r.path, Err: err}
	}
	return r, nil
}

// Path to the staged file.
func (r *Resource) Path() string {
	return r.path
}

// Rewrite replaces the staged content. Used when receiver descriptions
// are accumulated after initial staging.
func (r *Resource) Rewrite(content string) error {
	if r.released {
		return &ResourceError{Op: "rewrite", Path: r.path, Err: os.ErrClosed}
	}
	if err := os.WriteFile(r.path, []byte(content), 0644); err != nil {
		return &ResourceError{Op: "rewrite", Path: r.path, Err: err}
	}
	return nil
}

// Release deletes the staged file. Releasing twice is a no-op; a failed
// delete is an error, not a silent leak.
func (r *Resource) Release() error {
	if r == nil || r.released {
		return nil
	}
	r.released = true
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return &ResourceError{Op: "release", Path: r.path, Err: err}
	}
	return nil
}
