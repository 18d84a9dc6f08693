package storage

import (
	"context"
	"errors"
	"fmt"
)

// Client abstracts a remote file storage account.
// Download returns the whole file as a string; Upload replaces it wholesale.
// Neither call is conditional: a Download followed by an Upload is not atomic
// from the storage service's point of view, concurrent writers can overwrite
// each other (last upload wins).
type Client interface {
	Download(ctx context.Context, path string) (string, error)
	Upload(ctx context.Context, path, contents string) error
}

// ErrNotFound is returned (wrapped) when the remote file does not exist.
var ErrNotFound = errors.New("file not found")

// Error describes a failed remote call.
type Error struct {
	Backend string
	Op      string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Backend, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(backend, op, path string, err error) error {
	return &Error{Backend: backend, Op: op, Path: path, Err: err}
}

func notFound(backend, op, path string, cause error) error {
	if cause == nil {
		return newError(backend, op, path, ErrNotFound)
	}
	return newError(backend, op, path, fmt.Errorf("%w: %v", ErrNotFound, cause))
}
