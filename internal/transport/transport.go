// Package transport defines the synchronous object-store interface the
// document model uses to reach the tablet. Every method may block on remote
// I/O; the filesystem is mounted single-threaded, so a blocked call stalls
// the whole session (see internal/docmodel for the caller side).
package transport

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned by Stat, ReadAll, and ReadRange when the named
// entry does not exist.
var ErrNotFound = errors.New("transport: not found")

// Info mirrors the subset of remote file metadata the document model needs.
type Info struct {
	Name  string
	Size  int64
	Mtime time.Time
	Atime time.Time
}

// Transport is a flat, filename-addressed object store. Implementations are
// not required to support subdirectories; every name is a plain, non-nested
// key in one remote directory.
type Transport interface {
	// List returns every entry name in the remote directory, non-recursive.
	List() ([]string, error)

	// ReadAll returns the full contents of name.
	ReadAll(name string) ([]byte, error)

	// ReadRange returns length bytes of name starting at offset. Implementations
	// may serve this as a single vectored read request.
	ReadRange(name string, offset int64, length int64) ([]byte, error)

	// Stat returns size and timestamps for name.
	Stat(name string) (Info, error)

	// Write atomically replaces the contents of name with the data read from r.
	Write(name string, r io.Reader) error

	// Unlink removes name. Unlinking a name that does not exist is not an error.
	Unlink(name string) error

	// Close releases any held connection.
	Close() error
}
