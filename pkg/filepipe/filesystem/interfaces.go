// Package filesystem defines the capability seam between the pipeline
// engine and the host filesystem. The engine never touches raw OS calls
// directly; everything goes through the FileSystem interface, which makes
// operations testable against the in-memory TestFileSystem.
package filesystem

import (
	"context"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// FileSystem is the narrow port the engine calls through. Expected
// conditions (missing file, occupied destination) surface as errors from
// the mutating calls; implementations must not panic for them.
type FileSystem interface {
	// List returns the entries under dir, optionally recursing. The
	// returned slice is finite and freshly built on every call.
	List(ctx context.Context, dir string, recursive bool) ([]*core.FileEntry, error)

	// Stat returns the entry at path, or an error satisfying
	// errors.Is(err, fs.ErrNotExist) when it does not exist.
	Stat(path string) (*core.FileEntry, error)

	// Exists reports whether path exists.
	Exists(path string) bool

	// Rename gives the file at path a new base name within its directory.
	Rename(path, newName string) error

	// Move relocates src to dst. Intermediate directories are not
	// created; the engine calls MkdirAll where it knows one is required.
	Move(src, dst string) error

	// Delete removes the file or directory (recursively) at path.
	Delete(path string) error

	// MkdirAll creates the directory and any missing parents. It is
	// idempotent: an already existing directory is a success.
	MkdirAll(path string) error
}
