package filesystem

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// TestFileSystem is an in-memory FileSystem for tests. It records every
// mutating call so tests can assert that preview runs never touch the
// port, and lets individual paths be rigged to fail so best-effort batch
// semantics can be exercised.
type TestFileSystem struct {
	files map[string]*testFile

	// FailPaths maps a path to the error any mutating call on it returns.
	FailPaths map[string]error

	// MutationCalls counts Rename, Move, Delete and MkdirAll invocations.
	MutationCalls int
}

type testFile struct {
	size    int64
	modTime time.Time
	dir     bool
}

// NewTestFileSystem creates an empty in-memory filesystem.
func NewTestFileSystem() *TestFileSystem {
	return &TestFileSystem{
		files:     make(map[string]*testFile),
		FailPaths: make(map[string]error),
	}
}

// AddFile registers a file with the given size and modification time.
func (tfs *TestFileSystem) AddFile(name string, size int64, modTime time.Time) {
	tfs.files[name] = &testFile{size: size, modTime: modTime}
}

// AddDir registers a directory.
func (tfs *TestFileSystem) AddDir(name string) {
	tfs.files[name] = &testFile{dir: true}
}

// Paths returns all registered paths in sorted order.
func (tfs *TestFileSystem) Paths() []string {
	paths := make([]string, 0, len(tfs.files))
	for p := range tfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (tfs *TestFileSystem) failure(name string) error {
	if err, ok := tfs.FailPaths[name]; ok {
		return err
	}
	return nil
}

// List implements FileSystem.
func (tfs *TestFileSystem) List(ctx context.Context, dir string, recursive bool) ([]*core.FileEntry, error) {
	var entries []*core.FileEntry
	for _, p := range tfs.Paths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent := path.Dir(p)
		inDir := parent == dir || (dir == "." && parent == ".")
		under := dir == "." || strings.HasPrefix(p, dir+"/")
		if (recursive && under && p != dir) || (!recursive && inDir) {
			entries = append(entries, tfs.entryFor(p))
		}
	}
	return entries, nil
}

// Stat implements FileSystem.
func (tfs *TestFileSystem) Stat(name string) (*core.FileEntry, error) {
	if _, ok := tfs.files[name]; !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return tfs.entryFor(name), nil
}

// Exists implements FileSystem.
func (tfs *TestFileSystem) Exists(name string) bool {
	_, ok := tfs.files[name]
	return ok
}

// Rename implements FileSystem.
func (tfs *TestFileSystem) Rename(name, newName string) error {
	tfs.MutationCalls++
	if err := tfs.failure(name); err != nil {
		return err
	}
	f, ok := tfs.files[name]
	if !ok {
		return &fs.PathError{Op: "rename", Path: name, Err: fs.ErrNotExist}
	}
	newPath := path.Join(path.Dir(name), newName)
	if _, exists := tfs.files[newPath]; exists && newPath != name {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrExist}
	}
	delete(tfs.files, name)
	tfs.files[newPath] = f
	return nil
}

// Move implements FileSystem.
func (tfs *TestFileSystem) Move(src, dst string) error {
	tfs.MutationCalls++
	if err := tfs.failure(src); err != nil {
		return err
	}
	f, ok := tfs.files[src]
	if !ok {
		return &fs.PathError{Op: "move", Path: src, Err: fs.ErrNotExist}
	}
	if _, exists := tfs.files[dst]; exists {
		return &fs.PathError{Op: "move", Path: dst, Err: fs.ErrExist}
	}
	delete(tfs.files, src)
	tfs.files[dst] = f
	return nil
}

// Delete implements FileSystem. Directories take their subtree with them.
func (tfs *TestFileSystem) Delete(name string) error {
	tfs.MutationCalls++
	if err := tfs.failure(name); err != nil {
		return err
	}
	f, ok := tfs.files[name]
	if !ok {
		return &fs.PathError{Op: "delete", Path: name, Err: fs.ErrNotExist}
	}
	delete(tfs.files, name)
	if f.dir {
		for p := range tfs.files {
			if strings.HasPrefix(p, name+"/") {
				delete(tfs.files, p)
			}
		}
	}
	return nil
}

// MkdirAll implements FileSystem.
func (tfs *TestFileSystem) MkdirAll(name string) error {
	tfs.MutationCalls++
	if err := tfs.failure(name); err != nil {
		return err
	}
	if name == "." || name == "/" || name == "" {
		return nil
	}
	for p := name; p != "." && p != "/"; p = path.Dir(p) {
		if f, ok := tfs.files[p]; ok && !f.dir {
			return &fs.PathError{Op: "mkdirall", Path: p, Err: fs.ErrExist}
		}
		tfs.files[p] = &testFile{dir: true}
	}
	return nil
}

func (tfs *TestFileSystem) entryFor(name string) *core.FileEntry {
	f := tfs.files[name]
	e := core.NewFileEntry(name)
	e.IsDir = f.dir
	e.Size = f.size
	e.ModTime = f.modTime
	e.CreatedAt = f.modTime
	return e
}
