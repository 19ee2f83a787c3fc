package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// OSFileSystem implements FileSystem against the real OS filesystem,
// rooted at a base directory. All paths crossing the interface are
// slash-separated and relative to the root.
type OSFileSystem struct {
	root string
}

// NewOSFileSystem creates an OS-backed filesystem rooted at the given path.
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

// Root returns the root directory this filesystem is anchored at.
func (osfs *OSFileSystem) Root() string {
	return osfs.root
}

func (osfs *OSFileSystem) fullPath(name string) string {
	return filepath.Join(osfs.root, filepath.FromSlash(name))
}

// List implements FileSystem.
func (osfs *OSFileSystem) List(ctx context.Context, dir string, recursive bool) ([]*core.FileEntry, error) {
	if dir != "." && !fs.ValidPath(dir) {
		return nil, &fs.PathError{Op: "list", Path: dir, Err: fs.ErrInvalid}
	}
	var entries []*core.FileEntry
	if !recursive {
		dirEntries, err := os.ReadDir(osfs.fullPath(dir))
		if err != nil {
			return nil, err
		}
		for _, de := range dirEntries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			info, err := de.Info()
			if err != nil {
				continue
			}
			entries = append(entries, entryFromInfo(path.Join(dir, de.Name()), info))
		}
		return entries, nil
	}
	err := filepath.WalkDir(osfs.fullPath(dir), func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		rel, err := filepath.Rel(osfs.root, p)
		if err != nil || rel == "." {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		entries = append(entries, entryFromInfo(filepath.ToSlash(rel), info))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Stat implements FileSystem.
func (osfs *OSFileSystem) Stat(name string) (*core.FileEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	info, err := os.Stat(osfs.fullPath(name))
	if err != nil {
		return nil, err
	}
	return entryFromInfo(name, info), nil
}

// Exists implements FileSystem.
func (osfs *OSFileSystem) Exists(name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	_, err := os.Stat(osfs.fullPath(name))
	return err == nil
}

// Rename implements FileSystem.
func (osfs *OSFileSystem) Rename(name, newName string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "rename", Path: name, Err: fs.ErrInvalid}
	}
	oldFull := osfs.fullPath(name)
	return os.Rename(oldFull, filepath.Join(filepath.Dir(oldFull), newName))
}

// Move implements FileSystem.
func (osfs *OSFileSystem) Move(src, dst string) error {
	if !fs.ValidPath(src) || !fs.ValidPath(dst) {
		return &fs.PathError{Op: "move", Path: dst, Err: fs.ErrInvalid}
	}
	return os.Rename(osfs.fullPath(src), osfs.fullPath(dst))
}

// Delete implements FileSystem. Directories are removed recursively.
func (osfs *OSFileSystem) Delete(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "delete", Path: name, Err: fs.ErrInvalid}
	}
	full := osfs.fullPath(name)
	info, err := os.Stat(full)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(full)
	}
	return os.Remove(full)
}

// MkdirAll implements FileSystem.
func (osfs *OSFileSystem) MkdirAll(name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "mkdirall", Path: name, Err: fs.ErrInvalid}
	}
	return os.MkdirAll(osfs.fullPath(name), 0755)
}

func entryFromInfo(name string, info fs.FileInfo) *core.FileEntry {
	e := core.NewFileEntry(name)
	e.IsDir = info.IsDir()
	if !e.IsDir {
		e.Size = info.Size()
	}
	e.ModTime = info.ModTime()
	e.CreatedAt = info.ModTime()
	e.Attrs = map[string]string{
		"mode":     info.Mode().String(),
		"readonly": strconv.FormatBool(info.Mode().Perm()&0200 == 0),
	}
	return e
}
