package core

import (
	"path"
	"strings"
	"time"
)

// FileEntry represents one filesystem node flowing through a pipeline.
// Name and Ext are derived from Path at construction and re-derived on
// every path change; they must never drift from Path.
type FileEntry struct {
	Path      string
	Name      string
	Ext       string
	Size      int64
	CreatedAt time.Time
	ModTime   time.Time
	IsDir     bool
	Attrs     map[string]string
}

// NewFileEntry creates an entry for the given slash-separated path,
// deriving Name and Ext from it.
func NewFileEntry(p string) *FileEntry {
	e := &FileEntry{Path: p}
	e.deriveNames()
	return e
}

func (e *FileEntry) deriveNames() {
	e.Name = path.Base(e.Path)
	e.Ext = path.Ext(e.Name)
}

// Stem returns the entry's name without its extension.
func (e *FileEntry) Stem() string {
	return strings.TrimSuffix(e.Name, e.Ext)
}

// Dir returns the directory portion of the entry's path.
func (e *FileEntry) Dir() string {
	return path.Dir(e.Path)
}

// Clone returns a full value copy of the entry. Entries handed from one
// pipeline stage to the next are always cloned so a prior stage's result
// never observes a later mutation.
func (e *FileEntry) Clone() *FileEntry {
	c := *e
	if e.Attrs != nil {
		c.Attrs = make(map[string]string, len(e.Attrs))
		for k, v := range e.Attrs {
			c.Attrs[k] = v
		}
	}
	return &c
}

// WithPath returns a clone of the entry relocated to newPath, with Name
// and Ext re-derived.
func (e *FileEntry) WithPath(newPath string) *FileEntry {
	c := e.Clone()
	c.Path = newPath
	c.deriveNames()
	return c
}

// ChangeKind classifies a proposed or applied mutation.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeRename
	ChangeMove
	ChangeDelete
	ChangeModify
	ChangeCreate
)

// String returns the string representation of the ChangeKind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeRename:
		return "rename"
	case ChangeMove:
		return "move"
	case ChangeDelete:
		return "delete"
	case ChangeModify:
		return "modify"
	case ChangeCreate:
		return "create"
	default:
		return "none"
	}
}

// Change is a single proposed or applied mutation. Applied stays false
// until the mutation is confirmed on the filesystem; in preview mode it
// stays false for mutating kinds for the whole run.
type Change struct {
	OriginalPath string
	NewPath      string
	Kind         ChangeKind
	Description  string
	Applied      bool
}

// NewChange creates a change from an original path to a new path.
func NewChange(kind ChangeKind, originalPath, newPath, description string) *Change {
	return &Change{
		OriginalPath: originalPath,
		NewPath:      newPath,
		Kind:         kind,
		Description:  description,
	}
}

// RunMode selects between computing changes only and applying them.
type RunMode int

const (
	// ModeExecute applies changes through the filesystem port.
	ModeExecute RunMode = iota
	// ModePreview computes changes without touching the filesystem.
	ModePreview
)

// String returns the string representation of the RunMode.
func (m RunMode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "execute"
}
