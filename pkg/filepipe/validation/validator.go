// Package validation implements path and filename legality checks plus
// collision detection over a batch of proposed changes.
package validation

import (
	"path"
	"strings"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
	"github.com/arthur-debert/filepipe/pkg/filepipe/filesystem"
)

// DefaultMaxPathLength matches the legacy 260-character filesystem limit.
// It is configurable on the validator since some hosts raise it.
const DefaultMaxPathLength = 260

// illegalPathChars are rejected anywhere in a path.
const illegalPathChars = `<>"|?*`

// illegalNameChars are rejected in a bare filename, which additionally
// may not contain separators or a drive colon.
const illegalNameChars = illegalPathChars + `/\:`

// reservedNames are filename stems refused for legacy-filesystem
// compatibility. The check is case-insensitive on the stem.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// PathValidator checks path legality and detects destination collisions.
// The zero value is not usable; use NewPathValidator.
type PathValidator struct {
	// MaxPathLength is the longest accepted path.
	MaxPathLength int

	// CheckReservedNames toggles the legacy reserved-stem rule.
	CheckReservedNames bool
}

// NewPathValidator returns a validator with the default limits.
func NewPathValidator() *PathValidator {
	return &PathValidator{
		MaxPathLength:      DefaultMaxPathLength,
		CheckReservedNames: true,
	}
}

// ValidatePath checks a bare path string for legality.
func (v *PathValidator) ValidatePath(p string) *core.ValidationResult {
	result := core.NewValidationResult()
	if strings.TrimSpace(p) == "" {
		result.AddError(core.ErrInvalidPath, p, "path is empty")
		return result
	}
	if len(p) > v.MaxPathLength {
		result.AddError(core.ErrPathTooLong, p, "path exceeds %d characters", v.MaxPathLength)
	}
	if i := strings.IndexAny(p, illegalPathChars); i >= 0 {
		result.AddError(core.ErrInvalidCharacters, p, "path contains illegal character %q", p[i])
	}
	for _, r := range p {
		if r < 0x20 {
			result.AddError(core.ErrInvalidCharacters, p, "path contains control character")
			break
		}
	}
	return result
}

// ValidateFileName checks a bare filename for legality.
func (v *PathValidator) ValidateFileName(name string) *core.ValidationResult {
	result := core.NewValidationResult()
	if strings.TrimSpace(name) == "" {
		result.AddError(core.ErrInvalidPath, name, "filename is empty")
		return result
	}
	if i := strings.IndexAny(name, illegalNameChars); i >= 0 {
		result.AddError(core.ErrInvalidCharacters, name, "filename contains illegal character %q", name[i])
	}
	for _, r := range name {
		if r < 0x20 {
			result.AddError(core.ErrInvalidCharacters, name, "filename contains control character")
			break
		}
	}
	if v.CheckReservedNames {
		stem := strings.TrimSuffix(name, path.Ext(name))
		if _, reserved := reservedNames[strings.ToUpper(stem)]; reserved {
			result.AddError(core.ErrInvalidPath, name, "%q is a reserved name", stem)
		}
	}
	return result
}

// ValidateEntry checks one entry for path legality and existence.
func (v *PathValidator) ValidateEntry(fsys filesystem.FileSystem, entry *core.FileEntry) *core.ValidationResult {
	result := v.ValidatePath(entry.Path)
	if result.Valid && !fsys.Exists(entry.Path) {
		result.AddError(core.ErrFileNotFound, entry.Path, "file does not exist")
	}
	return result
}

// ValidateEntries checks a batch of entries, accumulating all failures.
func (v *PathValidator) ValidateEntries(fsys filesystem.FileSystem, entries []*core.FileEntry) *core.ValidationResult {
	result := core.NewValidationResult()
	for _, entry := range entries {
		result.Merge(v.ValidateEntry(fsys, entry))
	}
	return result
}

// ValidateChanges checks a batch of proposed changes for collisions.
// Two independent checks run, and both accumulate: destinations that
// appear more than once in the batch (compared case-insensitively), and
// destinations that already exist on the filesystem while differing from
// their own origin. Collisions always block the whole batch.
func (v *PathValidator) ValidateChanges(fsys filesystem.FileSystem, changes []*core.Change) *core.ValidationResult {
	result := core.NewValidationResult()

	groups := make(map[string][]*core.Change)
	var order []string
	for _, c := range changes {
		key := strings.ToLower(c.NewPath)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}
	for _, key := range order {
		group := groups[key]
		if len(group) > 1 {
			result.AddError(core.ErrNameCollision, group[0].NewPath,
				"%d entries resolve to the same destination", len(group))
		}
	}

	for _, c := range changes {
		if c.NewPath == c.OriginalPath {
			continue
		}
		if fsys.Exists(c.NewPath) && !strings.EqualFold(c.NewPath, c.OriginalPath) {
			result.AddError(core.ErrNameCollision, c.NewPath, "destination already exists")
		}
	}

	return result
}
