// Package operations implements the polymorphic unit of work the
// pipeline runs: each operation validates, previews, and executes a
// batch of file entries against the filesystem port.
package operations

import (
	"context"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
	"github.com/arthur-debert/filepipe/pkg/filepipe/filesystem"
	"github.com/arthur-debert/filepipe/pkg/filepipe/validation"
)

// Context carries the shared collaborators an operation runs against.
// It is immutable for the duration of a run; the run mode is threaded as
// an explicit value rather than a mutable toggle, so preview scoping is
// just WithMode and there is no restore step to forget.
type Context struct {
	Mode      core.RunMode
	FS        filesystem.FileSystem
	Validator *validation.PathValidator
	Logger    core.Logger
}

// NewContext creates an execution context with the default validator and
// a no-op logger.
func NewContext(fsys filesystem.FileSystem) *Context {
	return &Context{
		Mode:      core.ModeExecute,
		FS:        fsys,
		Validator: validation.NewPathValidator(),
		Logger:    core.NopLogger(),
	}
}

// WithMode returns a copy of the context with the given run mode.
func (c *Context) WithMode(mode core.RunMode) *Context {
	cp := *c
	cp.Mode = mode
	return &cp
}

// Previewing reports whether changes must not be applied.
func (c *Context) Previewing() bool {
	return c.Mode == core.ModePreview
}

// Operation is one unit of work in a pipeline. Implementations must not
// mutate the filesystem during Validate or Preview, must recover their
// own faults into a failed result rather than panicking through the
// pipeline, and must re-check validation at Execute time.
type Operation interface {
	// ID is the stable registry identifier.
	ID() string
	// Name is the human display name.
	Name() string
	// Description explains what the operation does.
	Description() string

	// Validate runs generic and operation-specific checks over the
	// entries, including collision detection for the prospective
	// changes of renaming/moving operations.
	Validate(ctx context.Context, env *Context, entries []*core.FileEntry) *core.ValidationResult

	// Preview is Execute with the run mode forced to preview for the
	// duration of the call.
	Preview(ctx context.Context, env *Context, entries []*core.FileEntry) *core.OperationResult

	// Execute re-validates, then applies the operation to the entries.
	// In preview mode changes are computed but never applied.
	Execute(ctx context.Context, env *Context, entries []*core.FileEntry) *core.OperationResult

	// Clone deep-copies the operation including its configuration.
	Clone() Operation

	// Configure applies a deserialized configuration document.
	Configure(raw map[string]any) error
	// Config returns the configuration as a serializable document.
	Config() map[string]any
}
