package operations

import (
	"context"
	"fmt"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// DeleteOperation removes every entry in the working set. Directories
// are removed recursively. Deleted entries produce an applied change and
// are gone from the next stage's working set by construction, since
// their paths no longer resolve.
type DeleteOperation struct {
	BaseOperation
}

// NewDeleteOperation creates a delete operation.
func NewDeleteOperation() *DeleteOperation {
	return &DeleteOperation{
		BaseOperation: NewBaseOperation("delete", "Delete", "Delete every entry in the working set"),
	}
}

// Clone implements Operation.
func (op *DeleteOperation) Clone() Operation {
	cp := *op
	return &cp
}

// Configure implements Operation. Delete has no parameters.
func (op *DeleteOperation) Configure(raw map[string]any) error {
	return nil
}

// Config implements Operation.
func (op *DeleteOperation) Config() map[string]any {
	return map[string]any{}
}

// Validate implements Operation.
func (op *DeleteOperation) Validate(ctx context.Context, env *Context, entries []*core.FileEntry) *core.ValidationResult {
	return validateEntries(ctx, env, entries)
}

// Preview implements Operation.
func (op *DeleteOperation) Preview(ctx context.Context, env *Context, entries []*core.FileEntry) *core.OperationResult {
	return op.Execute(ctx, env.WithMode(core.ModePreview), entries)
}

// Execute implements Operation.
func (op *DeleteOperation) Execute(ctx context.Context, env *Context, entries []*core.FileEntry) (res *core.OperationResult) {
	res = core.NewOperationResult()
	defer recoverFault(res)

	if vr := op.Validate(ctx, env, entries); !vr.Valid {
		return failValidation(res, vr)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			break
		}
		change := core.NewChange(core.ChangeDelete, entry.Path, entry.Path,
			fmt.Sprintf("Delete %q", entry.Path))
		if !env.Previewing() {
			if err := env.FS.Delete(entry.Path); err != nil {
				res.AddError("delete %s: %v", entry.Path, err)
			} else {
				change.Applied = true
			}
		}
		res.AddChange(change)
	}
	if env.Previewing() {
		res.Message = fmt.Sprintf("%d entries would be deleted", res.Processed)
	} else {
		res.Message = fmt.Sprintf("%d entries deleted, %d failed", res.Processed, res.Failed)
	}
	env.Logger.Debug().Str("op", op.ID()).Str("mode", env.Mode.String()).
		Int("processed", res.Processed).Int("failed", res.Failed).Msg("operation finished")
	return res
}
