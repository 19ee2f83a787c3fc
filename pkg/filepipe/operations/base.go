package operations

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// BaseOperation carries the identity shared by all operation variants.
type BaseOperation struct {
	id          string
	name        string
	description string
}

// NewBaseOperation creates the shared identity for an operation variant.
func NewBaseOperation(id, name, description string) BaseOperation {
	return BaseOperation{id: id, name: name, description: description}
}

// ID returns the stable registry identifier.
func (op *BaseOperation) ID() string { return op.id }

// Name returns the display name.
func (op *BaseOperation) Name() string { return op.name }

// Description returns the human description.
func (op *BaseOperation) Description() string { return op.description }

// validateEntries runs the generic per-entry checks (path legality,
// existence) shared by every variant.
func validateEntries(ctx context.Context, env *Context, entries []*core.FileEntry) *core.ValidationResult {
	result := core.NewValidationResult()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.AddError(core.ErrGeneral, "", "validation cancelled: %v", err)
			return result
		}
		result.Merge(env.Validator.ValidateEntry(env.FS, entry))
	}
	return result
}

// failValidation converts a failed validation into a failed operation
// result carrying the validation errors.
func failValidation(res *core.OperationResult, vr *core.ValidationResult) *core.OperationResult {
	for _, msg := range vr.ErrorMessages() {
		res.AddError("%s", msg)
	}
	res.Fail("validation failed with %d error(s)", len(vr.Errors))
	return res
}

// recoverFault converts a panic escaping an operation's execution into a
// failed result. Used via defer with a named result pointer.
func recoverFault(res *core.OperationResult) {
	if r := recover(); r != nil {
		res.Fault = fmt.Errorf("operation fault: %v", r)
		res.Fail("operation failed unexpectedly: %v", r)
	}
}

// decodeConfig applies a deserialized configuration document onto a
// typed configuration struct. Fields absent from the document keep their
// current values, so defaults survive partial documents.
func decodeConfig(raw map[string]any, out any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// encodeConfig turns a typed configuration struct into a document.
func encodeConfig(in any) map[string]any {
	data, err := yaml.Marshal(in)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return map[string]any{}
	}
	return m
}
