package filepipe

import (
	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
	"github.com/arthur-debert/filepipe/pkg/filepipe/filesystem"
	"github.com/arthur-debert/filepipe/pkg/filepipe/operations"
)

// Aliases for the most commonly used types so callers only need this
// package for typical use.
type (
	FileEntry        = core.FileEntry
	Change           = core.Change
	ValidationResult = core.ValidationResult
	OperationResult  = core.OperationResult
	PipelineResult   = core.PipelineResult
	StepResult       = core.StepResult

	FileSystem = filesystem.FileSystem
	Operation  = operations.Operation
	Registry   = operations.Registry
)

// NewOSFileSystem creates an OS-backed filesystem port rooted at root.
func NewOSFileSystem(root string) *filesystem.OSFileSystem {
	return filesystem.NewOSFileSystem(root)
}

// DefaultRegistry returns a registry with the built-in operations
// (filter, rename, move, delete).
func DefaultRegistry() *Registry {
	return operations.DefaultRegistry()
}
