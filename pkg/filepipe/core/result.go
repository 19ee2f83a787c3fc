package core

import "fmt"

// ErrorKind categorizes a validation error so callers can render
// actionable messages without parsing text.
type ErrorKind int

const (
	ErrGeneral ErrorKind = iota
	ErrInvalidPath
	ErrInvalidCharacters
	ErrPathTooLong
	ErrFileNotFound
	ErrAccessDenied
	ErrFileInUse
	ErrNameCollision
	ErrInvalidPattern
)

// String returns the string representation of the ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidPath:
		return "invalid path"
	case ErrInvalidCharacters:
		return "invalid characters"
	case ErrPathTooLong:
		return "path too long"
	case ErrFileNotFound:
		return "file not found"
	case ErrAccessDenied:
		return "access denied"
	case ErrFileInUse:
		return "file in use"
	case ErrNameCollision:
		return "name collision"
	case ErrInvalidPattern:
		return "invalid pattern"
	default:
		return "general"
	}
}

// ValidationError is one typed validation failure, optionally tied to a
// file path.
type ValidationError struct {
	Kind    ErrorKind
	Message string
	Path    string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ValidationResult accumulates errors and warnings. Valid is false iff
// the error list is non-empty; warnings never affect validity.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []string
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// AddError appends a typed error and marks the result invalid.
func (r *ValidationResult) AddError(kind ErrorKind, path, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	})
	r.Valid = false
}

// AddWarning appends an informational warning.
func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds other into r: r becomes invalid if other is invalid, and
// both error and warning lists are concatenated. Nothing is dropped.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ErrorMessages returns the rendered form of every error.
func (r *ValidationResult) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

// HasKind reports whether any accumulated error has the given kind.
func (r *ValidationResult) HasKind(kind ErrorKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// OperationResult is the aggregate outcome of one operation run.
// Processed counts changes added via AddChange, Failed counts errors
// added via AddError.
type OperationResult struct {
	Success   bool
	Message   string
	Changes   []*Change
	Errors    []string
	Processed int
	Failed    int
	Fault     error
}

// NewOperationResult returns an empty, successful result.
func NewOperationResult() *OperationResult {
	return &OperationResult{Success: true}
}

// AddChange records a proposed or applied change.
func (r *OperationResult) AddChange(c *Change) {
	r.Changes = append(r.Changes, c)
	r.Processed++
}

// AddError records a per-entry failure and marks the result failed.
func (r *OperationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Failed++
	r.Success = false
}

// Fail marks the result failed with a message.
func (r *OperationResult) Fail(format string, args ...any) {
	r.Success = false
	r.Message = fmt.Sprintf(format, args...)
}

// AppliedChanges returns only the changes whose Applied flag is set.
func (r *OperationResult) AppliedChanges() []*Change {
	applied := make([]*Change, 0, len(r.Changes))
	for _, c := range r.Changes {
		if c.Applied {
			applied = append(applied, c)
		}
	}
	return applied
}

// StepResult records one pipeline step's outcome.
type StepResult struct {
	Step   int // 1-based
	Name   string
	Result *OperationResult
}

// PipelineResult aggregates results across all pipeline steps. The
// Processed and Failed totals equal the sums over the step results.
type PipelineResult struct {
	Success   bool
	Steps     []StepResult
	Processed int
	Failed    int
	Summary   string
}

// NewPipelineResult returns an empty, successful result.
func NewPipelineResult() *PipelineResult {
	return &PipelineResult{Success: true}
}

// AddStep records an operation result as the next 1-based step.
func (r *PipelineResult) AddStep(name string, res *OperationResult) {
	r.Steps = append(r.Steps, StepResult{Step: len(r.Steps) + 1, Name: name, Result: res})
	r.Processed += res.Processed
	r.Failed += res.Failed
	if !res.Success {
		r.Success = false
	}
}
