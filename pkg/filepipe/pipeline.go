// Package filepipe is a batch file-transformation engine: an ordered
// pipeline of operations (filter, rename, move, delete, or host-defined
// variants) that each validate, preview and execute changes over a
// working set of file entries, with file-identity changes threaded from
// one step to the next.
package filepipe

import (
	"context"
	"fmt"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
	"github.com/arthur-debert/filepipe/pkg/filepipe/filesystem"
	"github.com/arthur-debert/filepipe/pkg/filepipe/operations"
	"github.com/arthur-debert/filepipe/pkg/filepipe/validation"
)

// Options controls a pipeline run.
type Options struct {
	// StopOnError halts the run after a failed step. Defaults to true.
	StopOnError bool
	// MaxPathLength bounds accepted path lengths.
	MaxPathLength int
	// CheckReservedNames toggles the legacy reserved-filename rule.
	CheckReservedNames bool
}

// DefaultOptions returns the options a pipeline starts with.
func DefaultOptions() Options {
	return Options{
		StopOnError:        true,
		MaxPathLength:      validation.DefaultMaxPathLength,
		CheckReservedNames: true,
	}
}

// Pipeline is an ordered list of operations run sequentially over a
// working set of entries. A single pipeline run uses one goroutine;
// callers needing a responsive UI run the whole pipeline on a worker
// goroutine and cancel through the context.
type Pipeline struct {
	ops    []operations.Operation
	fsys   filesystem.FileSystem
	opts   Options
	logger core.Logger
}

// NewPipeline creates a pipeline over the given filesystem port.
func NewPipeline(fsys filesystem.FileSystem, opts Options, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Pipeline{fsys: fsys, opts: opts, logger: logger}
}

// New creates a pipeline with default options and no logging.
func New(fsys filesystem.FileSystem) *Pipeline {
	return NewPipeline(fsys, DefaultOptions(), nil)
}

// Add appends operations to the pipeline. Duplicate instances are
// legitimate; running the same filter twice is allowed.
func (p *Pipeline) Add(ops ...operations.Operation) {
	p.ops = append(p.ops, ops...)
}

// Insert places an operation at the given index.
func (p *Pipeline) Insert(index int, op operations.Operation) error {
	if index < 0 || index > len(p.ops) {
		return fmt.Errorf("insert index %d out of range [0,%d]", index, len(p.ops))
	}
	p.ops = append(p.ops[:index], append([]operations.Operation{op}, p.ops[index:]...)...)
	return nil
}

// RemoveAt removes the operation at the given index.
func (p *Pipeline) RemoveAt(index int) error {
	if index < 0 || index >= len(p.ops) {
		return fmt.Errorf("remove index %d out of range [0,%d)", index, len(p.ops))
	}
	p.ops = append(p.ops[:index], p.ops[index+1:]...)
	return nil
}

// Clear removes all operations.
func (p *Pipeline) Clear() {
	p.ops = nil
}

// Len returns the number of operations.
func (p *Pipeline) Len() int {
	return len(p.ops)
}

// Operations returns a copy of the operation list.
func (p *Pipeline) Operations() []operations.Operation {
	return append([]operations.Operation(nil), p.ops...)
}

func (p *Pipeline) env(mode core.RunMode) *operations.Context {
	v := validation.NewPathValidator()
	v.MaxPathLength = p.opts.MaxPathLength
	v.CheckReservedNames = p.opts.CheckReservedNames
	return &operations.Context{
		Mode:      mode,
		FS:        p.fsys,
		Validator: v,
		Logger:    p.logger,
	}
}

// Validate runs every operation's validation against the original,
// unmodified entry set. This is a static pre-flight check, not a
// simulation: later steps are validated against the caller's input, not
// against the working set an earlier step would produce.
func (p *Pipeline) Validate(ctx context.Context, entries []*core.FileEntry) *core.ValidationResult {
	result := core.NewValidationResult()
	if len(p.ops) == 0 {
		result.AddWarning("pipeline has no operations")
		return result
	}
	env := p.env(core.ModeExecute)
	for i, op := range p.ops {
		if err := ctx.Err(); err != nil {
			result.AddError(core.ErrGeneral, "", "validation cancelled: %v", err)
			return result
		}
		vr := p.validateStep(ctx, env, op, entries)
		result.Merge(vr)
		p.logger.Debug().Int("step", i+1).Str("op", op.ID()).Bool("valid", vr.Valid).Msg("step validated")
		if !vr.Valid && p.opts.StopOnError {
			return result
		}
	}
	return result
}

// validateStep calls one operation's validation, converting any
// escaping panic into a validation error so a faulty operation cannot
// crash the caller.
func (p *Pipeline) validateStep(ctx context.Context, env *operations.Context, op operations.Operation, entries []*core.FileEntry) (vr *core.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			vr = core.NewValidationResult()
			vr.AddError(core.ErrGeneral, "", "operation %s validation failed unexpectedly: %v", op.ID(), r)
		}
	}()
	return op.Validate(ctx, env, entries)
}

// Preview runs the pipeline with changes computed but never applied.
func (p *Pipeline) Preview(ctx context.Context, entries []*core.FileEntry) *core.PipelineResult {
	return p.run(ctx, entries, core.ModePreview)
}

// Execute runs the pipeline, applying changes through the filesystem port.
func (p *Pipeline) Execute(ctx context.Context, entries []*core.FileEntry) *core.PipelineResult {
	return p.run(ctx, entries, core.ModeExecute)
}

func (p *Pipeline) run(ctx context.Context, entries []*core.FileEntry, mode core.RunMode) *core.PipelineResult {
	result := core.NewPipelineResult()
	env := p.env(mode)
	working := cloneEntries(entries)

	p.logger.Info().Str("mode", mode.String()).Int("steps", len(p.ops)).
		Int("entries", len(working)).Msg("pipeline run starting")

	cancelled := false
	for i, op := range p.ops {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		stepRes := p.runStep(ctx, env, op, working)
		result.AddStep(op.Name(), stepRes)
		p.logger.Info().Int("step", i+1).Str("op", op.ID()).Bool("success", stepRes.Success).
			Int("processed", stepRes.Processed).Int("failed", stepRes.Failed).Msg("step finished")
		if !stepRes.Success && p.opts.StopOnError {
			break
		}
		// Preview never recomputes the working set: nothing was applied,
		// so passing the same entries forward keeps preview aligned with
		// what execute would see.
		if mode == core.ModeExecute {
			working = nextWorkingSet(working, stepRes)
		}
	}

	if cancelled {
		result.Success = false
		result.Summary = "cancelled"
	} else if mode == core.ModePreview {
		result.Summary = fmt.Sprintf("%d files would be processed", result.Processed)
	} else {
		result.Summary = fmt.Sprintf("%d processed, %d failed", result.Processed, result.Failed)
	}
	p.logger.Info().Bool("success", result.Success).Str("summary", result.Summary).Msg("pipeline run finished")
	return result
}

// runStep calls one operation, converting any escaping panic into a
// failed step result.
func (p *Pipeline) runStep(ctx context.Context, env *operations.Context, op operations.Operation, entries []*core.FileEntry) (res *core.OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			res = core.NewOperationResult()
			res.Fault = fmt.Errorf("step fault: %v", r)
			res.Fail("operation %s failed unexpectedly: %v", op.ID(), r)
		}
	}()
	if env.Previewing() {
		return op.Preview(ctx, env, entries)
	}
	return op.Execute(ctx, env, entries)
}

// nextWorkingSet recomputes the working set from a step's applied
// changes. Only entries with an applied change survive: the applied flag
// doubles as the survives-to-next-stage signal, which is how a filter's
// non-destructive matches keep entries alive while unmatched entries
// drop out. Surviving entries are cloned with their identity re-derived
// from the new path. Applied deletions remove the entry outright.
func nextWorkingSet(entries []*core.FileEntry, stepRes *core.OperationResult) []*core.FileEntry {
	applied := make(map[string]*core.Change)
	for _, c := range stepRes.Changes {
		if c.Applied {
			applied[c.OriginalPath] = c
		}
	}
	next := make([]*core.FileEntry, 0, len(entries))
	for _, entry := range entries {
		change, ok := applied[entry.Path]
		if !ok || change.Kind == core.ChangeDelete {
			continue
		}
		if change.NewPath != entry.Path {
			next = append(next, entry.WithPath(change.NewPath))
		} else {
			next = append(next, entry)
		}
	}
	return next
}

func cloneEntries(entries []*core.FileEntry) []*core.FileEntry {
	cloned := make([]*core.FileEntry, 0, len(entries))
	for _, e := range entries {
		cloned = append(cloned, e.Clone())
	}
	return cloned
}
