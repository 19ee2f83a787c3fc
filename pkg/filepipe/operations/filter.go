package operations

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// MatchMode selects how the filter's name pattern is interpreted.
type MatchMode string

const (
	// MatchLiteral matches as a case-insensitive substring.
	MatchLiteral MatchMode = "literal"
	// MatchGlob matches with doublestar glob syntax.
	MatchGlob MatchMode = "glob"
	// MatchRegex matches as a regular expression.
	MatchRegex MatchMode = "regex"
)

// FilterConfig holds the predicates a filter applies. Predicates are
// AND-ed; an unset predicate is vacuously true. Nil range bounds mean
// unbounded.
type FilterConfig struct {
	Pattern        string     `yaml:"pattern,omitempty"`
	Mode           MatchMode  `yaml:"mode,omitempty"`
	Extensions     []string   `yaml:"extensions,omitempty"`
	MinSize        *int64     `yaml:"min_size,omitempty"`
	MaxSize        *int64     `yaml:"max_size,omitempty"`
	ModifiedAfter  *time.Time `yaml:"modified_after,omitempty"`
	ModifiedBefore *time.Time `yaml:"modified_before,omitempty"`
	IncludeDirs    bool       `yaml:"include_dirs,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c FilterConfig) Clone() FilterConfig {
	cp := c
	if c.Extensions != nil {
		cp.Extensions = append([]string(nil), c.Extensions...)
	}
	if c.MinSize != nil {
		v := *c.MinSize
		cp.MinSize = &v
	}
	if c.MaxSize != nil {
		v := *c.MaxSize
		cp.MaxSize = &v
	}
	if c.ModifiedAfter != nil {
		v := *c.ModifiedAfter
		cp.ModifiedAfter = &v
	}
	if c.ModifiedBefore != nil {
		v := *c.ModifiedBefore
		cp.ModifiedBefore = &v
	}
	return cp
}

// FilterOperation narrows the working set to the entries matching every
// configured predicate. It never mutates the filesystem; matched entries
// get a non-destructive applied change so they survive to the next
// pipeline stage, unmatched entries get none and drop out.
type FilterOperation struct {
	BaseOperation
	cfg FilterConfig
}

// NewFilterOperation creates a filter with the given configuration.
func NewFilterOperation(cfg FilterConfig) *FilterOperation {
	return &FilterOperation{
		BaseOperation: NewBaseOperation("filter", "Filter",
			"Keep only the entries matching the configured criteria"),
		cfg: cfg,
	}
}

// FilterConfig returns the current configuration.
func (op *FilterOperation) FilterConfig() FilterConfig { return op.cfg }

// Clone implements Operation.
func (op *FilterOperation) Clone() Operation {
	cp := *op
	cp.cfg = op.cfg.Clone()
	return &cp
}

// Configure implements Operation.
func (op *FilterOperation) Configure(raw map[string]any) error {
	return decodeConfig(raw, &op.cfg)
}

// Config implements Operation.
func (op *FilterOperation) Config() map[string]any {
	return encodeConfig(op.cfg)
}

// Validate implements Operation.
func (op *FilterOperation) Validate(ctx context.Context, env *Context, entries []*core.FileEntry) *core.ValidationResult {
	result := validateEntries(ctx, env, entries)

	if op.cfg.Pattern != "" {
		switch op.cfg.Mode {
		case MatchRegex:
			if _, err := regexp.Compile(op.cfg.Pattern); err != nil {
				result.AddError(core.ErrInvalidPattern, "", "invalid regular expression %q: %v", op.cfg.Pattern, err)
			}
		case MatchGlob:
			if !doublestar.ValidatePattern(op.cfg.Pattern) {
				result.AddError(core.ErrInvalidPattern, "", "invalid glob pattern %q", op.cfg.Pattern)
			}
		}
	}
	if op.cfg.MinSize != nil && op.cfg.MaxSize != nil && *op.cfg.MinSize > *op.cfg.MaxSize {
		result.AddError(core.ErrGeneral, "", "minimum size %d exceeds maximum size %d", *op.cfg.MinSize, *op.cfg.MaxSize)
	}
	if op.cfg.ModifiedAfter != nil && op.cfg.ModifiedBefore != nil && op.cfg.ModifiedAfter.After(*op.cfg.ModifiedBefore) {
		result.AddError(core.ErrGeneral, "", "modified-after bound is later than modified-before bound")
	}
	return result
}

// Preview implements Operation. A filter computes identical change sets
// in both modes, so this simply forces preview mode for the call.
func (op *FilterOperation) Preview(ctx context.Context, env *Context, entries []*core.FileEntry) *core.OperationResult {
	return op.Execute(ctx, env.WithMode(core.ModePreview), entries)
}

// Execute implements Operation.
func (op *FilterOperation) Execute(ctx context.Context, env *Context, entries []*core.FileEntry) (res *core.OperationResult) {
	res = core.NewOperationResult()
	defer recoverFault(res)

	if vr := op.Validate(ctx, env, entries); !vr.Valid {
		return failValidation(res, vr)
	}

	matched := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			break
		}
		ok, err := op.matches(entry)
		if err != nil {
			res.AddError("%s: %v", entry.Path, err)
			continue
		}
		if !ok {
			continue
		}
		matched++
		change := core.NewChange(core.ChangeModify, entry.Path, entry.Path, "Matched filter criteria")
		// The applied flag doubles as the survives-to-next-stage signal.
		// A filter change is non-destructive, so it is safe to set even
		// in preview mode.
		change.Applied = true
		res.AddChange(change)
	}
	res.Message = fmt.Sprintf("%d of %d entries matched", matched, len(entries))
	env.Logger.Debug().Str("op", op.ID()).Int("matched", matched).Int("total", len(entries)).Msg("filter applied")
	return res
}

func (op *FilterOperation) matches(entry *core.FileEntry) (bool, error) {
	if entry.IsDir && !op.cfg.IncludeDirs {
		return false, nil
	}
	if op.cfg.Pattern != "" {
		ok, err := op.matchName(entry.Name)
		if err != nil || !ok {
			return false, err
		}
	}
	if len(op.cfg.Extensions) > 0 && !op.matchExtension(entry.Ext) {
		return false, nil
	}
	if !entry.IsDir {
		if op.cfg.MinSize != nil && entry.Size < *op.cfg.MinSize {
			return false, nil
		}
		if op.cfg.MaxSize != nil && entry.Size > *op.cfg.MaxSize {
			return false, nil
		}
	}
	if op.cfg.ModifiedAfter != nil && entry.ModTime.Before(*op.cfg.ModifiedAfter) {
		return false, nil
	}
	if op.cfg.ModifiedBefore != nil && entry.ModTime.After(*op.cfg.ModifiedBefore) {
		return false, nil
	}
	return true, nil
}

func (op *FilterOperation) matchName(name string) (bool, error) {
	switch op.cfg.Mode {
	case MatchRegex:
		re, err := regexp.Compile(op.cfg.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(name), nil
	case MatchGlob:
		return doublestar.Match(op.cfg.Pattern, name)
	default:
		return strings.Contains(strings.ToLower(name), strings.ToLower(op.cfg.Pattern)), nil
	}
}

func (op *FilterOperation) matchExtension(ext string) bool {
	for _, want := range op.cfg.Extensions {
		if strings.EqualFold(normalizeExtension(want), ext) {
			return true
		}
	}
	return false
}

// normalizeExtension guarantees a leading dot so ".txt" and "txt"
// configure the same predicate.
func normalizeExtension(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
