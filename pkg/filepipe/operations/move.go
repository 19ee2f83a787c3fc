package operations

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// MoveConfig holds the destination layout rules for a move.
type MoveConfig struct {
	// Destination is the root directory entries are moved under.
	Destination string `yaml:"destination"`
	// ByExtension adds a per-extension subdirectory (without the dot).
	ByExtension bool `yaml:"by_extension,omitempty"`
	// ByDate adds a subdirectory from the entry's modification time,
	// formatted with DateFormat.
	ByDate bool `yaml:"by_date,omitempty"`
	// DateFormat uses yyyy/MM/dd-style tokens, e.g. "yyyy-MM".
	DateFormat string `yaml:"date_format,omitempty"`
	// PreserveTree keeps the entry's immediate parent directory name as
	// one path segment.
	PreserveTree bool `yaml:"preserve_tree,omitempty"`
}

// DefaultMoveConfig returns a configuration moving entries flat into the
// destination, with a month-granular date layout when ByDate is enabled.
func DefaultMoveConfig() MoveConfig {
	return MoveConfig{DateFormat: "yyyy-MM"}
}

// Clone returns a deep copy of the configuration.
func (c MoveConfig) Clone() MoveConfig {
	return c
}

// MoveOperation relocates entries under a destination root, laying out
// subdirectories by parent folder, extension and date. Missing
// directories are created on demand during execution.
type MoveOperation struct {
	BaseOperation
	cfg MoveConfig
}

// NewMoveOperation creates a move operation with the given configuration.
func NewMoveOperation(cfg MoveConfig) *MoveOperation {
	return &MoveOperation{
		BaseOperation: NewBaseOperation("move", "Move",
			"Move entries into a destination directory organized by folder, extension and date"),
		cfg: cfg,
	}
}

// MoveConfig returns the current configuration.
func (op *MoveOperation) MoveConfig() MoveConfig { return op.cfg }

// Clone implements Operation.
func (op *MoveOperation) Clone() Operation {
	cp := *op
	cp.cfg = op.cfg.Clone()
	return &cp
}

// Configure implements Operation.
func (op *MoveOperation) Configure(raw map[string]any) error {
	return decodeConfig(raw, &op.cfg)
}

// Config implements Operation.
func (op *MoveOperation) Config() map[string]any {
	return encodeConfig(op.cfg)
}

// Validate implements Operation. A missing destination directory is only
// a warning since directories are created lazily at execute time.
func (op *MoveOperation) Validate(ctx context.Context, env *Context, entries []*core.FileEntry) *core.ValidationResult {
	result := validateEntries(ctx, env, entries)

	if strings.TrimSpace(op.cfg.Destination) == "" {
		result.AddError(core.ErrInvalidPath, "", "destination directory is required")
		return result
	}
	result.Merge(env.Validator.ValidatePath(op.cfg.Destination))
	if !result.Valid {
		return result
	}
	if !env.FS.Exists(op.cfg.Destination) {
		result.AddWarning("destination directory %q will be created", op.cfg.Destination)
	}
	if op.cfg.ByDate && strings.TrimSpace(op.cfg.DateFormat) == "" {
		result.AddError(core.ErrGeneral, "", "date format is required when organizing by date")
		return result
	}

	result.Merge(env.Validator.ValidateChanges(env.FS, op.plan(entries)))
	return result
}

// Preview implements Operation.
func (op *MoveOperation) Preview(ctx context.Context, env *Context, entries []*core.FileEntry) *core.OperationResult {
	return op.Execute(ctx, env.WithMode(core.ModePreview), entries)
}

// Execute implements Operation.
func (op *MoveOperation) Execute(ctx context.Context, env *Context, entries []*core.FileEntry) (res *core.OperationResult) {
	res = core.NewOperationResult()
	defer recoverFault(res)

	if vr := op.Validate(ctx, env, entries); !vr.Valid {
		return failValidation(res, vr)
	}

	for _, change := range op.plan(entries) {
		if err := ctx.Err(); err != nil {
			break
		}
		if !env.Previewing() {
			if err := op.apply(env, change); err != nil {
				res.AddError("move %s: %v", change.OriginalPath, err)
			} else {
				change.Applied = true
			}
		}
		res.AddChange(change)
	}
	if env.Previewing() {
		res.Message = fmt.Sprintf("%d entries would be moved", res.Processed)
	} else {
		res.Message = fmt.Sprintf("%d entries moved, %d failed", res.Processed, res.Failed)
	}
	env.Logger.Debug().Str("op", op.ID()).Str("mode", env.Mode.String()).
		Int("processed", res.Processed).Int("failed", res.Failed).Msg("operation finished")
	return res
}

func (op *MoveOperation) apply(env *Context, change *core.Change) error {
	if dir := path.Dir(change.NewPath); dir != "." && dir != "/" {
		if err := env.FS.MkdirAll(dir); err != nil {
			return err
		}
	}
	return env.FS.Move(change.OriginalPath, change.NewPath)
}

// plan generates the prospective change set in input order.
func (op *MoveOperation) plan(entries []*core.FileEntry) []*core.Change {
	changes := make([]*core.Change, 0, len(entries))
	for _, entry := range entries {
		newPath := path.Join(op.cfg.Destination, op.subdirFor(entry), entry.Name)
		changes = append(changes, core.NewChange(core.ChangeMove, entry.Path, newPath,
			fmt.Sprintf("Move %q to %q", entry.Path, newPath)))
	}
	return changes
}

// subdirFor computes the subdirectory suffix for one entry: preserved
// parent segment, then extension segment, then date segment, each
// optional.
func (op *MoveOperation) subdirFor(entry *core.FileEntry) string {
	var segments []string
	if op.cfg.PreserveTree {
		if parent := path.Base(entry.Dir()); parent != "." && parent != "/" {
			segments = append(segments, parent)
		}
	}
	if op.cfg.ByExtension {
		if ext := strings.TrimPrefix(strings.ToLower(entry.Ext), "."); ext != "" {
			segments = append(segments, ext)
		}
	}
	if op.cfg.ByDate {
		segments = append(segments, entry.ModTime.Format(translateDateFormat(op.cfg.DateFormat)))
	}
	return path.Join(segments...)
}

// dateTokens maps yyyy/MM/dd-style tokens onto Go reference-time layout
// fragments. Longer tokens are matched first.
var dateTokens = []struct{ token, layout string }{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// translateDateFormat converts a yyyy-MM style pattern into a Go time
// layout. Unrecognized runes pass through as literals.
func translateDateFormat(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(pattern[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}
