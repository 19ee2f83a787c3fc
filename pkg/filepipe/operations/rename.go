package operations

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
)

// CaseTransform selects a whole-name case conversion.
type CaseTransform string

const (
	CaseNone  CaseTransform = ""
	CaseUpper CaseTransform = "upper"
	CaseLower CaseTransform = "lower"
	CaseTitle CaseTransform = "title"
)

// RenameConfig holds the parameters of the per-entry name construction
// pipeline.
type RenameConfig struct {
	Prefix              string        `yaml:"prefix,omitempty"`
	Suffix              string        `yaml:"suffix,omitempty"`
	Find                string        `yaml:"find,omitempty"`
	Replace             string        `yaml:"replace,omitempty"`
	UseRegex            bool          `yaml:"use_regex,omitempty"`
	Numbering           bool          `yaml:"numbering,omitempty"`
	StartNumber         int           `yaml:"start_number"`
	PadWidth            int           `yaml:"pad_width"`
	PreserveExt         bool          `yaml:"preserve_ext"`
	KeepName            bool          `yaml:"keep_name"`
	NormalizeWhitespace bool          `yaml:"normalize_whitespace,omitempty"`
	Case                CaseTransform `yaml:"case,omitempty"`
}

// DefaultRenameConfig returns a configuration that leaves names intact:
// the original stem and extension are kept, numbering starts at 1 with a
// three-digit pad when enabled.
func DefaultRenameConfig() RenameConfig {
	return RenameConfig{
		StartNumber: 1,
		PadWidth:    3,
		PreserveExt: true,
		KeepName:    true,
	}
}

// Clone returns a deep copy of the configuration.
func (c RenameConfig) Clone() RenameConfig {
	return c
}

// RenameOperation renames each entry in place according to the
// configured name construction pipeline. Entries are processed in
// name-ascending order so sequential numbering is deterministic.
type RenameOperation struct {
	BaseOperation
	cfg RenameConfig
}

// NewRenameOperation creates a rename operation with the given configuration.
func NewRenameOperation(cfg RenameConfig) *RenameOperation {
	return &RenameOperation{
		BaseOperation: NewBaseOperation("rename", "Rename",
			"Rename entries with prefix, suffix, find/replace, numbering and case rules"),
		cfg: cfg,
	}
}

// RenameConfig returns the current configuration.
func (op *RenameOperation) RenameConfig() RenameConfig { return op.cfg }

// Clone implements Operation.
func (op *RenameOperation) Clone() Operation {
	cp := *op
	cp.cfg = op.cfg.Clone()
	return &cp
}

// Configure implements Operation.
func (op *RenameOperation) Configure(raw map[string]any) error {
	return decodeConfig(raw, &op.cfg)
}

// Config implements Operation.
func (op *RenameOperation) Config() map[string]any {
	return encodeConfig(op.cfg)
}

// Validate implements Operation. After the configuration checks, the
// prospective change set is generated and checked for collisions.
func (op *RenameOperation) Validate(ctx context.Context, env *Context, entries []*core.FileEntry) *core.ValidationResult {
	result := validateEntries(ctx, env, entries)

	if op.cfg.Prefix != "" || op.cfg.Suffix != "" {
		if vr := env.Validator.ValidateFileName(op.cfg.Prefix + placeholderStem + op.cfg.Suffix); !vr.Valid {
			for _, e := range vr.Errors {
				result.AddError(core.ErrInvalidCharacters, "", "prefix/suffix invalid: %s", e.Message)
			}
		}
	}
	if op.cfg.Numbering {
		if op.cfg.StartNumber < 0 {
			result.AddError(core.ErrGeneral, "", "start number must not be negative")
		}
		if op.cfg.PadWidth < 1 {
			result.AddError(core.ErrGeneral, "", "pad width must be at least 1")
		}
	}
	if op.cfg.UseRegex && op.cfg.Find != "" {
		if _, err := regexp.Compile(op.cfg.Find); err != nil {
			result.AddError(core.ErrInvalidPattern, "", "invalid find pattern %q: %v", op.cfg.Find, err)
		}
	}
	if !result.Valid {
		return result
	}

	result.Merge(env.Validator.ValidateChanges(env.FS, op.plan(entries)))
	return result
}

// placeholderStem stands in for a real name when checking that the
// configured prefix and suffix are legal filename material.
const placeholderStem = "name"

// Preview implements Operation.
func (op *RenameOperation) Preview(ctx context.Context, env *Context, entries []*core.FileEntry) *core.OperationResult {
	return op.Execute(ctx, env.WithMode(core.ModePreview), entries)
}

// Execute implements Operation.
func (op *RenameOperation) Execute(ctx context.Context, env *Context, entries []*core.FileEntry) (res *core.OperationResult) {
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
			if err := env.FS.Rename(change.OriginalPath, path.Base(change.NewPath)); err != nil {
				res.AddError("rename %s: %v", change.OriginalPath, err)
			} else {
				change.Applied = true
			}
		}
		// The change is recorded whether or not it was applied.
		res.AddChange(change)
	}
	op.finish(env, res, "renamed")
	return res
}

// plan generates the prospective change set, in name-ascending order.
func (op *RenameOperation) plan(entries []*core.FileEntry) []*core.Change {
	ordered := append([]*core.FileEntry(nil), entries...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	changes := make([]*core.Change, 0, len(ordered))
	seq := op.cfg.StartNumber
	for _, entry := range ordered {
		newName := op.buildName(entry, seq)
		if op.cfg.Numbering {
			// One number per entry, whether or not other transforms apply.
			seq++
		}
		newPath := path.Join(entry.Dir(), newName)
		change := core.NewChange(core.ChangeRename, entry.Path, newPath,
			fmt.Sprintf("Rename %q to %q", entry.Name, newName))
		changes = append(changes, change)
	}
	return changes
}

// buildName runs the name construction pipeline for one entry.
func (op *RenameOperation) buildName(entry *core.FileEntry, seq int) string {
	name := ""
	if op.cfg.KeepName {
		name = entry.Stem()
	}
	if op.cfg.Find != "" {
		name = op.applyFindReplace(name)
	}
	if op.cfg.NormalizeWhitespace {
		name = strings.Join(strings.Fields(name), " ")
	}
	name = applyCase(name, op.cfg.Case)
	name = op.cfg.Prefix + name
	if op.cfg.Numbering {
		name += fmt.Sprintf("_%0*d", op.cfg.PadWidth, seq)
	}
	name += op.cfg.Suffix
	if op.cfg.PreserveExt {
		name += entry.Ext
	}
	return name
}

func (op *RenameOperation) applyFindReplace(name string) string {
	if op.cfg.UseRegex {
		re, err := regexp.Compile(op.cfg.Find)
		if err == nil {
			return re.ReplaceAllString(name, op.cfg.Replace)
		}
		// A pattern that stopped compiling falls back to a literal
		// replace instead of destroying the batch.
	}
	return replaceFold(name, op.cfg.Find, op.cfg.Replace)
}

func (op *RenameOperation) finish(env *Context, res *core.OperationResult, verb string) {
	if env.Previewing() {
		res.Message = fmt.Sprintf("%d entries would be %s", res.Processed, verb)
	} else {
		res.Message = fmt.Sprintf("%d entries %s, %d failed", res.Processed, verb, res.Failed)
	}
	env.Logger.Debug().Str("op", op.ID()).Str("mode", env.Mode.String()).
		Int("processed", res.Processed).Int("failed", res.Failed).Msg("operation finished")
}

// replaceFold replaces every case-insensitive occurrence of find in s,
// treating find as literal text. Matching is rune-aware: Unicode case
// pairs whose UTF-8 lengths differ fold correctly instead of splitting
// the surrounding bytes.
func replaceFold(s, find, replace string) string {
	if find == "" {
		return s
	}
	// QuoteMeta always yields a valid pattern.
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(find))
	return re.ReplaceAllLiteralString(s, replace)
}

func applyCase(name string, transform CaseTransform) string {
	switch transform {
	case CaseUpper:
		return strings.ToUpper(name)
	case CaseLower:
		return strings.ToLower(name)
	case CaseTitle:
		return titleCase(name)
	default:
		return name
	}
}

// titleCase upper-cases the first letter of each word and lower-cases
// the rest. Any non-letter rune starts a new word, so hyphenated and
// underscored names title-case segment by segment.
func titleCase(s string) string {
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			startOfWord = false
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
