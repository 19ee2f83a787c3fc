package operations_test

import (
	"context"
	"io/fs"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
	"github.com/arthur-debert/filepipe/pkg/filepipe/operations"
)

func TestRenameOperation(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("numbering follows name-ascending order", func(t *testing.T) {
		entries := []*core.FileEntry{
			fileEntry("b.txt", 1, now),
			fileEntry("a.txt", 1, now),
		}
		cfg := operations.DefaultRenameConfig()
		cfg.Numbering = true
		cfg.StartNumber = 1
		cfg.PadWidth = 3
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if !res.Success {
			t.Fatalf("execute failed: %v", res.Errors)
		}
		if res.Changes[0].NewPath != "a_001.txt" || res.Changes[1].NewPath != "b_002.txt" {
			t.Errorf("changes = %q, %q", res.Changes[0].NewPath, res.Changes[1].NewPath)
		}
	})

	t.Run("name construction order", func(t *testing.T) {
		// find/replace, whitespace normalization and case transform act
		// on the stem before prefix, number and suffix are attached.
		entries := []*core.FileEntry{fileEntry("my  draft report.txt", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Find = "draft"
		cfg.Replace = "final"
		cfg.NormalizeWhitespace = true
		cfg.Case = operations.CaseTitle
		cfg.Prefix = "2024-"
		cfg.Suffix = "-v1"
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if got := res.Changes[0].NewPath; got != "2024-My Final Report-v1.txt" {
			t.Errorf("NewPath = %q", got)
		}
	})

	t.Run("find/replace is case-insensitive when literal", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("IMG_0001.jpg", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Find = "img_"
		cfg.Replace = "photo-"
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if got := res.Changes[0].NewPath; got != "photo-0001.jpg" {
			t.Errorf("NewPath = %q", got)
		}
	})

	t.Run("regex find/replace", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("IMG_0001.jpg", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Find = `^IMG_(\d+)`
		cfg.Replace = "photo-$1"
		cfg.UseRegex = true
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if got := res.Changes[0].NewPath; got != "photo-0001.jpg" {
			t.Errorf("NewPath = %q", got)
		}
	})

	t.Run("discarding the core name builds from prefix, number and suffix", func(t *testing.T) {
		entries := []*core.FileEntry{
			fileEntry("whatever.txt", 1, now),
			fileEntry("other.txt", 1, now),
		}
		cfg := operations.DefaultRenameConfig()
		cfg.KeepName = false
		cfg.Prefix = "file"
		cfg.Numbering = true
		cfg.PadWidth = 2
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if res.Changes[0].NewPath != "file_01.txt" || res.Changes[1].NewPath != "file_02.txt" {
			t.Errorf("changes = %q, %q", res.Changes[0].NewPath, res.Changes[1].NewPath)
		}
	})

	t.Run("dropping the extension", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("a.txt", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.PreserveExt = false
		cfg.Suffix = ".bak"
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if got := res.Changes[0].NewPath; got != "a.bak" {
			t.Errorf("NewPath = %q", got)
		}
	})

	t.Run("colliding destinations block execution entirely", func(t *testing.T) {
		entries := []*core.FileEntry{
			fileEntry("a.txt", 1, now),
			fileEntry("b.txt", 1, now),
		}
		cfg := operations.DefaultRenameConfig()
		cfg.KeepName = false
		cfg.Prefix = "same"
		op := operations.NewRenameOperation(cfg)
		tfs := seedFS(entries)
		env := operations.NewContext(tfs)

		vr := op.Validate(ctx, env, entries)
		if vr.Valid || !vr.HasKind(core.ErrNameCollision) {
			t.Fatal("expected NameCollision")
		}
		res := op.Execute(ctx, env, entries)
		if res.Success {
			t.Error("execute must fail on collisions")
		}
		if tfs.MutationCalls != 0 {
			t.Errorf("collision batch performed %d mutations", tfs.MutationCalls)
		}
	})

	t.Run("per-entry failures do not abort the batch", func(t *testing.T) {
		entries := []*core.FileEntry{
			fileEntry("a.txt", 1, now),
			fileEntry("b.txt", 1, now),
		}
		cfg := operations.DefaultRenameConfig()
		cfg.Prefix = "x_"
		op := operations.NewRenameOperation(cfg)
		tfs := seedFS(entries)
		tfs.FailPaths["a.txt"] = fs.ErrPermission
		env := operations.NewContext(tfs)

		res := op.Execute(ctx, env, entries)
		if res.Failed != 1 || res.Processed != 2 {
			t.Errorf("processed/failed = %d/%d, want 2/1", res.Processed, res.Failed)
		}
		if res.Changes[0].Applied {
			t.Error("failed rename must not be marked applied")
		}
		if !res.Changes[1].Applied {
			t.Error("remaining entries must still be renamed")
		}
		if !tfs.Exists("x_b.txt") {
			t.Error("b.txt was not renamed")
		}
	})

	t.Run("preview applies nothing", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("a.txt", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Prefix = "x_"
		op := operations.NewRenameOperation(cfg)
		tfs := seedFS(entries)
		env := operations.NewContext(tfs)

		res := op.Preview(ctx, env, entries)
		if tfs.MutationCalls != 0 {
			t.Errorf("preview made %d port mutations", tfs.MutationCalls)
		}
		if res.Changes[0].Applied {
			t.Error("preview changes must not be applied")
		}
		if res.Changes[0].NewPath != "x_a.txt" {
			t.Errorf("NewPath = %q", res.Changes[0].NewPath)
		}
	})

	t.Run("find/replace survives multi-byte case pairs", func(t *testing.T) {
		// "Ⱥ" grows from two to three bytes when lowercased; matching
		// must stay rune-aligned around it.
		entries := []*core.FileEntry{fileEntry("Ⱥx.txt", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Find = "x"
		cfg.Replace = "y"
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		if vr := op.Validate(ctx, env, entries); !vr.Valid {
			t.Fatalf("validate failed: %v", vr.ErrorMessages())
		}
		res := op.Execute(ctx, env, entries)
		got := res.Changes[0].NewPath
		if got != "Ⱥy.txt" {
			t.Errorf("NewPath = %q", got)
		}
		if !utf8.ValidString(got) {
			t.Errorf("NewPath %q is not valid UTF-8", got)
		}
	})

	t.Run("find/replace folds case pairs of unequal length", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("log-ⱥ.txt", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Find = "Ⱥ"
		cfg.Replace = "a"
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if got := res.Changes[0].NewPath; got != "log-a.txt" {
			t.Errorf("NewPath = %q", got)
		}
	})

	t.Run("title case treats punctuation as word boundaries", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("my-file_draft v2.txt", 1, now)}
		cfg := operations.DefaultRenameConfig()
		cfg.Case = operations.CaseTitle
		op := operations.NewRenameOperation(cfg)
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if got := res.Changes[0].NewPath; got != "My-File_Draft V2.txt" {
			t.Errorf("NewPath = %q", got)
		}
	})

	t.Run("configuration bounds fail validation", func(t *testing.T) {
		entries := []*core.FileEntry{fileEntry("a.txt", 1, now)}
		env := operations.NewContext(seedFS(entries))

		bad := operations.DefaultRenameConfig()
		bad.Numbering = true
		bad.StartNumber = -1
		if vr := operations.NewRenameOperation(bad).Validate(ctx, env, entries); vr.Valid {
			t.Error("negative start number must be invalid")
		}

		bad = operations.DefaultRenameConfig()
		bad.Numbering = true
		bad.PadWidth = 0
		if vr := operations.NewRenameOperation(bad).Validate(ctx, env, entries); vr.Valid {
			t.Error("pad width below 1 must be invalid")
		}

		bad = operations.DefaultRenameConfig()
		bad.Prefix = `a/b`
		if vr := operations.NewRenameOperation(bad).Validate(ctx, env, entries); !vr.HasKind(core.ErrInvalidCharacters) {
			t.Error("illegal prefix characters must be invalid")
		}
	})
}
