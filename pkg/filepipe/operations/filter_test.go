package operations_test

import (
	"context"
	"testing"
	"time"

	"github.com/arthur-debert/filepipe/pkg/filepipe/core"
	"github.com/arthur-debert/filepipe/pkg/filepipe/filesystem"
	"github.com/arthur-debert/filepipe/pkg/filepipe/operations"
)

func int64p(v int64) *int64 { return &v }

func timep(v time.Time) *time.Time { return &v }

// seedFS registers every entry on a fresh test filesystem so generic
// existence validation passes.
func seedFS(entries []*core.FileEntry) *filesystem.TestFileSystem {
	tfs := filesystem.NewTestFileSystem()
	for _, e := range entries {
		if e.IsDir {
			tfs.AddDir(e.Path)
		} else {
			tfs.AddFile(e.Path, e.Size, e.ModTime)
		}
	}
	return tfs
}

func fileEntry(path string, size int64, modTime time.Time) *core.FileEntry {
	e := core.NewFileEntry(path)
	e.Size = size
	e.ModTime = modTime
	return e
}

func TestFilterOperation(t *testing.T) {
	ctx := context.Background()
	mod := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	entries := []*core.FileEntry{
		fileEntry("report.txt", 100, mod),
		fileEntry("photo.jpg", 5000, mod.AddDate(0, -2, 0)),
		fileEntry("notes.TXT", 10, mod),
	}

	t.Run("literal pattern is a case-insensitive substring", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{Pattern: "REPORT"})
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if !res.Success {
			t.Fatalf("execute failed: %s", res.Message)
		}
		if len(res.Changes) != 1 || res.Changes[0].OriginalPath != "report.txt" {
			t.Errorf("changes = %+v", res.Changes)
		}
	})

	t.Run("extensions are normalized and case-insensitive", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{Extensions: []string{"txt"}})
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if len(res.Changes) != 2 {
			t.Errorf("want report.txt and notes.TXT, got %d changes", len(res.Changes))
		}
	})

	t.Run("size and date ranges are inclusive", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{
			MinSize:       int64p(100),
			MaxSize:       int64p(100),
			ModifiedAfter: timep(mod),
		})
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if len(res.Changes) != 1 || res.Changes[0].OriginalPath != "report.txt" {
			t.Errorf("changes = %+v", res.Changes)
		}
	})

	t.Run("matched changes carry the passthrough convention", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{Pattern: "report"})
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		c := res.Changes[0]
		if c.Kind != core.ChangeModify || !c.Applied || c.Description != "Matched filter criteria" {
			t.Errorf("change = %+v", c)
		}
		if c.NewPath != c.OriginalPath {
			t.Error("filter must not propose a path change")
		}
	})

	t.Run("preview and execute produce identical change sets", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{Extensions: []string{".txt"}})
		tfs := seedFS(entries)
		env := operations.NewContext(tfs)

		preview := op.Preview(ctx, env, entries)
		execute := op.Execute(ctx, env, entries)
		if len(preview.Changes) != len(execute.Changes) {
			t.Fatalf("preview %d changes, execute %d", len(preview.Changes), len(execute.Changes))
		}
		for i := range preview.Changes {
			if *preview.Changes[i] != *execute.Changes[i] {
				t.Errorf("change %d differs: %+v vs %+v", i, preview.Changes[i], execute.Changes[i])
			}
		}
		if tfs.MutationCalls != 0 {
			t.Errorf("filter made %d port mutations", tfs.MutationCalls)
		}
	})

	t.Run("re-running on survivors is idempotent", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{Extensions: []string{".txt"}})
		env := operations.NewContext(seedFS(entries))

		first := op.Execute(ctx, env, entries)
		var survivors []*core.FileEntry
		for _, c := range first.Changes {
			survivors = append(survivors, core.NewFileEntry(c.NewPath))
		}
		for _, s := range survivors {
			s.ModTime = mod
		}

		second := op.Execute(ctx, operations.NewContext(seedFS(survivors)), survivors)
		if len(second.Changes) != len(survivors) {
			t.Errorf("second run dropped entries: %d of %d", len(second.Changes), len(survivors))
		}
	})

	t.Run("directories are excluded unless included", func(t *testing.T) {
		dir := core.NewFileEntry("subdir")
		dir.IsDir = true
		all := append(append([]*core.FileEntry(nil), entries...), dir)
		env := operations.NewContext(seedFS(all))

		res := operations.NewFilterOperation(operations.FilterConfig{}).Execute(ctx, env, all)
		if len(res.Changes) != 3 {
			t.Errorf("directory leaked into matches: %d changes", len(res.Changes))
		}

		res = operations.NewFilterOperation(operations.FilterConfig{IncludeDirs: true}).Execute(ctx, env, all)
		if len(res.Changes) != 4 {
			t.Errorf("IncludeDirs should match the directory: %d changes", len(res.Changes))
		}
	})

	t.Run("glob mode", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{
			Pattern: "*.jpg", Mode: operations.MatchGlob,
		})
		env := operations.NewContext(seedFS(entries))

		res := op.Execute(ctx, env, entries)
		if len(res.Changes) != 1 || res.Changes[0].OriginalPath != "photo.jpg" {
			t.Errorf("changes = %+v", res.Changes)
		}
	})

	t.Run("invalid regex fails validation with InvalidPattern", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{
			Pattern: "(unclosed", Mode: operations.MatchRegex,
		})
		env := operations.NewContext(seedFS(entries))

		vr := op.Validate(ctx, env, entries)
		if vr.Valid || !vr.HasKind(core.ErrInvalidPattern) {
			t.Error("expected InvalidPattern")
		}
		if res := op.Execute(ctx, env, entries); res.Success {
			t.Error("execute must fail when validation fails")
		}
	})

	t.Run("inverted ranges fail validation", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{
			MinSize: int64p(10), MaxSize: int64p(5),
		})
		env := operations.NewContext(seedFS(entries))
		if vr := op.Validate(ctx, env, entries); vr.Valid {
			t.Error("min>max must be invalid")
		}
	})

	t.Run("clone does not alias configuration", func(t *testing.T) {
		op := operations.NewFilterOperation(operations.FilterConfig{Extensions: []string{".txt"}})
		cl := op.Clone().(*operations.FilterOperation)
		cfg := cl.FilterConfig()
		cfg.Extensions[0] = ".jpg"
		if op.FilterConfig().Extensions[0] != ".txt" {
			t.Error("clone shares the extensions slice")
		}
	})
}
