package operations_test

import (
	"reflect"
	"testing"

	"github.com/arthur-debert/filepipe/pkg/filepipe/operations"
)

func TestRegistry(t *testing.T) {
	t.Run("default registry carries the built-in operations", func(t *testing.T) {
		reg := operations.DefaultRegistry()
		want := []string{"delete", "filter", "move", "rename"}
		if got := reg.IDs(); !reflect.DeepEqual(got, want) {
			t.Errorf("IDs = %v, want %v", got, want)
		}
		for _, id := range want {
			op, err := reg.Create(id)
			if err != nil {
				t.Fatalf("Create(%q) failed: %v", id, err)
			}
			if op.ID() != id {
				t.Errorf("created operation reports ID %q, want %q", op.ID(), id)
			}
		}
	})

	t.Run("unknown identifiers fail", func(t *testing.T) {
		reg := operations.DefaultRegistry()
		if _, err := reg.Create("explode"); err == nil {
			t.Error("expected unknown identifier error")
		}
		if reg.Has("explode") {
			t.Error("Has should be false for unregistered ids")
		}
	})

	t.Run("host-defined operations register", func(t *testing.T) {
		reg := operations.NewRegistry()
		err := reg.Register("filter", func() operations.Operation {
			return operations.NewFilterOperation(operations.FilterConfig{})
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !reg.Has("filter") {
			t.Error("registered id not found")
		}
		if err := reg.Register("filter", nil); err == nil {
			t.Error("nil constructor must be rejected")
		}
	})

	t.Run("duplicate registration is rejected", func(t *testing.T) {
		reg := operations.DefaultRegistry()
		err := reg.Register("filter", func() operations.Operation {
			return operations.NewFilterOperation(operations.FilterConfig{})
		})
		if err == nil {
			t.Error("expected duplicate registration error")
		}
	})

	t.Run("clone yields an independent operation", func(t *testing.T) {
		cfg := operations.DefaultRenameConfig()
		cfg.Prefix = "x_"
		op := operations.NewRenameOperation(cfg)

		cl := op.Clone().(*operations.RenameOperation)
		if cl == op {
			t.Fatal("clone returned the same instance")
		}
		if cl.RenameConfig().Prefix != "x_" {
			t.Error("clone lost configuration")
		}
	})
}
