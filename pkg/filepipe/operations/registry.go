package operations

import (
	"fmt"
	"sort"
)

// Constructor builds a fresh operation with its default configuration.
type Constructor func() Operation

// Registry maps string identifiers to operation constructors. It is the
// single extension seam for adding operation variants: a host registers
// a constructor and pipelines can be built from serialized definitions
// without the engine knowing the variant. Registries are plain values
// owned by the host; there is no package-level global.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor under an identifier.
func (r *Registry) Register(id string, ctor Constructor) error {
	if id == "" {
		return fmt.Errorf("operation identifier cannot be empty")
	}
	if ctor == nil {
		return fmt.Errorf("constructor for %q cannot be nil", id)
	}
	if _, exists := r.ctors[id]; exists {
		return fmt.Errorf("operation %q is already registered", id)
	}
	r.ctors[id] = ctor
	return nil
}

// Create builds a new operation for the identifier.
func (r *Registry) Create(id string) (Operation, error) {
	ctor, ok := r.ctors[id]
	if !ok {
		return nil, fmt.Errorf("unknown operation identifier: %q", id)
	}
	return ctor(), nil
}

// Has reports whether an identifier is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.ctors[id]
	return ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.ctors))
	for id := range r.ctors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultRegistry returns a registry with the built-in operations.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	must(r.Register("filter", func() Operation { return NewFilterOperation(FilterConfig{}) }))
	must(r.Register("rename", func() Operation { return NewRenameOperation(DefaultRenameConfig()) }))
	must(r.Register("move", func() Operation { return NewMoveOperation(DefaultMoveConfig()) }))
	must(r.Register("delete", func() Operation { return NewDeleteOperation() }))
	return r
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
