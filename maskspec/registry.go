package maskspec

import (
	"fmt"
	"reflect"
	"sync"

	"entitymask/descriptor"
)

type specKey struct {
	entity reflect.Type
	mask   string
}

// Registry is the thread-safe store of mask specifications, keyed by
// (entity type, mask name). Entity types are also indexed by their short
// type name for declaration-file resolution.
type Registry struct {
	mu       sync.RWMutex
	specs    map[specKey]*Spec
	ordered  map[reflect.Type][]string
	entities map[string]reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs:    make(map[specKey]*Spec),
		ordered:  make(map[reflect.Type][]string),
		entities: make(map[string]reflect.Type),
	}
}

// EntityType normalizes an entity reference (instance, pointer or
// reflect.Type) to its struct type.
func EntityType(entity any) reflect.Type {
	t, ok := entity.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(entity)
	}

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// Register adds a mask spec for the given entity. The entity descriptor is
// built eagerly so unsupported targets fail at registration, not first use.
func (r *Registry) Register(entity any, spec *Spec) error {
	t := EntityType(entity)

	if spec == nil || spec.Name == "" {
		return fmt.Errorf("mask spec for %v must have a name", t)
	}

	if _, err := descriptor.For(t); err != nil {
		return err
	}

	if spec.TargetName == "" {
		spec.TargetName = t.Name() + spec.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := specKey{entity: t, mask: spec.Name}
	if _, exists := r.specs[key]; exists {
		return fmt.Errorf("mask %q already registered for %v", spec.Name, t)
	}

	r.specs[key] = spec
	r.ordered[t] = append(r.ordered[t], spec.Name)
	r.entities[t.Name()] = t

	return nil
}

// BindEntity indexes an entity type by name without registering a mask,
// so declaration files can reference it before any mask exists.
func (r *Registry) BindEntity(entity any) error {
	t := EntityType(entity)
	if _, err := descriptor.For(t); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[t.Name()] = t

	return nil
}

// Lookup returns the spec for (entity type, mask name).
func (r *Registry) Lookup(t reflect.Type, mask string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.specs[specKey{entity: EntityType(t), mask: mask}]

	return s, ok
}

// Has reports whether a mask with the given name exists for the type.
func (r *Registry) Has(t reflect.Type, mask string) bool {
	_, ok := r.Lookup(t, mask)
	return ok
}

// Masks returns the mask names registered for the type, in registration order.
func (r *Registry) Masks(t reflect.Type) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.ordered[EntityType(t)]

	out := make([]string, len(names))
	copy(out, names)

	return out
}

// EntityByName resolves a registered entity type from its short type name.
func (r *Registry) EntityByName(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.entities[name]

	return t, ok
}
