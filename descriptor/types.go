package descriptor

import (
	"fmt"
	"reflect"
)

// Field describes a single exposed struct field in the flattened hierarchy.
type Field struct {
	// Name is the Go field name.
	Name string
	// Type is the declared field type.
	Type reflect.Type
	// Nullable reports whether the zero value of the field is an absent
	// reference (pointer, slice, map, interface, func or chan kinds).
	Nullable bool
	// Owner is the struct type that declared the field. For promoted fields
	// this is the embedded type, not the entity type itself.
	Owner reflect.Type
	// Index is the index path usable with reflect.Value.FieldByIndex.
	Index []int
	// Tag is the raw struct tag of the declaring field.
	Tag reflect.StructTag
}

// Descriptor is the ordered, flattened field list of one entity type.
// Immutable once built; one instance per distinct entity type.
type Descriptor struct {
	// Type is the described entity struct type.
	Type reflect.Type
	// Fields lists the exposed fields, base-first across the embedded chain.
	Fields []Field
}

// Field returns the descriptor field with the given name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Names returns all field names in descriptor order.
func (d *Descriptor) Names() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}

	return names
}

// UnsupportedTargetError reports an entity type that cannot host masks:
// interfaces and non-struct kinds have no concrete, instantiable field set.
type UnsupportedTargetError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported mask target %v: %s", e.Type, e.Reason)
}

// NamingScopeError reports an entity type outside any package scope
// (unnamed struct literals), which would make mask naming ambiguous.
type NamingScopeError struct {
	Type reflect.Type
}

func (e *NamingScopeError) Error() string {
	return fmt.Sprintf("mask target %v has no package scope", e.Type)
}
