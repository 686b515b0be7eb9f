package descriptor

import (
	"reflect"
	"sync"
)

var cache = struct {
	sync.RWMutex
	byType map[reflect.Type]*Descriptor
}{byType: make(map[reflect.Type]*Descriptor)}

// ForType returns the descriptor for the entity type T.
func ForType[T any]() (*Descriptor, error) {
	return For(reflect.TypeFor[T]())
}

// For returns the descriptor for the given entity type, building it on first
// use. Pointer types are dereferenced to their element struct.
func For(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, &UnsupportedTargetError{Type: t, Reason: "nil type"}
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cache.RLock()
	d, ok := cache.byType[t]
	cache.RUnlock()

	if ok {
		return d, nil
	}

	d, err := build(t)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	defer cache.Unlock()

	// Another goroutine may have built it meanwhile; keep the first instance
	// so callers always observe the same pointer per type.
	if prior, ok := cache.byType[t]; ok {
		return prior, nil
	}

	cache.byType[t] = d

	return d, nil
}

func build(t reflect.Type) (*Descriptor, error) {
	switch t.Kind() {
	case reflect.Struct:
		// ok
	case reflect.Interface:
		return nil, &UnsupportedTargetError{Type: t, Reason: "interface types are abstract"}
	default:
		return nil, &UnsupportedTargetError{Type: t, Reason: "not a struct type"}
	}

	if t.Name() == "" || t.PkgPath() == "" {
		return nil, &NamingScopeError{Type: t}
	}

	return &Descriptor{Type: t, Fields: flatten(t, nil)}, nil
}

// flatten accumulates the field list base-first: embedded value structs
// contribute their flattened lists before the type's own named fields, and
// an own field overrides a same-named promoted field in place, matching
// ordinary Go field shadowing.
func flatten(t reflect.Type, prefix []int) []Field {
	var fields []Field

	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.PkgPath != "" || !isEmbeddedStruct(sf) {
			continue
		}

		index := append(append([]int{}, prefix...), i)
		for _, base := range flatten(sf.Type, index) {
			fields = upsert(fields, base)
		}
	}

	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.PkgPath != "" || isEmbeddedStruct(sf) {
			continue
		}

		fields = upsert(fields, Field{
			Name:     sf.Name,
			Type:     sf.Type,
			Nullable: isNullable(sf.Type),
			Owner:    t,
			Index:    append(append([]int{}, prefix...), i),
			Tag:      sf.Tag,
		})
	}

	return fields
}

// isEmbeddedStruct reports whether the field is an embedded value struct.
// Embedded pointers are kept as ordinary nullable fields: traversing them
// through FieldByIndex would panic on nil intermediates.
func isEmbeddedStruct(sf reflect.StructField) bool {
	return sf.Anonymous && sf.Type.Kind() == reflect.Struct
}

// upsert appends f, or replaces an earlier same-named field in place so the
// overriding declaration keeps the base field's position.
func upsert(fields []Field, f Field) []Field {
	for i := range fields {
		if fields[i].Name == f.Name {
			fields[i] = f
			return fields
		}
	}

	return append(fields, f)
}

func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
