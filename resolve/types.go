package resolve

import (
	"reflect"

	"entitymask/descriptor"
	"entitymask/maskspec"
)

//go:generate go tool stringer -type=AccessKind -output=accesskind_string.go

// AccessKind describes how an exposed field's value is derived from its
// source entity field.
type AccessKind int

const (
	// AccessCopy reads and writes the raw field value.
	AccessCopy AccessKind = iota
	// AccessConverted routes reads through Converter.ToView and writes
	// through Converter.ToEntity.
	AccessConverted
	// AccessTransformed routes reads through a forward-only transformer.
	// Transformed fields are skipped on every write path.
	AccessTransformed
	// AccessDeepSingle projects a nested entity reference into its own mask.
	AccessDeepSingle
	// AccessDeepCollection projects an entity collection through a lazy
	// collection proxy.
	AccessDeepCollection
)

// FieldProjection is the resolved, immutable projection of one exposed
// field. Exactly one of Converter, Transformer and NestedMask is populated,
// matching Access.
type FieldProjection struct {
	// Source is the descriptor field the projection reads and writes.
	Source descriptor.Field
	// ExposedName is the view-side field name.
	ExposedName string
	// ExposedType is the static view-side type. Deep-mapped fields and
	// converters without a TypedConverter binding expose `any`.
	ExposedType reflect.Type
	// Access is the derivation kind.
	Access AccessKind
	// Converter is populated for AccessConverted.
	Converter maskspec.Converter
	// Transformer is populated for AccessTransformed.
	Transformer *maskspec.Transform
	// NestedMask and NestedType are populated for the deep-mapped kinds.
	// The nested plan itself is resolved lazily on first materialization.
	NestedMask string
	NestedType reflect.Type
	// Tags is the resolved, ordered metadata tag set.
	Tags []maskspec.Tag
}

// Tag returns the first resolved tag with the given key.
func (p *FieldProjection) Tag(key string) (maskspec.Tag, bool) {
	for _, t := range p.Tags {
		if t.Key == key {
			return t, true
		}
	}

	return maskspec.Tag{}, false
}

// Deep reports whether the projection is deep-mapped.
func (p *FieldProjection) Deep() bool {
	return p.Access == AccessDeepSingle || p.Access == AccessDeepCollection
}

// Plan is the complete resolved projection plan of one (entity, mask) pair.
type Plan struct {
	// Entity is the entity struct type.
	Entity reflect.Type
	// Mask is the mask name.
	Mask string
	// Spec is the specification the plan was resolved from.
	Spec *maskspec.Spec
	// Fields lists the exposed field projections in descriptor order.
	Fields []FieldProjection
}

// Field returns the projection for the given source field name.
func (p *Plan) Field(sourceName string) (*FieldProjection, bool) {
	for i := range p.Fields {
		if p.Fields[i].Source.Name == sourceName {
			return &p.Fields[i], true
		}
	}

	return nil, false
}

// ByExposed returns the projection for the given exposed name.
func (p *Plan) ByExposed(name string) (*FieldProjection, bool) {
	for i := range p.Fields {
		if p.Fields[i].ExposedName == name {
			return &p.Fields[i], true
		}
	}

	return nil, false
}

// Key returns the "Entity.Mask" pair string used in diagnostics.
func (p *Plan) Key() string {
	return p.Entity.Name() + "." + p.Mask
}
