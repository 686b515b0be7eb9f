package resolve

import (
	"log/slog"
	"reflect"
	"sync"

	"entitymask/descriptor"
	"entitymask/maskspec"
)

var anyType = reflect.TypeFor[any]()

type planKey struct {
	entity reflect.Type
	mask   string
}

// Resolver turns registered mask specifications into projection plans.
// Each (entity type, mask name) pair resolves at most once; concurrent
// first resolutions are serialized and observe the single cached plan.
type Resolver struct {
	registry *maskspec.Registry
	logger   *slog.Logger

	mu    sync.Mutex
	plans map[planKey]*Plan
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug-level resolution traces.
// If unset, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a Resolver over the given registry.
func New(reg *maskspec.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: reg,
		plans:    make(map[planKey]*Plan),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Registry returns the specification registry the resolver reads from.
func (r *Resolver) Registry() *maskspec.Registry {
	return r.registry
}

// ResolveFor resolves the plan for the dynamic type of the given entity value.
func (r *Resolver) ResolveFor(entity any, mask string) (*Plan, error) {
	return r.Resolve(maskspec.EntityType(entity), mask)
}

// Resolve returns the projection plan for (entity type, mask name),
// resolving and caching it on first use. Failed resolutions are not cached:
// a corrected registration may succeed later.
func (r *Resolver) Resolve(t reflect.Type, mask string) (*Plan, error) {
	t = maskspec.EntityType(t)
	key := planKey{entity: t, mask: mask}

	r.mu.Lock()
	defer r.mu.Unlock()

	if plan, ok := r.plans[key]; ok {
		return plan, nil
	}

	plan, err := r.resolve(t, mask)
	if err != nil {
		return nil, err
	}

	r.plans[key] = plan
	r.logger.Debug("resolved mask plan",
		"entity", t.String(), "mask", mask, "fields", len(plan.Fields))

	return plan, nil
}

func (r *Resolver) resolve(t reflect.Type, mask string) (*Plan, error) {
	spec, ok := r.registry.Lookup(t, mask)
	if !ok {
		return nil, &ConfigurationError{Entity: t, Mask: mask, Reason: "mask is not registered"}
	}

	desc, err := descriptor.For(t)
	if err != nil {
		return nil, err
	}

	members, err := membership(desc, spec, t)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Entity: desc.Type, Mask: mask, Spec: spec}

	for _, field := range members {
		proj, err := r.projectField(desc.Type, spec, field)
		if err != nil {
			return nil, err
		}

		plan.Fields = append(plan.Fields, proj)
	}

	return plan, nil
}

// membership computes the member field list in descriptor order.
//
// Whitelist membership is exactly the whitelist: an explicit hide rule on a
// whitelisted name is ignored. Every whitelisted name must resolve against
// the flattened hierarchy.
func membership(desc *descriptor.Descriptor, spec *maskspec.Spec, t reflect.Type) ([]descriptor.Field, error) {
	if spec.Mode == maskspec.Whitelist {
		if len(spec.Whitelist) == 0 {
			return nil, &ConfigurationError{
				Entity: t, Mask: spec.Name,
				Reason: "whitelist mode requires a non-empty whitelist",
			}
		}

		listed := make(map[string]bool, len(spec.Whitelist))
		for _, name := range spec.Whitelist {
			if _, ok := desc.Field(name); !ok {
				return nil, &ConfigurationError{
					Entity: t, Mask: spec.Name, Field: name,
					Reason: "whitelisted field not found in entity hierarchy",
				}
			}

			listed[name] = true
		}

		var members []descriptor.Field
		for _, f := range desc.Fields {
			if listed[f.Name] {
				members = append(members, f)
			}
		}

		return members, nil
	}

	var members []descriptor.Field

	for _, f := range desc.Fields {
		if rule := spec.Rule(f.Name); rule != nil && rule.Hidden {
			continue
		}

		members = append(members, f)
	}

	return members, nil
}

// projectField computes the projection for one member field. Access kind
// precedence: converter, then transformer, then deep mapping, then copy.
func (r *Resolver) projectField(t reflect.Type, spec *maskspec.Spec, field descriptor.Field) (FieldProjection, error) {
	proj := FieldProjection{
		Source:      field,
		ExposedName: field.Name,
		ExposedType: field.Type,
		Access:      AccessCopy,
	}

	rule := spec.Rule(field.Name)
	if rule != nil && rule.Rename != "" {
		proj.ExposedName = rule.Rename
	}

	switch {
	case rule != nil && rule.Converter != nil:
		conv, ok := rule.Converter.(maskspec.Converter)
		if !ok {
			return proj, &TypeContractError{Entity: t, Mask: spec.Name, Field: field.Name, Binding: rule.Converter}
		}

		proj.Access = AccessConverted
		proj.Converter = conv
		proj.ExposedType = anyType

		if typed, ok := conv.(maskspec.TypedConverter); ok {
			proj.ExposedType = typed.ViewType()
		}

	case rule != nil && rule.Transformer != nil:
		tr, err := maskspec.ParseTransform(rule.Transformer)
		if err != nil {
			return proj, &TransformerSignatureError{Entity: t, Mask: spec.Name, Field: field.Name, Err: err}
		}

		if !field.Type.AssignableTo(tr.In) {
			return proj, &TransformerSignatureError{
				Entity: t, Mask: spec.Name, Field: field.Name,
				Err: &UnsupportedOperationError{
					Op:     "transform",
					Reason: "field type " + field.Type.String() + " is not assignable to transformer input " + tr.In.String(),
				},
			}
		}

		proj.Access = AccessTransformed
		proj.Transformer = tr
		proj.ExposedType = tr.Out

	case spec.DeepMapping:
		r.bindDeep(&proj, spec, rule)
	}

	var fieldRules []maskspec.TagRule
	if rule != nil {
		fieldRules = rule.TagRules
	}

	proj.Tags = maskspec.ResolveTags(maskspec.ParseTags(field.Tag), spec.TagRules, fieldRules)

	return proj, nil
}

// bindDeep binds a deep-mapped field by nested mask name. The nested plan
// is never resolved here; lazy name-keyed binding is what keeps cyclic
// entity graphs from recursing without bound. A field whose nested type has
// no matching mask (literal name or alias chain) stays AccessCopy: the raw
// reference passes through.
func (r *Resolver) bindDeep(proj *FieldProjection, spec *maskspec.Spec, rule *maskspec.FieldRule) {
	nestedType, collection := deepTarget(proj.Source.Type)
	if nestedType == nil {
		return
	}

	nested := r.nestedMaskName(nestedType, spec.Name, rule)
	if nested == "" {
		return
	}

	proj.NestedMask = nested
	proj.NestedType = nestedType
	proj.ExposedType = anyType

	if collection {
		proj.Access = AccessDeepCollection
	} else {
		proj.Access = AccessDeepSingle
	}
}

// deepTarget returns the candidate nested entity struct type of a field:
// the struct itself for single references (value or pointer), the element
// struct for slices and arrays.
func deepTarget(t reflect.Type) (nested reflect.Type, collection bool) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if elem := structElem(t.Elem()); elem != nil {
			return elem, true
		}

	case reflect.Pointer, reflect.Struct:
		if elem := structElem(t); elem != nil {
			return elem, false
		}
	}

	return nil, false
}

func structElem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct && t.Name() != "" {
		return t
	}

	return nil
}

// nestedMaskName prefers a mask literally named like the parent mask, then
// walks the field's alias chain in declared order.
func (r *Resolver) nestedMaskName(nestedType reflect.Type, parentMask string, rule *maskspec.FieldRule) string {
	if r.registry.Has(nestedType, parentMask) {
		return parentMask
	}

	if rule == nil {
		return ""
	}

	for _, alias := range rule.Aliases {
		if r.registry.Has(nestedType, alias) {
			return alias
		}
	}

	return ""
}
