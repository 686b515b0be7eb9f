package mask

import (
	"fmt"
	"reflect"

	"entitymask/resolve"
)

// Mask is a live, named view over exactly one entity instance. It owns no
// field data: reads re-derive from the entity on every call, writes pass
// straight through. Mask instances are created on demand, never cached and
// never shared.
type Mask struct {
	entity reflect.Value // non-nil ptr to struct
	plan   *resolve.Plan
	mat    *Materializer
}

// Name returns the mask name.
func (k *Mask) Name() string { return k.plan.Mask }

// TargetName returns the exposed view type name.
func (k *Mask) TargetName() string { return k.plan.Spec.TargetName }

// Plan returns the resolved projection plan backing the mask.
func (k *Mask) Plan() *resolve.Plan { return k.plan }

// Entity unwraps the mask to its backing entity reference, zero-copy.
func (k *Mask) Entity() any { return k.entity.Interface() }

// Fields returns the exposed field names in plan order.
func (k *Mask) Fields() []string {
	names := make([]string, 0, len(k.plan.Fields))
	for i := range k.plan.Fields {
		names = append(names, k.plan.Fields[i].ExposedName)
	}

	return names
}

// Get computes the exposed value of one field by its exposed name.
func (k *Mask) Get(name string) (any, error) {
	proj, ok := k.plan.ByExposed(name)
	if !ok {
		return nil, &resolve.UnsupportedOperationError{
			Op:     "get " + name,
			Reason: fmt.Sprintf("mask %s does not expose %q", k.plan.Key(), name),
		}
	}

	return k.read(proj)
}

func (k *Mask) read(proj *resolve.FieldProjection) (any, error) {
	raw := k.entity.Elem().FieldByIndex(proj.Source.Index)

	switch proj.Access {
	case resolve.AccessConverted:
		return proj.Converter.ToView(raw.Interface())

	case resolve.AccessTransformed:
		return proj.Transformer.Apply(raw.Interface())

	case resolve.AccessDeepSingle:
		ref := singleRef(raw)
		if !ref.IsValid() {
			return nil, nil
		}

		nested, err := k.mat.projectValue(ref, proj.NestedMask)
		if err != nil {
			return nil, err
		}

		return nested, nil

	case resolve.AccessDeepCollection:
		return k.mat.newProxy(raw, proj)

	default:
		return raw.Interface(), nil
	}
}

// Set writes one exposed field through to the backing entity. Transformed
// fields reject writes: transformers are forward-only.
func (k *Mask) Set(name string, value any) error {
	proj, ok := k.plan.ByExposed(name)
	if !ok {
		return &resolve.UnsupportedOperationError{
			Op:     "set " + name,
			Reason: fmt.Sprintf("mask %s does not expose %q", k.plan.Key(), name),
		}
	}

	raw := k.entity.Elem().FieldByIndex(proj.Source.Index)

	switch proj.Access {
	case resolve.AccessCopy:
		return assign(raw, value)

	case resolve.AccessConverted:
		entityVal, err := proj.Converter.ToEntity(value)
		if err != nil {
			return fmt.Errorf("mask %s field %s: %w", k.plan.Key(), name, err)
		}

		return assign(raw, entityVal)

	case resolve.AccessTransformed:
		return &resolve.UnsupportedOperationError{
			Op:     "set " + name,
			Reason: "transformed fields are forward-only and define no inverse",
		}

	case resolve.AccessDeepSingle:
		return k.setDeepSingle(raw, proj, value)

	default: // AccessDeepCollection
		proxy, err := k.mat.newProxy(raw, proj)
		if err != nil {
			return err
		}

		return proxy.Assign(value)
	}
}

// setDeepSingle accepts nil, a live nested mask (unwrapped zero-copy) or a
// compatible entity reference.
func (k *Mask) setDeepSingle(raw reflect.Value, proj *resolve.FieldProjection, value any) error {
	if value == nil {
		if !proj.Source.Nullable {
			return &resolve.UnsupportedOperationError{
				Op:     "set " + proj.ExposedName,
				Reason: "field is not nullable",
			}
		}

		raw.Set(reflect.Zero(raw.Type()))

		return nil
	}

	if nested, ok := value.(*Mask); ok {
		if nested.plan.Entity != proj.NestedType {
			return fmt.Errorf("mask over %v cannot back field %s of type %v",
				nested.plan.Entity, proj.ExposedName, proj.NestedType)
		}

		value = nested.Entity()
	}

	return assign(raw, value)
}

// assign performs a type-checked reflect assignment, dereferencing a
// pointer source into a value field when needed.
func assign(dst reflect.Value, value any) error {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		if !isNilable(dst.Kind()) {
			return fmt.Errorf("cannot assign nil to %v", dst.Type())
		}

		dst.Set(reflect.Zero(dst.Type()))

		return nil
	}

	if v.Type().AssignableTo(dst.Type()) {
		dst.Set(v)
		return nil
	}

	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Type().Elem().AssignableTo(dst.Type()) {
		dst.Set(v.Elem())
		return nil
	}

	return fmt.Errorf("cannot assign %v to %v", v.Type(), dst.Type())
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// AsMap snapshots the mask's exposed values keyed by exposed name. Deep
// fields appear as nested *Mask and *Proxy values.
func (k *Mask) AsMap() (map[string]any, error) {
	out := make(map[string]any, len(k.plan.Fields))

	for i := range k.plan.Fields {
		proj := &k.plan.Fields[i]

		v, err := k.read(proj)
		if err != nil {
			return nil, err
		}

		out[proj.ExposedName] = v
	}

	return out, nil
}
