package mask

import (
	"fmt"
	"reflect"

	"entitymask/resolve"
)

// ApplyChangesTo writes the mask's current exposed values onto the target
// entity's corresponding fields. Fields the mask does not expose are never
// read and never written; transformed fields are skipped (forward-only).
func (k *Mask) ApplyChangesTo(target any) error {
	tv, err := entityPtr(k.plan, target)
	if err != nil {
		return err
	}

	return k.mat.applyFields(k.plan, k.entity, tv)
}

// UpdateEntityFrom is the symmetric path: it reads the source entity's
// exposed fields and writes them onto the mask's backing entity.
func (k *Mask) UpdateEntityFrom(source any) error {
	sv, err := entityPtr(k.plan, source)
	if err != nil {
		return err
	}

	return k.mat.applyFields(k.plan, sv, k.entity)
}

// applyFields synchronizes the plan's exposed fields from src to dst, both
// ptr-to-struct values of the plan's entity type.
func (m *Materializer) applyFields(plan *resolve.Plan, src, dst reflect.Value) error {
	if src.Pointer() == dst.Pointer() {
		return nil // already live
	}

	for i := range plan.Fields {
		proj := &plan.Fields[i]
		srcF := src.Elem().FieldByIndex(proj.Source.Index)
		dstF := dst.Elem().FieldByIndex(proj.Source.Index)

		switch proj.Access {
		case resolve.AccessTransformed:
			continue // no inverse

		case resolve.AccessCopy:
			dstF.Set(srcF)

		case resolve.AccessConverted:
			// The mask-side value is ToView(raw); inverting it through
			// ToEntity keeps converter round-trip behavior observable.
			view, err := proj.Converter.ToView(srcF.Interface())
			if err != nil {
				return fmt.Errorf("apply %s.%s: %w", plan.Key(), proj.ExposedName, err)
			}

			entityVal, err := proj.Converter.ToEntity(view)
			if err != nil {
				return fmt.Errorf("apply %s.%s: %w", plan.Key(), proj.ExposedName, err)
			}

			if err := assign(dstF, entityVal); err != nil {
				return fmt.Errorf("apply %s.%s: %w", plan.Key(), proj.ExposedName, err)
			}

		case resolve.AccessDeepSingle:
			if err := m.applyDeepSingle(proj, srcF, dstF); err != nil {
				return fmt.Errorf("apply %s.%s: %w", plan.Key(), proj.ExposedName, err)
			}

		case resolve.AccessDeepCollection:
			if err := m.applyDeepCollection(proj, srcF, dstF); err != nil {
				return fmt.Errorf("apply %s.%s: %w", plan.Key(), proj.ExposedName, err)
			}
		}
	}

	return nil
}

// applyDeepSingle recurses through a nested reference. Same backing
// reference is a no-op (already live); a nil destination adopts the source
// reference zero-copy; otherwise the nested mask's own apply path runs.
func (m *Materializer) applyDeepSingle(proj *resolve.FieldProjection, srcF, dstF reflect.Value) error {
	nestedPlan, err := m.resolver.Resolve(proj.NestedType, proj.NestedMask)
	if err != nil {
		return err
	}

	if srcF.Kind() != reflect.Pointer {
		return m.applyFields(nestedPlan, srcF.Addr(), dstF.Addr())
	}

	switch {
	case srcF.IsNil():
		dstF.Set(reflect.Zero(dstF.Type()))
		return nil

	case dstF.IsNil():
		dstF.Set(srcF)
		return nil

	case srcF.Pointer() == dstF.Pointer():
		return nil // already live

	default:
		return m.applyFields(nestedPlan, srcF, dstF)
	}
}

// applyDeepCollection synchronizes element-wise in source order. Elements
// backed by the same entity reference need no copy-back; existing
// destination elements receive a recursive apply so their non-exposed
// fields survive; source elements past the destination length follow the
// detached policy.
func (m *Materializer) applyDeepCollection(proj *resolve.FieldProjection, srcF, dstF reflect.Value) error {
	nestedPlan, err := m.resolver.Resolve(proj.NestedType, proj.NestedMask)
	if err != nil {
		return err
	}

	if dstF.Kind() == reflect.Array {
		if srcF.Len() != dstF.Len() {
			return &resolve.UnsupportedOperationError{
				Op:     "apply collection",
				Reason: fmt.Sprintf("array length mismatch: source %d, target %d", srcF.Len(), dstF.Len()),
			}
		}

		for i := range srcF.Len() {
			if err := m.applyElement(nestedPlan, srcF.Index(i), dstF.Index(i)); err != nil {
				return err
			}
		}

		return nil
	}

	n := srcF.Len()
	out := reflect.MakeSlice(dstF.Type(), 0, n)
	elemKind := dstF.Type().Elem().Kind()

	for i := range n {
		srcEl := srcF.Index(i)

		switch {
		case elemKind == reflect.Pointer && srcEl.IsNil():
			out = reflect.Append(out, srcEl)

		case i < dstF.Len() && elemKind == reflect.Pointer && dstF.Index(i).Pointer() == srcEl.Pointer():
			out = reflect.Append(out, dstF.Index(i)) // same reference, no copy-back

		case i < dstF.Len() && (elemKind != reflect.Pointer || !dstF.Index(i).IsNil()):
			if err := m.applyElement(nestedPlan, srcEl, dstF.Index(i)); err != nil {
				return err
			}

			out = reflect.Append(out, dstF.Index(i))

		default:
			built, err := m.constructElement(nestedPlan, dstF.Type().Elem(), srcEl)
			if err != nil {
				return err
			}

			out = reflect.Append(out, built)
		}
	}

	dstF.Set(out)

	return nil
}

func (m *Materializer) applyElement(nestedPlan *resolve.Plan, srcEl, dstEl reflect.Value) error {
	srcRef := singleRef(srcEl)
	dstRef := singleRef(dstEl)

	if !srcRef.IsValid() || !dstRef.IsValid() {
		return nil
	}

	return m.applyFields(nestedPlan, srcRef, dstRef)
}

// constructElement builds a fresh entity element for a source element with
// no destination counterpart, honoring the detached policy.
func (m *Materializer) constructElement(nestedPlan *resolve.Plan, elemType reflect.Type, srcEl reflect.Value) (reflect.Value, error) {
	if m.detached == DetachedReject {
		return reflect.Value{}, &resolve.UnsupportedOperationError{
			Op:     "apply collection",
			Reason: "source element has no live counterpart and the detached policy rejects construction",
		}
	}

	structType := elemType
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	built := reflect.New(structType)

	srcRef := singleRef(srcEl)
	if srcRef.IsValid() {
		if err := m.applyFields(nestedPlan, srcRef, built); err != nil {
			return reflect.Value{}, err
		}
	}

	if elemType.Kind() == reflect.Pointer {
		return built, nil
	}

	return built.Elem(), nil
}
