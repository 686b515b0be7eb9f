package mask

import (
	"fmt"
	"iter"
	"reflect"

	"entitymask/resolve"
)

// Proxy is a lazy, shape-preserving view over a sequence of entities. It
// wraps the source sequence reference, not a copy: construction touches no
// element, and each element access materializes exactly one fresh mask, so
// the proxy always reflects the entities' current state.
type Proxy struct {
	// source is the indexed slice/array reference; invalid for
	// sequence-backed proxies.
	source reflect.Value
	// seq is the sequence source for read-only enumerables.
	seq iter.Seq[any]

	plan *resolve.Plan
	mat  *Materializer
}

// newProxy wraps a deep-mapped collection field. The element plan is
// resolved (or cache-hit) up front; no element is touched.
func (m *Materializer) newProxy(source reflect.Value, proj *resolve.FieldProjection) (*Proxy, error) {
	plan, err := m.resolver.Resolve(proj.NestedType, proj.NestedMask)
	if err != nil {
		return nil, err
	}

	return &Proxy{source: source, plan: plan, mat: m}, nil
}

// Mask returns the element mask name the proxy projects through.
func (p *Proxy) Mask() string { return p.plan.Mask }

// Indexed reports whether the source supports positional access.
func (p *Proxy) Indexed() bool { return p.source.IsValid() }

// Len defers to the source's own count. Sequence-backed proxies have no
// count; Len returns -1 for them (use Count to iterate).
func (p *Proxy) Len() int {
	if !p.source.IsValid() {
		return -1
	}

	return p.source.Len()
}

// Count returns the element count, iterating the source if it exposes none.
func (p *Proxy) Count() int {
	if n := p.Len(); n >= 0 {
		return n
	}

	n := 0
	for range p.seq {
		n++
	}

	return n
}

// At materializes the element at position i. Sequence-backed proxies do not
// support positional access.
func (p *Proxy) At(i int) (*Mask, error) {
	if !p.source.IsValid() {
		return nil, &resolve.UnsupportedOperationError{
			Op:     "indexed access",
			Reason: "proxy source is a sequence without positional access",
		}
	}

	if i < 0 || i >= p.source.Len() {
		return nil, &resolve.IndexOutOfRangeError{Index: i, Len: p.source.Len()}
	}

	return p.element(p.source.Index(i))
}

// All iterates the proxy in source order, materializing one mask per
// element. Absent (nil pointer) elements yield a nil mask.
func (p *Proxy) All() iter.Seq[*Mask] {
	if !p.source.IsValid() {
		return func(yield func(*Mask) bool) {
			for e := range p.seq {
				el, err := p.elementOf(e)
				if err != nil {
					return
				}

				if !yield(el) {
					return
				}
			}
		}
	}

	return func(yield func(*Mask) bool) {
		for i := range p.source.Len() {
			el, err := p.element(p.source.Index(i))
			if err != nil {
				return
			}

			if !yield(el) {
				return
			}
		}
	}
}

// Masks collects the proxy into a materialized slice, in source order.
func (p *Proxy) Masks() []*Mask {
	var out []*Mask
	for el := range p.All() {
		out = append(out, el)
	}

	return out
}

func (p *Proxy) element(el reflect.Value) (*Mask, error) {
	if el.Kind() == reflect.Pointer {
		if el.IsNil() {
			return nil, nil
		}

		return p.mat.projectValue(el, p.plan.Mask)
	}

	if !el.CanAddr() {
		return nil, &resolve.UnsupportedOperationError{
			Op:     "element access",
			Reason: "array source must be addressable to expose live element views",
		}
	}

	return p.mat.projectValue(el.Addr(), p.plan.Mask)
}

func (p *Proxy) elementOf(e any) (*Mask, error) {
	if e == nil {
		return nil, nil
	}

	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Pointer {
		return nil, &resolve.UnsupportedOperationError{
			Op:     "element access",
			Reason: fmt.Sprintf("sequence elements must be entity pointers, got %T", e),
		}
	}

	return p.element(v)
}

// Assign replaces the source collection through the proxy's mutation path.
// Live mask elements unwrap to their backing entity references zero-copy;
// detached elements follow the materializer's detached policy. The source
// must be an assignable slice.
func (p *Proxy) Assign(elems any) error {
	if !p.source.IsValid() || p.source.Kind() != reflect.Slice || !p.source.CanSet() {
		return &resolve.UnsupportedOperationError{
			Op:     "assign",
			Reason: "proxy source does not support assignment",
		}
	}

	elemType := p.source.Type().Elem()

	switch src := elems.(type) {
	case *Proxy:
		if !src.source.IsValid() || src.source.Type() != p.source.Type() {
			return &resolve.UnsupportedOperationError{
				Op:     "assign",
				Reason: "proxy sources have different collection types",
			}
		}

		p.source.Set(src.source)

		return nil

	case []*Mask:
		out := reflect.MakeSlice(p.source.Type(), 0, len(src))

		for _, el := range src {
			v, err := p.unwrapElement(el, elemType)
			if err != nil {
				return err
			}

			out = reflect.Append(out, v)
		}

		p.source.Set(out)

		return nil

	default:
		return p.assignRaw(elems, elemType)
	}
}

// unwrapElement turns one mask into a collection element, zero-copy for
// pointer elements.
func (p *Proxy) unwrapElement(el *Mask, elemType reflect.Type) (reflect.Value, error) {
	if el == nil {
		if elemType.Kind() != reflect.Pointer {
			return reflect.Value{}, fmt.Errorf("nil mask cannot back value element %v", elemType)
		}

		return reflect.Zero(elemType), nil
	}

	if el.plan.Entity != p.plan.Entity {
		return reflect.Value{}, fmt.Errorf("mask over %v cannot back element of %v", el.plan.Entity, p.plan.Entity)
	}

	if elemType.Kind() == reflect.Pointer {
		return el.entity, nil
	}

	return el.entity.Elem(), nil
}

// assignRaw handles a raw replacement value: a compatible entity slice is
// adopted directly; a slice of exposed-value maps constructs new entity
// elements per the detached policy.
func (p *Proxy) assignRaw(elems any, elemType reflect.Type) error {
	v := reflect.ValueOf(elems)
	if !v.IsValid() || v.Kind() != reflect.Slice {
		return &resolve.UnsupportedOperationError{
			Op:     "assign",
			Reason: fmt.Sprintf("cannot assign %T to a collection of %v", elems, elemType),
		}
	}

	if v.Type() == p.source.Type() {
		p.source.Set(v)
		return nil
	}

	values, ok := elems.([]map[string]any)
	if !ok {
		return &resolve.UnsupportedOperationError{
			Op:     "assign",
			Reason: fmt.Sprintf("cannot assign %T to a collection of %v", elems, elemType),
		}
	}

	if p.mat.detached == DetachedReject {
		return &resolve.UnsupportedOperationError{
			Op:     "assign",
			Reason: "detached elements rejected by policy",
		}
	}

	out := reflect.MakeSlice(p.source.Type(), 0, len(values))

	for _, fields := range values {
		built := reflect.New(p.plan.Entity)

		el := &Mask{entity: built, plan: p.plan, mat: p.mat}
		for name, value := range fields {
			if err := el.Set(name, value); err != nil {
				return err
			}
		}

		if elemType.Kind() == reflect.Pointer {
			out = reflect.Append(out, built)
		} else {
			out = reflect.Append(out, built.Elem())
		}
	}

	p.source.Set(out)

	return nil
}
