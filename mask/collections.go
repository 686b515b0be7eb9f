package mask

import (
	"fmt"
	"iter"
	"reflect"

	"entitymask/maskspec"
)

// Slice eagerly materializes a finite ordered list of masks over the given
// entity slice. Elements may be entity pointers or addressable values.
func (m *Materializer) Slice(entities any, maskName string) ([]*Mask, error) {
	proxy, err := m.ProxyOf(entities, maskName)
	if err != nil {
		return nil, err
	}

	out := make([]*Mask, 0, proxy.Len())

	for i := range proxy.Len() {
		el, err := proxy.At(i)
		if err != nil {
			return nil, err
		}

		out = append(out, el)
	}

	return out, nil
}

// ProxyOf wraps a slice, array or pointer-to-array of entities in a lazy
// proxy (read-only collection with count; indexed access supported).
func (m *Materializer) ProxyOf(entities any, maskName string) (*Proxy, error) {
	v := reflect.ValueOf(entities)
	if v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Array {
		if v.IsNil() {
			return nil, fmt.Errorf("entity array pointer is nil")
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		// ok
	default:
		return nil, fmt.Errorf("collection source must be a slice or array, got %T", entities)
	}

	elem := v.Type().Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	plan, err := m.resolver.Resolve(elem, maskName)
	if err != nil {
		return nil, err
	}

	return &Proxy{source: v, plan: plan, mat: m}, nil
}

// SeqOf wraps a read-only enumerable of entity pointers in a lazy proxy.
// The proxy supports forward iteration only: Len reports -1 and indexed
// access fails.
func (m *Materializer) SeqOf(seq iter.Seq[any], entity any, maskName string) (*Proxy, error) {
	plan, err := m.resolver.Resolve(maskspec.EntityType(entity), maskName)
	if err != nil {
		return nil, err
	}

	return &Proxy{seq: seq, plan: plan, mat: m}, nil
}
