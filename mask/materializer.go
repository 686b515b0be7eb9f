package mask

import (
	"fmt"
	"reflect"

	"entitymask/internal/common"
	"entitymask/resolve"
)

// DetachedPolicy decides what the collection mutation path does with an
// element that is not backed by a live entity reference.
type DetachedPolicy int

const (
	// DetachedConstruct builds a new entity element from the detached
	// value's exposed fields.
	DetachedConstruct DetachedPolicy = iota
	// DetachedReject fails the assignment.
	DetachedReject
)

// String returns a human-readable policy name.
func (p DetachedPolicy) String() string {
	switch p {
	case DetachedConstruct:
		return "construct"
	case DetachedReject:
		return "reject"
	default:
		return common.UnknownStr
	}
}

// Materializer produces mask instances bound to specific entities and
// drives the write paths back onto entities.
type Materializer struct {
	resolver *resolve.Resolver
	detached DetachedPolicy
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithDetachedPolicy sets the detached-element policy for collection
// mutation. The default is DetachedConstruct.
func WithDetachedPolicy(p DetachedPolicy) Option {
	return func(m *Materializer) { m.detached = p }
}

// New creates a Materializer over the given resolver.
func New(r *resolve.Resolver, opts ...Option) *Materializer {
	m := &Materializer{resolver: r}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Resolver returns the resolver the materializer projects through.
func (m *Materializer) Resolver() *resolve.Resolver {
	return m.resolver
}

// Project returns a fresh mask instance over the given entity. The entity
// must be a non-nil pointer to a struct so writes can pass through.
func (m *Materializer) Project(entity any, maskName string) (*Mask, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("mask target must be a non-nil pointer to struct, got %T", entity)
	}

	return m.projectValue(v, maskName)
}

// projectValue binds a plan to a ptr-to-struct reflect value.
func (m *Materializer) projectValue(entity reflect.Value, maskName string) (*Mask, error) {
	plan, err := m.resolver.Resolve(entity.Type(), maskName)
	if err != nil {
		return nil, err
	}

	return &Mask{entity: entity, plan: plan, mat: m}, nil
}

// entityPtr validates a caller-supplied entity against the plan's entity
// type and returns it as a ptr-to-struct value.
func entityPtr(plan *resolve.Plan, entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("entity must be a non-nil pointer to %v, got %T", plan.Entity, entity)
	}

	if v.Type().Elem() != plan.Entity {
		return reflect.Value{}, fmt.Errorf("entity type %v does not match plan entity %v", v.Type().Elem(), plan.Entity)
	}

	return v, nil
}

// singleRef normalizes a deep-mapped single field to a ptr-to-struct
// reference, or an invalid value when the reference is absent.
func singleRef(field reflect.Value) reflect.Value {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return reflect.Value{}
		}

		return field
	}

	return field.Addr()
}
