package maskspec

import (
	"reflect"

	"entitymask/internal/common"
)

// MembershipMode decides how a mask selects its member fields.
type MembershipMode int

const (
	// Blacklist exposes every descriptor field except those flagged hidden.
	Blacklist MembershipMode = iota
	// Whitelist exposes exactly the names listed in Spec.Whitelist.
	Whitelist
)

// String returns a human-readable mode name.
func (m MembershipMode) String() string {
	switch m {
	case Blacklist:
		return "blacklist"
	case Whitelist:
		return "whitelist"
	default:
		return common.UnknownStr
	}
}

// Converter is the bidirectional value conversion contract for a field.
// ToEntity(ToView(x)) must return x for every valid entity-side value.
type Converter interface {
	ToView(raw any) (any, error)
	ToEntity(view any) (any, error)
}

// TypedConverter optionally reports the static view-side type of a
// converter. Converters without it expose their fields as `any`.
type TypedConverter interface {
	Converter
	ViewType() reflect.Type
}

// Spec is the declarative rule set for one mask on one entity type.
type Spec struct {
	// Name identifies the mask on its entity.
	Name string
	// TargetName is the exposed view type name. Defaults to the entity type
	// name suffixed with Name.
	TargetName string
	// DeepMapping enables recursive projection of nested entity references
	// and collections into their own registered masks.
	DeepMapping bool
	// Mode selects blacklist or whitelist membership.
	Mode MembershipMode
	// Whitelist lists the member field names; required, non-empty, iff Mode
	// is Whitelist.
	Whitelist []string
	// Fields holds per-field overrides keyed by entity field name.
	Fields map[string]*FieldRule
	// TagRules are the class-scope tag rules, applied before any field-scope
	// rules, in declaration order.
	TagRules []TagRule
}

// Rule returns the field rule for the given entity field name, or nil.
func (s *Spec) Rule(field string) *FieldRule {
	if s.Fields == nil {
		return nil
	}

	return s.Fields[field]
}

// FieldRule carries the per-field overrides of a mask.
type FieldRule struct {
	// Hidden removes the field under blacklist membership. Under whitelist
	// membership it is ignored: membership is exactly the whitelist.
	Hidden bool
	// Rename is the exposed name override.
	Rename string
	// Converter is a bidirectional value conversion binding. Must implement
	// the Converter interface; validated at resolution.
	Converter any
	// Transformer is a forward-only value transformation binding, a func of
	// shape func(T) V or func(T) (V, error); validated at resolution.
	Transformer any
	// Aliases is the ordered fallback list of nested mask names consulted
	// when the nested type has no mask named like the parent mask.
	Aliases []string
	// TagRules are the field-scope tag rules, layered on top of the
	// class-scope result.
	TagRules []TagRule
}
