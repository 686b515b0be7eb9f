package resolve

import (
	"fmt"
	"reflect"
)

// ConfigurationError reports an invalid mask configuration detected at
// resolution time, such as a whitelist name missing from the entity
// hierarchy or an unregistered mask.
type ConfigurationError struct {
	Entity reflect.Type
	Mask   string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mask %v.%s field %s: %s", e.Entity, e.Mask, e.Field, e.Reason)
	}

	return fmt.Sprintf("mask %v.%s: %s", e.Entity, e.Mask, e.Reason)
}

// TypeContractError reports a converter binding that does not implement the
// bidirectional Converter contract.
type TypeContractError struct {
	Entity  reflect.Type
	Mask    string
	Field   string
	Binding any
}

func (e *TypeContractError) Error() string {
	return fmt.Sprintf("mask %v.%s field %s: converter binding %T does not implement the bidirectional Converter contract",
		e.Entity, e.Mask, e.Field, e.Binding)
}

// TransformerSignatureError reports a transformer binding with an
// unsupported signature or an input type the field cannot satisfy.
type TransformerSignatureError struct {
	Entity reflect.Type
	Mask   string
	Field  string
	Err    error
}

func (e *TransformerSignatureError) Error() string {
	return fmt.Sprintf("mask %v.%s field %s: %v", e.Entity, e.Mask, e.Field, e.Err)
}

func (e *TransformerSignatureError) Unwrap() error { return e.Err }

// IndexOutOfRangeError reports indexed access past the end of a collection
// proxy's source.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("proxy index %d out of range (len %d)", e.Index, e.Len)
}

// UnsupportedOperationError reports an operation the target cannot perform,
// such as indexed access on a sequence-backed proxy or writing through a
// forward-only transformer.
type UnsupportedOperationError struct {
	Op     string
	Reason string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %s: %s", e.Op, e.Reason)
}
