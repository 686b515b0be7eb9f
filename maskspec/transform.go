package maskspec

import (
	"errors"
	"fmt"
	"reflect"

	"entitymask/utils"
)

var (
	ErrTransformNotAFunction = errors.New("transformer binding is not a function")
	ErrTransformBadSignature = errors.New("transformer must be func(T) V or func(T) (V, error)")
)

// Transform is a validated forward-only transformer binding. Transformers
// define no inverse: transformed fields are skipped on every write path.
type Transform struct {
	Name   string
	In     reflect.Type
	Out    reflect.Type
	fn     reflect.Value
	hasErr bool
}

// ParseTransform inspects the provided function and returns a Transform if
// it matches one of the supported shapes:
//   - func(src T) (dst V)
//   - func(src T) (dst V, err error)
func ParseTransform(fn any) (*Transform, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func {
		return nil, ErrTransformNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 {
		return nil, ErrTransformBadSignature
	}

	t := &Transform{
		Name: utils.FuncName(fn),
		In:   fnType.In(0),
		fn:   fnVal,
	}

	switch fnType.NumOut() {
	default:
		return nil, ErrTransformBadSignature

	case 1:
		t.Out = fnType.Out(0)
		return t, nil

	case 2:
		if !isError(fnType.Out(1)) {
			return nil, ErrTransformBadSignature
		}

		t.Out = fnType.Out(0)
		t.hasErr = true

		return t, nil
	}
}

// Apply runs the transformer on one raw entity-side value.
func (t *Transform) Apply(raw any) (any, error) {
	in := reflect.ValueOf(raw)
	if !in.IsValid() {
		in = reflect.Zero(t.In)
	}

	if !in.Type().AssignableTo(t.In) {
		return nil, fmt.Errorf("transformer %s: cannot apply to %v", t.Name, in.Type())
	}

	out := t.fn.Call([]reflect.Value{in})

	if t.hasErr && !out[1].IsNil() {
		return nil, fmt.Errorf("transformer %s: %w", t.Name, out[1].Interface().(error))
	}

	return out[0].Interface(), nil
}

func isError(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.Implements(reflect.TypeFor[error]())
}
