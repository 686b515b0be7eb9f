package utils

import (
	"path"
	"reflect"
	"runtime"
	"strings"
)

// FuncName returns the bare name of a function value, without the package
// path prefix. Returns empty string for non-function values.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}

	qualified, name := Unpack2(strings.SplitN(path.Base(f.Name()), ".", 2))
	if name == "" {
		return qualified
	}

	return name
}

// Unpack2 destructures the first two elements of a slice, tolerating
// shorter inputs.
func Unpack2[Slice ~[]T, T any](s Slice) (first T, second T) {
	switch len(s) {
	default:
		return s[0], s[1]
	case 0:
		return
	case 1:
		first = s[0]
		return
	}
}
