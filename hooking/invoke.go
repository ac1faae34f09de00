package hooking

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// ArityAny is the arity of a callback that accepts any number of arguments.
const ArityAny = -1

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	eventType = reflect.TypeOf((*Event)(nil))
)

// funcValue is a reflected Go function that can be called with a dynamic
// argument list.
type funcValue struct {
	fn  reflect.Value
	typ reflect.Type
}

func newFuncValue(payload any) (funcValue, error) {
	v := reflect.ValueOf(payload)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return funcValue{}, fmt.Errorf(
			"%w: expected a function, got %T", ErrInvalidPayload, payload)
	}

	return funcValue{fn: v, typ: v.Type()}, nil
}

func (f funcValue) arity() int {
	if f.typ.IsVariadic() {
		return ArityAny
	}

	return f.typ.NumIn()
}

func (f funcValue) paramType(i int) reflect.Type {
	n := f.typ.NumIn()
	if f.typ.IsVariadic() && i >= n-1 {
		return f.typ.In(n - 1).Elem()
	}

	return f.typ.In(i)
}

func (f funcValue) call(args []any) (any, error) {
	n := f.typ.NumIn()
	if !f.typ.IsVariadic() && len(args) != n ||
		f.typ.IsVariadic() && len(args) < n-1 {
		return nil, fmt.Errorf("%w: function takes %d arguments, got %d",
			ErrArityMismatch, n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := convertArg(arg, f.paramType(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}

		in[i] = v
	}

	return splitResults(f.fn.Call(in))
}

func convertArg(arg any, to reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(to), nil
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(to) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s",
			ErrArgumentType, v.Type(), to)
	}

	return v, nil
}

// splitResults maps the results of a callback onto a value and an error. A
// trailing error result is the error, the first other result is the value.
func splitResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}

	var err error

	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			err = last.Interface().(error)
		}

		out = out[:len(out)-1]
	}

	if len(out) == 0 {
		return nil, err
	}

	return out[0].Interface(), err
}

// resolveMethod finds the method named after an operation on target. The
// exact name is tried first, then the name with its first rune upper cased.
func resolveMethod(target any, name string) (funcValue, bool) {
	v := reflect.ValueOf(target)
	if !v.IsValid() || name == "" {
		return funcValue{}, false
	}

	m := v.MethodByName(name)
	if !m.IsValid() {
		m = v.MethodByName(exportedName(name))
	}

	if !m.IsValid() {
		return funcValue{}, false
	}

	return funcValue{fn: m, typ: m.Type()}, true
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}
