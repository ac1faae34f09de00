package hooking

import (
	"fmt"
	"reflect"
)

// A Listener provides one handler per hook it observes.
type Listener interface {
	// Handler returns the handler of the named hook.
	Handler(hook string) (func(args ...any) error, bool)
}

// HandlerTable is a Listener backed by a map from hook name to handler.
type HandlerTable map[string]func(args ...any) error

// Handler returns the handler of the named hook.
func (t HandlerTable) Handler(hook string) (func(args ...any) error, bool) {
	fn, ok := t[hook]
	return fn, ok && fn != nil
}

// NewNoopListener builds a listener that accepts every named hook and does
// nothing.
func NewNoopListener(hooks ...string) HandlerTable {
	t := make(HandlerTable, len(hooks))
	for _, name := range hooks {
		t[name] = noop
	}

	return t
}

// NoopListenerFor builds a no-op listener for every hook declared in s.
func NoopListenerFor(s *HookSet) HandlerTable {
	return NewNoopListener(s.Names()...)
}

func noop(...any) error {
	return nil
}

// methodListener resolves handlers among the exported methods of a value.
type methodListener struct {
	target any
}

func (l methodListener) Handler(hook string) (func(args ...any) error, bool) {
	fn, ok := resolveMethod(l.target, hook)
	if !ok {
		return nil, false
	}

	return func(args ...any) error {
		_, err := fn.call(args)
		return err
	}, true
}

// AsListener returns obj if it is a Listener, and otherwise a Listener that
// resolves handlers among the methods of obj.
func AsListener(obj any) Listener {
	if l, ok := obj.(Listener); ok {
		return l
	}

	return methodListener{target: obj}
}

// ListenerHandle derives the handle of a listener from its identity. Only
// pointers, maps, functions and channels have an identity.
func ListenerHandle(listener any) (Handle, error) {
	v := reflect.ValueOf(listener)
	if v.IsValid() {
		switch v.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan,
			reflect.UnsafePointer:
			if !v.IsNil() {
				return Handle(fmt.Sprintf("listener_%x", v.Pointer())), nil
			}
		}
	}

	return "", fmt.Errorf("%w: listener %T has no identity, give it a handle",
		ErrInvalidKeyType, listener)
}

// forwardTo builds the wildcard callback of a listener. In a chained
// dispatch the callback advances the chain after the listener returns.
func forwardTo(l Listener) func(ev *Event) (any, error) {
	return func(ev *Event) (any, error) {
		fn, ok := l.Handler(ev.Name())
		if !ok {
			return nil, fmt.Errorf("%w: listener does not handle hook %q",
				ErrUnresolvedOperation, ev.Name())
		}

		if err := fn(ev.Args()...); err != nil {
			return nil, err
		}

		if ev.Recursive() {
			return ev.Advance()
		}

		return nil, nil
	}
}
