package hooking

import (
	"fmt"
)

// callbackHelpers implements the registration API shared by types and
// entities. hookSet returns the hooks that registrations write to.
type callbackHelpers struct {
	hookSet func() *HookSet
}

// Hook returns the named hook that registrations write to.
func (c callbackHelpers) Hook(name string) (*Hook, error) {
	return c.hookSet().Get(name)
}

// AddCallback registers a callback of the given variant on the named hook.
func (c callbackHelpers) AddCallback(
	hook string,
	variant Variant,
	payload any,
	opts ...AddOption,
) (Handle, error) {
	h, err := c.Hook(hook)
	if err != nil {
		return "", err
	}

	return h.Add(variant, payload, opts...)
}

// On registers fn on the named hook. A function without parameters becomes an
// Internal callback, any other function an External callback.
func (c callbackHelpers) On(
	hook string,
	fn any,
	opts ...AddOption,
) (Handle, error) {
	f, err := newFuncValue(fn)
	if err != nil {
		return "", fmt.Errorf("hook %q: %w", hook, err)
	}

	if f.arity() == 0 {
		return c.AddCallback(hook, Internal, fn, opts...)
	}

	return c.AddCallback(hook, External, fn, opts...)
}

// AddExternal registers an External callback on the named hook.
func (c callbackHelpers) AddExternal(
	hook string,
	fn any,
	opts ...AddOption,
) (Handle, error) {
	return c.AddCallback(hook, External, fn, opts...)
}

// AddBasic registers a Basic callback on the named hook.
func (c callbackHelpers) AddBasic(
	hook string,
	fn any,
	opts ...AddOption,
) (Handle, error) {
	return c.AddCallback(hook, Basic, fn, opts...)
}

// AddInternal registers an Internal callback on the named hook.
func (c callbackHelpers) AddInternal(
	hook string,
	fn any,
	opts ...AddOption,
) (Handle, error) {
	return c.AddCallback(hook, Internal, fn, opts...)
}

// AddMethod registers a callback that calls the named method of the event
// source. The callback's handle defaults to the method name.
func (c callbackHelpers) AddMethod(
	hook string,
	method string,
	opts ...AddOption,
) (Handle, error) {
	return c.AddCallback(hook, Method, method, opts...)
}

// RemoveCallback removes a callback from the named hook by handle or index.
func (c callbackHelpers) RemoveCallback(hook string, key any) error {
	h, err := c.Hook(hook)
	if err != nil {
		return err
	}

	return h.Remove(key)
}

// AddWildcardCallback registers a Basic callback that receives every event.
func (c callbackHelpers) AddWildcardCallback(
	fn any,
	opts ...AddOption,
) (Handle, error) {
	return c.hookSet().wildcard().Add(Basic, fn, opts...)
}

// RemoveWildcardCallback removes a wildcard callback by handle or index.
func (c callbackHelpers) RemoveWildcardCallback(key any) error {
	return c.hookSet().wildcard().Remove(key)
}

// AddListener registers a wildcard callback that forwards every event to the
// listener's handler for the raised hook. The listener is either a Listener or
// any value whose exported methods are named after the hooks. It must handle
// every hook declared at registration time.
//
// The handle defaults to one derived from the listener's identity, so that
// RemoveListener can be called with the listener itself.
func (c callbackHelpers) AddListener(
	listener any,
	opts ...AddOption,
) (Handle, error) {
	cfg := newAddConfig(opts)

	handle := cfg.handle
	if handle == "" {
		var err error

		handle, err = ListenerHandle(listener)
		if err != nil {
			return "", err
		}
	}

	l := AsListener(listener)
	for _, name := range c.hookSet().Names() {
		if _, ok := l.Handler(name); !ok {
			return "", fmt.Errorf("%w: listener %T does not handle hook %q",
				ErrUnresolvedOperation, listener, name)
		}
	}

	return c.AddWildcardCallback(forwardTo(l), WithHandle(handle))
}

// RemoveListener removes a listener by handle or by the listener itself.
func (c callbackHelpers) RemoveListener(handleOrListener any) error {
	switch k := handleOrListener.(type) {
	case Handle:
		return c.RemoveWildcardCallback(k)
	case string:
		return c.RemoveWildcardCallback(Handle(k))
	}

	handle, err := ListenerHandle(handleOrListener)
	if err != nil {
		return err
	}

	return c.RemoveWildcardCallback(handle)
}
