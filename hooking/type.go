package hooking

// A Type declares the hooks shared by all its entities. Callbacks registered
// on a type run for every entity of the type and of the types derived from it.
type Type struct {
	*ProbeableBase
	callbackHelpers

	name  string
	base  *Type
	hooks *HookSet
}

// NewType creates a root type without hooks.
func NewType(name string) *Type {
	t := &Type{
		ProbeableBase: NewProbeableBase(),
		name:          name,
		hooks:         NewHookSet(),
	}
	t.callbackHelpers = callbackHelpers{hookSet: t.hookSet}

	return t
}

// Name returns the name of the type.
func (t *Type) Name() string {
	return t.name
}

// Base returns the type t derives from, or nil for a root type.
func (t *Type) Base() *Type {
	return t.base
}

// Derive creates a type that inherits every hook and callback of t. Hooks
// declared on t after the derivation are not visible to the derived type.
func (t *Type) Derive(name string) *Type {
	d := &Type{
		ProbeableBase: NewProbeableBase(),
		name:          name,
		base:          t,
		hooks:         t.hooks.DeepCopy(),
	}
	d.callbackHelpers = callbackHelpers{hookSet: d.hookSet}

	logger.Debug("type derived", "type", name, "base", t.name)

	return d
}

// DeclareHook declares a hook with the given positional parameters.
// Declaring an existing hook returns it unchanged.
func (t *Type) DeclareHook(name string, params ...string) *Hook {
	if t.hooks.Has(name) {
		h, _ := t.hooks.Get(name)
		return h
	}

	h := t.hooks.Declare(name, params...)

	logger.Debug("hook declared", "type", t.name, "hook", name, "params", params)

	return h
}

// HookSet returns the hooks of the type.
func (t *Type) HookSet() *HookSet {
	return t.hooks
}

// Hooks describes the hooks declared on the type.
func (t *Type) Hooks() []HookInfo {
	return t.hooks.Snapshot()
}

// NoopListener returns a listener that handles every hook of the type and
// does nothing.
func (t *Type) NoopListener() HandlerTable {
	return NoopListenerFor(t.hooks)
}

// NewEntity creates an entity of the type. Method callbacks and Internal
// callbacks see source as the event source. A nil source makes the entity
// its own source.
func (t *Type) NewEntity(name string, source any) *Entity {
	e := &Entity{
		ProbeableBase: NewProbeableBase(),
		name:          name,
		typ:           t,
		source:        source,
	}
	e.callbackHelpers = callbackHelpers{hookSet: e.ownHooks}

	if e.source == nil {
		e.source = e
	}

	return e
}

func (t *Type) hookSet() *HookSet {
	return t.hooks
}
