package hooking

// An Entity is an instance of a Type. Until an entity registers a callback of
// its own, it dispatches directly on the hooks of its type. The first own
// registration gives the entity a private copy of the type's hooks that keeps
// inheriting the type's callbacks.
type Entity struct {
	*ProbeableBase
	callbackHelpers

	name   string
	typ    *Type
	source any
	hooks  *HookSet
}

// Name returns the name of the entity.
func (e *Entity) Name() string {
	return e.name
}

// Type returns the type of the entity.
func (e *Entity) Type() *Type {
	return e.typ
}

// Source returns the value that events raised by the entity carry as source.
func (e *Entity) Source() any {
	return e.source
}

// HasOwnHooks reports whether the entity has its own copy of the hooks.
func (e *Entity) HasOwnHooks() bool {
	return e.hooks != nil
}

// HookSet returns the hooks the entity dispatches on.
func (e *Entity) HookSet() *HookSet {
	return e.readHooks()
}

// Hooks describes the hooks of the entity.
func (e *Entity) Hooks() []HookInfo {
	return e.readHooks().Snapshot()
}

// Raise dispatches the named hook in flat mode.
func (e *Entity) Raise(name string, args ...any) error {
	return raiseFlat(e.source, e.readHooks(), name, args, e.observer())
}

// RaiseAround dispatches the named hook as a chain around terminal.
func (e *Entity) RaiseAround(
	name string,
	terminal Terminal,
	args ...any,
) (any, error) {
	return raiseAround(
		e.source, e.readHooks(), name, terminal, args, e.observer())
}

func (e *Entity) readHooks() *HookSet {
	if e.hooks == nil {
		return e.typ.hooks
	}

	e.hooks.adopt(e.typ.hooks)

	return e.hooks
}

func (e *Entity) ownHooks() *HookSet {
	if e.hooks == nil {
		e.hooks = e.typ.hooks.DeepCopy()

		logger.Debug("entity hooks overlaid", "entity", e.name, "type", e.typ.name)
	}

	return e.readHooks()
}

func (e *Entity) observer() observer {
	if e.NumProbes() == 0 && e.typ.NumProbes() == 0 {
		return nil
	}

	return func(pos *ProbePos, item, detail any) {
		ctx := ProbeCtx{
			Domain: e,
			Pos:    pos,
			Item:   item,
			Detail: detail,
		}

		e.InvokeProbe(ctx)
		e.typ.InvokeProbe(ctx)
	}
}
