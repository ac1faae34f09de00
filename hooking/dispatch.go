package hooking

import (
	"fmt"
)

// Terminal is the operation wrapped by a chained dispatch. It receives the
// event arguments as left by the last callback that advanced the chain.
type Terminal func(args ...any) (any, error)

// observer receives the progress of a dispatch. A nil observer ignores it.
type observer func(pos *ProbePos, item, detail any)

func (o observer) notify(pos *ProbePos, item, detail any) {
	if o != nil {
		o(pos, item, detail)
	}
}

// Raise runs the callbacks of the wildcard hook and then those of the named
// hook, ancestors before descendants and each hook in ascending index order.
// The first callback error aborts the dispatch and is returned.
func Raise(source any, hooks *HookSet, name string, args ...any) error {
	return raiseFlat(source, hooks, name, args, nil)
}

// RaiseAround runs the callbacks of the wildcard hook and of the named hook as
// a chain around terminal. The most recently added callback runs first and
// each callback passes control on with Event.Advance. The result of the first
// link is returned. A nil terminal falls back to a flat dispatch.
func RaiseAround(
	source any,
	hooks *HookSet,
	name string,
	terminal Terminal,
	args ...any,
) (any, error) {
	return raiseAround(source, hooks, name, terminal, args, nil)
}

func raiseFlat(
	source any,
	hooks *HookSet,
	name string,
	args []any,
	obs observer,
) error {
	named, err := hooks.Get(name)
	if err != nil {
		return err
	}

	ev := newEvent(source, name, args, false)

	obs.notify(ProbePosBeforeRaise, ev, nil)

	err = runFlat(hooks.wildcard(), ev, obs)
	if err == nil {
		err = runFlat(named, ev, obs)
	}

	obs.notify(ProbePosAfterRaise, ev, err)

	return err
}

func runFlat(h *Hook, ev *Event, obs observer) error {
	var err error

	h.EachAscending(func(cb *Callback) bool {
		obs.notify(ProbePosBeforeCallback, ev, cb)
		_, err = cb.Call(ev)
		obs.notify(ProbePosAfterCallback, ev, cb)

		err = wrapCallbackError(h.name, cb.handle, err)

		return err == nil
	})

	return err
}

func raiseAround(
	source any,
	hooks *HookSet,
	name string,
	terminal Terminal,
	args []any,
	obs observer,
) (any, error) {
	if terminal == nil {
		return nil, raiseFlat(source, hooks, name, args, obs)
	}

	named, err := hooks.Get(name)
	if err != nil {
		return nil, err
	}

	c := &chain{hook: name, obs: obs}
	c.appendHook(hooks.wildcard())
	c.appendHook(named)
	c.links = append(c.links, link{hook: name, terminal: terminal})

	ev := newEvent(source, name, args, true)
	ev.chain = c

	obs.notify(ProbePosBeforeRaise, ev, nil)

	result, err := c.step(ev)

	obs.notify(ProbePosAfterRaise, ev, err)

	return result, err
}

// A chain is the eagerly built continuation of a chained dispatch. The cursor
// is shared by every event of the dispatch.
type chain struct {
	hook  string
	links []link
	pos   int
	obs   observer
}

type link struct {
	hook     string
	cb       *Callback
	terminal Terminal
}

func (c *chain) appendHook(h *Hook) {
	h.EachDescending(func(cb *Callback) bool {
		c.links = append(c.links, link{hook: h.name, cb: cb})
		return true
	})
}

func (c *chain) step(ev *Event) (any, error) {
	if c.pos >= len(c.links) {
		panic(fmt.Errorf("%w: hook %q", ErrChainExhausted, c.hook))
	}

	l := c.links[c.pos]
	c.pos++

	var detail any
	if l.cb != nil {
		detail = l.cb
	}

	c.obs.notify(ProbePosBeforeCallback, ev, detail)
	defer c.obs.notify(ProbePosAfterCallback, ev, detail)

	if l.cb == nil {
		result, err := l.terminal(ev.Args()...)
		return result, wrapCallbackError(l.hook, "", err)
	}

	result, err := l.cb.Call(ev)

	return result, wrapCallbackError(l.hook, l.cb.handle, err)
}
