package hooking

import (
	"fmt"

	"github.com/sarchlab/hookr/idgen"
)

// An Event describes one raise of a hook. Events are immutable. In chained
// dispatch every step works on a fresh Event that shares the chain cursor.
type Event struct {
	id        string
	source    any
	name      string
	args      []any
	recursive bool
	chain     *chain
}

func newEvent(source any, name string, args []any, recursive bool) *Event {
	return &Event{
		id:        idgen.Generate(),
		source:    source,
		name:      name,
		args:      append([]any(nil), args...),
		recursive: recursive,
	}
}

// ID identifies the raise this event belongs to. All the events of one
// chained dispatch share the ID.
func (e *Event) ID() string {
	return e.id
}

// Source returns the entity that raised the event.
func (e *Event) Source() any {
	return e.source
}

// Name returns the name of the raised hook.
func (e *Event) Name() string {
	return e.name
}

// Args returns the arguments of the event.
func (e *Event) Args() []any {
	return append([]any(nil), e.args...)
}

// Recursive reports whether the event belongs to a chained dispatch.
func (e *Event) Recursive() bool {
	return e.recursive
}

// ToArgs converts the event into the argument list of a callback of the given
// arity. With N event arguments:
//
//   - ArityAny or N+1 gives the event followed by the arguments.
//   - N gives the arguments alone.
//   - Any other arity is an error. A subset of the arguments is never
//     produced.
func (e *Event) ToArgs(arity int) ([]any, error) {
	n := len(e.args)

	switch arity {
	case ArityAny, n + 1:
		out := make([]any, 0, n+1)
		out = append(out, e)

		return append(out, e.args...), nil
	case n:
		return e.Args(), nil
	default:
		return nil, fmt.Errorf("%w: arity must be between %d and %d, was %d",
			ErrArityMismatch, n, n+1, arity)
	}
}

// Advance passes control to the next callback of a chained dispatch and
// returns its result. Arguments given to Advance replace the event arguments
// for the rest of the chain.
//
// Advance panics if the event was raised in flat mode or if no callback is
// left in the chain. Both are programming errors in the calling callback.
func (e *Event) Advance(args ...any) (any, error) {
	if !e.recursive || e.chain == nil {
		panic(fmt.Errorf("%w: %q", ErrNotChained, e.name))
	}

	next := &Event{
		id:        e.id,
		source:    e.source,
		name:      e.name,
		args:      e.args,
		recursive: true,
		chain:     e.chain,
	}

	if len(args) > 0 {
		next.args = append([]any(nil), args...)
	}

	return e.chain.step(next)
}

// Remaining returns the number of chain elements, including the terminal,
// that have not run yet. It is 0 for flat events.
func (e *Event) Remaining() int {
	if e.chain == nil {
		return 0
	}

	return len(e.chain.links) - e.chain.pos
}

// String returns a short description of the event.
func (e *Event) String() string {
	mode := "flat"
	if e.recursive {
		mode = "around"
	}

	return fmt.Sprintf("%s(%s %v)", e.name, mode, e.args)
}
