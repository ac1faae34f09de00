package hooking

import (
	"fmt"
)

// Handle is a stable identifier of a callback within a hook. Callbacks that
// share a handle are the same member of a CallbackSet.
type Handle string

// Variant selects how a callback is executed.
type Variant int

// The callback variants.
const (
	// External callbacks run outside the event source. Their arguments are
	// adapted to their arity with Event.ToArgs.
	External Variant = iota

	// Basic callbacks take exactly one parameter and receive only the event.
	Basic

	// Internal callbacks run with the event source as their execution
	// context. They take no parameter or a single parameter that receives the
	// source.
	Internal

	// Method callbacks name a method that is resolved on the event source
	// when the callback runs.
	Method
)

// String returns the name of the variant.
func (v Variant) String() string {
	switch v {
	case External:
		return "External"
	case Basic:
		return "Basic"
	case Internal:
		return "Internal"
	case Method:
		return "Method"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// invoker is the execution strategy of a callback.
type invoker interface {
	invoke(ev *Event) (any, error)
}

// A Callback is one registered handler of a hook.
type Callback struct {
	handle  Handle
	index   int
	variant Variant
	inv     invoker
}

// Handle returns the identifier of the callback.
func (c *Callback) Handle() Handle {
	return c.handle
}

// Index returns the insertion index of the callback within its hook.
func (c *Callback) Index() int {
	return c.index
}

// Variant returns the execution strategy of the callback.
func (c *Callback) Variant() Variant {
	return c.variant
}

// Call runs the callback with the given event.
func (c *Callback) Call(ev *Event) (any, error) {
	return c.inv.invoke(ev)
}

// newInvoker validates the payload against the rules of the variant. It also
// returns the handle the callback takes when none is given.
func newInvoker(
	variant Variant,
	payload any,
	params []string,
) (inv invoker, defaultHandle Handle, err error) {
	switch variant {
	case External:
		inv, err = newExternalInvoker(payload, params)
	case Basic:
		inv, err = newBasicInvoker(payload)
	case Internal:
		inv, err = newInternalInvoker(payload)
	case Method:
		name, ok := payload.(string)
		if !ok || name == "" {
			return nil, "", fmt.Errorf(
				"%w: method callbacks need a method name, got %T",
				ErrInvalidPayload, payload)
		}

		inv, defaultHandle = methodInvoker{name: name}, Handle(name)
	default:
		err = fmt.Errorf("%w: unknown variant %s", ErrInvalidPayload, variant)
	}

	return inv, defaultHandle, err
}

type externalInvoker struct {
	fn funcValue
}

func newExternalInvoker(payload any, params []string) (invoker, error) {
	fn, err := newFuncValue(payload)
	if err != nil {
		return nil, err
	}

	arity := fn.arity()
	if arity != ArityAny && arity < len(params) {
		return nil, fmt.Errorf(
			"%w: callback takes %d arguments, hook declares %d parameters",
			ErrArityMismatch, arity, len(params))
	}

	// A hook without declared parameters may be raised with any arguments.
	if arity != ArityAny && len(params) > 0 && arity > len(params)+1 {
		return nil, fmt.Errorf(
			"%w: callback takes %d arguments, hook passes at most %d",
			ErrArityMismatch, arity, len(params)+1)
	}

	return externalInvoker{fn: fn}, nil
}

func (i externalInvoker) invoke(ev *Event) (any, error) {
	args, err := ev.ToArgs(i.fn.arity())
	if err != nil {
		return nil, err
	}

	return i.fn.call(args)
}

type basicInvoker struct {
	fn funcValue
}

func newBasicInvoker(payload any) (invoker, error) {
	fn, err := newFuncValue(payload)
	if err != nil {
		return nil, err
	}

	if fn.typ.IsVariadic() || fn.typ.NumIn() != 1 {
		return nil, fmt.Errorf(
			"%w: basic callbacks must take a single argument",
			ErrArityMismatch)
	}

	if !eventType.AssignableTo(fn.typ.In(0)) {
		return nil, fmt.Errorf("%w: basic callbacks receive a %s, not a %s",
			ErrArgumentType, eventType, fn.typ.In(0))
	}

	return basicInvoker{fn: fn}, nil
}

func (i basicInvoker) invoke(ev *Event) (any, error) {
	return i.fn.call([]any{ev})
}

type internalInvoker struct {
	fn funcValue
}

func newInternalInvoker(payload any) (invoker, error) {
	fn, err := newFuncValue(payload)
	if err != nil {
		return nil, err
	}

	if fn.typ.IsVariadic() || fn.typ.NumIn() > 1 {
		return nil, fmt.Errorf(
			"%w: internal callbacks take at most the event source",
			ErrArityMismatch)
	}

	return internalInvoker{fn: fn}, nil
}

func (i internalInvoker) invoke(ev *Event) (any, error) {
	if i.fn.typ.NumIn() == 0 {
		return i.fn.call(nil)
	}

	return i.fn.call([]any{ev.Source()})
}

type methodInvoker struct {
	name string
}

func (i methodInvoker) invoke(ev *Event) (any, error) {
	fn, ok := resolveMethod(ev.Source(), i.name)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no method %q",
			ErrUnresolvedOperation, ev.Source(), i.name)
	}

	args, err := ev.ToArgs(fn.arity())
	if err != nil {
		return nil, err
	}

	return fn.call(args)
}
