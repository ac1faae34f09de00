package hooking

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the dispatch core.
var (
	// ErrArityMismatch is returned when a callback's parameter count is not
	// compatible with the hook's declared parameters or with the argument
	// adaptation rule.
	ErrArityMismatch = errors.New("callback has incompatible arity")

	// ErrNotFound is returned when a hook, handle or index does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidKeyType is returned when a removal key is neither a handle nor
	// an index.
	ErrInvalidKeyType = errors.New("key must be an integer index or a handle")

	// ErrChainExhausted is the panic value of an Advance call that has no
	// callback left to run.
	ErrChainExhausted = errors.New("no more callbacks")

	// ErrNotChained is the panic value of an Advance call on an event raised
	// in flat mode.
	ErrNotChained = errors.New("event is not part of a callback chain")

	// ErrUnresolvedOperation is returned when a listener or a method callback
	// target lacks the expected operation.
	ErrUnresolvedOperation = errors.New("unresolved operation")

	// ErrInvalidPayload is returned when a callback payload is not of the
	// kind its variant requires.
	ErrInvalidPayload = errors.New("invalid callback payload")

	// ErrArgumentType is returned when an event argument cannot be assigned to
	// the parameter of the callback receiving it.
	ErrArgumentType = errors.New("argument type mismatch")
)

// CallbackError wraps an error returned by a callback during dispatch.
type CallbackError struct {
	// Hook is the name of the hook owning the callback.
	Hook string

	// Handle identifies the failing callback. It is empty for the terminal
	// continuation of a chained dispatch.
	Handle Handle

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("terminal of hook %q: %v", e.Hook, e.Err)
	}

	return fmt.Sprintf("callback %q of hook %q: %v", e.Handle, e.Hook, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

func wrapCallbackError(hook string, handle Handle, err error) error {
	if err == nil {
		return nil
	}

	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		return err
	}

	return &CallbackError{Hook: hook, Handle: handle, Err: err}
}
