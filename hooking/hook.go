package hooking

import (
	"fmt"
)

// chainLink is a node of a hook ancestry: either a Hook or the terminal that
// ends every chain.
type chainLink interface {
	eachAscending(visit func(cb *Callback) bool) bool
	eachDescending(visit func(cb *Callback) bool) bool
	totalCount() int
	isTerminal() bool
}

// terminal ends every hook ancestry. It has no callbacks.
type terminal struct{}

func (terminal) eachAscending(func(*Callback) bool) bool  { return true }
func (terminal) eachDescending(func(*Callback) bool) bool { return true }
func (terminal) totalCount() int                          { return 0 }
func (terminal) isTerminal() bool                         { return true }

// A Hook is a named, ordered registry of callbacks. A hook inherits the
// callbacks of its parent.
type Hook struct {
	name      string
	parent    chainLink
	params    []string
	callbacks *CallbackSet
}

// NewHook creates a root hook with the given declared parameter names.
func NewHook(name string, params ...string) *Hook {
	return newHook(name, nil, params)
}

func newHook(name string, parent *Hook, params []string) *Hook {
	if name == "" {
		panic("hook name must not be empty")
	}

	h := &Hook{
		name:      name,
		parent:    terminal{},
		params:    append([]string(nil), params...),
		callbacks: NewCallbackSet(),
	}

	if parent != nil {
		h.parent = parent
	}

	return h
}

// Name returns the name of the hook.
func (h *Hook) Name() string {
	return h.name
}

// Params returns the declared parameter names of the hook.
func (h *Hook) Params() []string {
	return append([]string(nil), h.params...)
}

// Parent returns the hook whose callbacks this hook inherits, or nil if the
// hook is a root.
func (h *Hook) Parent() *Hook {
	p, _ := h.parent.(*Hook)
	return p
}

// IsRoot reports whether the hook has no parent hook.
func (h *Hook) IsRoot() bool {
	return h.parent.isTerminal()
}

// Equal reports whether two hooks have the same name.
func (h *Hook) Equal(other *Hook) bool {
	return other != nil && h.name == other.name
}

// Callbacks returns the hook's own callbacks in ascending index order.
func (h *Hook) Callbacks() []*Callback {
	return h.callbacks.Snapshot()
}

// OwnCount returns the number of callbacks owned by this hook.
func (h *Hook) OwnCount() int {
	return h.callbacks.Len()
}

// TotalCount returns the number of callbacks of this hook and its ancestors.
func (h *Hook) TotalCount() int {
	return h.totalCount()
}

// Add registers a callback of the given variant and returns its handle. The
// handle is the one given with WithHandle, else the method name for Method
// callbacks, else the callback's index. Decimal handles are reserved for the
// index-derived handles and cannot be given with WithHandle.
func (h *Hook) Add(
	variant Variant,
	payload any,
	opts ...AddOption,
) (Handle, error) {
	cfg := newAddConfig(opts)

	if isIndexHandle(cfg.handle) {
		return "", fmt.Errorf("hook %q: %w: handle %q is reserved for indices",
			h.name, ErrInvalidKeyType, cfg.handle)
	}

	inv, handle, err := newInvoker(variant, payload, h.params)
	if err != nil {
		return "", fmt.Errorf("hook %q: %w", h.name, err)
	}

	if cfg.handle != "" {
		handle = cfg.handle
	}

	if handle == "" {
		handle = Handle(fmt.Sprint(h.callbacks.NextIndex()))
	}

	cb := h.callbacks.Insert(&Callback{
		handle:  handle,
		variant: variant,
		inv:     inv,
	})

	logger.Debug("callback added",
		"hook", h.name, "handle", cb.handle, "index", cb.index,
		"variant", variant)

	return cb.handle, nil
}

// Lookup finds one of the hook's own callbacks by handle or index.
func (h *Hook) Lookup(key any) (*Callback, error) {
	cb, err := h.callbacks.Lookup(key)
	if err != nil {
		return nil, fmt.Errorf("hook %q: %w", h.name, err)
	}

	return cb, nil
}

// Remove deletes one of the hook's own callbacks by handle or index. Callbacks
// inherited from ancestors cannot be removed through a descendant.
func (h *Hook) Remove(key any) error {
	if err := h.callbacks.Remove(key); err != nil {
		return fmt.Errorf("hook %q: %w", h.name, err)
	}

	logger.Debug("callback removed", "hook", h.name, "key", key)

	return nil
}

// ClearOwn removes the hook's own callbacks. Inherited callbacks stay live.
func (h *Hook) ClearOwn() {
	h.callbacks.Clear()
}

// ClearAll detaches the hook from its parent and removes its own callbacks.
// Afterwards the hook has no inherited callbacks either.
func (h *Hook) ClearAll() {
	if !h.IsRoot() {
		h.parent = terminal{}
	}

	h.ClearOwn()
}

// EachAscending visits the callbacks of the root ancestor first and the hook's
// own callbacks last, each hook in ascending index order. Iteration stops when
// visit returns false.
func (h *Hook) EachAscending(visit func(cb *Callback) bool) {
	h.eachAscending(visit)
}

// EachDescending visits the hook's own callbacks first and then those of its
// ancestors, each hook in descending index order. Iteration stops when visit
// returns false.
func (h *Hook) EachDescending(visit func(cb *Callback) bool) {
	h.eachDescending(visit)
}

func (h *Hook) eachAscending(visit func(cb *Callback) bool) bool {
	if !h.parent.eachAscending(visit) {
		return false
	}

	return h.callbacks.Each(visit)
}

func (h *Hook) eachDescending(visit func(cb *Callback) bool) bool {
	if !h.callbacks.EachReverse(visit) {
		return false
	}

	return h.parent.eachDescending(visit)
}

func (h *Hook) totalCount() int {
	return h.callbacks.Len() + h.parent.totalCount()
}

func (h *Hook) isTerminal() bool {
	return false
}

func isIndexHandle(handle Handle) bool {
	if handle == "" {
		return false
	}

	for _, r := range handle {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// derive creates a hook with no callbacks of its own that inherits every
// callback of h.
func (h *Hook) derive() *Hook {
	return newHook(h.name, h, h.params)
}

// AddOption customizes a callback registration.
type AddOption func(*addConfig)

type addConfig struct {
	handle Handle
}

// WithHandle registers the callback under an explicit handle.
func WithHandle(handle Handle) AddOption {
	return func(c *addConfig) {
		c.handle = handle
	}
}

func newAddConfig(opts []AddOption) addConfig {
	cfg := addConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
