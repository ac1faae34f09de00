package hooking

import (
	"fmt"
	"sort"
)

// A CallbackSet is the ordered collection of the callbacks owned by one hook.
// Callbacks are ordered by ascending index and identified by handle.
type CallbackSet struct {
	byHandle map[Handle]*Callback
	ordered  []*Callback
}

// NewCallbackSet creates an empty CallbackSet.
func NewCallbackSet() *CallbackSet {
	return &CallbackSet{
		byHandle: make(map[Handle]*Callback),
	}
}

// Len returns the number of callbacks in the set.
func (s *CallbackSet) Len() int {
	return len(s.ordered)
}

// NextIndex returns the index the next inserted callback receives. Indices
// are never reused, except that an emptied set restarts at 0.
func (s *CallbackSet) NextIndex() int {
	if len(s.ordered) == 0 {
		return 0
	}

	return s.ordered[len(s.ordered)-1].index + 1
}

// Insert adds a callback to the set. A callback whose handle is already in the
// set replaces the existing member in place, keeping its index. The member
// that ends up in the set is returned.
func (s *CallbackSet) Insert(cb *Callback) *Callback {
	if existing, ok := s.byHandle[cb.handle]; ok {
		existing.variant = cb.variant
		existing.inv = cb.inv

		return existing
	}

	cb.index = s.NextIndex()
	s.byHandle[cb.handle] = cb
	s.ordered = append(s.ordered, cb)

	return cb
}

// Get returns the callback with the given handle.
func (s *CallbackSet) Get(handle Handle) (*Callback, bool) {
	cb, ok := s.byHandle[handle]
	return cb, ok
}

// GetIndex returns the callback with the given index.
func (s *CallbackSet) GetIndex(index int) (*Callback, bool) {
	pos, ok := s.position(index)
	if !ok {
		return nil, false
	}

	return s.ordered[pos], true
}

// Lookup finds a callback by handle (a Handle or a string) or by index (an
// int).
func (s *CallbackSet) Lookup(key any) (*Callback, error) {
	var (
		cb *Callback
		ok bool
	)

	switch k := key.(type) {
	case Handle:
		cb, ok = s.Get(k)
	case string:
		cb, ok = s.Get(Handle(k))
	case int:
		cb, ok = s.GetIndex(k)
	default:
		return nil, fmt.Errorf("%w (was: %#v)", ErrInvalidKeyType, key)
	}

	if !ok {
		return nil, fmt.Errorf("%w: no callback %v", ErrNotFound, key)
	}

	return cb, nil
}

// Remove deletes the callback identified by key. See Lookup for the accepted
// key types.
func (s *CallbackSet) Remove(key any) error {
	cb, err := s.Lookup(key)
	if err != nil {
		return err
	}

	pos, _ := s.position(cb.index)
	s.ordered = append(s.ordered[:pos], s.ordered[pos+1:]...)
	delete(s.byHandle, cb.handle)

	return nil
}

// Clear removes every callback.
func (s *CallbackSet) Clear() {
	s.byHandle = make(map[Handle]*Callback)
	s.ordered = nil
}

// Each visits the callbacks in ascending index order until visit returns
// false. It reports whether the iteration ran to completion.
func (s *CallbackSet) Each(visit func(cb *Callback) bool) bool {
	for _, cb := range s.ordered {
		if !visit(cb) {
			return false
		}
	}

	return true
}

// EachReverse visits the callbacks in descending index order until visit
// returns false. It reports whether the iteration ran to completion.
func (s *CallbackSet) EachReverse(visit func(cb *Callback) bool) bool {
	for i := len(s.ordered) - 1; i >= 0; i-- {
		if !visit(s.ordered[i]) {
			return false
		}
	}

	return true
}

// Snapshot returns the callbacks in ascending index order.
func (s *CallbackSet) Snapshot() []*Callback {
	out := make([]*Callback, len(s.ordered))
	copy(out, s.ordered)

	return out
}

func (s *CallbackSet) position(index int) (int, bool) {
	pos := sort.Search(len(s.ordered), func(i int) bool {
		return s.ordered[i].index >= index
	})

	if pos < len(s.ordered) && s.ordered[pos].index == index {
		return pos, true
	}

	return 0, false
}
