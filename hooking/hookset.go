package hooking

import (
	"fmt"
)

// Wildcard is the name of the reserved hook that receives every raised event.
const Wildcard = "*"

// A HookSet holds all the hooks exposed by one entity, keyed by name. It
// always contains the wildcard hook.
type HookSet struct {
	hooks map[string]*Hook
	order []string
}

// HookInfo is a read-only description of a declared hook.
type HookInfo struct {
	Name           string   `json:"name"`
	Params         []string `json:"params"`
	Inherited      bool     `json:"inherited"`
	OwnCallbacks   int      `json:"own_callbacks"`
	TotalCallbacks int      `json:"total_callbacks"`
	Handles        []Handle `json:"handles"`
}

// NewHookSet creates a HookSet that only holds the wildcard hook.
func NewHookSet() *HookSet {
	s := &HookSet{
		hooks: make(map[string]*Hook),
	}

	s.Declare(Wildcard)

	return s
}

// Get returns the hook with the given name.
func (s *HookSet) Get(name string) (*Hook, error) {
	h, ok := s.hooks[name]
	if !ok {
		return nil, fmt.Errorf("%w: no such hook %q", ErrNotFound, name)
	}

	return h, nil
}

// Has reports whether a hook with the given name is declared.
func (s *HookSet) Has(name string) bool {
	_, ok := s.hooks[name]
	return ok
}

// Declare adds a root hook. Declaring a name that already exists returns the
// existing hook unchanged.
func (s *HookSet) Declare(name string, params ...string) *Hook {
	if h, ok := s.hooks[name]; ok {
		return h
	}

	return s.insert(newHook(name, nil, params))
}

func (s *HookSet) insert(h *Hook) *Hook {
	s.hooks[h.name] = h
	s.order = append(s.order, h.name)

	return h
}

// DeepCopy creates a HookSet whose hooks have no callbacks of their own and
// are each parented to the corresponding hook of s. The copy therefore
// inherits every callback of s while its own registrations leave s untouched.
func (s *HookSet) DeepCopy() *HookSet {
	c := &HookSet{
		hooks: make(map[string]*Hook, len(s.hooks)),
		order: make([]string, 0, len(s.order)),
	}

	for _, name := range s.order {
		c.insert(s.hooks[name].derive())
	}

	return c
}

// adopt derives the hooks of base that s does not declare yet.
func (s *HookSet) adopt(base *HookSet) {
	for _, name := range base.order {
		if _, ok := s.hooks[name]; !ok {
			s.insert(base.hooks[name].derive())
		}
	}
}

// Count returns the number of declared hooks, not counting the wildcard hook.
func (s *HookSet) Count() int {
	if _, ok := s.hooks[Wildcard]; ok {
		return len(s.hooks) - 1
	}

	return len(s.hooks)
}

// Names returns the names of the declared hooks in declaration order, not
// including the wildcard hook.
func (s *HookSet) Names() []string {
	names := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if name != Wildcard {
			names = append(names, name)
		}
	}

	return names
}

// Snapshot describes every declared hook except the wildcard hook.
func (s *HookSet) Snapshot() []HookInfo {
	infos := make([]HookInfo, 0, len(s.order))
	for _, name := range s.Names() {
		infos = append(infos, describe(s.hooks[name]))
	}

	return infos
}

func describe(h *Hook) HookInfo {
	info := HookInfo{
		Name:           h.name,
		Params:         h.Params(),
		Inherited:      !h.IsRoot(),
		OwnCallbacks:   h.OwnCount(),
		TotalCallbacks: h.TotalCount(),
		Handles:        []Handle{},
	}

	h.EachAscending(func(cb *Callback) bool {
		info.Handles = append(info.Handles, cb.handle)
		return true
	})

	return info
}

func (s *HookSet) wildcard() *Hook {
	h, ok := s.hooks[Wildcard]
	if !ok {
		return s.Declare(Wildcard)
	}

	return h
}
