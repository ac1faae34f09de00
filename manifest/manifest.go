// Package manifest declares entity types and their hooks in YAML.
//
// A manifest lists types. A type may derive from a base type declared in the
// same manifest, and inherits the hooks of its base.
//
//	types:
//	  - name: document
//	    hooks:
//	      - name: beforeSave
//	        params: [doc]
//	  - name: report
//	    base: document
//	    hooks:
//	      - name: publish
package manifest

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/hookr/hooking"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid manifest")

// HookDecl declares one hook.
type HookDecl struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty,flow"`
}

// TypeDecl declares one entity type.
type TypeDecl struct {
	Name  string     `yaml:"name"`
	Base  string     `yaml:"base,omitempty"`
	Hooks []HookDecl `yaml:"hooks,omitempty"`
}

// Manifest is a set of type declarations.
type Manifest struct {
	Types []TypeDecl `yaml:"types"`
}

// Load reads and validates the manifest stored at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 - manifest path from caller
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}

	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Type returns the declaration of the named type.
func (m *Manifest) Type(name string) (TypeDecl, bool) {
	for _, t := range m.Types {
		if t.Name == name {
			return t, true
		}
	}

	return TypeDecl{}, false
}

// Validate checks that names are present and unique, that every base is
// declared, that no type derives from itself, and that inherited hooks are
// not redeclared with other parameters.
func (m *Manifest) Validate() error {
	byName := make(map[string]TypeDecl, len(m.Types))

	for i, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("%w: type #%d has no name", ErrInvalid, i)
		}

		if _, dup := byName[t.Name]; dup {
			return fmt.Errorf("%w: type %q declared twice", ErrInvalid, t.Name)
		}

		byName[t.Name] = t

		if err := validateHooks(t); err != nil {
			return err
		}
	}

	for _, t := range m.Types {
		if t.Base != "" {
			if _, ok := byName[t.Base]; !ok {
				return fmt.Errorf("%w: type %q derives from unknown type %q",
					ErrInvalid, t.Name, t.Base)
			}
		}
	}

	for _, t := range m.Types {
		if err := checkAcyclic(byName, t); err != nil {
			return err
		}
	}

	for _, t := range m.Types {
		if err := checkRedeclarations(byName, t); err != nil {
			return err
		}
	}

	return nil
}

// checkRedeclarations rejects hooks that a type inherits under different
// parameters. Redeclaring an inherited hook with the same parameters is
// allowed and has no effect.
func checkRedeclarations(byName map[string]TypeDecl, t TypeDecl) error {
	for base := t.Base; base != ""; base = byName[base].Base {
		for _, inherited := range byName[base].Hooks {
			for _, h := range t.Hooks {
				if h.Name == inherited.Name &&
					!slices.Equal(h.Params, inherited.Params) {
					return fmt.Errorf(
						"%w: type %q redeclares hook %q of type %q "+
							"with params %v, inherited params are %v",
						ErrInvalid, t.Name, h.Name, base,
						h.Params, inherited.Params)
				}
			}
		}
	}

	return nil
}

func validateHooks(t TypeDecl) error {
	seen := make(map[string]bool, len(t.Hooks))

	for i, h := range t.Hooks {
		switch {
		case h.Name == "":
			return fmt.Errorf("%w: hook #%d of type %q has no name",
				ErrInvalid, i, t.Name)
		case h.Name == hooking.Wildcard:
			return fmt.Errorf("%w: type %q declares the reserved hook %q",
				ErrInvalid, t.Name, h.Name)
		case seen[h.Name]:
			return fmt.Errorf("%w: type %q declares hook %q twice",
				ErrInvalid, t.Name, h.Name)
		}

		seen[h.Name] = true
	}

	return nil
}

func checkAcyclic(byName map[string]TypeDecl, t TypeDecl) error {
	visited := map[string]bool{t.Name: true}

	for cur := t; cur.Base != ""; {
		if visited[cur.Base] {
			return fmt.Errorf("%w: type %q is part of a derivation cycle",
				ErrInvalid, t.Name)
		}

		visited[cur.Base] = true
		cur = byName[cur.Base]
	}

	return nil
}

// Build creates the declared types. A base type is built, with its hooks,
// before the types that derive from it.
func (m *Manifest) Build() (map[string]*hooking.Type, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	types := make(map[string]*hooking.Type, len(m.Types))

	for _, t := range m.Types {
		m.build(t, types)
	}

	return types, nil
}

func (m *Manifest) build(
	decl TypeDecl,
	types map[string]*hooking.Type,
) *hooking.Type {
	if t, ok := types[decl.Name]; ok {
		return t
	}

	var t *hooking.Type
	if decl.Base == "" {
		t = hooking.NewType(decl.Name)
	} else {
		baseDecl, _ := m.Type(decl.Base)
		t = m.build(baseDecl, types).Derive(decl.Name)
	}

	for _, h := range decl.Hooks {
		t.DeclareHook(h.Name, h.Params...)
	}

	types[decl.Name] = t

	return t
}

// Roots returns the names of the types without a base, in declaration order.
func (m *Manifest) Roots() []string {
	var roots []string

	for _, t := range m.Types {
		if t.Base == "" {
			roots = append(roots, t.Name)
		}
	}

	return roots
}

// Derived returns the names of the types that derive directly from the named
// type, in declaration order.
func (m *Manifest) Derived(name string) []string {
	var derived []string

	for _, t := range m.Types {
		if t.Base == name {
			derived = append(derived, t.Name)
		}
	}

	return derived
}
