package model

import (
	"cppuml/internal/core/errors"
)

// Registry is the run-wide store of classes keyed by fully-qualified ID.
// It is written by a single walker and then frozen by Snapshot; it needs no
// locking because the two phases never overlap.
type Registry struct {
	classes map[string]*Class
	order   []*Class
	frozen  bool
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// LookupOrCreate returns the class registered under id, creating it with ns and
// name on first encounter. The bool reports whether the class was created.
func (r *Registry) LookupOrCreate(id string, ns Namespace, name string) (*Class, bool, error) {
	if c, ok := r.classes[id]; ok {
		return c, false, nil
	}
	if r.frozen {
		return nil, false, errors.Newf(errors.CodeConflict, "registry is frozen").
			WithContext(errors.CtxSymbol, id)
	}
	c := NewClass(id, ns, name)
	r.classes[id] = c
	r.order = append(r.order, c)
	return c, true, nil
}

func (r *Registry) Get(id string) (*Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

// Snapshot freezes the registry and returns its read-only view.
func (r *Registry) Snapshot() *Snapshot {
	r.frozen = true
	s := &Snapshot{
		classes: append([]*Class(nil), r.order...),
		byID:    r.classes,
	}
	idx := make(map[string]int)
	for _, c := range s.classes {
		key := c.Namespace.Key()
		i, ok := idx[key]
		if !ok {
			i = len(s.groups)
			idx[key] = i
			s.groups = append(s.groups, NamespaceGroup{Namespace: c.Namespace})
		}
		s.groups[i].Classes = append(s.groups[i].Classes, c)
	}
	return s
}

// NamespaceGroup is the set of classes sharing one namespace, in registration order.
type NamespaceGroup struct {
	Namespace Namespace
	Classes   []*Class
}

// Snapshot is the frozen registry handed to the synthesizer.
type Snapshot struct {
	classes []*Class
	byID    map[string]*Class
	groups  []NamespaceGroup
}

func (s *Snapshot) Classes() []*Class {
	return append([]*Class(nil), s.classes...)
}

func (s *Snapshot) Get(id string) (*Class, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Groups returns namespaces in the order their first class was registered.
func (s *Snapshot) Groups() []NamespaceGroup {
	out := make([]NamespaceGroup, len(s.groups))
	for i, g := range s.groups {
		out[i] = NamespaceGroup{Namespace: g.Namespace, Classes: append([]*Class(nil), g.Classes...)}
	}
	return out
}

// Stats summarises the snapshot for logs, metrics and history.
type Stats struct {
	Classes         int
	Namespaces      int
	Attributes      int
	Methods         int
	ResolvedParents int
	DistantParents  int
}

func (s *Snapshot) Stats() Stats {
	st := Stats{Classes: len(s.classes), Namespaces: len(s.groups)}
	for _, c := range s.classes {
		st.Attributes += len(c.attributes)
		st.Methods += len(c.methods)
		st.ResolvedParents += len(c.parents)
		st.DistantParents += len(c.distant)
	}
	return st
}
