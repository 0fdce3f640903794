package parser

import (
	"strings"
)

type symbolKind int

const (
	symNamespace symbolKind = iota
	symClass
	symEnum
	symAlias
	symTypeParam
	// symExternal is a name brought in by a using-declaration whose target was
	// never declared in the unit, e.g. "using std::string;".
	symExternal
)

type symbol struct {
	kind   symbolKind
	path   []string
	scope  *scope
	target string // canonical spelling for aliases and external names
}

func (s *symbol) canonical() string {
	if s.kind == symAlias || s.kind == symExternal {
		return s.target
	}
	return strings.Join(s.path, "::")
}

func (s *symbol) isType() bool {
	return s.kind != symNamespace
}

// scope is one level of the unit's name table. Template parameter scopes are
// transparent: declarations made inside them land in the enclosing scope.
type scope struct {
	parent      *scope
	path        []string
	names       map[string]*symbol
	usings      []*scope
	anonymous   *scope
	transparent bool
}

func newScope(parent *scope, path []string) *scope {
	return &scope{parent: parent, path: path, names: make(map[string]*symbol)}
}

func (s *scope) child(name string) []string {
	out := make([]string, 0, len(s.path)+1)
	out = append(out, s.path...)
	return append(out, name)
}

// declScope is where a declaration made in s is registered.
func (s *scope) declScope() *scope {
	for s.transparent && s.parent != nil {
		s = s.parent
	}
	return s
}

// namespace returns the named child namespace, creating it when missing.
func (s *scope) namespace(name string) *scope {
	if sym, ok := s.names[name]; ok && sym.kind == symNamespace {
		return sym.scope
	}
	ns := newScope(s, s.child(name))
	s.names[name] = &symbol{kind: symNamespace, path: ns.path, scope: ns}
	return ns
}

// anonymousNamespace returns the unnamed namespace of s. Its names are visible
// from s.
func (s *scope) anonymousNamespace() *scope {
	if s.anonymous == nil {
		s.anonymous = newScope(s, s.path)
		s.use(s.anonymous)
	}
	return s.anonymous
}

// class registers a class name and returns its member scope. Redeclarations
// share the scope of the first declaration.
func (s *scope) class(name string) *scope {
	if sym, ok := s.names[name]; ok && sym.kind == symClass {
		return sym.scope
	}
	cs := newScope(s, s.child(name))
	s.names[name] = &symbol{kind: symClass, path: cs.path, scope: cs}
	return cs
}

func (s *scope) enum(name string) {
	s.names[name] = &symbol{kind: symEnum, path: s.child(name)}
}

func (s *scope) alias(name, target string) {
	s.names[name] = &symbol{kind: symAlias, path: s.child(name), target: target}
}

func (s *scope) use(target *scope) {
	for _, u := range s.usings {
		if u == target {
			return
		}
	}
	s.usings = append(s.usings, target)
}

func (s *scope) own(name string) *symbol {
	if sym, ok := s.names[name]; ok {
		return sym
	}
	for _, u := range s.usings {
		if sym, ok := u.names[name]; ok {
			return sym
		}
	}
	return nil
}

// lookup resolves an unqualified name from s outwards.
func (s *scope) lookup(name string) *symbol {
	for cur := s; cur != nil; cur = cur.parent {
		if sym := cur.own(name); sym != nil {
			return sym
		}
	}
	return nil
}

// lookupQualified resolves "A::B::C" given as segments. A global lookup
// ("::A::B") starts from root.
func (s *scope) lookupQualified(segments []string, global bool) *symbol {
	if len(segments) == 0 {
		return nil
	}
	var sym *symbol
	if global {
		root := s
		for root.parent != nil {
			root = root.parent
		}
		sym = root.own(segments[0])
	} else {
		sym = s.lookup(segments[0])
	}
	for _, seg := range segments[1:] {
		if sym == nil || sym.scope == nil {
			return nil
		}
		sym = sym.scope.own(seg)
	}
	return sym
}
