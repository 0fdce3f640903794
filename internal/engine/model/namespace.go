// Package model holds the class model extracted from translation units: namespaces,
// classes, their members and the registry that deduplicates them.
package model

import "strings"

// NamespaceSeparator joins namespace segments for display and keying.
const NamespaceSeparator = "::"

// IdentitySeparator joins namespace segments and a class name into a class identity.
const IdentitySeparator = "."

// Namespace is an ordered sequence of name segments, outermost first.
// The zero value is the global namespace.
type Namespace struct {
	segments []string
}

func NewNamespace(segments ...string) Namespace {
	return Namespace{segments: append([]string(nil), segments...)}
}

// Append returns a copy of n with seg appended; n is left untouched.
func (n Namespace) Append(seg string) Namespace {
	out := make([]string, len(n.segments), len(n.segments)+1)
	copy(out, n.segments)
	return Namespace{segments: append(out, seg)}
}

func (n Namespace) Segments() []string {
	return append([]string(nil), n.segments...)
}

func (n Namespace) Len() int {
	return len(n.segments)
}

func (n Namespace) IsGlobal() bool {
	return len(n.segments) == 0
}

// Key is the joined form used for equality and as a map key.
func (n Namespace) Key() string {
	return strings.Join(n.segments, NamespaceSeparator)
}

func (n Namespace) Equal(other Namespace) bool {
	return n.Key() == other.Key()
}

func (n Namespace) String() string {
	return n.Key()
}

// Qualify joins the namespace with name using sep.
func (n Namespace) Qualify(name, sep string) string {
	if len(n.segments) == 0 {
		return name
	}
	return strings.Join(n.segments, sep) + sep + name
}

// IdentityFromSpelling normalises a canonical type spelling ("::A::B::Foo")
// into class identity form ("A.B.Foo").
func IdentityFromSpelling(spelling string) string {
	s := strings.TrimSpace(spelling)
	s = strings.TrimPrefix(s, NamespaceSeparator)
	return strings.ReplaceAll(s, NamespaceSeparator, IdentitySeparator)
}
