// Package resolver links raw declared types to classes already in the registry.
package resolver

import (
	"cppuml/internal/engine/ast"
	"cppuml/internal/engine/model"
)

// ClassLookup finds a class by fully-qualified identity. *model.Registry and
// *model.Snapshot both satisfy it.
type ClassLookup interface {
	Get(id string) (*model.Class, bool)
}

// UnresolvedReference is a declared type that did not link to a known class.
type UnresolvedReference struct {
	Spelling string
	Identity string
}

type Resolver struct {
	classes    ClassLookup
	unresolved []UnresolvedReference
}

func NewResolver(classes ClassLookup) *Resolver {
	return &Resolver{classes: classes}
}

// ResolveType maps a declared type to a TypeReference.
//
// It looks through exactly one level of template wrapping (a specialisation with
// one or two arguments is replaced by its first argument) and then exactly one
// pointer or lvalue reference. Nested containers are not unwrapped further.
func (r *Resolver) ResolveType(t ast.Type) model.TypeReference {
	if t == nil {
		return model.TypeReference{}
	}
	ref := model.TypeReference{Spelling: t.Spelling()}

	id := Identity(t)
	if id == "" {
		return ref
	}
	if c, ok := r.classes.Get(id); ok {
		ref.Class = c
		return ref
	}
	r.unresolved = append(r.unresolved, UnresolvedReference{Spelling: ref.Spelling, Identity: id})
	return ref
}

// Identity returns the registry identity a declared type points at, or "" when
// the unwrapped type is not a record, enum or plain elaborated name.
func Identity(t ast.Type) string {
	target := t
	if n := t.NumTemplateArguments(); n == 1 || n == 2 {
		if arg := t.TemplateArgument(0); arg != nil {
			target = arg
		}
	}

	switch target.Kind() {
	case ast.TypePointer, ast.TypeLValueReference:
		if p := target.Pointee(); p != nil {
			target = p
		}
	}

	switch {
	case target.Kind() == ast.TypeRecord, target.Kind() == ast.TypeEnum:
	case target.Kind() == ast.TypeElaborated && target.NumTemplateArguments() == -1:
	default:
		return ""
	}
	return model.IdentityFromSpelling(target.Canonical().Spelling())
}

// ResolveBase returns the registered class for a base specifier's type, if it
// has already been seen. The raw spelling is returned for distant bases.
func (r *Resolver) ResolveBase(t ast.Type) (*model.Class, string) {
	if t == nil {
		return nil, ""
	}
	id := model.IdentityFromSpelling(t.Canonical().Spelling())
	if c, ok := r.classes.Get(id); ok {
		return c, t.Spelling()
	}
	return nil, t.Spelling()
}

// Unresolved returns the candidate class types that were not found, in order.
func (r *Resolver) Unresolved() []UnresolvedReference {
	return append([]UnresolvedReference(nil), r.unresolved...)
}
