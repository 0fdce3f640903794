// Package extract walks cursor trees and populates the class registry.
package extract

import (
	"log/slog"

	"cppuml/internal/engine/ast"
	"cppuml/internal/engine/model"
	"cppuml/internal/engine/resolver"
)

// action is the closed set of things the walker does with a cursor.
type action int

const (
	actionPassThrough action = iota
	actionClass
	actionBase
	actionMethod
	actionField
	actionUnion
)

// actionFor maps every cursor kind to an action. Kinds without model meaning
// are listed explicitly as pass-through so their children stay visible.
func actionFor(k ast.Kind) (action, bool) {
	switch k {
	case ast.KindClassDecl, ast.KindStructDecl, ast.KindClassTemplate:
		return actionClass, true
	case ast.KindBaseSpecifier:
		return actionBase, true
	case ast.KindCXXMethod, ast.KindConstructor, ast.KindDestructor, ast.KindFunctionTemplate:
		return actionMethod, true
	case ast.KindFieldDecl:
		return actionField, true
	case ast.KindUnionDecl:
		return actionUnion, true
	case ast.KindNamespace,
		ast.KindLinkageSpec,
		ast.KindTranslationUnit,
		ast.KindUnexposed,
		ast.KindFunctionDecl,
		ast.KindVarDecl,
		ast.KindParmDecl,
		ast.KindEnumDecl,
		ast.KindEnumConstant,
		ast.KindTypedefDecl,
		ast.KindTypeAlias,
		ast.KindTemplateTypeParameter,
		ast.KindUsingDirective,
		ast.KindFriendDecl:
		return actionPassThrough, true
	}
	return actionPassThrough, false
}

// ScopeFilter decides whether a top-level cursor belongs to the analysed sources.
type ScopeFilter func(c ast.Cursor) bool

// Stats counts what one walk contributed.
type Stats struct {
	Visited         int
	ClassesCreated  int
	ClassesReused   int
	Attributes      int
	Methods         int
	ResolvedBases   int
	DistantBases    int
	SkippedOutScope int
}

// Walker dispatches cursors to handlers that write into the registry.
type Walker struct {
	registry *model.Registry
	resolver *resolver.Resolver
	logger   *slog.Logger
	stats    Stats
}

func NewWalker(registry *model.Registry, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		registry: registry,
		resolver: resolver.NewResolver(registry),
		logger:   logger,
	}
}

func (w *Walker) Stats() Stats {
	return w.stats
}

// Unresolved lists the class-like member types that matched no registered
// class, in the order they were met.
func (w *Walker) Unresolved() []resolver.UnresolvedReference {
	return w.resolver.Unresolved()
}

// Walk visits every descendant of root with no enclosing class.
func (w *Walker) Walk(root ast.Cursor) error {
	return w.propagate(root, nil)
}

// WalkUnit visits the top-level cursors of a translation unit that pass inScope.
// A nil filter accepts everything.
func (w *Walker) WalkUnit(root ast.Cursor, inScope ScopeFilter) error {
	for _, child := range root.Children() {
		if inScope != nil && !inScope(child) {
			w.stats.SkippedOutScope++
			continue
		}
		if err := w.visit(child, nil); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) propagate(c ast.Cursor, enclosing *model.Class) error {
	for _, child := range c.Children() {
		if err := w.visit(child, enclosing); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) visit(c ast.Cursor, enclosing *model.Class) error {
	w.stats.Visited++
	act, known := actionFor(c.Kind())
	if !known {
		w.logger.Debug("unmapped cursor kind, passing through", "kind", c.Kind().String(), "name", c.DisplayName())
	}
	switch act {
	case actionClass:
		return w.classDecl(c, enclosing)
	case actionBase:
		w.baseSpecifier(c, enclosing)
		return nil
	case actionMethod:
		return w.method(c, enclosing)
	case actionField:
		return w.field(c, enclosing)
	case actionUnion:
		// Members of an anonymous union belong to the enclosing class; a named
		// union is a type of its own and is not modelled.
		if c.IsAnonymous() {
			return w.propagate(c, enclosing)
		}
		return w.propagate(c, nil)
	case actionPassThrough:
		return w.propagate(c, enclosing)
	}
	return nil
}
