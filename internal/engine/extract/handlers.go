package extract

import (
	"strings"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/ast"
	"cppuml/internal/engine/model"
)

var visibilities = map[ast.AccessSpecifier]model.Visibility{
	ast.AccessPublic:    model.Public,
	ast.AccessProtected: model.Protected,
	ast.AccessPrivate:   model.Private,
}

// VisibilityOf maps a member's access specifier. A member without one means the
// AST is not shaped like a class body and the model cannot be trusted.
func VisibilityOf(c ast.Cursor) (model.Visibility, error) {
	v, ok := visibilities[c.Access()]
	if !ok {
		return 0, errors.Newf(errors.CodeMalformedAST, "no visibility for access specifier %q", c.Access().String()).
			WithContext(errors.CtxSymbol, c.DisplayName()).
			WithContext(errors.CtxKind, c.Kind().String()).
			WithContext(errors.CtxPath, c.Location().String())
	}
	return v, nil
}

// NamespaceOf collects the display names of c's semantic ancestors below the
// translation unit, outermost first. Anonymous namespaces add no segment.
func NamespaceOf(c ast.Cursor) model.Namespace {
	var rev []string
	for p := c.SemanticParent(); p != nil && p.Kind() != ast.KindTranslationUnit; p = p.SemanticParent() {
		if p.DisplayName() == "" {
			continue
		}
		rev = append(rev, p.DisplayName())
	}
	segs := make([]string, len(rev))
	for i, s := range rev {
		segs[len(rev)-1-i] = s
	}
	return model.NewNamespace(segs...)
}

func (w *Walker) classDecl(c ast.Cursor, enclosing *model.Class) error {
	if c.IsAnonymous() {
		return nil
	}

	ns := NamespaceOf(c)
	id := ns.Qualify(c.DisplayName(), model.IdentitySeparator)
	if enclosing != nil {
		ns = enclosing.Namespace
	}

	cls, created, err := w.registry.LookupOrCreate(id, ns, c.DisplayName())
	if err != nil {
		return err
	}
	if created {
		w.stats.ClassesCreated++
		w.logger.Debug("class registered", "class", id, "namespace", ns.String())
	} else {
		w.stats.ClassesReused++
	}
	return w.propagate(c, cls)
}

func (w *Walker) baseSpecifier(c ast.Cursor, enclosing *model.Class) {
	if enclosing == nil || c.Type() == nil {
		return
	}
	parent, spelling := w.resolver.ResolveBase(c.Type())
	if parent != nil {
		if enclosing.AddParent(parent) {
			w.stats.ResolvedBases++
		}
		return
	}
	if enclosing.AddDistantParent(spelling) {
		w.stats.DistantBases++
	}
}

func (w *Walker) method(c ast.Cursor, enclosing *model.Class) error {
	if enclosing == nil || enclosing.HasMethod(c.DisplayName()) {
		return nil
	}
	vis, err := VisibilityOf(c)
	if err != nil {
		return err
	}

	args := make([]string, 0, len(c.Arguments()))
	for _, a := range c.Arguments() {
		if a.Type() != nil {
			args = append(args, a.Type().Spelling())
		}
	}
	ret := ""
	if c.ResultType() != nil {
		ret = c.ResultType().Spelling()
	}

	enclosing.AddMethod(&model.Method{
		Name:       c.DisplayName(),
		ReturnType: ret,
		ParamTypes: strings.Join(args, ", "),
		Visibility: vis,
	})
	w.stats.Methods++
	return nil
}

func (w *Walker) field(c ast.Cursor, enclosing *model.Class) error {
	if enclosing == nil || c.IsAnonymous() || enclosing.HasAttribute(c.DisplayName()) {
		return nil
	}
	vis, err := VisibilityOf(c)
	if err != nil {
		return err
	}
	enclosing.AddAttribute(&model.Attribute{
		Name:       c.DisplayName(),
		Type:       w.resolver.ResolveType(c.Type()),
		Visibility: vis,
	})
	w.stats.Attributes++
	return nil
}
