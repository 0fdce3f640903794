package parser

import (
	"strings"

	"cppuml/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// typeSegment is one "::"-separated part of a written type name.
type typeSegment struct {
	name string
	args *sitter.Node // template_argument_list, when the segment is a template-id
	text string
}

// declared is the result of reading a declarator against a base type.
type declared struct {
	typ  *ast.TypeInfo
	name *sitter.Node
	// fn is the function declarator when the declarator declares a function;
	// typ is then the return type.
	fn *sitter.Node
}

// declaredType builds the type named by a declaration's specifiers, or nil
// when there is none (constructors, destructors).
func (b *unitBuilder) declaredType(decl *sitter.Node) *ast.TypeInfo {
	t := b.specifierType(decl.ChildByFieldName("type"))
	if t != nil && b.isConst(decl) {
		t = t.WithConst()
	}
	return t
}

func (b *unitBuilder) isConst(decl *sitter.Node) bool {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		c := decl.NamedChild(i)
		if c.Kind() == "type_qualifier" && b.text(c) == "const" {
			return true
		}
	}
	return false
}

func (b *unitBuilder) isStatic(decl *sitter.Node) bool {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		c := decl.NamedChild(i)
		if c.Kind() == "storage_class_specifier" && b.text(c) == "static" {
			return true
		}
	}
	return false
}

func (b *unitBuilder) specifierType(n *sitter.Node) *ast.TypeInfo {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "primitive_type", "sized_type_specifier":
		return ast.Builtin(b.text(n))
	case "placeholder_type_specifier", "auto":
		return ast.NewType(ast.TypeAuto, b.text(n), "")
	case "type_identifier", "qualified_identifier", "template_type", "identifier", "namespace_identifier":
		return b.namedType(n)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return b.namedType(name)
		}
		return ast.NewType(ast.TypeUnexposed, "(anonymous)", "")
	}
	return ast.NewType(ast.TypeUnexposed, b.text(n), "")
}

func (b *unitBuilder) segments(n *sitter.Node) ([]typeSegment, bool) {
	var segs []typeSegment
	global := false
	for n != nil && n.Kind() == "qualified_identifier" {
		if sc := n.ChildByFieldName("scope"); sc != nil {
			segs = append(segs, b.segment(sc))
		} else if len(segs) == 0 {
			global = true
		}
		n = n.ChildByFieldName("name")
	}
	if n != nil {
		segs = append(segs, b.segment(n))
	}
	return segs, global
}

func (b *unitBuilder) segment(n *sitter.Node) typeSegment {
	if n.Kind() == "template_type" {
		return typeSegment{
			name: b.text(n.ChildByFieldName("name")),
			args: n.ChildByFieldName("arguments"),
			text: b.text(n),
		}
	}
	return typeSegment{name: b.text(n), text: b.text(n)}
}

func segmentNames(segs []typeSegment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.name
	}
	return out
}

// namedType resolves a written type name through the scope table. Known
// classes become records with a fully-qualified canonical spelling; names the
// unit never declared stay elaborated with their written spelling.
func (b *unitBuilder) namedType(n *sitter.Node) *ast.TypeInfo {
	segs, global := b.segments(n)
	if len(segs) == 0 {
		return ast.NewType(ast.TypeUnexposed, b.text(n), "")
	}
	names := segmentNames(segs)
	sym := b.scope.lookupQualified(names, global)
	if sym != nil && !sym.isType() {
		sym = nil
	}

	last := segs[len(segs)-1]
	var args []ast.Type
	if last.args != nil {
		args = b.templateArguments(last.args)
	}

	spelled := make([]string, len(segs))
	for i, s := range segs {
		spelled[i] = s.text
	}
	if last.args != nil {
		spelled[len(spelled)-1] = last.name + argumentList(args, false)
	}
	spelling := strings.Join(spelled, "::")
	if global {
		spelling = "::" + spelling
	}

	kind := ast.TypeElaborated
	canonical := strings.Join(names, "::")
	if sym != nil {
		canonical = sym.canonical()
		switch sym.kind {
		case symClass:
			kind = ast.TypeRecord
		case symEnum:
			kind = ast.TypeEnum
		case symAlias:
			kind = ast.TypeTypedef
		case symTypeParam:
			kind = ast.TypeUnexposed
		}
	}

	if last.args != nil {
		return ast.Specialization(kind, spelling, canonical+argumentList(args, true), args...)
	}
	return ast.NewType(kind, spelling, canonical)
}

func argumentList(args []ast.Type, canonical bool) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if canonical {
			parts[i] = a.Canonical().Spelling()
		} else {
			parts[i] = a.Spelling()
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (b *unitBuilder) templateArguments(list *sitter.Node) []ast.Type {
	var args []ast.Type
	for i := uint(0); i < list.NamedChildCount(); i++ {
		c := list.NamedChild(i)
		switch c.Kind() {
		case "comment":
		case "type_descriptor":
			args = append(args, b.typeDescriptor(c))
		case "identifier", "qualified_identifier", "type_identifier", "template_type":
			segs, global := b.segments(c)
			if sym := b.scope.lookupQualified(segmentNames(segs), global); sym != nil && sym.isType() {
				args = append(args, b.namedType(c))
				continue
			}
			args = append(args, ast.NewType(ast.TypeInvalid, b.text(c), ""))
		default:
			args = append(args, ast.NewType(ast.TypeInvalid, b.text(c), ""))
		}
	}
	return args
}

// typeDescriptor reads a type-id such as a template argument or alias target.
func (b *unitBuilder) typeDescriptor(td *sitter.Node) *ast.TypeInfo {
	if td == nil {
		return ast.NewType(ast.TypeUnexposed, "", "")
	}
	t := b.declaredType(td)
	if t == nil {
		return ast.NewType(ast.TypeUnexposed, b.text(td), "")
	}
	if d := td.ChildByFieldName("declarator"); d != nil {
		return b.declarator(d, t).typ
	}
	return t
}

// declarator applies d's pointer, reference and array operators to t,
// outermost first, and stops at the declared name or function declarator.
func (b *unitBuilder) declarator(d *sitter.Node, t *ast.TypeInfo) declared {
	for d != nil {
		switch d.Kind() {
		case "pointer_declarator", "abstract_pointer_declarator":
			t = ast.PointerTo(t)
			d = d.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			if strings.HasPrefix(strings.TrimSpace(b.raw(d)), "&&") {
				t = ast.RValueReferenceTo(t)
			} else {
				t = ast.LValueReferenceTo(t)
			}
			d = firstNamed(d)
		case "array_declarator", "abstract_array_declarator":
			t = ast.ArrayOf(t)
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			d = firstNamed(d)
		case "init_declarator":
			d = d.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			inner := d.ChildByFieldName("declarator")
			if inner != nil && (inner.Kind() == "parenthesized_declarator" || inner.Kind() == "abstract_parenthesized_declarator") {
				// Pointer to function: the declared entity is data, not a method.
				fp := ast.NewType(ast.TypePointer, t.Spelling()+" (*)"+b.text(d.ChildByFieldName("parameters")), "")
				return declared{typ: fp, name: b.declarator(inner, t).name}
			}
			return declared{typ: t, name: inner, fn: d}
		case "operator_cast":
			ct := b.declaredType(d)
			if ct == nil {
				ct = ast.NewType(ast.TypeUnexposed, "", "")
			}
			return declared{typ: ct, name: d, fn: d.ChildByFieldName("declarator")}
		case "variadic_reference_declarator":
			if strings.HasPrefix(strings.TrimSpace(b.raw(d)), "&&") {
				t = ast.RValueReferenceTo(t)
			} else {
				t = ast.LValueReferenceTo(t)
			}
			d = lastNamed(d)
		case "variadic_declarator":
			t = ast.NewType(ast.TypeUnexposed, t.Spelling()+"...", "")
			d = lastNamed(d)
		default:
			return declared{typ: t, name: d}
		}
	}
	return declared{typ: t}
}

func lastNamed(n *sitter.Node) *sitter.Node {
	count := n.NamedChildCount()
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}
