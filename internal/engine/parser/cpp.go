package parser

import (
	"strings"
	"unicode"

	"cppuml/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var recordKinds = map[string]ast.Kind{
	"class_specifier":  ast.KindClassDecl,
	"struct_specifier": ast.KindStructDecl,
	"union_specifier":  ast.KindUnionDecl,
}

var accessSpecifiers = map[string]ast.AccessSpecifier{
	"public":    ast.AccessPublic,
	"protected": ast.AccessProtected,
	"private":   ast.AccessPrivate,
}

func (b *unitBuilder) namespaceDefinition(parent *ast.Node, n *sitter.Node, _ *frame) {
	saved := b.scope
	defer func() { b.scope = saved }()

	var names []string
	if name := n.ChildByFieldName("name"); name != nil {
		for _, seg := range strings.Split(b.text(name), "::") {
			if seg = strings.TrimSpace(seg); seg != "" {
				names = append(names, seg)
			}
		}
	}

	container := parent
	if len(names) == 0 {
		b.scope = b.scope.declScope().anonymousNamespace()
		node := ast.NewNode(ast.KindNamespace, "").WithLocation(b.loc(n))
		container.Append(node)
		container = node
	} else {
		inline := hasChildKind(n, "inline")
		b.scope = b.scope.declScope()
		for _, name := range names {
			outer := b.scope
			b.scope = outer.namespace(name)
			if inline {
				outer.use(b.scope)
			}
			node := ast.NewNode(ast.KindNamespace, name).WithLocation(b.loc(n))
			container.Append(node)
			container = node
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		b.items(container, body, &frame{})
	}
}

func (b *unitBuilder) recordItem(parent *ast.Node, n *sitter.Node, f *frame) {
	b.record(parent, n, f)
}

// record emits a class, struct or union cursor. Forward declarations emit a
// cursor without children.
func (b *unitBuilder) record(parent *ast.Node, n *sitter.Node, f *frame) *ast.Node {
	tmpl := b.takeTemplate()
	kind := recordKinds[n.Kind()]
	isClass := n.Kind() == "class_specifier"
	body := n.ChildByFieldName("body")
	nameNode := n.ChildByFieldName("name")

	saved := b.scope
	defer func() { b.scope = saved }()

	if nameNode == nil {
		node := ast.NewNode(kind, "").WithAccess(f.access).WithLocation(b.loc(n))
		parent.Append(node)
		if body != nil {
			b.scope = newScope(saved, saved.path)
			b.items(node, body, classFrame("", isClass))
		}
		return node
	}

	segs, global := b.segments(nameNode)
	last := segs[len(segs)-1]
	owner := saved.declScope()
	var semantic *ast.Node
	if len(segs) > 1 || global {
		owner = b.qualifierScope(segmentNames(segs[:len(segs)-1]), global)
		semantic = b.semanticChain(owner.path)
	}

	display := last.name
	switch {
	case last.args != nil && tmpl != nil && len(tmpl.params) > 0:
		// Partial specialisation.
		kind = ast.KindUnexposed
		display = last.text
	case last.args != nil:
		display = last.text
	case tmpl != nil && kind != ast.KindUnionDecl:
		kind = ast.KindClassTemplate
		display = last.name + "<" + strings.Join(tmpl.params, ", ") + ">"
	}

	members := owner.class(last.name)
	node := ast.NewNode(kind, display).WithAccess(f.access).WithLocation(b.loc(n))
	if semantic != nil {
		node.WithSemanticParent(semantic)
	}
	parent.Append(node)

	// Member lookups see the class's names, then whatever was visible at the
	// point of definition (including template parameters).
	b.scope = &scope{parent: saved, path: members.path, names: members.names}
	if clause := childOfKind(n, "base_class_clause"); clause != nil {
		b.bases(node, clause, isClass)
	}
	if body != nil {
		b.items(node, body, classFrame(last.name, isClass))
	}
	return node
}

// qualifierScope finds the scope named by a class-head qualifier, declaring
// namespaces the unit has not seen.
func (b *unitBuilder) qualifierScope(names []string, global bool) *scope {
	if len(names) == 0 {
		root := b.scope
		for root.parent != nil {
			root = root.parent
		}
		return root
	}
	if sym := b.scope.lookupQualified(names, global); sym != nil && sym.scope != nil {
		return sym.scope
	}
	s := b.scope.declScope()
	if global {
		for s.parent != nil {
			s = s.parent
		}
	}
	for _, name := range names {
		s = s.namespace(name)
	}
	return s
}

// semanticChain builds detached namespace cursors for path so a class defined
// with a qualified name reports its real enclosing scopes.
func (b *unitBuilder) semanticChain(path []string) *ast.Node {
	parent := b.tu
	for _, seg := range path {
		parent = ast.NewNode(ast.KindNamespace, seg).WithSemanticParent(parent)
	}
	return parent
}

func (b *unitBuilder) bases(node *ast.Node, clause *sitter.Node, isClass bool) {
	defaultAccess := classFrame("", isClass).access
	access := defaultAccess
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		c := clause.NamedChild(i)
		switch c.Kind() {
		case "access_specifier":
			if a, ok := accessSpecifiers[b.text(c)]; ok {
				access = a
			}
		case "type_identifier", "qualified_identifier", "template_type":
			t := b.namedType(c)
			node.Append(ast.NewNode(ast.KindBaseSpecifier, t.Spelling()).
				WithAccess(access).
				WithType(t).
				WithLocation(b.loc(c)))
			access = defaultAccess
		}
	}
}

func (b *unitBuilder) accessSpecifier(_ *ast.Node, n *sitter.Node, f *frame) {
	if !f.inClass {
		return
	}
	if a, ok := accessSpecifiers[b.text(n)]; ok {
		f.access = a
	}
}

func (b *unitBuilder) enumItem(parent *ast.Node, n *sitter.Node, f *frame) {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		segs, _ := b.segments(nameNode)
		name = segs[len(segs)-1].name
		b.scope.declScope().enum(name)
	}
	node := ast.NewNode(ast.KindEnumDecl, name).WithAccess(f.access).WithLocation(b.loc(n))
	parent.Append(node)

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		e := body.NamedChild(i)
		if e.Kind() != "enumerator" {
			continue
		}
		node.Append(ast.NewNode(ast.KindEnumConstant, b.text(e.ChildByFieldName("name"))).WithLocation(b.loc(e)))
	}
}

func (b *unitBuilder) templateDeclaration(parent *ast.Node, n *sitter.Node, f *frame) {
	b.pending = nil
	ts := newScope(b.scope, b.scope.path)
	ts.transparent = true
	params := b.templateParams(n.ChildByFieldName("parameters"), ts)

	saved := b.scope
	b.scope = ts
	defer func() { b.scope = saved }()

	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.Kind() == "template_parameter_list" {
			continue
		}
		b.pending = &templateInfo{params: params}
		b.item(parent, c, f)
		b.pending = nil
	}
}

// templateParams registers the parameters in ts and returns their display
// names, e.g. "T", "N", "Ts...".
func (b *unitBuilder) templateParams(list *sitter.Node, ts *scope) []string {
	if list == nil {
		return nil
	}
	var out []string
	for i := uint(0); i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		var name string
		variadic := false
		switch p.Kind() {
		case "type_parameter_declaration", "template_template_parameter_declaration":
			if id := lastOfKind(p, "type_identifier"); id != nil {
				name = b.text(id)
			}
		case "variadic_type_parameter_declaration":
			variadic = true
			if id := lastOfKind(p, "type_identifier"); id != nil {
				name = b.text(id)
			}
		case "optional_type_parameter_declaration":
			name = b.text(p.ChildByFieldName("name"))
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			variadic = p.Kind() == "variadic_parameter_declaration"
			if d := p.ChildByFieldName("declarator"); d != nil {
				if id := b.declarator(d, ast.Builtin("int")).name; id != nil {
					name = b.text(id)
				}
			}
		default:
			continue
		}
		if name == "" {
			continue
		}
		ts.names[name] = &symbol{kind: symTypeParam, path: []string{name}}
		if variadic {
			name += "..."
		}
		out = append(out, name)
	}
	return out
}

// declaration handles field_declaration and declaration nodes: data members,
// member function declarations, variables and nested type definitions.
func (b *unitBuilder) declaration(parent *ast.Node, n *sitter.Node, f *frame) {
	tmpl := b.takeTemplate()
	declarators := fieldChildren(n, "declarator")

	if typeNode := n.ChildByFieldName("type"); typeNode != nil {
		defines := typeNode.ChildByFieldName("body") != nil || len(declarators) == 0
		switch {
		case typeNode.Kind() == "enum_specifier" && defines:
			b.enumItem(parent, typeNode, f)
		case isRecordSpecifier(typeNode) && defines:
			b.pending = tmpl
			b.record(parent, typeNode, f)
		}
	}
	if len(declarators) == 0 {
		return
	}

	base := b.declaredType(n)
	if base == nil {
		base = ast.Builtin("void")
	}
	static := b.isStatic(n)
	for _, d := range declarators {
		decl := b.declarator(d, base)
		if decl.fn != nil {
			b.function(parent, decl, f, tmpl != nil, b.loc(n))
			continue
		}
		name := ""
		if decl.name != nil {
			name = b.text(decl.name)
		}
		kind := ast.KindVarDecl
		if f.inClass && !static && n.Kind() == "field_declaration" {
			kind = ast.KindFieldDecl
		}
		parent.Append(ast.NewNode(kind, name).
			WithAccess(f.access).
			WithType(decl.typ).
			WithLocation(b.loc(d)))
	}
}

func (b *unitBuilder) functionDefinition(parent *ast.Node, n *sitter.Node, f *frame) {
	tmpl := b.takeTemplate()
	d := n.ChildByFieldName("declarator")
	if d == nil {
		return
	}
	base := b.declaredType(n)
	if base == nil {
		base = ast.Builtin("void")
	}
	decl := b.declarator(d, base)
	if decl.fn == nil {
		return
	}
	b.function(parent, decl, f, tmpl != nil, b.loc(n))
}

// function emits a method cursor inside classes and a free-function cursor
// elsewhere. The display name is "name(argtypes)".
func (b *unitBuilder) function(parent *ast.Node, decl declared, f *frame, templated bool, loc ast.Location) {
	name, kind := b.functionName(decl, f)
	if name == "" {
		return
	}
	if !f.inClass {
		kind = ast.KindFunctionDecl
	}
	if templated {
		kind = ast.KindFunctionTemplate
	}

	var args []*ast.Node
	var spellings []string
	params := decl.fn.ChildByFieldName("parameters")
	if params != nil {
		for i := uint(0); i < params.NamedChildCount(); i++ {
			p := params.NamedChild(i)
			switch p.Kind() {
			case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			default:
				continue
			}
			t := b.declaredType(p)
			if t == nil {
				continue
			}
			pname := ""
			if d := p.ChildByFieldName("declarator"); d != nil {
				pd := b.declarator(d, t)
				t = pd.typ
				if pd.name != nil {
					pname = b.text(pd.name)
				}
			}
			if t.Kind() == ast.TypeBuiltin && t.Spelling() == "void" && pname == "" {
				continue
			}
			args = append(args, ast.NewNode(ast.KindParmDecl, pname).WithType(t).WithLocation(b.loc(p)))
			spellings = append(spellings, t.Spelling())
		}
		if hasChildKind(params, "...") {
			spellings = append(spellings, "...")
		}
	}

	result := ast.Type(decl.typ)
	if kind == ast.KindConstructor || kind == ast.KindDestructor {
		result = ast.Builtin("void")
	}

	node := ast.NewNode(kind, name+"("+strings.Join(spellings, ", ")+")").
		WithAccess(f.access).
		WithResultType(result).
		WithLocation(loc)
	for _, a := range args {
		node.AddArgument(a)
	}
	parent.Append(node)
}

func (b *unitBuilder) functionName(decl declared, f *frame) (string, ast.Kind) {
	n := decl.name
	if n == nil {
		return "", ast.KindFunctionDecl
	}
	switch n.Kind() {
	case "destructor_name":
		return strings.ReplaceAll(b.text(n), " ", ""), ast.KindDestructor
	case "operator_name":
		return operatorName(b.text(n)), ast.KindCXXMethod
	case "operator_cast":
		return "operator " + decl.typ.Spelling(), ast.KindCXXMethod
	}
	name := b.text(n)
	if f.inClass && name == f.class {
		return name, ast.KindConstructor
	}
	return name, ast.KindCXXMethod
}

// operatorName normalises "operator ==" to "operator==" and keeps one space
// before word operators ("operator new[]").
func operatorName(s string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(s, "operator"))
	rest = strings.ReplaceAll(rest, " ", "")
	if rest != "" && unicode.IsLetter(rune(rest[0])) {
		return "operator " + rest
	}
	return "operator" + rest
}

func (b *unitBuilder) friendDeclaration(parent *ast.Node, n *sitter.Node, f *frame) {
	parent.Append(ast.NewNode(ast.KindFriendDecl, "").WithAccess(f.access).WithLocation(b.loc(n)))
}

func (b *unitBuilder) aliasDeclaration(parent *ast.Node, n *sitter.Node, f *frame) {
	b.takeTemplate()
	name := b.text(n.ChildByFieldName("name"))
	t := b.typeDescriptor(n.ChildByFieldName("type"))
	b.scope.declScope().alias(name, t.Canonical().Spelling())
	parent.Append(ast.NewNode(ast.KindTypeAlias, name).WithAccess(f.access).WithType(t).WithLocation(b.loc(n)))
}

func (b *unitBuilder) typeDefinition(parent *ast.Node, n *sitter.Node, f *frame) {
	if typeNode := n.ChildByFieldName("type"); typeNode != nil && typeNode.ChildByFieldName("body") != nil {
		switch {
		case typeNode.Kind() == "enum_specifier":
			b.enumItem(parent, typeNode, f)
		case isRecordSpecifier(typeNode):
			b.record(parent, typeNode, f)
		}
	}
	base := b.declaredType(n)
	if base == nil {
		return
	}
	for _, d := range fieldChildren(n, "declarator") {
		decl := b.declarator(d, base)
		if decl.name == nil {
			continue
		}
		name := b.text(decl.name)
		b.scope.declScope().alias(name, decl.typ.Canonical().Spelling())
		parent.Append(ast.NewNode(ast.KindTypedefDecl, name).WithAccess(f.access).WithType(decl.typ).WithLocation(b.loc(d)))
	}
}

// usingDeclaration handles both "using namespace X;" and "using X::name;".
func (b *unitBuilder) usingDeclaration(parent *ast.Node, n *sitter.Node, f *frame) {
	target := lastNamed(n)
	if target == nil {
		return
	}
	segs, global := b.segments(target)
	if len(segs) == 0 {
		return
	}
	names := segmentNames(segs)
	sym := b.scope.lookupQualified(names, global)
	owner := b.scope.declScope()

	if hasChildKind(n, "namespace") {
		if sym != nil && sym.kind == symNamespace {
			owner.use(sym.scope)
		}
	} else if sym != nil {
		owner.names[names[len(names)-1]] = sym
	} else {
		owner.names[names[len(names)-1]] = &symbol{kind: symExternal, path: names, target: strings.Join(names, "::")}
	}
	parent.Append(ast.NewNode(ast.KindUsingDirective, b.text(target)).WithAccess(f.access).WithLocation(b.loc(n)))
}

func (b *unitBuilder) linkageSpecification(parent *ast.Node, n *sitter.Node, f *frame) {
	node := ast.NewNode(ast.KindLinkageSpec, "").WithLocation(b.loc(n))
	parent.Append(node)
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Kind() == "declaration_list" {
		b.items(node, body, f)
		return
	}
	b.item(node, body, f)
}

func isRecordSpecifier(n *sitter.Node) bool {
	_, ok := recordKinds[n.Kind()]
	return ok
}

func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c.Kind() == kind {
			return c
		}
	}
	return nil
}

func lastOfKind(n *sitter.Node, kind string) *sitter.Node {
	var found *sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c.Kind() == kind {
			found = c
		}
	}
	return found
}
