package parser

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// itemHandler turns one declaration-level syntax node into cursors under parent.
type itemHandler func(b *unitBuilder, parent *ast.Node, n *sitter.Node, f *frame)

// itemHandlers is keyed by tree-sitter node kind. Kinds without an entry
// (expressions, comments, macro definitions) produce no cursors.
var itemHandlers map[string]itemHandler

func init() {
	itemHandlers = map[string]itemHandler{
		"namespace_definition":  (*unitBuilder).namespaceDefinition,
		"class_specifier":       (*unitBuilder).recordItem,
		"struct_specifier":      (*unitBuilder).recordItem,
		"union_specifier":       (*unitBuilder).recordItem,
		"enum_specifier":        (*unitBuilder).enumItem,
		"template_declaration":  (*unitBuilder).templateDeclaration,
		"field_declaration":     (*unitBuilder).declaration,
		"declaration":           (*unitBuilder).declaration,
		"function_definition":   (*unitBuilder).functionDefinition,
		"friend_declaration":    (*unitBuilder).friendDeclaration,
		"alias_declaration":     (*unitBuilder).aliasDeclaration,
		"type_definition":       (*unitBuilder).typeDefinition,
		"using_declaration":     (*unitBuilder).usingDeclaration,
		"linkage_specification": (*unitBuilder).linkageSpecification,
		"access_specifier":      (*unitBuilder).accessSpecifier,
		"preproc_include":       (*unitBuilder).include,
		"preproc_if":            (*unitBuilder).container,
		"preproc_ifdef":         (*unitBuilder).container,
		"preproc_else":          (*unitBuilder).container,
		"preproc_elif":          (*unitBuilder).container,
		"preproc_elifdef":       (*unitBuilder).container,
		"declaration_list":      (*unitBuilder).container,
		"ERROR":                 (*unitBuilder).container,
	}
}

// frame is the lexical context of a declaration list.
type frame struct {
	inClass bool
	class   string // unqualified name of the enclosing class, for constructors
	access  ast.AccessSpecifier
}

func classFrame(name string, isClass bool) *frame {
	access := ast.AccessPublic
	if isClass {
		access = ast.AccessPrivate
	}
	return &frame{inClass: true, class: name, access: access}
}

type templateInfo struct {
	params []string
}

// unitBuilder holds the state of one translation unit while its files are
// expanded. src and file always describe the file currently being read.
type unitBuilder struct {
	ctx      context.Context
	parser   *Parser
	logger   *slog.Logger
	includes IncludePaths
	visited  map[string]bool
	files    []string

	tu           *ast.Node
	scope        *scope
	pending      *templateInfo
	syntaxErrors int

	src  []byte
	file string
}

func (b *unitBuilder) items(parent *ast.Node, n *sitter.Node, f *frame) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		b.item(parent, n.NamedChild(i), f)
	}
}

func (b *unitBuilder) item(parent *ast.Node, n *sitter.Node, f *frame) {
	if n == nil {
		return
	}
	if h, ok := itemHandlers[n.Kind()]; ok {
		h(b, parent, n, f)
	}
}

func (b *unitBuilder) container(parent *ast.Node, n *sitter.Node, f *frame) {
	b.items(parent, n, f)
}

// takeTemplate consumes the parameters of an enclosing template declaration.
func (b *unitBuilder) takeTemplate() *templateInfo {
	t := b.pending
	b.pending = nil
	return t
}

// expandSource parses src as file and appends its declarations to parent.
func (b *unitBuilder) expandSource(parent *ast.Node, file string, src []byte, f *frame) error {
	b.visited[file] = true
	b.files = append(b.files, file)

	tree, err := b.parser.parse(src)
	if err != nil {
		return errors.AddContext(err, errors.CtxPath, file)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		b.syntaxErrors++
		b.logger.Debug("syntax errors recovered", "path", file)
	}

	savedSrc, savedFile := b.src, b.file
	b.src, b.file = src, file
	b.items(parent, root, f)
	b.src, b.file = savedSrc, savedFile
	return nil
}

func (b *unitBuilder) include(parent *ast.Node, n *sitter.Node, f *frame) {
	if b.ctx.Err() != nil {
		return
	}
	operand := n.ChildByFieldName("path")
	if operand == nil {
		return
	}
	name, quoted, ok := includeTarget(b.raw(operand))
	if !ok {
		b.logger.Debug("include operand is not a file name", "operand", b.text(operand))
		return
	}
	path, found := b.includes.resolve(name, quoted, b.file)
	if !found {
		b.logger.Debug("include not found", "include", name, "path", b.file, "searched", b.includes.Roots())
		return
	}
	if b.visited[path] {
		return
	}
	src, err := os.ReadFile(path)
	if err != nil {
		b.logger.Debug("include unreadable", "path", path, "error", err)
		return
	}
	if err := b.expandSource(parent, path, src, f); err != nil {
		b.logger.Debug("include not parsed", "path", path, "error", err)
	}
}

func (b *unitBuilder) raw(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(b.src)
}

// text is n's source with whitespace runs collapsed to single spaces.
func (b *unitBuilder) text(n *sitter.Node) string {
	return collapse(b.raw(n))
}

func (b *unitBuilder) loc(n *sitter.Node) ast.Location {
	pos := n.StartPosition()
	return ast.Location{File: b.file, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasChildKind(n *sitter.Node, kind string) bool {
	if n == nil {
		return false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.Child(i).Kind() == kind {
			return true
		}
	}
	return false
}

func firstNamed(n *sitter.Node) *sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.Kind() != "comment" {
			return c
		}
	}
	return nil
}

func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	cursor := n.Walk()
	defer cursor.Close()
	nodes := n.ChildrenByFieldName(field, cursor)
	out := make([]*sitter.Node, len(nodes))
	for i := range nodes {
		out[i] = &nodes[i]
	}
	return out
}
