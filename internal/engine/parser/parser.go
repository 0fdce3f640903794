// Package parser turns C++ translation units into cursor trees using the
// tree-sitter C++ grammar. It is a front-end, not a semantic analyser: names
// are canonicalised through a per-unit scope table and headers are expanded
// textually, but overloads and template instantiations are not resolved.
package parser

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// SourceExtensions are the file extensions treated as C++ translation units.
var SourceExtensions = []string{".cpp", ".cc", ".cxx", ".c++"}

// HeaderExtensions are the file extensions treated as C++ headers.
var HeaderExtensions = []string{".h", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".ipp"}

// IsCppFile reports whether path has a source or header extension.
func IsCppFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	for _, e := range HeaderExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Unit is one compile command: a main file, the directory the compiler ran in
// and the remaining compiler arguments.
type Unit struct {
	File      string
	Directory string
	Arguments []string
}

// Path is the unit's main file as an absolute, clean path.
func (u Unit) Path() string {
	return absPath(u.File, u.Directory)
}

// Result is the cursor tree of one unit.
type Result struct {
	Root *ast.Node
	// Files lists the main file followed by every expanded header, in the order
	// they were first included.
	Files []string
	// SyntaxErrors counts files whose tree contained error-recovery nodes.
	SyntaxErrors int
}

type Parser struct {
	pool   *ParserPool
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	lang := sitter.NewLanguage(tree_sitter_cpp.Language())
	return &Parser{pool: NewParserPool(lang), logger: logger}
}

// ParseUnit reads and parses the unit's main file and the headers it includes.
func (p *Parser) ParseUnit(ctx context.Context, unit Unit) (*Result, error) {
	path := unit.Path()
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeParseFailed, "read translation unit"),
			errors.CtxUnit, path,
		)
	}
	return p.ParseSource(ctx, unit, src)
}

// ParseSource parses src as the unit's main file. Includes are still read from
// disk.
func (p *Parser) ParseSource(ctx context.Context, unit Unit, src []byte) (*Result, error) {
	path := unit.Path()
	b := &unitBuilder{
		ctx:      ctx,
		parser:   p,
		logger:   p.logger.With("unit", path),
		includes: IncludePathsFromArgs(unit.Arguments, unit.Directory),
		visited:  make(map[string]bool),
		tu:       ast.NewTranslationUnit(path),
		scope:    newScope(nil, nil),
	}
	if err := b.expandSource(b.tu, path, src, &frame{}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.logger.Debug("unit parsed", "files", len(b.files), "parsers_created", p.pool.Stats().Created)
	return &Result{Root: b.tu, Files: b.files, SyntaxErrors: b.syntaxErrors}, nil
}

// parse runs tree-sitter over src. The parser goes back to the pool at once;
// the caller owns the tree.
func (p *Parser) parse(src []byte) (*sitter.Tree, error) {
	sp, err := p.pool.Get()
	if err != nil {
		return nil, err
	}
	defer p.pool.Put(sp)
	tree := sp.Parse(src, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeParseFailed, "tree-sitter returned no tree")
	}
	return tree, nil
}
