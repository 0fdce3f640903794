package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/ast"
	"cppuml/internal/engine/extract"
	"cppuml/internal/engine/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapesSource = `
namespace A {
class Shape {
public:
  virtual float area() const = 0;
};

namespace B {
class Circle : public Shape {
public:
  Circle(float r);
  ~Circle();
  float area() const override;
  bool operator==(const Circle& other) const;
private:
  float radius;
  Shape* parent;
  static int count;
};
}
}
`

func parseSource(t *testing.T, src string, args ...string) *Result {
	t.Helper()
	p := NewParser(nil)
	res, err := p.ParseSource(context.Background(), Unit{File: "main.cpp", Directory: t.TempDir(), Arguments: args}, []byte(src))
	require.NoError(t, err)
	return res
}

func find(n *ast.Node, kind ast.Kind, name string) *ast.Node {
	if n.Kind() == kind && n.DisplayName() == name {
		return n
	}
	for _, c := range n.ChildNodes() {
		if found := find(c, kind, name); found != nil {
			return found
		}
	}
	return nil
}

func kindsOf(nodes []*ast.Node) []ast.Kind {
	out := make([]ast.Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind()
	}
	return out
}

func TestParseNamespacesAndClasses(t *testing.T) {
	res := parseSource(t, shapesSource)
	assert.Equal(t, 0, res.SyntaxErrors)

	nsA := find(res.Root, ast.KindNamespace, "A")
	require.NotNil(t, nsA)
	assert.Equal(t, []ast.Kind{ast.KindClassDecl, ast.KindNamespace}, kindsOf(nsA.ChildNodes()))

	circle := find(res.Root, ast.KindClassDecl, "Circle")
	require.NotNil(t, circle)
	require.NotNil(t, circle.SemanticParent())
	assert.Equal(t, "B", circle.SemanticParent().DisplayName())
	assert.Equal(t, 9, circle.Location().Line)
}

func TestParseBaseSpecifierIsCanonical(t *testing.T) {
	res := parseSource(t, shapesSource)
	base := find(res.Root, ast.KindBaseSpecifier, "Shape")
	require.NotNil(t, base)
	assert.Equal(t, ast.AccessPublic, base.Access())
	assert.Equal(t, ast.TypeRecord, base.Type().Kind())
	assert.Equal(t, "A::Shape", base.Type().Canonical().Spelling())
}

func TestParseMembers(t *testing.T) {
	res := parseSource(t, shapesSource)
	circle := find(res.Root, ast.KindClassDecl, "Circle")
	require.NotNil(t, circle)

	ctor := find(circle, ast.KindConstructor, "Circle(float)")
	require.NotNil(t, ctor)
	assert.Equal(t, ast.AccessPublic, ctor.Access())
	require.Len(t, ctor.Arguments(), 1)
	assert.Equal(t, "r", ctor.Arguments()[0].DisplayName())

	assert.NotNil(t, find(circle, ast.KindDestructor, "~Circle()"))

	area := find(circle, ast.KindCXXMethod, "area()")
	require.NotNil(t, area)
	assert.Equal(t, "float", area.ResultType().Spelling())

	eq := find(circle, ast.KindCXXMethod, "operator==(const Circle &)")
	require.NotNil(t, eq)
	assert.Equal(t, "bool", eq.ResultType().Spelling())

	radius := find(circle, ast.KindFieldDecl, "radius")
	require.NotNil(t, radius)
	assert.Equal(t, ast.AccessPrivate, radius.Access())
	assert.Equal(t, "float", radius.Type().Spelling())

	parent := find(circle, ast.KindFieldDecl, "parent")
	require.NotNil(t, parent)
	assert.Equal(t, ast.TypePointer, parent.Type().Kind())
	assert.Equal(t, "Shape *", parent.Type().Spelling())
	assert.Equal(t, "A::Shape", parent.Type().Pointee().Canonical().Spelling())

	assert.Nil(t, find(circle, ast.KindFieldDecl, "count"), "static members are not fields")
	assert.NotNil(t, find(circle, ast.KindVarDecl, "count"))
}

func TestParseDefaultAccess(t *testing.T) {
	res := parseSource(t, `
struct Point { int x; };
class Hidden { int y; };
`)
	x := find(res.Root, ast.KindFieldDecl, "x")
	y := find(res.Root, ast.KindFieldDecl, "y")
	require.NotNil(t, x)
	require.NotNil(t, y)
	assert.Equal(t, ast.AccessPublic, x.Access())
	assert.Equal(t, ast.AccessPrivate, y.Access())
	assert.NotNil(t, find(res.Root, ast.KindStructDecl, "Point"))
}

func TestParseTemplateClass(t *testing.T) {
	res := parseSource(t, `
namespace A {
template <typename T, int N>
class Box {
public:
  T items[N];
  T first() const;
};
}
`)
	box := find(res.Root, ast.KindClassTemplate, "Box<T, N>")
	require.NotNil(t, box)
	items := find(box, ast.KindFieldDecl, "items")
	require.NotNil(t, items)
	assert.Equal(t, ast.TypeConstantArray, items.Type().Kind())
	assert.NotNil(t, find(box, ast.KindCXXMethod, "first()"))
}

func TestParseContainerFieldKeepsTemplateArguments(t *testing.T) {
	res := parseSource(t, `
namespace A { class Shape {}; }
using namespace A;
class Canvas {
  std::vector<Shape*> shapes;
  std::map<Shape, int> counts;
};
`)
	shapes := find(res.Root, ast.KindFieldDecl, "shapes")
	require.NotNil(t, shapes)
	typ := shapes.Type()
	assert.Equal(t, "std::vector<Shape *>", typ.Spelling())
	require.Equal(t, 1, typ.NumTemplateArguments())
	arg := typ.TemplateArgument(0)
	assert.Equal(t, ast.TypePointer, arg.Kind())
	assert.Equal(t, "A::Shape", arg.Pointee().Canonical().Spelling())

	counts := find(res.Root, ast.KindFieldDecl, "counts")
	require.NotNil(t, counts)
	assert.Equal(t, 2, counts.Type().NumTemplateArguments())
}

func TestParseSkipsFunctionBodiesAndOutOfLineDefinitions(t *testing.T) {
	res := parseSource(t, `
namespace A {
class Shape { public: float area() const; };
float Shape::area() const {
  struct Local { int z; };
  return 0.0f;
}
}
`)
	assert.Nil(t, find(res.Root, ast.KindStructDecl, "Local"))
	shape := find(res.Root, ast.KindClassDecl, "Shape")
	require.NotNil(t, shape)
	assert.Len(t, shape.ChildNodes(), 1)
}

func TestParseAnonymousNamespaceAndRecords(t *testing.T) {
	res := parseSource(t, `
namespace {
struct Hidden {};
}
namespace A {
struct { int v; } instance;
}
`)
	hidden := find(res.Root, ast.KindStructDecl, "Hidden")
	require.NotNil(t, hidden)
	assert.True(t, hidden.SemanticParent().IsAnonymous())

	nsA := find(res.Root, ast.KindNamespace, "A")
	require.NotNil(t, nsA)
	require.NotEmpty(t, nsA.ChildNodes())
	assert.True(t, nsA.ChildNodes()[0].IsAnonymous())
}

func TestParseQualifiedClassName(t *testing.T) {
	res := parseSource(t, `
namespace A { namespace B { class Circle; } }
class A::B::Circle { int r; };
`)
	var defs []*ast.Node
	for _, c := range res.Root.ChildNodes() {
		if c.Kind() == ast.KindClassDecl {
			defs = append(defs, c)
		}
	}
	require.Len(t, defs, 1)
	assert.Equal(t, "Circle", defs[0].DisplayName())
	assert.Equal(t, "A::B", extract.NamespaceOf(defs[0]).String())
}

func TestParseFollowsIncludes(t *testing.T) {
	dir := t.TempDir()
	incDir := filepath.Join(dir, "include")
	require.NoError(t, os.MkdirAll(filepath.Join(incDir, "geo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(incDir, "geo", "shape.hpp"), []byte(`
#pragma once
namespace geo { class Shape {}; }
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "circle.hpp"), []byte(`
#pragma once
#include <geo/shape.hpp>
namespace geo { class Circle : public Shape {}; }
`), 0o644))
	main := filepath.Join(dir, "main.cpp")
	require.NoError(t, os.WriteFile(main, []byte(`
#include "circle.hpp"
#include "circle.hpp"
#include <vector>
namespace geo { class Square : public Shape {}; }
`), 0o644))

	p := NewParser(nil)
	res, err := p.ParseUnit(context.Background(), Unit{File: "main.cpp", Directory: dir, Arguments: []string{"-Iinclude", "-std=c++17"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		main,
		filepath.Join(dir, "circle.hpp"),
		filepath.Join(incDir, "geo", "shape.hpp"),
	}, res.Files)

	var order []string
	for _, c := range res.Root.ChildNodes() {
		if c.Kind() == ast.KindNamespace {
			order = append(order, c.ChildNodes()[0].DisplayName()+"@"+filepath.Base(c.Location().File))
		}
	}
	assert.Equal(t, []string{"Shape@shape.hpp", "Circle@circle.hpp", "Square@main.cpp"}, order)
}

func TestParseUnitMissingFile(t *testing.T) {
	p := NewParser(nil)
	_, err := p.ParseUnit(context.Background(), Unit{File: "missing.cpp", Directory: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailed))
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewParser(nil).ParseSource(ctx, Unit{File: "a.cpp"}, []byte("class A {};"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIncludePathsFromArgs(t *testing.T) {
	paths := IncludePathsFromArgs([]string{
		"-I", "inc", "-I/abs/inc", "-iquote", "q", "-isystemsys", "-DNAME=1", "-O2",
	}, "/work")
	assert.Equal(t, []string{"/work/inc", "/abs/inc"}, paths.Angled)
	assert.Equal(t, []string{"/work/q"}, paths.Quote)
	assert.Equal(t, []string{"/work/sys"}, paths.System)
	assert.Equal(t, []string{"/work/q", "/work/inc", "/abs/inc", "/work/sys"}, paths.Roots())
}

func TestIsCppFile(t *testing.T) {
	assert.True(t, IsCppFile("a/b.cpp"))
	assert.True(t, IsCppFile("a/b.HPP"))
	assert.False(t, IsCppFile("a/b.go"))
}

func TestParsedUnitBuildsModel(t *testing.T) {
	res := parseSource(t, shapesSource)
	reg := model.NewRegistry()
	require.NoError(t, extract.NewWalker(reg, nil).WalkUnit(res.Root, nil))
	snap := reg.Snapshot()

	circle, ok := snap.Get("A.B.Circle")
	require.True(t, ok)
	require.Len(t, circle.Parents(), 1)
	assert.Equal(t, "A.Shape", circle.Parents()[0].ID)

	parent, ok := circle.Attribute("parent")
	require.True(t, ok)
	assert.True(t, parent.Type.Resolved())

	_, ok = circle.Method("Circle(float)")
	assert.True(t, ok)
	_, ok = circle.Attribute("count")
	assert.False(t, ok)
}
