package resolver

import (
	"testing"

	"cppuml/internal/engine/ast"
	"cppuml/internal/engine/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, ids ...string) *model.Registry {
	t.Helper()
	r := model.NewRegistry()
	for _, id := range ids {
		_, _, err := r.LookupOrCreate(id, model.NewNamespace("A"), id)
		require.NoError(t, err)
	}
	return r
}

func TestResolveTypeUnwrapsOneLevel(t *testing.T) {
	reg := newRegistry(t, "A.Foo", "A.Key")
	foo, _ := reg.Get("A.Foo")
	fooType := ast.Record("Foo", "A::Foo")

	tests := []struct {
		name string
		typ  ast.Type
		want *model.Class
	}{
		{"plain record", fooType, foo},
		{"raw pointer", ast.PointerTo(fooType), foo},
		{"lvalue reference", ast.LValueReferenceTo(fooType), foo},
		{"single-argument container", ast.Specialization(ast.TypeElaborated, "std::vector<Foo>", "std::vector<A::Foo>", fooType), foo},
		{"container of pointers", ast.Specialization(ast.TypeElaborated, "std::vector<Foo *>", "", ast.PointerTo(fooType)), foo},
		{"two-argument map keyed by Foo", ast.Specialization(ast.TypeElaborated, "std::map<Foo, int>", "", fooType, ast.Builtin("int")), foo},
		{"three-argument template is not unwrapped", ast.Specialization(ast.TypeElaborated, "T<Foo, int, int>", "", fooType, ast.Builtin("int"), ast.Builtin("int")), nil},
		{"nested container stays unresolved", ast.Specialization(ast.TypeElaborated, "std::vector<std::vector<Foo>>", "",
			ast.Specialization(ast.TypeElaborated, "std::vector<Foo>", "", fooType)), nil},
		{"pointer to container is not looked through", ast.PointerTo(ast.Specialization(ast.TypeElaborated, "std::vector<Foo>", "", fooType)), nil},
		{"rvalue reference is not unwrapped", ast.RValueReferenceTo(fooType), nil},
		{"double pointer unwraps once", ast.PointerTo(ast.PointerTo(fooType)), nil},
		{"builtin", ast.Builtin("float"), nil},
		{"elaborated unknown", ast.Elaborated("std::string", ""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(reg)
			ref := r.ResolveType(tt.typ)
			assert.Equal(t, tt.typ.Spelling(), ref.Spelling, "spelling is kept as written")
			assert.Same(t, tt.want, ref.Class)
		})
	}
}

func TestResolveTypeTracksUnresolvedCandidates(t *testing.T) {
	r := NewResolver(newRegistry(t))
	ref := r.ResolveType(ast.Record("Bar", "B::Bar"))
	assert.False(t, ref.Resolved())
	assert.Equal(t, []UnresolvedReference{{Spelling: "Bar", Identity: "B.Bar"}}, r.Unresolved())

	r.ResolveType(ast.Builtin("int"))
	assert.Len(t, r.Unresolved(), 1, "non-class types are not candidates")
}

func TestResolveTypeNil(t *testing.T) {
	r := NewResolver(newRegistry(t))
	assert.Equal(t, model.TypeReference{}, r.ResolveType(nil))
}

func TestIdentityNormalisesCanonicalSpelling(t *testing.T) {
	assert.Equal(t, "A.B.Circle", Identity(ast.Record("Circle", "::A::B::Circle")))
	assert.Equal(t, "A.Color", Identity(ast.Enum("Color", "A::Color")))
	assert.Equal(t, "", Identity(ast.Specialization(ast.TypeElaborated, "Box<int>", "", ast.Builtin("int"))))
}

func TestResolveBase(t *testing.T) {
	reg := newRegistry(t, "A.Shape")
	r := NewResolver(reg)

	c, spelling := r.ResolveBase(ast.Record("Shape", "A::Shape"))
	require.NotNil(t, c)
	assert.Equal(t, "A.Shape", c.ID)
	assert.Equal(t, "Shape", spelling)

	c, spelling = r.ResolveBase(ast.Elaborated("std::exception", "std::exception"))
	assert.Nil(t, c)
	assert.Equal(t, "std::exception", spelling)
}
