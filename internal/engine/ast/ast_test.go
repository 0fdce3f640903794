package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNamesAreComplete(t *testing.T) {
	for _, k := range Kinds() {
		assert.NotEmpty(t, kindNames[k], "kind %d has no name", int(k))
	}
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestNodeAppendSetsSemanticParentAndFile(t *testing.T) {
	tu := NewTranslationUnit("/src/a.cpp")
	ns := NewNode(KindNamespace, "A")
	cls := NewNode(KindClassDecl, "Shape")
	tu.Append(ns.Append(cls))

	require.NotNil(t, cls.SemanticParent())
	assert.Equal(t, "A", cls.SemanticParent().DisplayName())
	assert.Equal(t, KindTranslationUnit, ns.SemanticParent().Kind())
	assert.Nil(t, tu.SemanticParent())
	assert.Equal(t, "/src/a.cpp", ns.Location().File)
	assert.Len(t, tu.Children(), 1)
}

func TestAnonymousFollowsName(t *testing.T) {
	assert.True(t, NewNode(KindStructDecl, "").IsAnonymous())
	assert.False(t, NewNode(KindStructDecl, "S").IsAnonymous())
	assert.True(t, NewNode(KindFieldDecl, "u").WithAnonymous(true).IsAnonymous())
}

func TestTypeInfo(t *testing.T) {
	foo := Record("Foo", "A::Foo")
	assert.Equal(t, -1, foo.NumTemplateArguments())
	assert.Equal(t, "A::Foo", foo.Canonical().Spelling())
	assert.Nil(t, foo.Pointee())

	ptr := PointerTo(foo)
	assert.Equal(t, "Foo *", ptr.Spelling())
	assert.Equal(t, "A::Foo *", ptr.Canonical().Spelling())
	require.NotNil(t, ptr.Pointee())
	assert.Equal(t, TypeRecord, ptr.Pointee().Kind())

	vec := Specialization(TypeElaborated, "std::vector<Foo>", "std::vector<A::Foo>", foo)
	assert.Equal(t, 1, vec.NumTemplateArguments())
	assert.Same(t, foo, vec.TemplateArgument(0))
	assert.Nil(t, vec.TemplateArgument(1))
	assert.Equal(t, 1, vec.Canonical().NumTemplateArguments())

	f := Builtin("float")
	assert.Same(t, f, f.Canonical())
	assert.Equal(t, "const A::Foo", foo.WithConst().Canonical().Spelling())
}
