// Package ast defines the cursor interface the model extractor consumes and a
// plain in-memory implementation of it.
//
// A cursor is one node of a translation unit's syntax tree: it has a kind, a
// display name, an access specifier, a semantic parent, children, a declared
// type and a source location. Front-ends (see internal/engine/parser) build
// trees of *Node values; tests build them by hand.
package ast

import "fmt"

// Kind is the node kind of a cursor.
type Kind int

const (
	KindUnexposed Kind = iota
	KindTranslationUnit
	KindNamespace
	KindLinkageSpec
	KindClassDecl
	KindStructDecl
	KindUnionDecl
	KindClassTemplate
	KindBaseSpecifier
	KindCXXMethod
	KindConstructor
	KindDestructor
	KindFunctionTemplate
	KindFunctionDecl
	KindFieldDecl
	KindVarDecl
	KindParmDecl
	KindEnumDecl
	KindEnumConstant
	KindTypedefDecl
	KindTypeAlias
	KindTemplateTypeParameter
	KindUsingDirective
	KindFriendDecl

	kindCount
)

var kindNames = [kindCount]string{
	KindUnexposed:             "Unexposed",
	KindTranslationUnit:       "TranslationUnit",
	KindNamespace:             "Namespace",
	KindLinkageSpec:           "LinkageSpec",
	KindClassDecl:             "ClassDecl",
	KindStructDecl:            "StructDecl",
	KindUnionDecl:             "UnionDecl",
	KindClassTemplate:         "ClassTemplate",
	KindBaseSpecifier:         "BaseSpecifier",
	KindCXXMethod:             "CXXMethod",
	KindConstructor:           "Constructor",
	KindDestructor:            "Destructor",
	KindFunctionTemplate:      "FunctionTemplate",
	KindFunctionDecl:          "FunctionDecl",
	KindFieldDecl:             "FieldDecl",
	KindVarDecl:               "VarDecl",
	KindParmDecl:              "ParmDecl",
	KindEnumDecl:              "EnumDecl",
	KindEnumConstant:          "EnumConstant",
	KindTypedefDecl:           "TypedefDecl",
	KindTypeAlias:             "TypeAlias",
	KindTemplateTypeParameter: "TemplateTypeParameter",
	KindUsingDirective:        "UsingDirective",
	KindFriendDecl:            "FriendDecl",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds returns every defined kind.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// AccessSpecifier mirrors the front-end's access enum. AccessNone is reported for
// declarations outside any class.
type AccessSpecifier int

const (
	AccessNone AccessSpecifier = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a AccessSpecifier) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	case AccessNone:
		return "none"
	}
	return fmt.Sprintf("AccessSpecifier(%d)", int(a))
}

// TypeKind classifies a Type.
type TypeKind int

const (
	TypeInvalid TypeKind = iota
	TypeBuiltin
	TypeRecord
	TypeEnum
	TypeElaborated
	TypeTypedef
	TypePointer
	TypeLValueReference
	TypeRValueReference
	TypeConstantArray
	TypeUnexposed
	TypeAuto
)

func (k TypeKind) String() string {
	switch k {
	case TypeBuiltin:
		return "Builtin"
	case TypeRecord:
		return "Record"
	case TypeEnum:
		return "Enum"
	case TypeElaborated:
		return "Elaborated"
	case TypeTypedef:
		return "Typedef"
	case TypePointer:
		return "Pointer"
	case TypeLValueReference:
		return "LValueReference"
	case TypeRValueReference:
		return "RValueReference"
	case TypeConstantArray:
		return "ConstantArray"
	case TypeUnexposed:
		return "Unexposed"
	case TypeAuto:
		return "Auto"
	}
	return "Invalid"
}

// Location is a source position; File is an absolute path when known.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Cursor is one node of a translation unit.
type Cursor interface {
	Kind() Kind
	// DisplayName follows clang: classes use their name ("Foo", "Foo<T>"),
	// methods include parameter types ("area()", "scale(float)").
	DisplayName() string
	Access() AccessSpecifier
	// SemanticParent is nil for the translation unit.
	SemanticParent() Cursor
	Children() []Cursor
	// Type is the declared type of fields, parameters and base specifiers; nil otherwise.
	Type() Type
	// ResultType is the return type of function-like cursors; nil otherwise.
	ResultType() Type
	// Arguments lists the parameter cursors of function-like cursors.
	Arguments() []Cursor
	Location() Location
	IsAnonymous() bool
}

// Type is the declared type of a cursor.
type Type interface {
	Spelling() string
	Kind() TypeKind
	// NumTemplateArguments is -1 when the type is not a template specialisation.
	NumTemplateArguments() int
	// TemplateArgument returns nil when i is out of range.
	TemplateArgument(i int) Type
	// Pointee returns nil unless the type is a pointer or reference.
	Pointee() Type
	Canonical() Type
}
