package ast

// TypeInfo is the in-memory Type implementation.
type TypeInfo struct {
	spelling  string
	kind      TypeKind
	args      []Type
	templated bool
	pointee   Type
	canonical *TypeInfo
}

var _ Type = (*TypeInfo)(nil)

// NewType builds a non-template type. An empty canonical spelling means the type
// is its own canonical form.
func NewType(kind TypeKind, spelling, canonical string) *TypeInfo {
	t := &TypeInfo{spelling: spelling, kind: kind}
	if canonical != "" && canonical != spelling {
		t.canonical = &TypeInfo{spelling: canonical, kind: kind}
	}
	return t
}

// Builtin is a primitive type such as "int" or "float".
func Builtin(spelling string) *TypeInfo {
	return NewType(TypeBuiltin, spelling, "")
}

// Record is a class/struct type written as spelling whose fully-qualified form is canonical.
func Record(spelling, canonical string) *TypeInfo {
	return NewType(TypeRecord, spelling, canonical)
}

func Enum(spelling, canonical string) *TypeInfo {
	return NewType(TypeEnum, spelling, canonical)
}

// Elaborated is a named type the front-end could not classify further.
func Elaborated(spelling, canonical string) *TypeInfo {
	return NewType(TypeElaborated, spelling, canonical)
}

// Specialization is a template specialisation such as "std::vector<Foo>".
func Specialization(kind TypeKind, spelling, canonical string, args ...Type) *TypeInfo {
	t := NewType(kind, spelling, canonical)
	t.templated = true
	t.args = append([]Type(nil), args...)
	if t.canonical != nil {
		t.canonical.templated = true
		t.canonical.args = canonicalArgs(args)
	}
	return t
}

// PointerTo wraps pointee as "<pointee> *".
func PointerTo(pointee Type) *TypeInfo {
	return wrap(TypePointer, pointee, " *")
}

// LValueReferenceTo wraps pointee as "<pointee> &".
func LValueReferenceTo(pointee Type) *TypeInfo {
	return wrap(TypeLValueReference, pointee, " &")
}

// RValueReferenceTo wraps pointee as "<pointee> &&".
func RValueReferenceTo(pointee Type) *TypeInfo {
	return wrap(TypeRValueReference, pointee, " &&")
}

// ArrayOf wraps elem as "<elem> []".
func ArrayOf(elem Type) *TypeInfo {
	return wrap(TypeConstantArray, elem, " []")
}

func wrap(kind TypeKind, inner Type, suffix string) *TypeInfo {
	t := &TypeInfo{spelling: inner.Spelling() + suffix, kind: kind, pointee: inner}
	if c := inner.Canonical(); c.Spelling() != inner.Spelling() {
		t.canonical = &TypeInfo{spelling: c.Spelling() + suffix, kind: kind, pointee: c}
	}
	return t
}

func canonicalArgs(args []Type) []Type {
	out := make([]Type, len(args))
	for i, a := range args {
		out[i] = a.Canonical()
	}
	return out
}

func (t *TypeInfo) Spelling() string {
	return t.spelling
}

func (t *TypeInfo) Kind() TypeKind {
	return t.kind
}

func (t *TypeInfo) NumTemplateArguments() int {
	if !t.templated {
		return -1
	}
	return len(t.args)
}

func (t *TypeInfo) TemplateArgument(i int) Type {
	if i < 0 || i >= len(t.args) {
		return nil
	}
	return t.args[i]
}

func (t *TypeInfo) Pointee() Type {
	if t.pointee == nil {
		return nil
	}
	return t.pointee
}

func (t *TypeInfo) Canonical() Type {
	if t.canonical == nil {
		return t
	}
	return t.canonical
}

// WithConst returns a const-qualified copy ("const Foo").
func (t *TypeInfo) WithConst() *TypeInfo {
	out := *t
	out.spelling = "const " + t.spelling
	if t.canonical != nil {
		c := *t.canonical
		c.spelling = "const " + c.spelling
		out.canonical = &c
	}
	return &out
}
