package ast

// Node is the in-memory Cursor implementation.
type Node struct {
	kind       Kind
	name       string
	access     AccessSpecifier
	anonymous  bool
	parent     *Node
	children   []*Node
	typ        Type
	resultType Type
	arguments  []*Node
	location   Location
}

var _ Cursor = (*Node)(nil)

// NewNode creates a node; an empty name marks it anonymous.
func NewNode(kind Kind, name string) *Node {
	return &Node{kind: kind, name: name, anonymous: name == ""}
}

// NewTranslationUnit creates a root node for file.
func NewTranslationUnit(file string) *Node {
	return &Node{kind: KindTranslationUnit, name: file, location: Location{File: file, Line: 1, Column: 1}}
}

// Append adds children. A child without a semantic parent gets n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent == nil {
			c.parent = n
		}
		if c.location.File == "" {
			c.location.File = n.location.File
		}
		n.children = append(n.children, c)
	}
	return n
}

func (n *Node) WithAccess(a AccessSpecifier) *Node {
	n.access = a
	return n
}

func (n *Node) WithType(t Type) *Node {
	n.typ = t
	return n
}

func (n *Node) WithResultType(t Type) *Node {
	n.resultType = t
	return n
}

func (n *Node) WithLocation(loc Location) *Node {
	n.location = loc
	return n
}

// WithSemanticParent overrides the parent set by Append, e.g. for out-of-line
// definitions whose semantic scope differs from where they appear.
func (n *Node) WithSemanticParent(p *Node) *Node {
	n.parent = p
	return n
}

func (n *Node) WithAnonymous(anonymous bool) *Node {
	n.anonymous = anonymous
	return n
}

// AddArgument appends a parameter cursor.
func (n *Node) AddArgument(arg *Node) *Node {
	if arg.parent == nil {
		arg.parent = n
	}
	n.arguments = append(n.arguments, arg)
	return n
}

func (n *Node) Kind() Kind {
	return n.kind
}

func (n *Node) DisplayName() string {
	return n.name
}

func (n *Node) Access() AccessSpecifier {
	return n.access
}

func (n *Node) Location() Location {
	return n.location
}

func (n *Node) IsAnonymous() bool {
	return n.anonymous
}

func (n *Node) Type() Type {
	return n.typ
}

func (n *Node) ResultType() Type {
	return n.resultType
}

func (n *Node) ChildNodes() []*Node {
	return n.children
}

func (n *Node) SemanticParent() Cursor {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []Cursor {
	out := make([]Cursor, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *Node) Arguments() []Cursor {
	out := make([]Cursor, len(n.arguments))
	for i, a := range n.arguments {
		out[i] = a
	}
	return out
}
