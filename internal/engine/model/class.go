package model

// Visibility is the access level of a member.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// Symbol returns the UML marker for the visibility.
func (v Visibility) Symbol() string {
	switch v {
	case Public:
		return "+"
	case Protected:
		return "#"
	default:
		return "-"
	}
}

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "private"
	}
}

// RelationKind names a class-to-class relationship drawn by the renderers.
type RelationKind string

const (
	RelationInheritance RelationKind = "inheritance"
	RelationComposition RelationKind = "composition"
)

// TypeReference is a type as written in source plus the class it resolved to.
// Class is nil for primitive, external or unresolved types; it is never owned.
type TypeReference struct {
	Spelling string
	Class    *Class
}

func (t TypeReference) Resolved() bool {
	return t.Class != nil
}

func (t TypeReference) String() string {
	return t.Spelling
}

type Attribute struct {
	Name       string
	Type       TypeReference
	Visibility Visibility
}

func (a *Attribute) String() string {
	return a.Visibility.Symbol() + a.Name + " : " + a.Type.String()
}

type Method struct {
	Name       string
	ReturnType string
	ParamTypes string
	Visibility Visibility
}

func (m *Method) String() string {
	if m.ReturnType == "void" || m.ReturnType == "" {
		return m.Visibility.Symbol() + m.Name
	}
	return m.Visibility.Symbol() + m.Name + " : " + m.ReturnType
}

// Class is a class, struct or class template keyed by its fully-qualified ID.
// Members and parents are kept in insertion order so renderings are stable.
type Class struct {
	ID        string
	Name      string
	Namespace Namespace

	parents      []*Class
	parentIDs    map[string]struct{}
	distant      []string
	distantSet   map[string]struct{}
	attributes   []*Attribute
	attributeIdx map[string]*Attribute
	methods      []*Method
	methodIdx    map[string]*Method
}

func NewClass(id string, ns Namespace, name string) *Class {
	return &Class{
		ID:           id,
		Name:         name,
		Namespace:    ns,
		parentIDs:    make(map[string]struct{}),
		distantSet:   make(map[string]struct{}),
		attributeIdx: make(map[string]*Attribute),
		methodIdx:    make(map[string]*Method),
	}
}

// QualifiedName is the namespace-qualified display name, e.g. "A::B::Circle".
func (c *Class) QualifiedName() string {
	return c.Namespace.Qualify(c.Name, NamespaceSeparator)
}

// AddParent records a resolved base. Self-parenting and duplicates are ignored.
func (c *Class) AddParent(p *Class) bool {
	if p == nil || p == c {
		return false
	}
	if _, ok := c.parentIDs[p.ID]; ok {
		return false
	}
	c.parentIDs[p.ID] = struct{}{}
	c.parents = append(c.parents, p)
	return true
}

// AddDistantParent records a base whose definition was not visited.
func (c *Class) AddDistantParent(spelling string) bool {
	if spelling == "" {
		return false
	}
	if _, ok := c.distantSet[spelling]; ok {
		return false
	}
	c.distantSet[spelling] = struct{}{}
	c.distant = append(c.distant, spelling)
	return true
}

func (c *Class) Parents() []*Class {
	return append([]*Class(nil), c.parents...)
}

func (c *Class) DistantParents() []string {
	return append([]string(nil), c.distant...)
}

func (c *Class) HasAttribute(name string) bool {
	_, ok := c.attributeIdx[name]
	return ok
}

// AddAttribute stores a; the first attribute registered under a name wins.
func (c *Class) AddAttribute(a *Attribute) bool {
	if a == nil || c.HasAttribute(a.Name) {
		return false
	}
	c.attributeIdx[a.Name] = a
	c.attributes = append(c.attributes, a)
	return true
}

func (c *Class) Attribute(name string) (*Attribute, bool) {
	a, ok := c.attributeIdx[name]
	return a, ok
}

func (c *Class) Attributes() []*Attribute {
	return append([]*Attribute(nil), c.attributes...)
}

func (c *Class) HasMethod(name string) bool {
	_, ok := c.methodIdx[name]
	return ok
}

// AddMethod stores m; later declarations with the same name are dropped.
func (c *Class) AddMethod(m *Method) bool {
	if m == nil || c.HasMethod(m.Name) {
		return false
	}
	c.methodIdx[m.Name] = m
	c.methods = append(c.methods, m)
	return true
}

func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methodIdx[name]
	return m, ok
}

func (c *Class) Methods() []*Method {
	return append([]*Method(nil), c.methods...)
}

// SameNamespace reports whether other lives in c's namespace.
func (c *Class) SameNamespace(other *Class) bool {
	return other != nil && c.Namespace.Equal(other.Namespace)
}
