// Package output turns a frozen class model into diagrams: PlantUML text per
// namespace and Graphviz graphs for the compact, per-namespace and global
// views.
package output

import (
	"cppuml/internal/engine/model"
)

// GlobalLabel titles the global namespace in diagrams.
const GlobalLabel = "(global)"

// Group returns the snapshot's namespaces in first-seen order.
func Group(s *model.Snapshot) []model.NamespaceGroup {
	return s.Groups()
}

// Relations is a class's relationships split by namespace locality. Local
// relations are drawn as edges; foreign ones are folded into the class's own
// text. ForeignParents holds distant base spellings first, then the qualified
// names of resolved bases from other namespaces.
type Relations struct {
	LocalParents      []*model.Class
	ForeignParents    []string
	LocalAttributes   []*model.Attribute
	ForeignAttributes []*model.Attribute
}

// Edge is one local relation: inheritance from Target or composition of
// Target.
type Edge struct {
	Kind   model.RelationKind
	Target *model.Class
}

// Classify applies the namespace-locality rule to c.
func Classify(c *model.Class) Relations {
	var r Relations
	r.ForeignParents = append(r.ForeignParents, c.DistantParents()...)
	for _, p := range c.Parents() {
		if c.SameNamespace(p) {
			r.LocalParents = append(r.LocalParents, p)
		} else {
			r.ForeignParents = append(r.ForeignParents, p.QualifiedName())
		}
	}
	for _, a := range c.Attributes() {
		if a.Type.Resolved() && c.SameNamespace(a.Type.Class) {
			r.LocalAttributes = append(r.LocalAttributes, a)
		} else {
			r.ForeignAttributes = append(r.ForeignAttributes, a)
		}
	}
	return r
}

// Edges lists the local relations, parents first, in declaration order.
func (r Relations) Edges() []Edge {
	edges := make([]Edge, 0, len(r.LocalParents)+len(r.LocalAttributes))
	for _, p := range r.LocalParents {
		edges = append(edges, Edge{Kind: model.RelationInheritance, Target: p})
	}
	for _, a := range r.LocalAttributes {
		edges = append(edges, Edge{Kind: model.RelationComposition, Target: a.Type.Class})
	}
	return edges
}

func namespaceLabel(ns model.Namespace) string {
	if ns.IsGlobal() {
		return GlobalLabel
	}
	return ns.Key()
}
