package output

import (
	"strings"

	"cppuml/internal/engine/model"
	"cppuml/internal/output/graphviz"
)

var (
	inheritanceEdge = graphviz.Attrs{"arrowtail": "empty", "dir": "back"}
	attributeEdge   = graphviz.Attrs{"arrowhead": "ediamond", "arrowtail": "normal", "dir": "both"}
)

var edgeStyles = map[model.RelationKind]graphviz.Attrs{
	model.RelationInheritance: inheritanceEdge,
	model.RelationComposition: attributeEdge,
}

// CompactView draws one tab-shaped node per namespace listing its classes.
// Only inheritance that crosses namespaces is drawn, parent namespace to
// child namespace.
func CompactView(s *model.Snapshot) *graphviz.Graph {
	g := graphviz.New("compact", true)
	g.Strict = true
	g.GraphAttrs["rankdir"] = "LR"
	g.NodeAttrs["shape"] = "tab"

	for _, group := range Group(s) {
		id := namespaceLabel(group.Namespace)
		var rows strings.Builder
		for _, c := range group.Classes {
			name := graphviz.EscapeHTML(c.Name)
			if distant := c.DistantParents(); len(distant) > 0 {
				name = graphviz.EscapeHTML(strings.Join(distant, ", ")) + "<BR/>" + name
			}
			rows.WriteString(`<TR><TD PORT="` + portID(c.ID) + `">` + name + "</TD></TR>")
			for _, p := range c.Parents() {
				if !c.SameNamespace(p) {
					g.AddEdge(namespaceLabel(p.Namespace), id, inheritanceEdge)
				}
			}
		}
		label := `<<TABLE BORDER="0" CELLBORDER="0" CELLSPACING="0"><TR><TD>` +
			graphviz.EscapeHTML(id) +
			`</TD></TR><TR><TD><TABLE BORDER="0" CELLBORDER="1">` +
			rows.String() +
			"</TABLE></TD></TR></TABLE>>"
		g.AddNode(id, graphviz.Attrs{"label": label})
	}
	return g
}

// DetailedView draws the classes of one namespace as record nodes.
func DetailedView(group model.NamespaceGroup) *graphviz.Graph {
	g := graphviz.New(namespaceLabel(group.Namespace), true)
	g.NodeAttrs["shape"] = "record"
	for _, c := range group.Classes {
		addClass(g, g, c)
	}
	return g
}

// GlobalView draws every class, one cluster per namespace. Classes of the
// global namespace sit outside any cluster.
func GlobalView(s *model.Snapshot) *graphviz.Graph {
	g := graphviz.New("main", true)
	g.NodeAttrs["shape"] = "record"
	for _, group := range Group(s) {
		target := g
		if !group.Namespace.IsGlobal() {
			target = g.Cluster(graphviz.ClusterName(group.Namespace.Segments()), group.Namespace.Key())
		}
		for _, c := range group.Classes {
			addClass(g, target, c)
		}
	}
	return g
}

// addClass declares c's node in target and its local relation edges on root.
func addClass(root, target *graphviz.Graph, c *model.Class) {
	rel := Classify(c)
	target.AddNode(c.ID, graphviz.Attrs{"label": recordLabel(c, rel)})
	for _, e := range rel.Edges() {
		root.AddEdge(e.Target.ID, c.ID, edgeStyles[e.Kind])
	}
}

// recordLabel stacks foreign bases, the class name, foreign attribute names
// and method summaries. Empty rows are left out.
func recordLabel(c *model.Class, rel Relations) string {
	attrs := make([]string, len(rel.ForeignAttributes))
	for i, a := range rel.ForeignAttributes {
		attrs[i] = a.Name
	}
	methods := c.Methods()
	summaries := make([]string, len(methods))
	for i, m := range methods {
		summaries[i] = m.String()
	}

	var rows []string
	for _, row := range [][]string{rel.ForeignParents, {c.Name}, attrs, summaries} {
		if len(row) == 0 {
			continue
		}
		escaped := make([]string, len(row))
		for i, item := range row {
			escaped[i] = graphviz.EscapeRecord(item)
		}
		rows = append(rows, strings.Join(escaped, "\n"))
	}
	return "{" + strings.Join(rows, "|") + "}"
}

func portID(id string) string {
	return strings.NewReplacer("<", "", ">", "", `"`, "").Replace(id)
}
