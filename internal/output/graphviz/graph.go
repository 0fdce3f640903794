// Package graphviz describes graphs for the Graphviz layout engine and
// serialises them to DOT.
package graphviz

import (
	"fmt"
	"sort"
	"strings"
)

// Attrs are DOT attributes. A value wrapped in angle brackets ("<...>") is an
// HTML-like label and is written unquoted; everything else is quoted.
type Attrs map[string]string

type Node struct {
	ID    string
	Attrs Attrs
}

type Edge struct {
	From  string
	To    string
	Attrs Attrs
}

// Graph is a graph or a cluster subgraph. Nodes keep insertion order.
type Graph struct {
	Name     string
	Directed bool
	Strict   bool

	GraphAttrs Attrs
	NodeAttrs  Attrs
	EdgeAttrs  Attrs

	root     *Graph
	nodes    []*Node
	edges    []*Edge
	edgeSet  map[string]bool
	clusters []*Graph
	byKey    map[string]*Graph
	nodeIdx  map[string]*Node
}

// New creates a top-level graph.
func New(name string, directed bool) *Graph {
	g := &Graph{
		Name:       name,
		Directed:   directed,
		GraphAttrs: Attrs{},
		NodeAttrs:  Attrs{},
		EdgeAttrs:  Attrs{},
		edgeSet:    make(map[string]bool),
		byKey:      make(map[string]*Graph),
		nodeIdx:    make(map[string]*Node),
	}
	g.root = g
	return g
}

// AddNode declares a node in g. Declaring an existing id merges attributes
// into the first declaration.
func (g *Graph) AddNode(id string, attrs Attrs) *Node {
	if n, ok := g.root.nodeIdx[id]; ok {
		for k, v := range attrs {
			n.Attrs[k] = v
		}
		return n
	}
	n := &Node{ID: id, Attrs: Attrs{}}
	for k, v := range attrs {
		n.Attrs[k] = v
	}
	g.root.nodeIdx[id] = n
	g.nodes = append(g.nodes, n)
	return n
}

// AddEdge declares an edge on the top-level graph. Strict graphs keep only the
// first edge between an ordered pair of nodes.
func (g *Graph) AddEdge(from, to string, attrs Attrs) *Edge {
	r := g.root
	key := from + "\x00" + to
	if r.Strict && r.edgeSet[key] {
		return nil
	}
	r.edgeSet[key] = true
	e := &Edge{From: from, To: to, Attrs: Attrs{}}
	for k, v := range attrs {
		e.Attrs[k] = v
	}
	r.edges = append(r.edges, e)
	return e
}

// Cluster returns the subgraph named key, creating it with label on first use.
// Graphviz draws a subgraph as a box only when its name starts with "cluster".
func (g *Graph) Cluster(key, label string) *Graph {
	if c, ok := g.root.byKey[key]; ok {
		return c
	}
	c := &Graph{
		Name:       key,
		Directed:   g.Directed,
		GraphAttrs: Attrs{"label": label},
		NodeAttrs:  Attrs{},
		EdgeAttrs:  Attrs{},
		root:       g.root,
	}
	g.root.byKey[key] = c
	g.clusters = append(g.clusters, c)
	return c
}

func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.root.nodeIdx[id]
	return n, ok
}

// Nodes returns the nodes declared directly in g.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.root.edges...)
}

func (g *Graph) Clusters() []*Graph {
	return append([]*Graph(nil), g.clusters...)
}

// String renders g as DOT.
func (g *Graph) String() string {
	var b strings.Builder
	if g.Strict {
		b.WriteString("strict ")
	}
	if g.Directed {
		b.WriteString("digraph ")
	} else {
		b.WriteString("graph ")
	}
	b.WriteString(quote(g.Name))
	b.WriteString(" {\n")
	g.writeBody(&b, "\t")

	op := " -- "
	if g.Directed {
		op = " -> "
	}
	for _, e := range g.edges {
		b.WriteString("\t" + quote(e.From) + op + quote(e.To))
		writeAttrList(&b, e.Attrs)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func (g *Graph) writeBody(b *strings.Builder, indent string) {
	writeDefaults(b, indent, "graph", g.GraphAttrs)
	writeDefaults(b, indent, "node", g.NodeAttrs)
	writeDefaults(b, indent, "edge", g.EdgeAttrs)
	for _, c := range g.clusters {
		b.WriteString(indent + "subgraph " + quote(c.Name) + " {\n")
		c.writeBody(b, indent+"\t")
		b.WriteString(indent + "}\n")
	}
	for _, n := range g.nodes {
		b.WriteString(indent + quote(n.ID))
		writeAttrList(b, n.Attrs)
		b.WriteString(";\n")
	}
}

func writeDefaults(b *strings.Builder, indent, kind string, attrs Attrs) {
	if len(attrs) == 0 {
		return
	}
	b.WriteString(indent + kind)
	writeAttrList(b, attrs)
	b.WriteString(";\n")
}

func writeAttrList(b *strings.Builder, attrs Attrs) {
	if len(attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, value(attrs[k]))
	}
	b.WriteString(" [" + strings.Join(parts, ", ") + "]")
}

func value(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return v
	}
	return quote(v)
}

// quote writes a DOT double-quoted string. Backslashes are kept so escape
// sequences such as "\n" and "\l" reach Graphviz unchanged.
func quote(s string) string {
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}

var recordEscaper = strings.NewReplacer(
	"{", "\\{",
	"}", "\\}",
	"|", "\\|",
	"<", "\\<",
	">", "\\>",
)

// EscapeRecord escapes the characters that structure a record label.
func EscapeRecord(s string) string {
	return recordEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

// EscapeHTML escapes text placed inside an HTML-like label.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// ClusterName is the subgraph name for a namespace path, "cluster_A_B" for
// A::B. The global namespace is "cluster_".
func ClusterName(segments []string) string {
	return "cluster_" + strings.Join(segments, "_")
}
