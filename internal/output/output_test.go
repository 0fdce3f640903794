package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cppuml/internal/core/errors"
	"cppuml/internal/engine/model"
	"cppuml/internal/output/graphviz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shapes builds A::Shape with area() and A::B::Circle deriving from it with a
// float radius.
func shapes(t *testing.T) *model.Snapshot {
	t.Helper()
	reg := model.NewRegistry()
	shape, _, err := reg.LookupOrCreate("A.Shape", model.NewNamespace("A"), "Shape")
	require.NoError(t, err)
	shape.AddMethod(&model.Method{Name: "area()", ReturnType: "float", Visibility: model.Public})

	circle, _, err := reg.LookupOrCreate("A.B.Circle", model.NewNamespace("A", "B"), "Circle")
	require.NoError(t, err)
	circle.AddParent(shape)
	circle.AddAttribute(&model.Attribute{Name: "radius", Type: model.TypeReference{Spelling: "float"}, Visibility: model.Private})
	return reg.Snapshot()
}

func TestCompactViewCrossNamespaceInheritance(t *testing.T) {
	g := CompactView(shapes(t))

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "A", nodes[0].ID)
	assert.Equal(t, "A::B", nodes[1].ID)
	assert.Contains(t, nodes[0].Attrs["label"], `<TD PORT="A.Shape">Shape</TD>`)
	assert.Contains(t, nodes[1].Attrs["label"], `<TD PORT="A.B.Circle">Circle</TD>`)

	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, "A", edges[0].From)
	assert.Equal(t, "A::B", edges[0].To)
	assert.Equal(t, graphviz.Attrs{"arrowtail": "empty", "dir": "back"}, edges[0].Attrs)
	assert.True(t, g.Strict)
	assert.Equal(t, "LR", g.GraphAttrs["rankdir"])
}

func TestDetailedViewFoldsForeignBaseIntoLabel(t *testing.T) {
	snap := shapes(t)
	groups := Group(snap)
	require.Len(t, groups, 2)

	g := DetailedView(groups[1])
	assert.Empty(t, g.Edges(), "cross-namespace base is not an edge")
	node, ok := g.Node("A.B.Circle")
	require.True(t, ok)
	assert.Equal(t, "{A::Shape|Circle|radius}", node.Attrs["label"])

	shapeGraph := DetailedView(groups[0])
	node, ok = shapeGraph.Node("A.Shape")
	require.True(t, ok)
	assert.Equal(t, "{Shape|+area() : float}", node.Attrs["label"])
}

func TestDistantBaseAnnotatesCompactLabel(t *testing.T) {
	reg := model.NewRegistry()
	errType, _, err := reg.LookupOrCreate("app.Error", model.NewNamespace("app"), "Error")
	require.NoError(t, err)
	errType.AddDistantParent("std::exception")
	snap := reg.Snapshot()

	assert.Equal(t, []string{"std::exception"}, errType.DistantParents())
	assert.Empty(t, errType.Parents())

	g := CompactView(snap)
	assert.Empty(t, g.Edges())
	node, ok := g.Node("app")
	require.True(t, ok)
	assert.Contains(t, node.Attrs["label"], "std::exception<BR/>Error")

	detail := DetailedView(Group(snap)[0])
	n, ok := detail.Node("app.Error")
	require.True(t, ok)
	assert.Equal(t, "{std::exception|Error}", n.Attrs["label"])
}

func TestSameNamespaceRelationsBecomeEdges(t *testing.T) {
	reg := model.NewRegistry()
	ns := model.NewNamespace("geo")
	shape, _, _ := reg.LookupOrCreate("geo.Shape", ns, "Shape")
	point, _, _ := reg.LookupOrCreate("geo.Point", ns, "Point")
	poly, _, _ := reg.LookupOrCreate("geo.Polygon", ns, "Polygon")
	poly.AddParent(shape)
	poly.AddAttribute(&model.Attribute{Name: "points", Type: model.TypeReference{Spelling: "std::vector<Point>", Class: point}, Visibility: model.Private})
	poly.AddAttribute(&model.Attribute{Name: "name", Type: model.TypeReference{Spelling: "std::string"}, Visibility: model.Private})
	snap := reg.Snapshot()

	g := DetailedView(Group(snap)[0])
	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "geo.Shape", edges[0].From)
	assert.Equal(t, "geo.Polygon", edges[0].To)
	assert.Equal(t, "back", edges[0].Attrs["dir"])
	assert.Equal(t, "geo.Point", edges[1].From)
	assert.Equal(t, "ediamond", edges[1].Attrs["arrowhead"])
	assert.Equal(t, "both", edges[1].Attrs["dir"])

	n, _ := g.Node("geo.Polygon")
	assert.Equal(t, "{Polygon|name}", n.Attrs["label"])

	text := NewPlantUMLGenerator().Generate(Group(snap)[0])
	assert.Contains(t, text, "geo::Shape <|-- geo::Polygon\n")
	assert.Contains(t, text, "geo::Polygon *-- geo::Point\n")
	assert.Contains(t, text, "\t-name : std::string\n")
	assert.NotContains(t, text, "-points")
}

func TestClassifyEdgesCarryRelationKinds(t *testing.T) {
	reg := model.NewRegistry()
	ns := model.NewNamespace("geo")
	shape, _, _ := reg.LookupOrCreate("geo.Shape", ns, "Shape")
	point, _, _ := reg.LookupOrCreate("geo.Point", ns, "Point")
	other, _, _ := reg.LookupOrCreate("io.Stream", model.NewNamespace("io"), "Stream")
	poly, _, _ := reg.LookupOrCreate("geo.Polygon", ns, "Polygon")
	poly.AddAttribute(&model.Attribute{Name: "origin", Type: model.TypeReference{Spelling: "Point", Class: point}})
	poly.AddParent(shape)
	poly.AddAttribute(&model.Attribute{Name: "out", Type: model.TypeReference{Spelling: "io::Stream", Class: other}})

	edges := Classify(poly).Edges()
	assert.Equal(t, []Edge{
		{Kind: model.RelationInheritance, Target: shape},
		{Kind: model.RelationComposition, Target: point},
	}, edges)
}

func TestPlantUMLNamespaceBlocks(t *testing.T) {
	groups := Group(shapes(t))
	text := NewPlantUMLGenerator().Generate(groups[1])
	assert.Equal(t, "@startuml\nset namespaceSeparator ::\n"+
		"namespace A {\nnamespace B {\n"+
		"class Circle<<A::Shape>> {\n"+
		"\t-radius : float\n"+
		"}\n}\n}\n"+
		"@enduml\n", text)

	text = NewPlantUMLGenerator().Generate(groups[0])
	assert.Contains(t, text, "class Shape {\n\t+area() : float\n}\n")
}

func TestRecordLabelEscapesTemplates(t *testing.T) {
	reg := model.NewRegistry()
	box, _, _ := reg.LookupOrCreate("Box<T>", model.Namespace{}, "Box<T>")
	box.AddMethod(&model.Method{Name: "get()", ReturnType: "T", Visibility: model.Public})
	box.AddMethod(&model.Method{Name: "clear()", ReturnType: "void", Visibility: model.Protected})
	snap := reg.Snapshot()

	n, ok := DetailedView(Group(snap)[0]).Node("Box<T>")
	require.True(t, ok)
	assert.Equal(t, "{Box\\<T\\>|+get() : T\n#clear()}", n.Attrs["label"])

	compact, ok := CompactView(snap).Node(GlobalLabel)
	require.True(t, ok)
	assert.Contains(t, compact.Attrs["label"], `<TD PORT="BoxT">Box&lt;T&gt;</TD>`)
}

func TestGlobalViewClusters(t *testing.T) {
	reg := model.NewRegistry()
	_, _, _ = reg.LookupOrCreate("Free", model.Namespace{}, "Free")
	_, _, _ = reg.LookupOrCreate("A.B.Circle", model.NewNamespace("A", "B"), "Circle")
	g := GlobalView(reg.Snapshot())

	require.Len(t, g.Clusters(), 1)
	cluster := g.Clusters()[0]
	assert.Equal(t, "cluster_A_B", cluster.Name)
	assert.Equal(t, "A::B", cluster.GraphAttrs["label"])
	require.Len(t, cluster.Nodes(), 1)
	assert.Equal(t, "A.B.Circle", cluster.Nodes()[0].ID)
	require.Len(t, g.Nodes(), 1)
	assert.Equal(t, "Free", g.Nodes()[0].ID)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "_global", Stem(model.Namespace{}))
	assert.Equal(t, "A::B", Stem(model.NewNamespace("A", "B")))
	assert.Equal(t, "compact_ns", Stem(model.NewNamespace("compact")))
	assert.Equal(t, "main_ns", Stem(model.NewNamespace("main")))
}

func TestStemsSuffixClashingNamespaces(t *testing.T) {
	stems := Stems([]model.Namespace{
		model.NewNamespace("compact"),
		model.NewNamespace("compact_ns"),
		model.NewNamespace("compact_ns_2"),
		model.NewNamespace("geo"),
	})
	assert.Equal(t, []string{"compact_ns", "compact_ns_2", "compact_ns_2_2", "geo"}, stems)
}

func TestWriterKeepsClashingNamespacesApart(t *testing.T) {
	reg := model.NewRegistry()
	_, _, err := reg.LookupOrCreate("compact.Packed", model.NewNamespace("compact"), "Packed")
	require.NoError(t, err)
	_, _, err = reg.LookupOrCreate("compact_ns.Loose", model.NewNamespace("compact_ns"), "Loose")
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := NewWriter(WriterOptions{Dir: dir, WriteText: true}).Write(context.Background(), Synthesize(reg.Snapshot()))
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.NotEqual(t, written[0].Path, written[1].Path)

	packed, err := os.ReadFile(filepath.Join(dir, "compact_ns.puml"))
	require.NoError(t, err)
	assert.Contains(t, string(packed), "class Packed")
	loose, err := os.ReadFile(filepath.Join(dir, "compact_ns_2.puml"))
	require.NoError(t, err)
	assert.Contains(t, string(loose), "class Loose")
}

func TestWriterWritesAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(WriterOptions{Dir: dir, WriteText: true, WriteImages: true})
	written, err := w.Write(context.Background(), Synthesize(shapes(t)))
	require.NoError(t, err)

	var names []string
	for _, a := range written {
		names = append(names, filepath.Base(a.Path))
	}
	assert.Equal(t, []string{"A.puml", "A::B.puml", "compact.dot", "A.dot", "A::B.dot", "main.dot"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "compact.dot"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "strict digraph \"compact\""))
}

func TestWriterCreatesEmptyOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	written, err := NewWriter(WriterOptions{Dir: dir, WriteText: true}).Write(context.Background(), Synthesize(model.NewRegistry().Snapshot()))
	require.NoError(t, err)
	assert.Empty(t, written)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

type failingRenderer struct{ fail string }

func (f failingRenderer) Extension() string { return "svg" }

func (f failingRenderer) Render(ctx context.Context, g *graphviz.Graph, path string) error {
	if filepath.Base(path) == f.fail {
		return errors.Newf(errors.CodeIOFailed, "render failed").WithContext(errors.CtxPath, path)
	}
	return graphviz.SourceRenderer{}.Render(ctx, g, path)
}

func TestWriterContinuesAfterArtifactFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(WriterOptions{Dir: dir, WriteImages: true, Renderer: failingRenderer{fail: "compact.svg"}})
	written, err := w.Write(context.Background(), Synthesize(shapes(t)))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailed))
	assert.Len(t, written, 3)
	_, statErr := os.Stat(filepath.Join(dir, "main.svg"))
	assert.NoError(t, statErr)
}

func TestWriterStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	written, err := NewWriter(WriterOptions{Dir: t.TempDir(), WriteText: true, WriteImages: true}).Write(ctx, Synthesize(shapes(t)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}
