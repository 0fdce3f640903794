package output

import (
	"strings"

	"cppuml/internal/engine/model"
)

const plantUMLHeader = "@startuml\nset namespaceSeparator ::\n"

type PlantUMLGenerator struct{}

func NewPlantUMLGenerator() *PlantUMLGenerator {
	return &PlantUMLGenerator{}
}

// Generate renders one namespace. Each class is wrapped in its namespace
// blocks; bases and attributes that point into the same namespace become
// relation lines after the class, everything else stays in the class body.
func (p *PlantUMLGenerator) Generate(group model.NamespaceGroup) string {
	var b strings.Builder
	b.WriteString(plantUMLHeader)
	for _, c := range group.Classes {
		p.writeClass(&b, c)
	}
	b.WriteString("@enduml\n")
	return b.String()
}

func (p *PlantUMLGenerator) writeClass(b *strings.Builder, c *model.Class) {
	rel := Classify(c)
	segments := c.Namespace.Segments()
	for _, seg := range segments {
		b.WriteString("namespace " + seg + " {\n")
	}

	b.WriteString("class " + c.Name)
	if len(rel.ForeignParents) > 0 {
		b.WriteString("<<" + strings.Join(rel.ForeignParents, ", ") + ">>")
	}
	b.WriteString(" {\n")
	for _, a := range rel.ForeignAttributes {
		b.WriteString("\t" + a.String() + "\n")
	}
	for _, m := range c.Methods() {
		b.WriteString("\t" + m.String() + "\n")
	}
	b.WriteString("}\n")

	for range segments {
		b.WriteString("}\n")
	}

	self := c.QualifiedName()
	for _, e := range rel.Edges() {
		b.WriteString(plantUMLRelation(self, e) + "\n")
	}
}

// plantUMLRelation puts the base on the left of an inheritance arrow and the
// owner on the left of a composition arrow.
func plantUMLRelation(self string, e Edge) string {
	target := e.Target.QualifiedName()
	if e.Kind == model.RelationInheritance {
		return target + " <|-- " + self
	}
	return self + " *-- " + target
}
