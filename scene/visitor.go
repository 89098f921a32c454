package scene

// Visitor has one method per entity kind. Adding a kind to the package
// breaks every visitor at compile time.
type Visitor interface {
	VisitModel(m *Model)
	VisitSelection(s *Selection)
	VisitGroup(g *Group)
	VisitDefinition(d *Definition)
	VisitInstance(i *Instance)
	VisitFace(f *Face)
	VisitEdge(e *Edge)
}

// Walk dispatches e to the matching Visitor method.
func Walk(e Entity, v Visitor) {
	e.accept(v)
}

// WalkAll dispatches every entity in order.
func WalkAll(entities []Entity, v Visitor) {
	for _, e := range entities {
		e.accept(v)
	}
}
