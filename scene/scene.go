// Package scene describes the host scene graph consumed by the exporter:
// models, groups, component definitions and instances, faces and edges.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type Kind int

const (
	KindModel Kind = iota
	KindSelection
	KindGroup
	KindDefinition
	KindInstance
	KindFace
	KindEdge
)

var kindNames = [...]string{"Model", "Selection", "Group", "ComponentDefinition", "ComponentInstance", "Face", "Edge"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Entity is implemented only by the types of this package.
type Entity interface {
	Kind() Kind
	accept(v Visitor)
}

// Container is an entity that owns a list of child entities.
type Container interface {
	Entity
	Children() []Entity
}

// Colored is an entity that can carry a material.
type Colored interface {
	Entity
	GetMaterial() *Material
}

// Material is a host material: 8-bit colour and a separate alpha in [0,1].
type Material struct {
	Name  string
	Color [3]uint8
	Alpha float64
}

type Vertex struct {
	Position mgl64.Vec3
	edges    []*Edge
}

func NewVertex(p mgl64.Vec3) *Vertex {
	return &Vertex{Position: p}
}

// Edges returns every edge using this vertex, in creation order.
func (v *Vertex) Edges() []*Edge { return v.edges }

type Face struct {
	Vertices []*Vertex
	Normal   mgl64.Vec3
	Area     float64
	Material *Material
	// Triangles is the host triangulation of the face, indexes into Vertices.
	// Nil when the host does not triangulate.
	Triangles [][3]int
}

func (f *Face) Kind() Kind             { return KindFace }
func (f *Face) accept(v Visitor)       { v.VisitFace(f) }
func (f *Face) GetMaterial() *Material { return f.Material }

// IndexOf returns the boundary position of v, or -1.
func (f *Face) IndexOf(v *Vertex) int {
	for i, fv := range f.Vertices {
		if fv == v {
			return i
		}
	}
	return -1
}

func (f *Face) Positions() []mgl64.Vec3 {
	points := make([]mgl64.Vec3, len(f.Vertices))
	for i, v := range f.Vertices {
		points[i] = v.Position
	}
	return points
}

type Edge struct {
	Vertices [2]*Vertex
	Faces    []*Face
	Smooth   bool
	Soft     bool
	Hidden   bool
	// StartEdge marks the first edge of an animation path.
	StartEdge bool
}

// NewEdge creates an edge and registers it on both vertices.
func NewEdge(a, b *Vertex) *Edge {
	e := &Edge{Vertices: [2]*Vertex{a, b}}
	a.edges = append(a.edges, e)
	if b != a {
		b.edges = append(b.edges, e)
	}
	return e
}

func (e *Edge) Kind() Kind       { return KindEdge }
func (e *Edge) accept(v Visitor) { v.VisitEdge(e) }

// Other returns the opposite endpoint of v.
func (e *Edge) Other(v *Vertex) *Vertex {
	if e.Vertices[0] == v {
		return e.Vertices[1]
	}
	return e.Vertices[0]
}

type Group struct {
	Name          string
	Transform     mgl64.Mat4
	Material      *Material
	Entities      []Entity
	AnimationPath bool
}

func NewGroup(name string) *Group {
	return &Group{Name: name, Transform: mgl64.Ident4()}
}

func (g *Group) Kind() Kind             { return KindGroup }
func (g *Group) accept(v Visitor)       { v.VisitGroup(g) }
func (g *Group) Children() []Entity     { return g.Entities }
func (g *Group) GetMaterial() *Material { return g.Material }

type Definition struct {
	Name     string
	Entities []Entity
}

func (d *Definition) Kind() Kind         { return KindDefinition }
func (d *Definition) accept(v Visitor)   { v.VisitDefinition(d) }
func (d *Definition) Children() []Entity { return d.Entities }

type Instance struct {
	Name       string
	Transform  mgl64.Mat4
	Material   *Material
	Definition *Definition
}

func NewInstance(name string, def *Definition) *Instance {
	return &Instance{Name: name, Definition: def, Transform: mgl64.Ident4()}
}

func (i *Instance) Kind() Kind             { return KindInstance }
func (i *Instance) accept(v Visitor)       { v.VisitInstance(i) }
func (i *Instance) GetMaterial() *Material { return i.Material }

type Model struct {
	Entities []Entity
}

func (m *Model) Kind() Kind         { return KindModel }
func (m *Model) accept(v Visitor)   { v.VisitModel(m) }
func (m *Model) Children() []Entity { return m.Entities }

// Selection is a subset of a model's top-level entities exported as a root.
type Selection struct {
	Entries []Entity
}

func (s *Selection) Kind() Kind         { return KindSelection }
func (s *Selection) accept(v Visitor)   { v.VisitSelection(s) }
func (s *Selection) Children() []Entity { return s.Entries }

// Split partitions entities into the kinds the exporter handles separately.
func Split(entities []Entity) (groups []*Group, instances []*Instance, faces []*Face, edges []*Edge) {
	for _, e := range entities {
		switch e := e.(type) {
		case *Group:
			groups = append(groups, e)
		case *Instance:
			instances = append(instances, e)
		case *Face:
			faces = append(faces, e)
		case *Edge:
			edges = append(edges, e)
		}
	}
	return
}

// ComputeNormalArea fills Normal and Area from the boundary (Newell's method).
// Degenerate faces get +Z and zero area.
func (f *Face) ComputeNormalArea() {
	var n mgl64.Vec3
	for i := range f.Vertices {
		a := f.Vertices[i].Position
		b := f.Vertices[(i+1)%len(f.Vertices)].Position
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	l := n.Len()
	if len(f.Vertices) < 3 || l < 1e-12 {
		f.Normal = mgl64.Vec3{0, 0, 1}
		f.Area = 0
		return
	}
	f.Normal = n.Mul(1 / l)
	f.Area = l / 2
}
