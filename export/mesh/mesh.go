// Package mesh builds exportable geometry out of host faces and edges:
// deduplicated vertex and normal pools plus index groups.
package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/export/material"
)

var (
	ErrIndexMismatch = errors.New("index lists are inconsistent")
	ErrIndexRange    = errors.New("index out of range")
)

type GroupKind int

const (
	KindTriangles GroupKind = iota
	KindLines
	KindLineStrips
	KindContours
)

func (k GroupKind) String() string {
	switch k {
	case KindTriangles:
		return "triangles"
	case KindLines:
		return "lines"
	case KindLineStrips:
		return "linestrips"
	case KindContours:
		return "contours"
	}
	return "unknown"
}

// Group is an indexed primitive list. Normal indices are nil for kinds
// without normals.
type Group struct {
	Kind          GroupKind
	Material      *material.Material
	VertexIndices []int
	NormalIndices []int
	Count         int
}

// perPrimitive returns how many indices make up one primitive, 0 when the
// primitive length is variable.
func (g *Group) perPrimitive() int {
	switch g.Kind {
	case KindTriangles:
		return 3
	case KindLines, KindContours:
		return 2
	}
	return 0
}

func (g *Group) hasNormals() bool {
	return g.Kind == KindTriangles || g.Kind == KindContours
}

// Mesh is the geometry of one collection. Groups keep insertion order;
// Extra holds groups written outside the standard primitive list.
type Mesh struct {
	ID        string
	Vertices  *Pool
	Normals   *Pool
	Groups    []*Group
	Extra     []*Group
	Materials []*material.Material
}

func NewMesh() *Mesh {
	return &Mesh{
		Vertices: NewPool(),
		Normals:  NewPool(),
	}
}

func (m *Mesh) GeometryID() string {
	return m.ID + "-geometry"
}

func (m *Mesh) AddVertex(v mgl64.Vec3) int { return m.Vertices.Add(v) }
func (m *Mesh) AddNormal(n mgl64.Vec3) int { return m.Normals.Add(n) }

// AddLineStrip appends one open polyline through points.
func (m *Mesh) AddLineStrip(points []mgl64.Vec3) {
	g := &Group{Kind: KindLineStrips, Count: 1}
	for _, p := range points {
		g.VertexIndices = append(g.VertexIndices, m.AddVertex(p))
	}
	m.Groups = append(m.Groups, g)
}

// Triangles returns the triangle groups in order.
func (m *Mesh) Triangles() []*Group {
	var groups []*Group
	for _, g := range m.Groups {
		if g.Kind == KindTriangles {
			groups = append(groups, g)
		}
	}
	return groups
}

func (m *Mesh) Empty() bool {
	return len(m.Groups) == 0 && len(m.Extra) == 0
}

// Transform maps positions by t and normals by its inverse transpose,
// renormalized. Flipped meshes get their triangle winding reversed.
func (m *Mesh) Transform(t mgl64.Mat4, flipped bool) {
	normalMatrix := t.Mat3().Inv().Transpose()

	vertices := m.Vertices.remap(func(v mgl64.Vec3) mgl64.Vec3 {
		return mgl64.TransformCoordinate(v, t)
	})
	normals := m.Normals.remap(func(n mgl64.Vec3) mgl64.Vec3 {
		n = normalMatrix.Mul3x1(n)
		if n.Len() > 0 {
			n = n.Normalize()
		}
		return n
	})
	// a collapsing transform merges pool entries
	for _, groups := range [][]*Group{m.Groups, m.Extra} {
		for _, g := range groups {
			renumber(g.VertexIndices, vertices)
			renumber(g.NormalIndices, normals)
		}
	}

	if flipped {
		for _, g := range m.Triangles() {
			reverse(g.VertexIndices)
			reverse(g.NormalIndices)
		}
	}
}

func renumber(indices, moved []int) {
	for i, index := range indices {
		// out of range indices are left for Validate
		if index >= 0 && index < len(moved) {
			indices[i] = moved[index]
		}
	}
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Validate checks index list lengths against counts and pool bounds.
func (m *Mesh) Validate() error {
	for _, groups := range [][]*Group{m.Groups, m.Extra} {
		for i, g := range groups {
			if err := m.validateGroup(g); err != nil {
				return errors.Wrapf(err, "%v group %d", g.Kind, i)
			}
		}
	}
	return nil
}

func (m *Mesh) validateGroup(g *Group) error {
	if g.hasNormals() && len(g.VertexIndices) != len(g.NormalIndices) {
		return errors.Wrapf(ErrIndexMismatch, "%d vertex indices, %d normal indices",
			len(g.VertexIndices), len(g.NormalIndices))
	}
	if per := g.perPrimitive(); per != 0 && len(g.VertexIndices) != per*g.Count {
		return errors.Wrapf(ErrIndexMismatch, "%d indices for %d primitives", len(g.VertexIndices), g.Count)
	}
	if g.Kind == KindLineStrips && len(g.VertexIndices) < 2 {
		return errors.Wrapf(ErrIndexMismatch, "line strip of %d vertices", len(g.VertexIndices))
	}
	for _, i := range g.VertexIndices {
		if !m.Vertices.valid(i) {
			return errors.Wrapf(ErrIndexRange, "vertex index %d out of %d", i, m.Vertices.Len())
		}
	}
	for _, i := range g.NormalIndices {
		if !m.Normals.valid(i) {
			return errors.Wrapf(ErrIndexRange, "normal index %d out of %d", i, m.Normals.Len())
		}
	}
	return nil
}
