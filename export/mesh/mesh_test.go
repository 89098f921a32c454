package mesh

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/dae_exporter/collada"
	"github.com/mogaika/dae_exporter/export/ids"
	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/scene"
)

func TestPoolDedup(t *testing.T) {
	p := NewPool()
	a := p.Add(mgl64.Vec3{1, 2, 3})
	b := p.Add(mgl64.Vec3{1, 2, 3.0000001})
	c := p.Add(mgl64.Vec3{1, 2, 3.00001})
	assert.Equal(t, 0, a)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, c)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, a, p.Add(p.Get(a)))
}

func TestQuantize(t *testing.T) {
	q := Quantize(mgl64.Vec3{0.1234564, -0.1234566, 2})
	assert.InDelta(t, 0.123456, q[0], 1e-12)
	assert.InDelta(t, -0.123457, q[1], 1e-12)
	assert.Equal(t, q, Quantize(q))
}

// quad builds a unit square split in two faces along the diagonal, with the
// diagonal soft and smooth and the border hard.
func quad(mat *scene.Material) ([]*scene.Face, []*scene.Edge) {
	v := []*scene.Vertex{
		scene.NewVertex(mgl64.Vec3{0, 0, 0}),
		scene.NewVertex(mgl64.Vec3{1, 0, 0}),
		scene.NewVertex(mgl64.Vec3{1, 1, 0.5}),
		scene.NewVertex(mgl64.Vec3{0, 1, 0}),
	}
	f0 := &scene.Face{Vertices: []*scene.Vertex{v[0], v[1], v[2]}}
	f1 := &scene.Face{Vertices: []*scene.Vertex{v[0], v[2], v[3]}, Material: mat}
	f0.ComputeNormalArea()
	f1.ComputeNormalArea()

	var edges []*scene.Edge
	for _, pair := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}} {
		e := scene.NewEdge(v[pair[0]], v[pair[1]])
		e.Faces = []*scene.Face{f0}
		edges = append(edges, e)
	}
	diagonal := scene.NewEdge(v[0], v[2])
	diagonal.Faces = []*scene.Face{f0, f1}
	diagonal.Soft, diagonal.Smooth = true, true
	edges = append(edges, diagonal)
	return []*scene.Face{f0, f1}, edges
}

func resolver() (*material.Registry, Resolver) {
	r := material.NewRegistry(ids.NewRegistry())
	return r, r.Resolve
}

func TestAddFacesEdges(t *testing.T) {
	red := &scene.Material{Name: "red", Color: [3]uint8{255, 0, 0}, Alpha: 1}
	faces, edges := quad(red)
	_, resolve := resolver()

	m := NewMesh()
	require.NoError(t, m.AddFacesEdges(faces, edges, resolve, BuildOptions{Lines: true}))
	require.NoError(t, m.Validate())

	require.Len(t, m.Groups, 3)
	assert.Equal(t, KindTriangles, m.Groups[0].Kind)
	assert.Equal(t, material.Default, m.Groups[0].Material)
	assert.Equal(t, KindTriangles, m.Groups[1].Kind)
	assert.Equal(t, "red", m.Groups[1].Material.ID)
	assert.Equal(t, []*material.Material{material.Default, m.Groups[1].Material}, m.Materials)

	lines := m.Groups[2]
	assert.Equal(t, KindLines, lines.Kind)
	assert.Equal(t, 4, lines.Count)
	assert.Len(t, lines.VertexIndices, 8)

	require.Len(t, m.Extra, 1)
	assert.Equal(t, KindContours, m.Extra[0].Kind)
	assert.Equal(t, 1, m.Extra[0].Count)
	assert.Len(t, m.Extra[0].NormalIndices, 2)

	assert.Equal(t, 4, m.Vertices.Len())
}

func TestAddFacesEdgesSmoothsWithoutLines(t *testing.T) {
	faces, edges := quad(nil)
	_, resolve := resolver()

	m := NewMesh()
	require.NoError(t, m.AddFacesEdges(faces, edges, resolve, BuildOptions{Lines: false}))
	require.Len(t, m.Groups, 1)
	assert.Empty(t, m.Extra)

	// both faces share the smoothed normal on the diagonal endpoints
	g := m.Groups[0]
	normalOf := func(face, corner int) mgl64.Vec3 {
		return m.Normals.Get(g.NormalIndices[face*3+corner])
	}
	assert.Equal(t, normalOf(0, 0), normalOf(1, 0))
	assert.Equal(t, normalOf(0, 2), normalOf(1, 1))
	assert.NotEqual(t, normalOf(0, 1), normalOf(1, 2))
}

func TestAddFacesEdgesDegenerate(t *testing.T) {
	v := scene.NewVertex(mgl64.Vec3{})
	bad := &scene.Face{Vertices: []*scene.Vertex{v, v, v}}
	bad.ComputeNormalArea()
	faces, _ := quad(nil)
	_, resolve := resolver()

	m := NewMesh()
	err := m.AddFacesEdges(append(faces, bad), nil, resolve, BuildOptions{})
	require.Error(t, err)
	warnings, ok := err.(Warnings)
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], ErrDegenerateFace))
	assert.Equal(t, 2, m.Groups[0].Count)
}

func TestAddFacesEdgesConcave(t *testing.T) {
	var ring []*scene.Vertex
	for _, p := range []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {2, 1, 0}, {1, 1, 0}, {1, 2, 0}, {0, 2, 0}} {
		ring = append(ring, scene.NewVertex(p))
	}
	face := &scene.Face{Vertices: ring}
	face.ComputeNormalArea()
	_, resolve := resolver()

	m := NewMesh()
	require.NoError(t, m.AddFacesEdges([]*scene.Face{face}, nil, resolve, BuildOptions{}))
	require.NoError(t, m.Validate())
	require.Len(t, m.Groups, 1)

	g := m.Groups[0]
	assert.Equal(t, 4, g.Count)
	var area float64
	for i := 0; i < len(g.VertexIndices); i += 3 {
		a := m.Vertices.Get(g.VertexIndices[i])
		b := m.Vertices.Get(g.VertexIndices[i+1])
		c := m.Vertices.Get(g.VertexIndices[i+2])
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n[2], 0.0, "triangle %d is flipped", i/3)
		area += n.Len() / 2
	}
	assert.InDelta(t, 3, area, 1e-9)
}

func TestTransformMergesCollapsed(t *testing.T) {
	m := NewMesh()
	m.Groups = append(m.Groups, &Group{
		Kind:          KindLines,
		VertexIndices: []int{m.AddVertex(mgl64.Vec3{1, 0, 0}), m.AddVertex(mgl64.Vec3{1, 0, 3})},
		Count:         1,
	})
	m.Transform(mgl64.Scale3D(1, 1, 0), false)

	assert.Equal(t, 1, m.Vertices.Len())
	assert.Equal(t, []int{0, 0}, m.Groups[0].VertexIndices)
	assert.NoError(t, m.Validate())
}

func TestTransformFlipInvolution(t *testing.T) {
	faces, edges := quad(nil)
	_, resolve := resolver()
	m := NewMesh()
	require.NoError(t, m.AddFacesEdges(faces, edges, resolve, BuildOptions{Lines: true}))

	before := append([]int(nil), m.Groups[0].VertexIndices...)
	beforeNormals := append([]int(nil), m.Groups[0].NormalIndices...)
	mirror := mgl64.Scale3D(-1, 1, 1)

	m.Transform(mirror, true)
	assert.NotEqual(t, before, m.Groups[0].VertexIndices)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, m.Vertices.Get(1))

	m.Transform(mirror, true)
	assert.Equal(t, before, m.Groups[0].VertexIndices)
	assert.Equal(t, beforeNormals, m.Groups[0].NormalIndices)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, m.Vertices.Get(1))
}

func TestTransformNormals(t *testing.T) {
	m := NewMesh()
	m.AddNormal(mgl64.Vec3{0, 0, 1})
	m.Transform(mgl64.Translate3D(5, 5, 5).Mul4(mgl64.Scale3D(1, 1, 4)), false)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, m.Normals.Get(0))
}

func TestValidateMismatch(t *testing.T) {
	m := NewMesh()
	m.AddVertex(mgl64.Vec3{})
	m.AddNormal(mgl64.Vec3{0, 0, 1})
	m.Groups = append(m.Groups, &Group{
		Kind:          KindTriangles,
		Material:      material.Default,
		VertexIndices: []int{0, 0, 0},
		NormalIndices: []int{0, 0},
		Count:         1,
	})
	assert.True(t, errors.Is(m.Validate(), ErrIndexMismatch))

	m.Groups[0].NormalIndices = []int{0, 0, 0}
	assert.NoError(t, m.Validate())

	m.Groups[0].Count = 2
	assert.True(t, errors.Is(m.Validate(), ErrIndexMismatch))
}

func TestExportCollada(t *testing.T) {
	faces, edges := quad(nil)
	_, resolve := resolver()
	m := NewMesh()
	m.ID = "mesh1"
	require.NoError(t, m.AddFacesEdges(faces, edges, resolve, BuildOptions{Lines: true}))

	g, err := m.ExportCollada(collada.Formatter{Digits: 6})
	require.NoError(t, err)
	assert.Equal(t, "mesh1-geometry", g.ID)
	assert.Equal(t, "mesh1-geometry-position-array", g.Mesh.Sources[0].FloatArray.ID)
	assert.Equal(t, 12, g.Mesh.Sources[0].FloatArray.Count)
	assert.True(t, strings.HasPrefix(g.Mesh.Sources[0].FloatArray.Values, "0.000000 0.000000 0.000000 1.000000"))

	require.Len(t, g.Mesh.Primitives, 2)
	assert.Equal(t, "triangles", g.Mesh.Primitives[0].XMLName.Local)
	assert.Equal(t, material.DefaultID, g.Mesh.Primitives[0].Material)
	assert.Equal(t, "lines", g.Mesh.Primitives[1].XMLName.Local)
	require.NotNil(t, g.Mesh.Extra)
	assert.Equal(t, "DPIX", g.Mesh.Extra.Technique.Profile)
	assert.Equal(t, "contours", g.Mesh.Extra.Technique.Primitives[0].XMLName.Local)

	inherited := &material.Material{ID: "wood"}
	ig := m.ColladaInstance(inherited)
	assert.Equal(t, "#mesh1-geometry", ig.URL)
	require.NotNil(t, ig.BindMaterial)
	assert.Equal(t, []collada.InstanceMaterial{{Symbol: material.DefaultID, Target: "#wood"}},
		ig.BindMaterial.TechniqueCommon.InstanceMaterials)
}
