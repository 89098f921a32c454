package flatten

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/dae_exporter/export/doc"
	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/export/mesh"
	"github.com/mogaika/dae_exporter/scene"
)

const boxes = `
materials:
  - {name: red, color: [255, 0, 0]}
  - {name: blue, color: [0, 0, 255], alpha: 0.5}
definitions:
  - name: Box
    vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
    faces:
      - vertices: [0, 1, 2, 3]
instances:
  - {name: a, definition: Box}
  - {name: b, definition: Box, transform: {translate: [5, 0, 0]}}
`

func load(t *testing.T, src string) *scene.Model {
	t.Helper()
	m, err := scene.Load(strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func export(t *testing.T, src string, opts Options) *doc.Document {
	t.Helper()
	d, err := Flatten(load(t, src), opts)
	require.NoError(t, err)
	return d
}

func TestInstancesShareTemplate(t *testing.T) {
	d := export(t, boxes, Options{Lines: true})

	require.Len(t, d.Templates, 1)
	box := d.Templates[0]
	assert.Equal(t, "Box", box.ID)
	assert.Equal(t, "Box", box.Name)
	assert.Equal(t, material.Default, box.Material)
	require.Len(t, box.Geometries, 1)
	assert.Equal(t, "mesh1", box.Geometries[0].ID)

	root := d.Root
	assert.Equal(t, "Model", root.Name)
	require.Len(t, root.Nodes, 2)
	for _, n := range root.Nodes {
		require.Len(t, n.Components, 1)
		assert.True(t, n.Components[0] == box)
		assert.Empty(t, n.Geometries)
	}
	assert.Equal(t, "a (Box)", root.Nodes[0].Name)
	assert.Equal(t, mgl64.Ident4(), *root.Nodes[0].Transform)
	assert.Equal(t, mgl64.Translate3D(5, 0, 0), *root.Nodes[1].Transform)

	// red and blue are never used
	assert.Equal(t, []*material.Material{material.Default}, d.Materials)
	assert.Len(t, d.Meshes, 1)
	assert.Empty(t, d.Diagnostics)
}

func TestTemplatePerInheritedMaterial(t *testing.T) {
	d := export(t, boxes+`
  - {name: c, definition: Box, material: red}
  - {name: d, definition: Box, material: red}
`, Options{})

	require.Len(t, d.Templates, 2)
	assert.Equal(t, "Box", d.Templates[0].Name)
	assert.Equal(t, "Box-red", d.Templates[1].Name)
	assert.Equal(t, "Box_red", d.Templates[1].ID)
	assert.Equal(t, "red", d.Templates[1].Material.ID)

	c, dd := d.Root.Nodes[2], d.Root.Nodes[3]
	assert.True(t, c.Components[0] == d.Templates[1])
	assert.True(t, dd.Components[0] == d.Templates[1])
	assert.Equal(t, "red", c.Material.ID)

	// geometry is shared, only the binding differs
	assert.True(t, d.Templates[0].Geometries[0] == d.Templates[1].Geometries[0])
	assert.Len(t, d.Meshes, 1)
}

func TestNonColorableDefinitionFallsBack(t *testing.T) {
	d := export(t, `
materials:
  - {name: red, color: [255, 0, 0]}
  - {name: blue, color: [0, 0, 255]}
definitions:
  - name: Painted
    vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    faces:
      - {vertices: [0, 1, 2], material: blue}
instances:
  - {definition: Painted, material: red}
  - {definition: Painted}
`, Options{})

	require.Len(t, d.Templates, 1)
	tpl := d.Templates[0]
	assert.Equal(t, "Painted", tpl.Name)
	assert.Equal(t, material.Default, tpl.Material)
	for _, n := range d.Root.Nodes {
		assert.True(t, n.Components[0] == tpl)
		assert.Equal(t, "Painted", n.Name)
	}
}

func TestMirroredInstance(t *testing.T) {
	d := export(t, boxes+`
  - {name: m, definition: Box, transform: {scale: [-1, 1, 1]}}
`, Options{})

	require.Len(t, d.Templates, 2)
	flip := d.Templates[1]
	assert.Equal(t, "Box-flip", flip.Name)
	assert.Equal(t, "Box_flip", flip.ID)

	node := d.Root.Nodes[2]
	assert.True(t, node.Components[0] == flip)
	assert.True(t, node.Transform.Mat3().Det() > 0)
	assert.Equal(t, mgl64.Ident4(), *node.Transform)

	// canonical mirror plus reversed winding keeps the outward normal
	straight := d.Templates[0].Geometries[0]
	mirrored := flip.Geometries[0]
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, mirrored.Vertices.Get(1))
	sv, mv := straight.Groups[0].VertexIndices, mirrored.Groups[0].VertexIndices
	require.Equal(t, len(sv), len(mv))
	for i := range sv {
		assert.Equal(t, sv[i], mv[len(mv)-1-i])
	}
}

func TestReachedTwiceEmittedOnce(t *testing.T) {
	d := export(t, boxes+`
groups:
  - name: shelf
    instances:
      - {definition: Box}
`, Options{})

	assert.Len(t, d.Templates, 1)
	require.Len(t, d.Root.Nodes, 3)
	shelf := d.Root.Nodes[0]
	assert.Equal(t, "shelf", shelf.Name)
	assert.Nil(t, shelf.Transform)
	assert.True(t, shelf.Nodes[0].Components[0] == d.Templates[0])
}

func TestGroupBakesTransform(t *testing.T) {
	d := export(t, `
groups:
  - name: ""
    transform: {translate: [0, 0, 10]}
    vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    faces:
      - vertices: [0, 1, 2]
`, Options{Lines: true})

	require.Len(t, d.Root.Nodes, 1)
	g := d.Root.Nodes[0]
	assert.Equal(t, "", g.Name)
	assert.Nil(t, g.Transform)
	require.Len(t, g.Geometries, 1)
	m := g.Geometries[0]
	assert.Equal(t, mgl64.Vec3{1, 0, 10}, m.Vertices.Get(1))

	require.Len(t, m.Groups, 2)
	assert.Equal(t, mesh.KindLines, m.Groups[1].Kind)
	assert.Equal(t, 3, m.Groups[1].Count)
}

func TestConcaveFaceTriangulated(t *testing.T) {
	d := export(t, `
vertices: [[0, 0, 0], [2, 0, 0], [2, 1, 0], [1, 1, 0], [1, 2, 0], [0, 2, 0]]
faces:
  - vertices: [0, 1, 2, 3, 4, 5]
`, Options{})
	assert.Empty(t, d.Diagnostics)
	require.Len(t, d.Root.Geometries, 1)
	m := d.Root.Geometries[0]
	require.Len(t, m.Groups, 1)

	g := m.Groups[0]
	require.Equal(t, 4, g.Count)
	var area float64
	for i := 0; i < len(g.VertexIndices); i += 3 {
		a := m.Vertices.Get(g.VertexIndices[i])
		b := m.Vertices.Get(g.VertexIndices[i+1])
		c := m.Vertices.Get(g.VertexIndices[i+2])
		area += b.Sub(a).Cross(c.Sub(a)).Len() / 2
	}
	assert.InDelta(t, 3, area, 1e-9)
}

func TestGroupMaterialIsInherited(t *testing.T) {
	d := export(t, `
materials:
  - {name: wood, color: [120, 80, 20]}
groups:
  - name: table
    material: wood
    vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    faces:
      - vertices: [0, 1, 2]
`, Options{})

	g := d.Root.Nodes[0]
	require.NotNil(t, g.Material)
	assert.Equal(t, "wood", g.Material.ID)
	assert.Equal(t, []*material.Material{material.Default}, g.Geometries[0].Materials)
}

func TestLinesDisabled(t *testing.T) {
	d := export(t, `
vertices: [[0, 0, 0], [1, 0, 0]]
edges:
  - vertices: [0, 1]
`, Options{Lines: false})
	assert.Empty(t, d.Meshes)
	assert.Empty(t, d.Root.Geometries)
}

func TestAnimationPath(t *testing.T) {
	d := export(t, `
groups:
  - name: track
    animation_path: true
    transform: {translate: [0, 0, 1]}
    vertices: [[0, 0, 0], [1, 0, 0], [2, 1, 0]]
    edges:
      - {vertices: [0, 1], start: true}
      - {vertices: [1, 2]}
`, Options{Lines: true})

	assert.Empty(t, d.Root.Nodes)
	path := d.Root.AnimationPath
	require.NotNil(t, path)
	assert.Equal(t, "path1", path.ID)
	require.Len(t, path.Groups, 1)
	assert.Equal(t, mesh.KindLineStrips, path.Groups[0].Kind)
	assert.Equal(t, []int{0, 1, 2}, path.Groups[0].VertexIndices)
	assert.Equal(t, mgl64.Vec3{2, 1, 1}, path.Vertices.Get(2))
}

func TestAnimationPathWithoutStart(t *testing.T) {
	d := export(t, `
groups:
  - name: track
    animation_path: true
    vertices: [[0, 0, 0], [1, 0, 0]]
    edges:
      - {vertices: [0, 1]}
`, Options{Lines: true})
	assert.Nil(t, d.Root.AnimationPath)
	assert.Empty(t, d.Meshes)
}

func TestDegenerateFaceDiagnostic(t *testing.T) {
	d := export(t, `
vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0], [2, 0, 0]]
faces:
  - vertices: [0, 1, 2]
  - vertices: [0, 1, 3]
`, Options{})

	require.Len(t, d.Diagnostics, 1)
	assert.Equal(t, "Model", d.Diagnostics[0].Path)
	assert.True(t, errors.Is(d.Diagnostics[0].Err, mesh.ErrDegenerateFace))
	require.Len(t, d.Root.Geometries, 1)
	assert.Equal(t, 1, d.Root.Geometries[0].Groups[0].Count)
}

func TestSelectionRoot(t *testing.T) {
	model := load(t, boxes)
	sel, err := scene.Select(model, "b")
	require.NoError(t, err)

	d, err := Flatten(sel, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Model", d.Root.Name)
	require.Len(t, d.Root.Nodes, 1)
	assert.Equal(t, "b (Box)", d.Root.Nodes[0].Name)
}

func TestUnsupportedRoot(t *testing.T) {
	_, err := Flatten(scene.NewGroup("g"), Options{})
	assert.True(t, errors.Is(err, ErrUnsupportedRoot))
}

func TestExportsAreIndependent(t *testing.T) {
	model := load(t, boxes)
	first, err := Flatten(model, Options{})
	require.NoError(t, err)
	second, err := Flatten(model, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Templates[0].ID, second.Templates[0].ID)
	assert.Equal(t, first.Meshes[0].ID, second.Meshes[0].ID)
}
