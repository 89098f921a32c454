package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const cube = `
materials:
  - {name: wood, color: [120, 80, 20]}
  - {name: glass, color: [200, 220, 255], alpha: 0.3}
definitions:
  - name: Leg
    vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
    faces:
      - {vertices: [0, 1, 2, 3], material: wood, triangles: [[0, 1, 2], [0, 2, 3]]}
    edges:
      - {vertices: [0, 2], soft: true}
  - name: Table
    instances:
      - {name: leg, definition: Leg, transform: {matrix: [1, 0, 0, 2, 0, 1, 0, 3, 0, 0, 1, 4, 0, 0, 0, 1]}}
groups:
  - name: room
    material: glass
    transform: {translate: [1, 0, 0], rotate: {axis: [0, 0, 1], degrees: 90}, scale: [2, 2, 2]}
    instances:
      - {definition: Table}
`

func mustLoad(t *testing.T, src string) *Model {
	t.Helper()
	m, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	return m
}

func TestLoadStructure(t *testing.T) {
	m := mustLoad(t, cube)
	require.Len(t, m.Entities, 1)

	room, ok := m.Entities[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, "room", room.Name)
	require.NotNil(t, room.Material)
	assert.Equal(t, "glass", room.Material.Name)
	assert.InDelta(t, 0.3, room.Material.Alpha, 1e-12)

	table := room.Entities[0].(*Instance)
	assert.Equal(t, "Table", table.Definition.Name)
	assert.Equal(t, mgl64.Ident4(), table.Transform)

	leg := table.Definition.Entities[0].(*Instance)
	assert.Equal(t, "leg", leg.Name)
	assert.Equal(t, mgl64.Translate3D(2, 3, 4), leg.Transform)

	groups, instances, faces, edges := Split(leg.Definition.Entities)
	assert.Empty(t, groups)
	assert.Empty(t, instances)
	require.Len(t, faces, 1)
	// four boundary edges plus the explicit diagonal
	require.Len(t, edges, 5)

	f := faces[0]
	assert.Equal(t, "wood", f.Material.Name)
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, f.Normal)
	assert.InDelta(t, 1.0, f.Area, 1e-12)
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 2, 3}}, f.Triangles)

	for _, e := range edges[:4] {
		assert.Equal(t, []*Face{f}, e.Faces)
		assert.False(t, e.Soft)
	}
	assert.True(t, edges[4].Soft)
	assert.Empty(t, edges[4].Faces)
}

func TestLoadComposedTransform(t *testing.T) {
	m := mustLoad(t, cube)
	room := m.Entities[0].(*Group)

	p := mgl64.TransformCoordinate(mgl64.Vec3{1, 0, 0}, room.Transform)
	assert.InDelta(t, 1.0, p[0], 1e-9)
	assert.InDelta(t, 2.0, p[1], 1e-9)
	assert.InDelta(t, 0.0, p[2], 1e-9)
}

func TestLoadSharedEdges(t *testing.T) {
	m := mustLoad(t, `
vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
faces:
  - vertices: [0, 1, 2]
  - vertices: [0, 2, 3]
edges:
  - {vertices: [2, 0], smooth: true, soft: true}
`)
	_, _, faces, edges := Split(m.Entities)
	require.Len(t, faces, 2)
	require.Len(t, edges, 5)

	var diagonal *Edge
	for _, e := range edges {
		if len(e.Faces) == 2 {
			require.Nil(t, diagonal)
			diagonal = e
		}
	}
	require.NotNil(t, diagonal)
	assert.True(t, diagonal.Smooth)
	assert.True(t, diagonal.Soft)
	assert.Equal(t, faces, diagonal.Faces)
}

func TestLoadErrors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown material":   "faces: [{vertices: [], material: nope}]",
		"unknown definition": "instances: [{definition: nope}]",
		"vertex range":       "vertices: [[0, 0, 0]]\nfaces: [{vertices: [0, 1, 2]}]",
		"duplicate material": "materials: [{name: a}, {name: a}]",
		"alpha range":        "materials: [{name: a, alpha: 2}]",
		"empty definition":   "definitions: [{name: ''}]",
		"self reference":     "definitions: [{name: a, instances: [{definition: a}]}]",
		"mutual reference": `definitions:
  - {name: a, instances: [{definition: b}]}
  - {name: b, instances: [{definition: a}]}`,
		"matrix size":      "instances: [{definition: a}]\ndefinitions: [{name: a}]\ngroups: [{transform: {matrix: [1, 2]}}]",
		"zero axis":        "groups: [{transform: {rotate: {axis: [0, 0, 0], degrees: 5}}}]",
		"loop edge":        "vertices: [[0, 0, 0]]\nedges: [{vertices: [0, 0]}]",
		"triangle range":   "vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]\nfaces: [{vertices: [0, 1, 2], triangles: [[0, 1, 3]]}]",
		"malformed":        "faces: {",
		"zero normal":      "vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]\nfaces: [{vertices: [0, 1, 2], normal: [0, 0, 0]}]",
		"matrix and scale": "groups: [{transform: {matrix: [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1], scale: [1, 1, 1]}}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	m := mustLoad(t, "")
	assert.Empty(t, m.Entities)
}

func TestLoadFileEncoding(t *testing.T) {
	// "Стол" in cp1251
	src := append([]byte("groups: [{name: "), 0xd1, 0xf2, 0xee, 0xeb)
	src = append(src, []byte("}]\n")...)

	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	m, err := LoadFile(path, charmap.Windows1251)
	require.NoError(t, err)
	assert.Equal(t, "Стол", m.Entities[0].(*Group).Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
