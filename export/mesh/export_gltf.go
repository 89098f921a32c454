package mesh

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/utils/gltfutils"
)

type gltfBindingKey struct {
	m         *Mesh
	inherited *material.Material
}

type gltfTrianglesKey struct{ m *Mesh }
type gltfPositionsKey struct{ m *Mesh }

// gltfTriangles holds the corner attributes shared by every triangle group
// and the per-group index accessors.
type gltfTriangles struct {
	Position uint32
	Normal   uint32
	Indices  []uint32
}

func vec32(v [3]float64) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// glTF has a single index per corner, so (vertex, normal) pairs become
// distinct vertices.
func (m *Mesh) exportGLTFTriangles(gc *gltfutils.GLTFCacher) *gltfTriangles {
	if cached := gc.GetCached(gltfTrianglesKey{m}); cached != nil {
		return cached.(*gltfTriangles)
	}

	remap := make(map[[2]int]uint32)
	var positions, normals [][3]float32
	groupIndices := make([][]uint32, 0)
	for _, g := range m.Triangles() {
		indices := make([]uint32, len(g.VertexIndices))
		for i := range g.VertexIndices {
			corner := [2]int{g.VertexIndices[i], g.NormalIndices[i]}
			index, ok := remap[corner]
			if !ok {
				index = uint32(len(positions))
				remap[corner] = index
				positions = append(positions, vec32(m.Vertices.Get(corner[0])))
				normals = append(normals, vec32(m.Normals.Get(corner[1])))
			}
			indices[i] = index
		}
		groupIndices = append(groupIndices, indices)
	}

	t := &gltfTriangles{}
	if len(positions) != 0 {
		t.Position = modeler.WritePosition(gc.Doc, positions)
		t.Normal = modeler.WriteNormal(gc.Doc, normals)
		for _, indices := range groupIndices {
			t.Indices = append(t.Indices, modeler.WriteIndices(gc.Doc, indices))
		}
	}
	gc.AddCache(gltfTrianglesKey{m}, t)
	return t
}

func (m *Mesh) exportGLTFPositions(gc *gltfutils.GLTFCacher) uint32 {
	if cached := gc.GetCached(gltfPositionsKey{m}); cached != nil {
		return cached.(uint32)
	}
	positions := make([][3]float32, m.Vertices.Len())
	for i, v := range m.Vertices.Values() {
		positions[i] = vec32(v)
	}
	accessor := modeler.WritePosition(gc.Doc, positions)
	gc.AddCache(gltfPositionsKey{m}, accessor)
	return accessor
}

func toUint32(values []int) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v)
	}
	return out
}

// ExportGLTF returns the index of the glTF mesh drawing m with the Default
// material bound to inherited. Contours have no glTF counterpart and are not
// exported. ok is false when nothing drawable remains.
func (m *Mesh) ExportGLTF(gc *gltfutils.GLTFCacher, inherited *material.Material) (index uint32, ok bool) {
	key := gltfBindingKey{m, inherited}
	if cached := gc.GetCached(key); cached != nil {
		return cached.(uint32), true
	}

	gm := &gltf.Mesh{Name: m.ID}
	iTriangles := 0
	for _, g := range m.Groups {
		switch g.Kind {
		case KindTriangles:
			t := m.exportGLTFTriangles(gc)
			mat := material.Bind(g.Material, inherited).ExportGLTF(gc)
			gm.Primitives = append(gm.Primitives, &gltf.Primitive{
				Indices: gltf.Index(t.Indices[iTriangles]),
				Attributes: map[string]uint32{
					"POSITION": t.Position,
					"NORMAL":   t.Normal,
				},
				Material: gltf.Index(mat),
				Mode:     gltf.PrimitiveTriangles,
			})
			iTriangles++
		case KindLines, KindLineStrips:
			mode := gltf.PrimitiveLines
			if g.Kind == KindLineStrips {
				mode = gltf.PrimitiveLineStrip
			}
			gm.Primitives = append(gm.Primitives, &gltf.Primitive{
				Indices:    gltf.Index(modeler.WriteIndices(gc.Doc, toUint32(g.VertexIndices))),
				Attributes: map[string]uint32{"POSITION": m.exportGLTFPositions(gc)},
				Mode:       mode,
			})
		}
	}
	if len(gm.Primitives) == 0 {
		return 0, false
	}

	gc.Doc.Meshes = append(gc.Doc.Meshes, gm)
	index = uint32(len(gc.Doc.Meshes) - 1)
	gc.AddCache(key, index)
	return index, true
}
