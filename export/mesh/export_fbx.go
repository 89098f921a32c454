package mesh

import (
	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/utils/fbxbuilder"
)

type fbxKey struct{ m *Mesh }

// FbxExporter is the shared geometry of one mesh. Every model using it
// connects its own materials in Materials order.
type FbxExporter struct {
	FbxGeometryId int64
	FbxGeometry   *fbx.Node
	Materials     []*material.Material
}

// ExportFbx writes the triangle groups of m once per document; lines and
// contours are not representable and are skipped. Nil when m has no
// triangles.
func (m *Mesh) ExportFbx(f *fbxbuilder.FBXBuilder) *FbxExporter {
	if cached := f.GetCached(fbxKey{m}); cached != nil {
		return cached.(*FbxExporter)
	}

	triangles := m.Triangles()
	if len(triangles) == 0 {
		return nil
	}

	vertices := make([]float64, 0, m.Vertices.Len()*3)
	for _, v := range m.Vertices.Values() {
		vertices = append(vertices, v[0], v[1], v[2])
	}

	indexes := make([]int32, 0)
	normals := make([]float64, 0)
	materialIndexes := make([]int32, 0)
	for iGroup, g := range triangles {
		for i, vi := range g.VertexIndices {
			index := int32(vi)
			if i%3 == 2 {
				// polygon end marker
				index = -index - 1
			}
			indexes = append(indexes, index)

			n := m.Normals.Get(g.NormalIndices[i])
			normals = append(normals, n[0], n[1], n[2])
		}
		for i := 0; i < g.Count; i++ {
			materialIndexes = append(materialIndexes, int32(iGroup))
		}
	}

	fe := &FbxExporter{FbxGeometryId: f.GenerateId()}
	for _, g := range triangles {
		fe.Materials = append(fe.Materials, g.Material)
	}

	geometryLayer := bfbx73.Layer(0).AddNodes(
		bfbx73.Version(100),
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementNormal"),
			bfbx73.TypedIndex(0),
		),
		bfbx73.LayerElement().AddNodes(
			bfbx73.Type("LayerElementMaterial"),
			bfbx73.TypedIndex(0),
		),
	)

	fe.FbxGeometry = bfbx73.Geometry(fe.FbxGeometryId, m.ID+"\x00\x01Geometry", "Mesh").AddNodes(
		bfbx73.Properties70().AddNodes(
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		),
		bfbx73.GeometryVersion(124),
		bfbx73.Vertices(vertices),
		bfbx73.PolygonVertexIndex(indexes),
		bfbx73.LayerElementNormal(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygonVertex"),
			bfbx73.ReferenceInformationType("Direct"),
			bfbx73.Normals(normals),
		),
		bfbx73.LayerElementMaterial(0).AddNodes(
			bfbx73.Version(101),
			bfbx73.Name(""),
			bfbx73.MappingInformationType("ByPolygon"),
			bfbx73.ReferenceInformationType("IndexToDirect"),
			bfbx73.Materials(materialIndexes),
		),
		geometryLayer,
	)

	f.AddObjects(fe.FbxGeometry)
	f.AddCache(fbxKey{m}, fe)
	return fe
}
