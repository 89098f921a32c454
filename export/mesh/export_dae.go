package mesh

import (
	"encoding/xml"

	"github.com/mogaika/dae_exporter/collada"
	"github.com/mogaika/dae_exporter/export/material"
)

func source(f collada.Formatter, id string, values *Pool) collada.Source {
	return collada.Source{
		ID: id,
		FloatArray: collada.FloatArray{
			ID:     id + "-array",
			Count:  values.Len() * 3,
			Values: f.Vec3s(values.Values()),
		},
		TechniqueCommon: collada.SourceTechnique{
			Accessor: collada.Accessor{
				Source: collada.URL(id + "-array"),
				Count:  values.Len(),
				Stride: 3,
				Params: []collada.Param{
					{Name: "X", Type: "float"},
					{Name: "Y", Type: "float"},
					{Name: "Z", Type: "float"},
				},
			},
		},
	}
}

func (g *Group) exportCollada(id string) (collada.Primitive, error) {
	p := collada.Primitive{
		XMLName: xml.Name{Local: g.Kind.String()},
		Count:   g.Count,
		Inputs: []collada.Input{
			{Semantic: "VERTEX", Source: collada.URL(id + "-vertex"), Offset: collada.Offset(0)},
		},
	}
	if g.Material != nil {
		p.Material = g.Material.ID
	}
	if !g.hasNormals() {
		p.P = collada.Ints(g.VertexIndices)
		return p, nil
	}

	p.Inputs = append(p.Inputs, collada.Input{
		Semantic: "NORMAL", Source: collada.URL(id + "-normal"), Offset: collada.Offset(1),
	})
	indices, err := collada.IntPairs(g.VertexIndices, g.NormalIndices)
	if err != nil {
		return p, ErrIndexMismatch
	}
	p.P = indices
	return p, nil
}

func (m *Mesh) ExportCollada(f collada.Formatter) (collada.Geometry, error) {
	id := m.GeometryID()
	geometry := collada.Geometry{
		ID: id,
		Mesh: collada.Mesh{
			Sources: []collada.Source{
				source(f, id+"-position", m.Vertices),
				source(f, id+"-normal", m.Normals),
			},
			Vertices: collada.Vertices{
				ID:     id + "-vertex",
				Inputs: []collada.Input{{Semantic: "POSITION", Source: collada.URL(id + "-position")}},
			},
		},
	}

	for _, g := range m.Groups {
		p, err := g.exportCollada(id)
		if err != nil {
			return geometry, err
		}
		geometry.Mesh.Primitives = append(geometry.Mesh.Primitives, p)
	}

	if len(m.Extra) != 0 {
		technique := collada.Technique{Profile: collada.ExtensionProfile}
		for _, g := range m.Extra {
			p, err := g.exportCollada(id)
			if err != nil {
				return geometry, err
			}
			technique.Primitives = append(technique.Primitives, p)
		}
		geometry.Mesh.Extra = &collada.Extra{Technique: technique}
	}
	return geometry, nil
}

// ColladaInstance references the geometry from a node. The Default material
// symbol is bound to inherited, the nearest material up the node tree.
func (m *Mesh) ColladaInstance(inherited *material.Material) collada.InstanceGeometry {
	ig := collada.InstanceGeometry{URL: collada.URL(m.GeometryID())}
	if len(m.Materials) == 0 {
		return ig
	}

	bind := &collada.BindMaterial{}
	for _, mat := range m.Materials {
		bind.TechniqueCommon.InstanceMaterials = append(bind.TechniqueCommon.InstanceMaterials,
			collada.InstanceMaterial{
				Symbol: mat.ID,
				Target: collada.URL(material.Bind(mat, inherited).ID),
			})
	}
	ig.BindMaterial = bind
	return ig
}
