package material

import (
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/dae_exporter/utils/fbxbuilder"
)

type fbxKey struct{ m *Material }

// ExportFbx returns the object id of m, adding it on first use.
func (m *Material) ExportFbx(f *fbxbuilder.FBXBuilder) int64 {
	if cached := f.GetCached(fbxKey{m}); cached != nil {
		return cached.(int64)
	}

	id := f.GenerateId()
	c := m.Color
	f.AddObjects(bfbx73.Material(id, m.ID+"\x00\x01Material", "").AddNodes(
		bfbx73.Version(102),
		bfbx73.ShadingModel("phong"),
		bfbx73.MultiLayer(0),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("AmbientColor", "Color", "", "A", c[0], c[1], c[2]),
			bfbx73.P("DiffuseColor", "Color", "", "A", c[0], c[1], c[2]),
			bfbx73.P("SpecularColor", "Color", "", "A", phongSpecular, phongSpecular, phongSpecular),
			bfbx73.P("Shininess", "double", "Number", "", float64(phongShininess)),
			bfbx73.P("ReflectionFactor", "double", "Number", "", phongReflectivity),
			bfbx73.P("TransparencyFactor", "double", "Number", "", 1-c[3]),
			bfbx73.P("Opacity", "double", "Number", "", c[3]),
		),
	))
	f.AddCache(fbxKey{m}, id)
	return id
}
