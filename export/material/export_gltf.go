package material

import (
	"github.com/qmuntal/gltf"

	"github.com/mogaika/dae_exporter/utils/gltfutils"
)

type gltfKey struct{ m *Material }

// ExportGLTF returns the document index of m, adding it on first use.
func (m *Material) ExportGLTF(gc *gltfutils.GLTFCacher) uint32 {
	if cached := gc.GetCached(gltfKey{m}); cached != nil {
		return cached.(uint32)
	}

	color := m.Color.Float32()
	gm := &gltf.Material{
		Name:        m.ID,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &color,
			MetallicFactor:  gltf.Float(0),
		},
	}
	if m.Color[3] < 1 {
		gm.AlphaMode = gltf.AlphaBlend
	}

	gc.Doc.Materials = append(gc.Doc.Materials, gm)
	index := uint32(len(gc.Doc.Materials) - 1)
	gc.AddCache(gltfKey{m}, index)
	return index
}
