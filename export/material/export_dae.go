package material

import (
	"github.com/mogaika/dae_exporter/collada"
)

const (
	phongSpecular     = 0.33
	phongShininess    = 20
	phongReflectivity = 0.1
)

func (m *Material) EffectID() string {
	return m.ID + "-effect"
}

func (m *Material) ExportCollada(f collada.Formatter) (collada.Material, collada.Effect) {
	c := m.Color
	mat := collada.Material{
		ID:             m.ID,
		Name:           m.ID,
		InstanceEffect: collada.InstanceEffect{URL: collada.URL(m.EffectID())},
	}
	effect := collada.Effect{
		ID:   m.EffectID(),
		Name: m.EffectID(),
		ProfileCommon: collada.ProfileCommon{
			Technique: collada.EffectTechnique{
				Sid: "COMMON",
				Phong: collada.Phong{
					Emission:     collada.ColorValue{Color: f.Color(0, 0, 0)},
					Ambient:      collada.ColorValue{Color: f.Color(c[0], c[1], c[2])},
					Diffuse:      collada.ColorValue{Color: f.Color(c[0], c[1], c[2])},
					Specular:     collada.ColorValue{Color: f.Color(phongSpecular, phongSpecular, phongSpecular)},
					Shininess:    collada.FloatValue{Float: f.Float(phongShininess)},
					Reflectivity: collada.FloatValue{Float: f.Float(phongReflectivity)},
					Transparent:  collada.ColorValue{Color: f.Color(1, 1, 1)},
					Transparency: collada.FloatValue{Float: f.Float(1 - c[3])},
				},
			},
		},
	}
	return mat, effect
}
