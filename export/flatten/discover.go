package flatten

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/scene"
)

// discovery registers every material and records, for each definition
// reached under a given mirroring, the materials it inherits.
type discovery struct {
	ex        *Exporter
	material  *material.Material
	transform mgl64.Mat4
}

func (d *discovery) inherit(c scene.Colored) *material.Material {
	if src := c.GetMaterial(); src != nil {
		return d.ex.materials.Resolve(src)
	}
	return d.material
}

func (d *discovery) walk(entities []scene.Entity, mat *material.Material, t mgl64.Mat4) {
	scene.WalkAll(entities, &discovery{ex: d.ex, material: mat, transform: t})
}

func (d *discovery) VisitModel(m *scene.Model) {
	d.walk(m.Entities, d.material, d.transform)
}

func (d *discovery) VisitSelection(s *scene.Selection) {
	d.walk(s.Entries, d.material, d.transform)
}

func (d *discovery) VisitGroup(g *scene.Group) {
	d.walk(g.Entities, d.inherit(g), d.transform.Mul4(g.Transform))
}

func (d *discovery) VisitDefinition(def *scene.Definition) {
	flipped := isFlipped(d.transform)
	dk := defKey{def, flipped}
	tk := templateKey{def, flipped, d.material}
	if d.ex.defSeen[tk] {
		return
	}
	d.ex.defSeen[tk] = true
	if _, ok := d.ex.defMaterials[dk]; !ok {
		d.ex.defOrder = append(d.ex.defOrder, dk)
	}
	d.ex.defMaterials[dk] = append(d.ex.defMaterials[dk], d.material)

	d.walk(def.Entities, d.material, canonical(flipped))
}

func (d *discovery) VisitInstance(i *scene.Instance) {
	scene.Walk(i.Definition, &discovery{
		ex:        d.ex,
		material:  d.inherit(i),
		transform: d.transform.Mul4(i.Transform),
	})
}

func (d *discovery) VisitFace(f *scene.Face) {
	d.inherit(f)
}

func (d *discovery) VisitEdge(e *scene.Edge) {}
