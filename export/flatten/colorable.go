package flatten

import (
	"github.com/mogaika/dae_exporter/scene"
)

// isColorable reports whether an inherited material can change how e
// renders. Definitions that are not colourable get a single template.
func (ex *Exporter) isColorable(e scene.Entity) bool {
	if v, ok := ex.colorable[e]; ok {
		return v
	}
	c := &colorability{ex: ex}
	scene.Walk(e, c)
	ex.colorable[e] = c.result
	return c.result
}

func (ex *Exporter) anyColorable(entities []scene.Entity) bool {
	for _, e := range entities {
		if ex.isColorable(e) {
			return true
		}
	}
	return false
}

type colorability struct {
	ex     *Exporter
	result bool
}

func (c *colorability) VisitModel(m *scene.Model) {
	c.result = c.ex.anyColorable(m.Entities)
}

func (c *colorability) VisitSelection(s *scene.Selection) {
	c.result = c.ex.anyColorable(s.Entries)
}

func (c *colorability) VisitGroup(g *scene.Group) {
	c.result = g.Material == nil && c.ex.anyColorable(g.Entities)
}

func (c *colorability) VisitDefinition(d *scene.Definition) {
	c.result = c.ex.anyColorable(d.Entities)
}

func (c *colorability) VisitInstance(i *scene.Instance) {
	c.result = i.Material == nil && c.ex.isColorable(i.Definition)
}

func (c *colorability) VisitFace(f *scene.Face) {
	c.result = f.Material == nil
}

func (c *colorability) VisitEdge(e *scene.Edge) {
	c.result = false
}
