package flatten

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/export/doc"
	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/export/mesh"
	"github.com/mogaika/dae_exporter/scene"
)

var ErrMissingTemplate = errors.New("no template for component definition")

// buildTemplates creates one template node per discovered (definition,
// flipped, material) and then fills each one in its canonical space.
func (ex *Exporter) buildTemplates() {
	for _, dk := range ex.defOrder {
		materials := ex.defMaterials[dk]
		if !ex.isColorable(dk.def) {
			materials = []*material.Material{material.Default}
		}

		for _, m := range materials {
			key := templateKey{dk.def, dk.flipped, m}
			if _, ok := ex.templates[key]; ok {
				continue
			}
			name := dk.def.Name
			if dk.flipped {
				name += "-flip"
			}
			if m != material.Default {
				name += "-" + m.ID
			}
			ex.templates[key] = &doc.Node{ID: ex.ids.GetID(name), Name: name, Material: m}
			ex.templateOrder = append(ex.templateOrder, key)
		}
	}

	for _, key := range ex.templateOrder {
		node := ex.templates[key]
		scene.Walk(key.def, &assembly{
			ex:        ex,
			node:      node,
			material:  key.material,
			transform: canonical(key.flipped),
			path:      node.Name,
		})
	}
}

// assembly fills node from one entity; the entity's children get child
// visitors of their own.
type assembly struct {
	ex        *Exporter
	node      *doc.Node
	material  *material.Material
	transform mgl64.Mat4
	path      string
}

func (a *assembly) child(node *doc.Node, name string) *assembly {
	return &assembly{
		ex:        a.ex,
		node:      node,
		material:  a.material,
		transform: a.transform,
		path:      joinPath(a.path, name),
	}
}

func joinPath(parent, name string) string {
	if name == "" {
		name = "?"
	}
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func (a *assembly) colour(c scene.Colored) {
	if src := c.GetMaterial(); src != nil {
		a.node.Material = a.ex.materials.Resolve(src)
		a.material = a.node.Material
	}
}

func (a *assembly) VisitModel(m *scene.Model) {
	a.node.Name = doc.RootName
	a.path = doc.RootName
	a.entities(m, m.Entities)
}

func (a *assembly) VisitSelection(s *scene.Selection) {
	a.node.Name = doc.RootName
	a.path = doc.RootName
	a.entities(s, s.Entries)
}

func (a *assembly) VisitGroup(g *scene.Group) {
	a.colour(g)
	if g.Name != "" {
		a.node.Name = g.Name
	}
	a.transform = a.transform.Mul4(g.Transform)
	a.entities(g, g.Entities)
}

func (a *assembly) VisitDefinition(d *scene.Definition) {
	a.entities(d, d.Entities)
}

func (a *assembly) VisitInstance(i *scene.Instance) {
	a.colour(i)
	a.transform = a.transform.Mul4(i.Transform)
	flipped := isFlipped(a.transform)

	template, ok := a.ex.templates[templateKey{i.Definition, flipped, a.material}]
	if !ok {
		template, ok = a.ex.templates[templateKey{i.Definition, flipped, material.Default}]
	}
	if !ok {
		a.ex.diagnose(a.path, errors.Wrapf(ErrMissingTemplate, "%q", i.Definition.Name))
		return
	}

	a.node.Components = append(a.node.Components, template)
	if i.Name != "" {
		a.node.Name = fmt.Sprintf("%s (%s)", i.Name, template.Name)
	} else {
		a.node.Name = template.Name
	}

	// the template is already mirrored
	matrix := a.transform
	if flipped {
		for k := 0; k < 4; k++ {
			matrix[k] = -matrix[k]
		}
	}
	a.node.Transform = &matrix
}

func (a *assembly) VisitFace(f *scene.Face) {}
func (a *assembly) VisitEdge(e *scene.Edge) {}

// entities emits groups, then component instances, then one mesh of the
// collection's faces and edges.
func (a *assembly) entities(owner scene.Entity, entities []scene.Entity) {
	groups, instances, faces, edges := scene.Split(entities)

	for _, g := range groups {
		if g.AnimationPath {
			if m := a.ex.pathMesh(g, a.transform); m != nil {
				a.node.AnimationPath = m
			}
			continue
		}
		node := &doc.Node{}
		scene.Walk(g, a.child(node, g.Name))
		a.node.Nodes = append(a.node.Nodes, node)
	}

	for _, i := range instances {
		node := &doc.Node{}
		scene.Walk(i, a.child(node, i.Name))
		a.node.Nodes = append(a.node.Nodes, node)
	}

	if len(faces) == 0 && (!a.ex.opts.Lines || len(edges) == 0) {
		return
	}
	if m := a.ex.collectionMesh(owner, faces, edges, a.transform, a.path); m != nil {
		a.node.Geometries = append(a.node.Geometries, m)
	}
}

func (ex *Exporter) collectionMesh(owner scene.Entity, faces []*scene.Face, edges []*scene.Edge, t mgl64.Mat4, path string) *mesh.Mesh {
	flipped := isFlipped(t)
	key := meshKey{owner, flipped}
	if m, ok := ex.meshes[key]; ok {
		return m
	}
	ex.meshes[key] = nil

	m := mesh.NewMesh()
	err := m.AddFacesEdges(faces, edges, ex.materials.Resolve, mesh.BuildOptions{Lines: ex.opts.Lines, Log: ex.log})
	if warnings, ok := err.(mesh.Warnings); ok {
		for _, w := range warnings {
			ex.diagnose(path, w)
		}
	} else if err != nil {
		ex.diagnose(path, err)
		return nil
	}
	if m.Empty() {
		return nil
	}

	m.Transform(t, flipped)
	if err := m.Validate(); err != nil {
		ex.diagnose(path, errors.Wrapf(err, "mesh omitted"))
		return nil
	}

	m.ID = ex.ids.GetID("mesh")
	ex.log.Printf("%s: %v", path, m)
	ex.meshes[key] = m
	ex.meshList = append(ex.meshList, m)
	return m
}

// pathMesh builds the line strip of an animation path group once. Groups
// without a start edge produce nothing.
func (ex *Exporter) pathMesh(g *scene.Group, t mgl64.Mat4) *mesh.Mesh {
	key := meshKey{g, false}
	if m, ok := ex.meshes[key]; ok {
		return m
	}
	ex.meshes[key] = nil

	points := scene.PathPoints(g)
	if points == nil {
		return nil
	}
	m := mesh.NewMesh()
	m.AddLineStrip(points)
	m.Transform(t, false)
	m.ID = ex.ids.GetID("path")
	ex.meshes[key] = m
	ex.meshList = append(ex.meshList, m)
	return m
}
