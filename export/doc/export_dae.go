package doc

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/collada"
	"github.com/mogaika/dae_exporter/export/material"
)

const (
	authoringTool = "dae_exporter"
	// fixed so that output is reproducible
	assetTimestamp = "1970-01-01T00:00:00Z"
)

func (n *Node) exportCollada(f collada.Formatter, inherited *material.Material) *collada.Node {
	cn := &collada.Node{ID: n.ID, Name: n.Name}
	if n.Transform != nil {
		cn.Matrix = f.Matrix(*n.Transform)
	}

	if n.Material != nil {
		inherited = n.Material
	}
	for _, m := range n.Geometries {
		cn.InstanceGeometries = append(cn.InstanceGeometries, m.ColladaInstance(inherited))
	}
	for _, c := range n.Components {
		cn.InstanceNodes = append(cn.InstanceNodes, collada.InstanceNode{URL: collada.URL(c.ID)})
	}
	for _, child := range n.Nodes {
		cn.Nodes = append(cn.Nodes, child.exportCollada(f, inherited))
	}

	if n.AnimationPath != nil {
		cn.Extra = &collada.Extra{Technique: collada.Technique{
			Profile:      collada.ExtensionProfile,
			InstancePath: &collada.InstancePath{URL: collada.URL(n.AnimationPath.GeometryID())},
		}}
	}
	return cn
}

func (d *Document) Collada(opts Options) (*collada.Collada, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	f := collada.Formatter{Digits: opts.FloatDigits}
	c := collada.New()

	if opts.Author != "" || opts.UpAxis != "" {
		c.Asset = &collada.Asset{
			Contributor: &collada.Contributor{Author: opts.Author, AuthoringTool: authoringTool},
			Created:     assetTimestamp,
			Modified:    assetTimestamp,
			UpAxis:      opts.UpAxis,
		}
	}

	c.LibraryMaterials = &collada.LibraryMaterials{}
	c.LibraryEffects = &collada.LibraryEffects{}
	for _, m := range d.Materials {
		mat, effect := m.ExportCollada(f)
		c.LibraryMaterials.Materials = append(c.LibraryMaterials.Materials, mat)
		c.LibraryEffects.Effects = append(c.LibraryEffects.Effects, effect)
	}

	c.LibraryGeometries = &collada.LibraryGeometries{}
	for _, m := range d.Meshes {
		g, err := m.ExportCollada(f)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to export mesh %q", m.ID)
		}
		c.LibraryGeometries.Geometries = append(c.LibraryGeometries.Geometries, g)
	}

	if len(d.Templates) != 0 {
		c.LibraryNodes = &collada.LibraryNodes{}
		for _, t := range d.Templates {
			c.LibraryNodes.Nodes = append(c.LibraryNodes.Nodes, t.exportCollada(f, material.Default))
		}
	}

	scene := collada.VisualScene{ID: SceneID, Name: SceneID}
	if d.Root != nil {
		scene.Nodes = append(scene.Nodes, d.Root.exportCollada(f, material.Default))
	}
	c.LibraryVisualScenes = &collada.LibraryVisualScenes{VisualScenes: []collada.VisualScene{scene}}
	c.Scene = &collada.Scene{InstanceVisualScene: collada.InstanceVisualScene{URL: collada.URL(SceneID)}}
	return c, nil
}

func (d *Document) ExportCollada(w io.Writer, opts Options) error {
	c, err := d.Collada(opts)
	if err != nil {
		return err
	}
	return collada.Write(w, c)
}
