package doc

import (
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/utils/gltfutils"
)

// Templates are expanded per reference: a glTF node has a single parent.
func (n *Node) exportGLTF(gc *gltfutils.GLTFCacher, inherited *material.Material) uint32 {
	gn := &gltf.Node{Name: n.Name}
	if n.Transform != nil {
		gn.Matrix = gltfutils.Matrix(*n.Transform)
	}
	index := gc.AddNode(gn)

	if n.Material != nil {
		inherited = n.Material
	}

	var meshes []uint32
	for _, m := range n.Geometries {
		if mi, ok := m.ExportGLTF(gc, inherited); ok {
			meshes = append(meshes, mi)
		}
	}
	if len(meshes) == 1 {
		gn.Mesh = gltf.Index(meshes[0])
	} else {
		for _, mi := range meshes {
			gn.Children = append(gn.Children, gc.AddNode(&gltf.Node{Name: gc.Doc.Meshes[mi].Name, Mesh: gltf.Index(mi)}))
		}
	}

	for _, c := range n.Components {
		gn.Children = append(gn.Children, c.exportGLTF(gc, inherited))
	}
	for _, child := range n.Nodes {
		gn.Children = append(gn.Children, child.exportGLTF(gc, inherited))
	}

	if n.AnimationPath != nil {
		if mi, ok := n.AnimationPath.ExportGLTF(gc, inherited); ok {
			gn.Children = append(gn.Children, gc.AddNode(&gltf.Node{
				Name:   n.AnimationPath.ID,
				Mesh:   gltf.Index(mi),
				Extras: map[string]interface{}{"animation_path": true},
			}))
		}
	}
	return index
}

func (d *Document) ExportGLTF(w io.Writer, opts Options) error {
	if err := d.Validate(); err != nil {
		return err
	}
	gc := gltfutils.NewCacher()
	gc.Doc.Asset.Generator = authoringTool
	if d.Root == nil {
		return gltfutils.ExportBinary(w, gc.Doc)
	}

	root := d.Root.exportGLTF(gc, material.Default)
	if opts.UpAxis == "Z_UP" {
		// glTF is Y up
		up := gc.AddNode(&gltf.Node{
			Name:     SceneID,
			Matrix:   gltfutils.Matrix(mgl64.HomogRotate3DX(-math.Pi / 2)),
			Children: []uint32{root},
		})
		root = up
	}
	return gltfutils.ExportBinary(w, gc.Doc, root)
}
