package doc

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/utils"
	"github.com/mogaika/dae_exporter/utils/fbxbuilder"
)

func fbxModel(id int64, name, kind string, transform *mgl64.Mat4) *fbx.Node {
	t, r, s := mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}
	if transform != nil {
		t, r, s = utils.Decompose(*transform)
		r = utils.RadiansToDegreeV3(r)
	}

	return bfbx73.Model(id, name+"\x00\x01Model", kind).AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", t[0], t[1], t[2]),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", r[0], r[1], r[2]),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", s[0], s[1], s[2]),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
}

// Template references are expanded into their own model subtree, geometry
// is shared.
func (n *Node) exportFbx(f *fbxbuilder.FBXBuilder, parentId int64, inherited *material.Material) {
	modelId := f.GenerateId()
	f.AddObjects(fbxModel(modelId, n.Name, "Null", n.Transform))
	f.AddConnections(bfbx73.C("OO", modelId, parentId))

	if n.Material != nil {
		inherited = n.Material
	}

	for _, m := range n.Geometries {
		fe := m.ExportFbx(f)
		if fe == nil {
			continue
		}
		meshModelId := f.GenerateId()
		f.AddObjects(fbxModel(meshModelId, m.ID, "Mesh", nil))
		f.AddConnections(
			bfbx73.C("OO", meshModelId, modelId),
			bfbx73.C("OO", fe.FbxGeometryId, meshModelId),
		)
		for _, mat := range fe.Materials {
			f.AddConnections(bfbx73.C("OO", material.Bind(mat, inherited).ExportFbx(f), meshModelId))
		}
	}

	for _, c := range n.Components {
		c.exportFbx(f, modelId, inherited)
	}
	for _, child := range n.Nodes {
		child.exportFbx(f, modelId, inherited)
	}
}

func (d *Document) ExportFbx(w io.Writer, opts Options) error {
	if err := d.Validate(); err != nil {
		return err
	}

	upAxis := fbxbuilder.AxisZ
	if opts.UpAxis == "Y_UP" {
		upAxis = fbxbuilder.AxisY
	}
	f := fbxbuilder.NewFBXBuilder(fbxbuilder.Header{Filename: opts.Filename, UpAxis: upAxis})
	if d.Root != nil {
		d.Root.exportFbx(f, 0, material.Default)
	}
	return f.Write(w)
}
