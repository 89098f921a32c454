// Package fbxbuilder is the per-export FBX 7.4 context: object id
// allocation, a cache of exported objects, the Objects and Connections
// sections and the fixed document headers around them.
package fbxbuilder

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/mogaika/fbx"
	"github.com/mogaika/fbx/builders/bfbx73"
	"github.com/pkg/errors"
)

const (
	fbxVersion      = 7400
	creator         = "dae_exporter FBX writer"
	applicationName = "dae_exporter"
	// headers carry the epoch so that repeated exports are byte identical
	epochGMT      = "01/01/1970 00:00:00.000"
	epochCreation = "1970-01-01 00:00:00:000"
	firstObjectId = 1000000
)

var fileId = []byte{
	0x28, 0xb3, 0x2a, 0xeb, 0xb6, 0x24, 0xcc, 0xc2,
	0xbf, 0xc8, 0xb0, 0x2a, 0xa9, 0x2b, 0xfc, 0xf1}

// Axis indexes used by GlobalSettings.
const (
	AxisX int32 = 0
	AxisY int32 = 1
	AxisZ int32 = 2
)

// Header describes the document the objects are written into.
type Header struct {
	Filename string
	UpAxis   int32
}

// objectTypes lists the object kinds the exporter writes, with the
// property templates readers fall back to.
var objectTypes = []struct {
	name, template string
	properties     func() []*fbx.Node
}{
	{"Model", "FbxNode", func() []*fbx.Node {
		return []*fbx.Node{
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A", float64(0), float64(0), float64(0)),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A", float64(1), float64(1), float64(1)),
			bfbx73.P("Visibility", "Visibility", "", "A", float64(1)),
		}
	}},
	{"Material", "FbxSurfacePhong", func() []*fbx.Node {
		return []*fbx.Node{
			bfbx73.P("ShadingModel", "KString", "", "", "Phong"),
			bfbx73.P("DiffuseColor", "Color", "", "A", float64(1), float64(1), float64(1)),
		}
	}},
	{"Geometry", "FbxMesh", func() []*fbx.Node {
		return []*fbx.Node{
			bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
		}
	}},
}

type FBXBuilder struct {
	f      *fbx.FBX
	header Header
	cache  map[interface{}]interface{}
	lastId int64

	objects     *fbx.Node
	connections *fbx.Node
}

func NewFBXBuilder(h Header) *FBXBuilder {
	return &FBXBuilder{
		f:           fbx.NewFBX(fbxVersion),
		header:      h,
		cache:       make(map[interface{}]interface{}),
		lastId:      firstObjectId,
		objects:     bfbx73.Objects(),
		connections: bfbx73.Connections(),
	}
}

func (f *FBXBuilder) headerExtension() *fbx.Node {
	return bfbx73.FBXHeaderExtension().AddNodes(
		bfbx73.FBXHeaderVersion(1003),
		bfbx73.FBXVersion(fbxVersion),
		bfbx73.EncryptionType(0),
		bfbx73.CreationTimeStamp().AddNodes(
			bfbx73.Version(1000),
			bfbx73.Year(1970),
			bfbx73.Month(1),
			bfbx73.Day(1),
			bfbx73.Hour(0),
			bfbx73.Minute(0),
			bfbx73.Second(0),
			bfbx73.Millisecond(0),
		),
		bfbx73.Creator(creator),
		bfbx73.SceneInfo("GlobalInfo\x00\x01SceneInfo", "UserData").AddNodes(
			bfbx73.Type("UserData"),
			bfbx73.Version(100),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("DocumentUrl", "KString", "Url", "", f.header.Filename),
				bfbx73.P("Original", "Compound", "", ""),
				bfbx73.P("Original|ApplicationName", "KString", "", "", applicationName),
				bfbx73.P("Original|DateTime_GMT", "DateTime", "", "", epochGMT),
				bfbx73.P("Original|FileName", "KString", "", "", filepath.Base(f.header.Filename)),
			),
		),
	)
}

// globalSettings is a right-handed system with the requested up axis; the
// front axis is whichever of Y and Z is not up.
func (f *FBXBuilder) globalSettings() *fbx.Node {
	up := f.header.UpAxis
	front := AxisZ
	if up == AxisZ {
		front = AxisY
	}
	return bfbx73.GlobalSettings().AddNodes(
		bfbx73.Version(1000),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("UpAxis", "int", "Integer", "", up),
			bfbx73.P("UpAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("FrontAxis", "int", "Integer", "", front),
			bfbx73.P("FrontAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("CoordAxis", "int", "Integer", "", AxisX),
			bfbx73.P("CoordAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("OriginalUpAxis", "int", "Integer", "", up),
			bfbx73.P("OriginalUpAxisSign", "int", "Integer", "", int32(1)),
			bfbx73.P("UnitScaleFactor", "double", "Number", "", float64(1)),
			bfbx73.P("OriginalUnitScaleFactor", "double", "Number", "", float64(1)),
		),
	)
}

// definitions counts the objects added so far per type.
func (f *FBXBuilder) definitions() *fbx.Node {
	counts := make(map[string]int32)
	for _, object := range f.objects.Nodes {
		counts[object.Name]++
	}

	total := int32(1) // GlobalSettings
	types := []*fbx.Node{bfbx73.ObjectType("GlobalSettings").AddNodes(bfbx73.Count(1))}
	for _, ot := range objectTypes {
		count := counts[ot.name]
		if count == 0 {
			continue
		}
		total += count
		types = append(types, bfbx73.ObjectType(ot.name).AddNodes(
			bfbx73.Count(count),
			bfbx73.PropertyTemplate(ot.template).AddNodes(
				bfbx73.Properties70().AddNodes(ot.properties()...),
			),
		))
	}
	return bfbx73.Definitions().AddNodes(
		append([]*fbx.Node{bfbx73.Version(100), bfbx73.Count(total)}, types...)...,
	)
}

func (f *FBXBuilder) AddCache(key interface{}, d interface{}) {
	f.cache[key] = d
}

func (f *FBXBuilder) GetCached(key interface{}) interface{} {
	if v, ok := f.cache[key]; ok {
		return v
	}
	return nil
}

func (f *FBXBuilder) GenerateId() int64 {
	f.lastId++
	return f.lastId
}

func (f *FBXBuilder) AddObjects(nodes ...*fbx.Node)     { f.objects.AddNodes(nodes...) }
func (f *FBXBuilder) AddConnections(nodes ...*fbx.Node) { f.connections.AddNodes(nodes...) }

// Write assembles the document and streams it to w. fbx.Write patches
// node offsets in place, so it goes through a temporary file.
func (f *FBXBuilder) Write(w io.Writer) error {
	f.f.Root.AddNodes(
		f.headerExtension(),
		bfbx73.FileId(fileId),
		bfbx73.CreationTime(epochCreation),
		bfbx73.Creator(creator),
		f.globalSettings(),
		bfbx73.Documents().AddNodes(
			bfbx73.Count(1),
			bfbx73.Document(firstObjectId, "Scene", "Scene").AddNodes(
				bfbx73.Properties70().AddNodes(
					bfbx73.P("SourceObject", "object", "", ""),
					bfbx73.P("ActiveAnimStackName", "KString", "", "", ""),
				),
				bfbx73.RootNode(0),
			),
		),
		bfbx73.References(),
		f.definitions(),
		f.objects,
		f.connections,
		bfbx73.Takes().AddNodes(bfbx73.Current("")),
	)

	tmp, err := ioutil.TempFile("", "dae_exporter.*.fbx")
	if err != nil {
		return errors.Wrapf(err, "Unable to create temp file")
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := fbx.Write(tmp, f.f); err != nil {
		return errors.Wrapf(err, "Unable to write fbx")
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "Unable to seek")
	}
	if _, err := io.Copy(w, tmp); err != nil {
		return errors.Wrapf(err, "Unable to copy fbx")
	}
	return nil
}
