// Package collada holds the subset of the COLLADA 1.4.1 schema written by
// the exporter, plus the DPIX extra/technique extension.
package collada

import (
	"encoding/xml"
)

const (
	Namespace = "http://www.collada.org/2005/11/COLLADASchema"
	Version   = "1.4.1"
	// ExtensionProfile tags non-standard constructs (contours, animation paths).
	ExtensionProfile = "DPIX"
)

type Collada struct {
	XMLName             xml.Name             `xml:"COLLADA"`
	Xmlns               string               `xml:"xmlns,attr"`
	Version             string               `xml:"version,attr"`
	Asset               *Asset               `xml:"asset,omitempty"`
	LibraryMaterials    *LibraryMaterials    `xml:"library_materials,omitempty"`
	LibraryEffects      *LibraryEffects      `xml:"library_effects,omitempty"`
	LibraryGeometries   *LibraryGeometries   `xml:"library_geometries,omitempty"`
	LibraryNodes        *LibraryNodes        `xml:"library_nodes,omitempty"`
	LibraryVisualScenes *LibraryVisualScenes `xml:"library_visual_scenes,omitempty"`
	Scene               *Scene               `xml:"scene,omitempty"`
}

type Contributor struct {
	Author        string `xml:"author,omitempty"`
	AuthoringTool string `xml:"authoring_tool,omitempty"`
}

type Asset struct {
	Contributor *Contributor `xml:"contributor,omitempty"`
	Created     string       `xml:"created,omitempty"`
	Modified    string       `xml:"modified,omitempty"`
	UpAxis      string       `xml:"up_axis,omitempty"`
}

type InstanceEffect struct {
	URL string `xml:"url,attr"`
}

type Material struct {
	ID             string         `xml:"id,attr"`
	Name           string         `xml:"name,attr"`
	InstanceEffect InstanceEffect `xml:"instance_effect"`
}

type LibraryMaterials struct {
	Materials []Material `xml:"material"`
}

type ColorValue struct {
	Color string `xml:"color"`
}

type FloatValue struct {
	Float string `xml:"float"`
}

type Phong struct {
	Emission     ColorValue `xml:"emission"`
	Ambient      ColorValue `xml:"ambient"`
	Diffuse      ColorValue `xml:"diffuse"`
	Specular     ColorValue `xml:"specular"`
	Shininess    FloatValue `xml:"shininess"`
	Reflectivity FloatValue `xml:"reflectivity"`
	Transparent  ColorValue `xml:"transparent"`
	Transparency FloatValue `xml:"transparency"`
}

type EffectTechnique struct {
	Sid   string `xml:"sid,attr"`
	Phong Phong  `xml:"phong"`
}

type ProfileCommon struct {
	Technique EffectTechnique `xml:"technique"`
}

type Effect struct {
	ID            string        `xml:"id,attr"`
	Name          string        `xml:"name,attr"`
	ProfileCommon ProfileCommon `xml:"profile_COMMON"`
}

type LibraryEffects struct {
	Effects []Effect `xml:"effect"`
}

type FloatArray struct {
	ID     string `xml:"id,attr"`
	Count  int    `xml:"count,attr"`
	Values string `xml:",chardata"`
}

type Param struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type Accessor struct {
	Source string  `xml:"source,attr"`
	Count  int     `xml:"count,attr"`
	Stride int     `xml:"stride,attr"`
	Params []Param `xml:"param"`
}

type SourceTechnique struct {
	Accessor Accessor `xml:"accessor"`
}

type Source struct {
	ID              string          `xml:"id,attr"`
	FloatArray      FloatArray      `xml:"float_array"`
	TechniqueCommon SourceTechnique `xml:"technique_common"`
}

type Input struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   *int   `xml:"offset,attr,omitempty"`
}

type Vertices struct {
	ID     string  `xml:"id,attr"`
	Inputs []Input `xml:"input"`
}

// Primitive is one of triangles, lines, linestrips or contours; the element
// name is taken from XMLName.
type Primitive struct {
	XMLName  xml.Name
	Count    int     `xml:"count,attr"`
	Material string  `xml:"material,attr,omitempty"`
	Inputs   []Input `xml:"input"`
	P        string  `xml:"p"`
}

type InstancePath struct {
	URL string `xml:"url,attr"`
}

type Technique struct {
	Profile      string        `xml:"profile,attr"`
	Primitives   []Primitive
	InstancePath *InstancePath `xml:"instance_path,omitempty"`
}

type Extra struct {
	Technique Technique `xml:"technique"`
}

type Mesh struct {
	Sources    []Source `xml:"source"`
	Vertices   Vertices `xml:"vertices"`
	Primitives []Primitive
	Extra      *Extra `xml:"extra,omitempty"`
}

type Geometry struct {
	ID   string `xml:"id,attr"`
	Mesh Mesh   `xml:"mesh"`
}

type LibraryGeometries struct {
	Geometries []Geometry `xml:"geometry"`
}

type InstanceMaterial struct {
	Symbol string `xml:"symbol,attr"`
	Target string `xml:"target,attr"`
}

type BindTechnique struct {
	InstanceMaterials []InstanceMaterial `xml:"instance_material"`
}

type BindMaterial struct {
	TechniqueCommon BindTechnique `xml:"technique_common"`
}

type InstanceGeometry struct {
	URL          string        `xml:"url,attr"`
	BindMaterial *BindMaterial `xml:"bind_material,omitempty"`
}

type InstanceNode struct {
	URL string `xml:"url,attr"`
}

type Node struct {
	ID                 string             `xml:"id,attr,omitempty"`
	Name               string             `xml:"name,attr,omitempty"`
	Matrix             string             `xml:"matrix,omitempty"`
	InstanceGeometries []InstanceGeometry `xml:"instance_geometry"`
	InstanceNodes      []InstanceNode     `xml:"instance_node"`
	Nodes              []*Node            `xml:"node"`
	Extra              *Extra             `xml:"extra,omitempty"`
}

type LibraryNodes struct {
	Nodes []*Node `xml:"node"`
}

type VisualScene struct {
	ID    string  `xml:"id,attr"`
	Name  string  `xml:"name,attr"`
	Nodes []*Node `xml:"node"`
}

type LibraryVisualScenes struct {
	VisualScenes []VisualScene `xml:"visual_scene"`
}

type InstanceVisualScene struct {
	URL string `xml:"url,attr"`
}

type Scene struct {
	InstanceVisualScene InstanceVisualScene `xml:"instance_visual_scene"`
}

func New() *Collada {
	return &Collada{Xmlns: Namespace, Version: Version}
}

// Offset returns a pointer usable as Input.Offset.
func Offset(o int) *int {
	return &o
}

func URL(id string) string {
	return "#" + id
}
