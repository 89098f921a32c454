// Package doc is the in-memory exported document: a node tree, shared
// template nodes, meshes and materials, plus the writers for each output
// format.
package doc

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/export/mesh"
)

const (
	SceneID  = "Scene"
	RootName = "Model"
)

type Node struct {
	// ID is set only on template nodes.
	ID   string
	Name string
	// Transform is nil for nodes whose geometry is baked.
	Transform *mgl64.Mat4
	// Material is inherited by Default-bound geometry below this node.
	Material   *material.Material
	Geometries []*mesh.Mesh
	// Components reference shared template nodes.
	Components    []*Node
	Nodes         []*Node
	AnimationPath *mesh.Mesh
}

// Diagnostic is a recoverable export problem tied to a place in the scene.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}

type Document struct {
	Materials []*material.Material
	Meshes    []*mesh.Mesh
	// Templates are emitted once each, in creation order.
	Templates   []*Node
	Root        *Node
	Diagnostics []Diagnostic
}

// Options control the document writers.
type Options struct {
	FloatDigits int
	UpAxis      string
	Author      string
	// Filename is stored by formats that embed it.
	Filename string
}

type Format struct {
	Name        string
	Extension   string
	ContentType string
	write       func(d *Document, w io.Writer, opts Options) error
}

var formats = []*Format{
	{Name: "dae", Extension: ".dae", ContentType: "model/vnd.collada+xml", write: (*Document).ExportCollada},
	{Name: "glb", Extension: ".glb", ContentType: "model/gltf-binary", write: (*Document).ExportGLTF},
	{Name: "fbx", Extension: ".fbx", ContentType: "application/octet-stream", write: (*Document).ExportFbx},
}

func Formats() []*Format {
	return formats
}

func LookupFormat(name string) (*Format, error) {
	for _, f := range formats {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, errors.Errorf("Unknown format %q", name)
}

func (d *Document) Export(w io.Writer, format string, opts Options) error {
	f, err := LookupFormat(format)
	if err != nil {
		return err
	}
	return f.write(d, w, opts)
}

// Validate re-checks every mesh before writing.
func (d *Document) Validate() error {
	for _, m := range d.Meshes {
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "mesh %q", m.ID)
		}
	}
	return nil
}
