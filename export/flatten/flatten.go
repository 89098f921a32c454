// Package flatten turns a host scene into an exported document: component
// definitions become shared templates (one per definition, mirroring and
// inherited material), everything else becomes a node tree with baked or
// referenced geometry.
package flatten

import (
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/export/doc"
	"github.com/mogaika/dae_exporter/export/ids"
	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/export/mesh"
	"github.com/mogaika/dae_exporter/scene"
)

var ErrUnsupportedRoot = errors.New("export root must be a model or a selection")

// ReservedIDs are stems whose first dynamic use already gets a suffix.
var ReservedIDs = []string{"mesh", "path", "Scene", "Group"}

type Options struct {
	Lines bool
	// Verbose receives mesh build traces when set.
	Verbose io.Writer
}

type defKey struct {
	def     *scene.Definition
	flipped bool
}

type templateKey struct {
	def      *scene.Definition
	flipped  bool
	material *material.Material
}

type meshKey struct {
	owner   scene.Entity
	flipped bool
}

// Exporter is the state of one export. It is not safe for concurrent use;
// build one per export.
type Exporter struct {
	opts      Options
	log       *mesh.Logger
	ids       *ids.Registry
	materials *material.Registry

	// discovered inherited materials per (definition, flipped), in order
	defOrder     []defKey
	defMaterials map[defKey][]*material.Material
	defSeen      map[templateKey]bool

	templates     map[templateKey]*doc.Node
	templateOrder []templateKey

	// nil entries memoize meshes that failed or had nothing to draw
	meshes   map[meshKey]*mesh.Mesh
	meshList []*mesh.Mesh

	colorable   map[scene.Entity]bool
	diagnostics []doc.Diagnostic
}

func NewExporter(opts Options) *Exporter {
	ex := &Exporter{
		opts:         opts,
		log:          mesh.NewLogger(opts.Verbose),
		ids:          ids.NewRegistry(ReservedIDs...),
		defMaterials: make(map[defKey][]*material.Material),
		defSeen:      make(map[templateKey]bool),
		templates:    make(map[templateKey]*doc.Node),
		meshes:       make(map[meshKey]*mesh.Mesh),
		colorable:    make(map[scene.Entity]bool),
	}
	ex.materials = material.NewRegistry(ex.ids)
	return ex
}

// Flatten exports root, a *scene.Model or *scene.Selection.
func Flatten(root scene.Entity, opts Options) (*doc.Document, error) {
	return NewExporter(opts).Export(root)
}

func (ex *Exporter) Export(root scene.Entity) (*doc.Document, error) {
	switch root.(type) {
	case *scene.Model, *scene.Selection:
	default:
		return nil, errors.Wrapf(ErrUnsupportedRoot, "got %v", root.Kind())
	}

	scene.Walk(root, &discovery{ex: ex, material: material.Default, transform: mgl64.Ident4()})
	ex.buildTemplates()

	rootNode := &doc.Node{}
	scene.Walk(root, &assembly{ex: ex, node: rootNode, material: material.Default, transform: mgl64.Ident4()})

	d := &doc.Document{
		Materials:   ex.materials.Materials(),
		Meshes:      ex.meshList,
		Root:        rootNode,
		Diagnostics: ex.diagnostics,
	}
	for _, key := range ex.templateOrder {
		d.Templates = append(d.Templates, ex.templates[key])
	}

	if len(ex.diagnostics) != 0 {
		log.Printf("[flatten] export finished with %d diagnostics", len(ex.diagnostics))
	}
	return d, nil
}

func (ex *Exporter) diagnose(path string, err error) {
	log.Printf("[flatten] %s: %v", path, err)
	ex.diagnostics = append(ex.diagnostics, doc.Diagnostic{Path: path, Err: err})
}

func isFlipped(t mgl64.Mat4) bool {
	return t.Mat3().Det() < 0
}

// canonical is the transform a template is built in: identity, mirrored
// along X for flipped templates.
func canonical(flipped bool) mgl64.Mat4 {
	m := mgl64.Ident4()
	if flipped {
		m[0] = -1
	}
	return m
}
