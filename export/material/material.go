// Package material maps host materials to exported material definitions.
package material

import (
	"github.com/mogaika/dae_exporter/export/ids"
	"github.com/mogaika/dae_exporter/scene"
	"github.com/mogaika/dae_exporter/utils"
)

const DefaultID = "defaultFaceMaterial"

type Material struct {
	ID    string
	Name  string
	Color utils.ColorFloat
}

// Default stands for "no material": geometry bound to it inherits the
// material of the enclosing node.
var Default = &Material{ID: DefaultID, Name: DefaultID, Color: utils.ColorFloat{1, 1, 1, 1}}

func FromSource(id string, src *scene.Material) *Material {
	return &Material{
		ID:    id,
		Name:  src.Name,
		Color: utils.NewColorFloatRGB8(src.Color, src.Alpha),
	}
}

// Registry assigns one exported material per distinct host material, in
// first-use order. Default is always first.
type Registry struct {
	ids      *ids.Registry
	bySource map[*scene.Material]*Material
	list     []*Material
}

func NewRegistry(idr *ids.Registry) *Registry {
	idr.GetID(DefaultID)
	return &Registry{
		ids:      idr,
		bySource: make(map[*scene.Material]*Material),
		list:     []*Material{Default},
	}
}

// Resolve returns the material for src, registering it on first use.
// Nil resolves to Default.
func (r *Registry) Resolve(src *scene.Material) *Material {
	if src == nil {
		return Default
	}
	if m, ok := r.bySource[src]; ok {
		return m
	}
	m := FromSource(r.ids.GetID(src.Name), src)
	r.bySource[src] = m
	r.list = append(r.list, m)
	return m
}

func (r *Registry) Lookup(src *scene.Material) (*Material, bool) {
	if src == nil {
		return Default, true
	}
	m, ok := r.bySource[src]
	return m, ok
}

func (r *Registry) Materials() []*Material {
	return r.list
}

// Bind returns the material geometry bound to m should render with inside a
// node whose nearest material is inherited.
func Bind(m, inherited *Material) *Material {
	if m == Default && inherited != nil {
		return inherited
	}
	return m
}
