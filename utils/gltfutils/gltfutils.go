package gltfutils

import (
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// GLTFCacher carries the document being built and the already exported
// objects keyed by their source.
type GLTFCacher struct {
	Doc   *gltf.Document
	cache map[interface{}]interface{}
}

func NewCacher() *GLTFCacher {
	return &GLTFCacher{
		Doc:   gltf.NewDocument(),
		cache: make(map[interface{}]interface{}),
	}
}

func (gc *GLTFCacher) AddCache(key interface{}, v interface{}) {
	gc.cache[key] = v
}

func (gc *GLTFCacher) GetCached(key interface{}) interface{} {
	if v, ok := gc.cache[key]; ok {
		return v
	}
	return nil
}

// AddNode appends n and returns its index.
func (gc *GLTFCacher) AddNode(n *gltf.Node) uint32 {
	gc.Doc.Nodes = append(gc.Doc.Nodes, n)
	return uint32(len(gc.Doc.Nodes) - 1)
}

// ExportBinary writes doc as GLB with roots as the nodes of the default
// scene.
func ExportBinary(w io.Writer, doc *gltf.Document, roots ...uint32) error {
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, roots...)

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrapf(err, "Failed to encode glb")
	}
	return nil
}

// Matrix converts a column-major transform to glTF node layout.
func Matrix(m [16]float64) [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
