package scene

import (
	"bytes"
	"io"
	"io/ioutil"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

type yamlMaterial struct {
	Name  string   `yaml:"name"`
	Color [3]uint8 `yaml:"color"`
	Alpha *float64 `yaml:"alpha"`
}

type yamlRotation struct {
	Axis    [3]float64 `yaml:"axis"`
	Degrees float64    `yaml:"degrees"`
}

type yamlTransform struct {
	Matrix    []float64     `yaml:"matrix"`
	Translate *[3]float64   `yaml:"translate"`
	Rotate    *yamlRotation `yaml:"rotate"`
	Scale     *[3]float64   `yaml:"scale"`
}

type yamlFace struct {
	Vertices  []int       `yaml:"vertices"`
	Material  string      `yaml:"material"`
	Normal    *[3]float64 `yaml:"normal"`
	Area      *float64    `yaml:"area"`
	Triangles [][3]int    `yaml:"triangles"`
}

type yamlEdge struct {
	Vertices [2]int `yaml:"vertices"`
	Smooth   bool   `yaml:"smooth"`
	Soft     bool   `yaml:"soft"`
	Hidden   bool   `yaml:"hidden"`
	Start    bool   `yaml:"start"`
}

type yamlEntities struct {
	Vertices  [][3]float64   `yaml:"vertices"`
	Faces     []yamlFace     `yaml:"faces"`
	Edges     []yamlEdge     `yaml:"edges"`
	Groups    []yamlGroup    `yaml:"groups"`
	Instances []yamlInstance `yaml:"instances"`
}

type yamlGroup struct {
	Name          string         `yaml:"name"`
	Material      string         `yaml:"material"`
	Transform     *yamlTransform `yaml:"transform"`
	AnimationPath bool           `yaml:"animation_path"`
	yamlEntities  `yaml:",inline"`
}

type yamlInstance struct {
	Name       string         `yaml:"name"`
	Definition string         `yaml:"definition"`
	Material   string         `yaml:"material"`
	Transform  *yamlTransform `yaml:"transform"`
}

type yamlDefinition struct {
	Name         string `yaml:"name"`
	yamlEntities `yaml:",inline"`
}

type yamlScene struct {
	Materials    []yamlMaterial   `yaml:"materials"`
	Definitions  []yamlDefinition `yaml:"definitions"`
	yamlEntities `yaml:",inline"`
}

type loader struct {
	materials   map[string]*Material
	definitions map[string]*Definition
	// instance references per definition, for cycle detection
	uses map[*Definition][]*Definition
}

// LoadFile reads a YAML scene description. When enc is not nil the file is
// decoded from that charmap first.
func LoadFile(path string, enc *charmap.Charmap) (*Model, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read scene %q", path)
	}
	if enc != nil {
		if data, err = enc.NewDecoder().Bytes(data); err != nil {
			return nil, errors.Wrapf(err, "Failed to decode scene %q from %v", path, enc)
		}
	}
	m, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load scene %q", path)
	}
	return m, nil
}

func Load(r io.Reader) (*Model, error) {
	var ys yamlScene
	if err := yaml.NewDecoder(r).Decode(&ys); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Failed to unmarshal")
	}

	l := &loader{
		materials:   make(map[string]*Material),
		definitions: make(map[string]*Definition),
		uses:        make(map[*Definition][]*Definition),
	}

	for i, ym := range ys.Materials {
		if ym.Name == "" {
			return nil, errors.Errorf("materials[%d]: empty name", i)
		}
		if _, exists := l.materials[ym.Name]; exists {
			return nil, errors.Errorf("materials[%d]: duplicate material %q", i, ym.Name)
		}
		alpha := 1.0
		if ym.Alpha != nil {
			alpha = *ym.Alpha
		}
		if alpha < 0 || alpha > 1 {
			return nil, errors.Errorf("materials[%d]: alpha %v out of [0,1]", i, alpha)
		}
		l.materials[ym.Name] = &Material{Name: ym.Name, Color: ym.Color, Alpha: alpha}
	}

	// definitions are created before their contents so they can reference each other
	for i, yd := range ys.Definitions {
		if yd.Name == "" {
			return nil, errors.Errorf("definitions[%d]: empty name", i)
		}
		if _, exists := l.definitions[yd.Name]; exists {
			return nil, errors.Errorf("definitions[%d]: duplicate definition %q", i, yd.Name)
		}
		l.definitions[yd.Name] = &Definition{Name: yd.Name}
	}
	for i, yd := range ys.Definitions {
		def := l.definitions[yd.Name]
		entities, err := l.entities(&yd.yamlEntities, def)
		if err != nil {
			return nil, errors.Wrapf(err, "definitions[%d] %q", i, yd.Name)
		}
		def.Entities = entities
	}
	if err := l.checkCycles(); err != nil {
		return nil, err
	}

	entities, err := l.entities(&ys.yamlEntities, nil)
	if err != nil {
		return nil, err
	}
	return &Model{Entities: entities}, nil
}

func (l *loader) material(name string) (*Material, error) {
	if name == "" {
		return nil, nil
	}
	if m, ok := l.materials[name]; ok {
		return m, nil
	}
	return nil, errors.Errorf("unknown material %q", name)
}

type vertexPair [2]*Vertex

func (l *loader) entities(ye *yamlEntities, owner *Definition) ([]Entity, error) {
	vertices := make([]*Vertex, len(ye.Vertices))
	for i, p := range ye.Vertices {
		vertices[i] = NewVertex(mgl64.Vec3(p))
	}
	vertex := func(i int) (*Vertex, error) {
		if i < 0 || i >= len(vertices) {
			return nil, errors.Errorf("vertex index %d out of range [0,%d)", i, len(vertices))
		}
		return vertices[i], nil
	}

	var result []Entity

	for i := range ye.Groups {
		g, err := l.group(&ye.Groups[i], owner)
		if err != nil {
			return nil, errors.Wrapf(err, "groups[%d] %q", i, ye.Groups[i].Name)
		}
		result = append(result, g)
	}

	for i, yi := range ye.Instances {
		def, ok := l.definitions[yi.Definition]
		if !ok {
			return nil, errors.Errorf("instances[%d]: unknown definition %q", i, yi.Definition)
		}
		inst := NewInstance(yi.Name, def)
		var err error
		if inst.Material, err = l.material(yi.Material); err != nil {
			return nil, errors.Wrapf(err, "instances[%d]", i)
		}
		if yi.Transform != nil {
			if inst.Transform, err = yi.Transform.matrix(); err != nil {
				return nil, errors.Wrapf(err, "instances[%d]", i)
			}
		}
		if owner != nil {
			l.uses[owner] = append(l.uses[owner], def)
		}
		result = append(result, inst)
	}

	edges := make(map[vertexPair]*Edge)
	var edgeList []*Edge
	edgeOf := func(a, b *Vertex) *Edge {
		if e, ok := edges[vertexPair{a, b}]; ok {
			return e
		}
		if e, ok := edges[vertexPair{b, a}]; ok {
			return e
		}
		e := NewEdge(a, b)
		edges[vertexPair{a, b}] = e
		edgeList = append(edgeList, e)
		return e
	}

	var faces []Entity
	for i, yf := range ye.Faces {
		f := &Face{Vertices: make([]*Vertex, len(yf.Vertices)), Triangles: yf.Triangles}
		for j, vi := range yf.Vertices {
			v, err := vertex(vi)
			if err != nil {
				return nil, errors.Wrapf(err, "faces[%d]", i)
			}
			f.Vertices[j] = v
		}
		for j, tri := range yf.Triangles {
			for _, ti := range tri {
				if ti < 0 || ti >= len(f.Vertices) {
					return nil, errors.Errorf("faces[%d].triangles[%d]: index %d out of range", i, j, ti)
				}
			}
		}
		var err error
		if f.Material, err = l.material(yf.Material); err != nil {
			return nil, errors.Wrapf(err, "faces[%d]", i)
		}

		f.ComputeNormalArea()
		if yf.Normal != nil {
			n := mgl64.Vec3(*yf.Normal)
			if n.Len() < 1e-12 {
				return nil, errors.Errorf("faces[%d]: zero normal", i)
			}
			f.Normal = n.Normalize()
		}
		if yf.Area != nil {
			f.Area = *yf.Area
		}

		if len(f.Vertices) >= 3 {
			for j := range f.Vertices {
				a, b := f.Vertices[j], f.Vertices[(j+1)%len(f.Vertices)]
				if a == b {
					continue
				}
				e := edgeOf(a, b)
				e.Faces = append(e.Faces, f)
			}
		}
		faces = append(faces, f)
	}

	for i, yed := range ye.Edges {
		a, err := vertex(yed.Vertices[0])
		if err != nil {
			return nil, errors.Wrapf(err, "edges[%d]", i)
		}
		b, err := vertex(yed.Vertices[1])
		if err != nil {
			return nil, errors.Wrapf(err, "edges[%d]", i)
		}
		if a == b {
			return nil, errors.Errorf("edges[%d]: both ends are vertex %d", i, yed.Vertices[0])
		}
		e := edgeOf(a, b)
		e.Smooth = yed.Smooth
		e.Soft = yed.Soft
		e.Hidden = yed.Hidden
		e.StartEdge = yed.Start
	}

	result = append(result, faces...)
	for _, e := range edgeList {
		result = append(result, e)
	}
	return result, nil
}

func (l *loader) group(yg *yamlGroup, owner *Definition) (*Group, error) {
	g := NewGroup(yg.Name)
	g.AnimationPath = yg.AnimationPath
	var err error
	if g.Material, err = l.material(yg.Material); err != nil {
		return nil, err
	}
	if yg.Transform != nil {
		if g.Transform, err = yg.Transform.matrix(); err != nil {
			return nil, err
		}
	}
	if g.Entities, err = l.entities(&yg.yamlEntities, owner); err != nil {
		return nil, err
	}
	return g, nil
}

func (l *loader) checkCycles() error {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[*Definition]int)
	var visit func(d *Definition) error
	visit = func(d *Definition) error {
		switch state[d] {
		case active:
			return errors.Errorf("definition %q contains itself", d.Name)
		case done:
			return nil
		}
		state[d] = active
		for _, used := range l.uses[d] {
			if err := visit(used); err != nil {
				return err
			}
		}
		state[d] = done
		return nil
	}
	// map order does not matter for the result, only for which cycle member is named
	for _, d := range l.definitions {
		if err := visit(d); err != nil {
			return err
		}
	}
	return nil
}

// matrix reads a row-major 4x4 matrix, or composes translate*rotate*scale.
func (yt *yamlTransform) matrix() (mgl64.Mat4, error) {
	if yt.Matrix != nil {
		if yt.Translate != nil || yt.Rotate != nil || yt.Scale != nil {
			return mgl64.Mat4{}, errors.Errorf("transform: matrix excludes translate/rotate/scale")
		}
		if len(yt.Matrix) != 16 {
			return mgl64.Mat4{}, errors.Errorf("transform: matrix needs 16 values, got %d", len(yt.Matrix))
		}
		var m mgl64.Mat4
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				m.Set(row, col, yt.Matrix[row*4+col])
			}
		}
		return m, nil
	}

	m := mgl64.Ident4()
	if yt.Translate != nil {
		t := *yt.Translate
		m = m.Mul4(mgl64.Translate3D(t[0], t[1], t[2]))
	}
	if yt.Rotate != nil {
		axis := mgl64.Vec3(yt.Rotate.Axis)
		if axis.Len() < 1e-12 {
			return mgl64.Mat4{}, errors.Errorf("transform: zero rotation axis")
		}
		m = m.Mul4(mgl64.HomogRotate3D(yt.Rotate.Degrees*math.Pi/180, axis.Normalize()))
	}
	if yt.Scale != nil {
		s := *yt.Scale
		m = m.Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
	}
	return m, nil
}
