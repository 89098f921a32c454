package mesh

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/export/material"
	"github.com/mogaika/dae_exporter/export/smooth"
	"github.com/mogaika/dae_exporter/export/triangulate"
	"github.com/mogaika/dae_exporter/scene"
)

var ErrDegenerateFace = errors.New("degenerate face")

// Resolver maps a host material (nil for none) to its exported material.
type Resolver func(*scene.Material) *material.Material

type BuildOptions struct {
	// Lines enables hard edge lines and soft edge contours.
	Lines bool
	Log   *Logger
}

// Warnings collects per-face problems that did not stop the build.
type Warnings []error

func (w Warnings) Error() string {
	parts := make([]string, len(w))
	for i, err := range w {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// AddFacesEdges appends triangle groups (one per material in first-seen
// order), hard edge lines and soft edge contours. Edges are always used for
// smoothing, even when lines are disabled. Faces that cannot be triangulated
// are skipped and reported in the returned Warnings; groups left empty are
// dropped.
func (m *Mesh) AddFacesEdges(faces []*scene.Face, edges []*scene.Edge, resolve Resolver, opts BuildOptions) error {
	var warnings Warnings

	if len(faces) > 0 {
		normals := smooth.Normals(faces, edges)

		var order []*scene.Material
		byMaterial := make(map[*scene.Material][]int)
		for fi, f := range faces {
			if _, ok := byMaterial[f.Material]; !ok {
				order = append(order, f.Material)
			}
			byMaterial[f.Material] = append(byMaterial[f.Material], fi)
		}

		for _, src := range order {
			g := &Group{Kind: KindTriangles, Material: resolve(src)}
			for _, fi := range byMaterial[src] {
				if err := m.addFace(g, faces[fi], normals[fi]); err != nil {
					opts.Log.Printf("face %d skipped: %v", fi, err)
					warnings = append(warnings, errors.Wrapf(err, "face %d", fi))
				}
			}
			if g.Count > 0 {
				m.Groups = append(m.Groups, g)
				m.Materials = append(m.Materials, g.Material)
			}
		}
	}

	if opts.Lines {
		m.addEdges(edges)
	}

	if len(warnings) != 0 {
		return warnings
	}
	return nil
}

func (m *Mesh) addFace(g *Group, f *scene.Face, normals []mgl64.Vec3) error {
	triangles, err := faceTriangles(f)
	if err != nil {
		return err
	}

	vertexMap := make([]int, len(f.Vertices))
	for i, v := range f.Vertices {
		vertexMap[i] = m.AddVertex(v.Position)
	}

	for _, tri := range triangles {
		for _, corner := range tri {
			g.VertexIndices = append(g.VertexIndices, vertexMap[corner])
			g.NormalIndices = append(g.NormalIndices, m.AddNormal(normals[corner]))
		}
	}
	g.Count += len(triangles)
	return nil
}

// faceTriangles prefers the host triangulation and falls back to ear
// clipping.
func faceTriangles(f *scene.Face) ([][3]int, error) {
	if len(f.Vertices) < 3 || f.Area == 0 {
		return nil, errors.Wrapf(ErrDegenerateFace, "%d vertices, area %v", len(f.Vertices), f.Area)
	}
	if f.Triangles != nil {
		for _, tri := range f.Triangles {
			for _, corner := range tri {
				if corner < 0 || corner >= len(f.Vertices) {
					return nil, errors.Wrapf(ErrDegenerateFace, "triangle corner %d out of %d", corner, len(f.Vertices))
				}
			}
		}
		return f.Triangles, nil
	}
	triangles, err := triangulate.Polygon(f.Positions(), f.Normal)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to triangulate")
	}
	return triangles, nil
}

func (m *Mesh) addEdges(edges []*scene.Edge) {
	lines := &Group{Kind: KindLines}
	contours := &Group{Kind: KindContours}

	for _, e := range edges {
		if !e.Soft && !e.Hidden {
			for _, v := range e.Vertices {
				lines.VertexIndices = append(lines.VertexIndices, m.AddVertex(v.Position))
			}
			lines.Count++
		}
		if e.Soft && len(e.Faces) == 2 {
			for _, v := range e.Vertices {
				contours.VertexIndices = append(contours.VertexIndices, m.AddVertex(v.Position))
			}
			for _, f := range e.Faces {
				contours.NormalIndices = append(contours.NormalIndices, m.AddNormal(f.Normal))
			}
			contours.Count++
		}
	}

	if lines.Count > 0 {
		m.Groups = append(m.Groups, lines)
	}
	if contours.Count > 0 {
		m.Extra = append(m.Extra, contours)
	}
}

func (m *Mesh) String() string {
	return fmt.Sprintf("mesh %q: %d vertices, %d normals, %d groups, %d extra",
		m.ID, m.Vertices.Len(), m.Normals.Len(), len(m.Groups), len(m.Extra))
}
