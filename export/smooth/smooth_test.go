package smooth

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/mogaika/dae_exporter/scene"
)

func face(vs ...*scene.Vertex) *scene.Face {
	f := &scene.Face{Vertices: vs}
	f.ComputeNormalArea()
	return f
}

func smoothEdge(a, b *scene.Vertex, faces ...*scene.Face) *scene.Edge {
	e := scene.NewEdge(a, b)
	e.Smooth = true
	e.Soft = true
	e.Faces = faces
	return e
}

func assertVec(t *testing.T, expected, actual mgl64.Vec3) {
	t.Helper()
	if !expected.ApproxEqualThreshold(actual, 1e-9) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

// fan builds three triangles around the origin: F1 in the XY plane, F2 and
// F3 folded up so every face has a different normal.
func fan() (v []*scene.Vertex, faces []*scene.Face) {
	v = []*scene.Vertex{
		scene.NewVertex(mgl64.Vec3{0, 0, 0}),
		scene.NewVertex(mgl64.Vec3{1, 0, 0}),
		scene.NewVertex(mgl64.Vec3{0, 1, 0}),
		scene.NewVertex(mgl64.Vec3{-1, 0, 1}),
		scene.NewVertex(mgl64.Vec3{0, -1, 1}),
	}
	faces = []*scene.Face{
		face(v[0], v[1], v[2]),
		face(v[0], v[2], v[3]),
		face(v[0], v[3], v[4]),
	}
	return
}

func TestNormalsTransitive(t *testing.T) {
	v, faces := fan()
	edges := []*scene.Edge{
		smoothEdge(v[0], v[2], faces[0], faces[1]),
		smoothEdge(v[0], v[3], faces[1], faces[2]),
	}
	normals := Normals(faces, edges)

	// F1 and F3 share no edge but meet at the origin through F2
	expected := faces[0].Normal.Mul(faces[0].Area).
		Add(faces[1].Normal.Mul(faces[1].Area)).
		Add(faces[2].Normal.Mul(faces[2].Area)).Normalize()
	assertVec(t, expected, normals[0][0])
	assertVec(t, expected, normals[1][0])
	assertVec(t, expected, normals[2][0])

	// v2 is only shared by F1 and F2
	expected = faces[0].Normal.Mul(faces[0].Area).Add(faces[1].Normal.Mul(faces[1].Area)).Normalize()
	assertVec(t, expected, normals[0][2])
	assertVec(t, expected, normals[1][1])

	// corners on no smooth edge keep the face normal
	assertVec(t, faces[0].Normal, normals[0][1])
	assertVec(t, faces[2].Normal, normals[2][2])
}

func TestNormalsEdgeOrder(t *testing.T) {
	v, faces := fan()
	first := smoothEdge(v[0], v[2], faces[0], faces[1])
	second := smoothEdge(v[0], v[3], faces[1], faces[2])
	forward := Normals(faces, []*scene.Edge{first, second})

	for _, edges := range [][]*scene.Edge{
		{second, first},
		{smoothEdge(v[3], v[0], faces[2], faces[1]), smoothEdge(v[2], v[0], faces[1], faces[0])},
	} {
		normals := Normals(faces, edges)
		for i := range faces {
			for l := range faces[i].Vertices {
				assertVec(t, forward[i][l], normals[i][l])
			}
		}
	}
}

func TestNormalsIgnoreHardEdges(t *testing.T) {
	v, faces := fan()
	hard := scene.NewEdge(v[0], v[2])
	hard.Faces = []*scene.Face{faces[0], faces[1]}
	normals := Normals(faces, []*scene.Edge{hard})

	for i, f := range faces {
		for l := range f.Vertices {
			assertVec(t, f.Normal, normals[i][l])
		}
	}
}

func TestNormalsIgnoreForeignFaces(t *testing.T) {
	v, faces := fan()
	e := smoothEdge(v[0], v[2], faces[0], faces[1])
	normals := Normals(faces[:1], []*scene.Edge{e})
	assert.Len(t, normals, 1)
	for _, n := range normals[0] {
		assertVec(t, faces[0].Normal, n)
	}
}

func TestNormalsSkipNonManifold(t *testing.T) {
	v, faces := fan()
	e := smoothEdge(v[0], v[2], faces[0], faces[1], faces[2])
	normals := Normals(faces, []*scene.Edge{e})
	assertVec(t, faces[0].Normal, normals[0][0])
}
