// Package smooth computes per-corner vertex normals shared across smooth
// edges.
package smooth

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mogaika/dae_exporter/scene"
)

// disjointSet is a union-find over corner ids with path halving.
type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), size: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds *disjointSet) find(i int) int {
	for ds.parent[i] != i {
		ds.parent[i] = ds.parent[ds.parent[i]]
		i = ds.parent[i]
	}
	return i
}

func (ds *disjointSet) union(a, b int) {
	a, b = ds.find(a), ds.find(b)
	if a == b {
		return
	}
	if ds.size[a] < ds.size[b] {
		a, b = b, a
	}
	ds.parent[b] = a
	ds.size[a] += ds.size[b]
}

// Normals returns, for every face and every boundary vertex of it, the
// vertex normal. Corners joined through smooth edges shared by exactly two
// of the given faces get the area-weighted mean of the distinct faces'
// normals; every other corner keeps its face normal. Edges touching faces
// outside the list are ignored.
func Normals(faces []*scene.Face, edges []*scene.Edge) [][]mgl64.Vec3 {
	faceIndex := make(map[*scene.Face]int, len(faces))
	offsets := make([]int, len(faces)+1)
	for i, f := range faces {
		faceIndex[f] = i
		offsets[i+1] = offsets[i] + len(f.Vertices)
	}

	corners := offsets[len(faces)]
	ds := newDisjointSet(corners)
	grouped := make([]bool, corners)
	owner := make([]int, corners)
	for i := range faces {
		for c := offsets[i]; c < offsets[i+1]; c++ {
			owner[c] = i
		}
	}

	for _, e := range edges {
		if !e.Smooth || len(e.Faces) != 2 {
			continue
		}
		i0, ok0 := faceIndex[e.Faces[0]]
		i1, ok1 := faceIndex[e.Faces[1]]
		if !ok0 || !ok1 {
			continue
		}
		for _, v := range e.Vertices {
			l0, l1 := faces[i0].IndexOf(v), faces[i1].IndexOf(v)
			if l0 < 0 || l1 < 0 {
				continue
			}
			a, b := offsets[i0]+l0, offsets[i1]+l1
			grouped[a], grouped[b] = true, true
			ds.union(a, b)
		}
	}

	type rootFace struct{ root, face int }
	sums := make(map[int]mgl64.Vec3)
	counted := make(map[rootFace]bool)
	for c := 0; c < corners; c++ {
		if !grouped[c] {
			continue
		}
		root := ds.find(c)
		rf := rootFace{root, owner[c]}
		if counted[rf] {
			continue
		}
		counted[rf] = true
		f := faces[owner[c]]
		sums[root] = sums[root].Add(f.Normal.Mul(f.Area))
	}

	normals := make([][]mgl64.Vec3, len(faces))
	for i, f := range faces {
		normals[i] = make([]mgl64.Vec3, len(f.Vertices))
		for l := range f.Vertices {
			c := offsets[i] + l
			normals[i][l] = f.Normal
			if !grouped[c] {
				continue
			}
			if sum := sums[ds.find(c)]; sum.Len() > 1e-12 {
				normals[i][l] = sum.Normalize()
			}
		}
	}
	return normals
}
