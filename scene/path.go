package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// PathPoints walks the edges of an animation path group starting at its
// first start edge and returns the visited positions mapped by the group
// transform. Nil when the group has no start edge.
func PathPoints(g *Group) []mgl64.Vec3 {
	_, _, _, edges := Split(g.Entities)

	var current *Edge
	for _, e := range edges {
		if e.StartEdge {
			current = e
			break
		}
	}
	if current == nil {
		return nil
	}

	visited := map[*Edge]bool{current: true}
	vertex := current.Vertices[0]
	points := []mgl64.Vec3{vertex.Position}

	for current != nil {
		vertex = current.Other(vertex)
		points = append(points, vertex.Position)

		var next *Edge
		for _, e := range vertex.Edges() {
			if e == current || e.StartEdge || visited[e] {
				continue
			}
			next = e
			break
		}
		if next != nil {
			visited[next] = true
		}
		current = next
	}

	for i, p := range points {
		points[i] = mgl64.TransformCoordinate(p, g.Transform)
	}
	return points
}
