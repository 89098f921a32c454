// Package triangulate splits simple planar polygons into triangles by ear
// clipping after rotating their plane onto XY.
package triangulate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")

// minAxisLength is the shortest rotation axis used as is; shorter axes mean
// the normal is already (anti)parallel to Z.
const minAxisLength = 0.01

// onDiagonal is the doubled triangle area, relative to the squared ring
// extent, below which a vertex counts as lying on an ear's boundary.
const onDiagonal = 1e-9

// Polygon triangulates the ring points lying in the plane with the given
// normal. Triangles index into points and keep the ring winding. A ring of
// n points always yields n-2 triangles.
func Polygon(points []mgl64.Vec3, normal mgl64.Vec3) ([][3]int, error) {
	n := len(points)
	if n < 3 {
		return nil, errors.Wrapf(ErrTooFewVertices, "got %d", n)
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}, nil
	}

	c := newClipper(project(points, normal))
	return c.clip(), nil
}

// project rotates points so that normal maps onto +Z and drops Z.
func project(points []mgl64.Vec3, normal mgl64.Vec3) []mgl64.Vec2 {
	z := mgl64.Vec3{0, 0, 1}
	if l := normal.Len(); l > 0 {
		normal = normal.Mul(1 / l)
	} else {
		normal = z
	}

	angle := math.Acos(mgl64.Clamp(normal.Dot(z), -1, 1))
	axis := normal.Cross(z)
	if axis.Len() < minAxisLength {
		axis = mgl64.Vec3{1, 0, 0}
	}
	rotation := mgl64.HomogRotate3D(angle, axis.Normalize()).Mat3()

	flat := make([]mgl64.Vec2, len(points))
	for i, p := range points {
		flat[i] = rotation.Mul3x1(p).Vec2()
	}
	return flat
}

func ccw(a, b, c mgl64.Vec2) float64 {
	return a[0]*(b[1]-c[1]) - b[0]*(a[1]-c[1]) + c[0]*(a[1]-b[1])
}

type clipper struct {
	points []mgl64.Vec2
	ring   []int
	// orientation is +1 for counter-clockwise rings, -1 otherwise
	orientation float64
	concave     map[int]bool
	// tolerance of the containment test, scaled to the ring size
	eps float64
}

func newClipper(points []mgl64.Vec2) *clipper {
	c := &clipper{
		points:      points,
		ring:        make([]int, len(points)),
		orientation: 1,
		concave:     make(map[int]bool),
	}
	for i := range c.ring {
		c.ring[i] = i
	}

	lo, hi := points[0], points[0]
	for _, p := range points {
		lo = mgl64.Vec2{math.Min(lo[0], p[0]), math.Min(lo[1], p[1])}
		hi = mgl64.Vec2{math.Max(hi[0], p[0]), math.Max(hi[1], p[1])}
	}
	extent := hi.Sub(lo)
	c.eps = onDiagonal * extent.Dot(extent)

	var area float64
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		area += a[0]*b[1] - b[0]*a[1]
	}
	if area < 0 {
		c.orientation = -1
	}

	for pos := range c.ring {
		if !c.convex(pos) {
			c.concave[c.ring[pos]] = true
		}
	}
	return c
}

func (c *clipper) at(pos int) int {
	l := len(c.ring)
	return c.ring[((pos%l)+l)%l]
}

func (c *clipper) turn(a, b, p int) float64 {
	return c.orientation * ccw(c.points[a], c.points[b], c.points[p])
}

func (c *clipper) convex(pos int) bool {
	return c.turn(c.at(pos-1), c.at(pos), c.at(pos+1)) > 0
}

func (c *clipper) ear(pos int) bool {
	if !c.convex(pos) {
		return false
	}
	a, b, d := c.at(pos-1), c.at(pos), c.at(pos+1)
	for v := range c.concave {
		if c.corner(v, a, b, d) {
			continue
		}
		// a concave vertex on the diagonal blocks the ear too
		if c.turn(a, b, v) >= -c.eps && c.turn(b, d, v) >= -c.eps && c.turn(d, a, v) >= -c.eps {
			return false
		}
	}
	return true
}

// corner reports whether v is one of the given ring vertices or a duplicate
// of one of their points.
func (c *clipper) corner(v int, corners ...int) bool {
	for _, k := range corners {
		if v == k || c.points[v] == c.points[k] {
			return true
		}
	}
	return false
}

func (c *clipper) find(start int) int {
	l := len(c.ring)
	for k := 0; k < l; k++ {
		if pos := (start + k) % l; c.ear(pos) {
			return pos
		}
	}
	// rings that are not simple have no ear; take any convex corner so
	// that the triangle count stays n-2
	for k := 0; k < l; k++ {
		if pos := (start + k) % l; c.convex(pos) {
			return pos
		}
	}
	return start % l
}

func (c *clipper) clip() [][3]int {
	triangles := make([][3]int, 0, len(c.ring)-2)
	start := 0
	for len(c.ring) > 3 {
		pos := c.find(start)
		triangles = append(triangles, [3]int{c.at(pos - 1), c.at(pos), c.at(pos + 1)})

		delete(c.concave, c.ring[pos])
		c.ring = append(c.ring[:pos], c.ring[pos+1:]...)

		l := len(c.ring)
		prev, next := (pos-1+l)%l, pos%l
		for _, p := range [2]int{prev, next} {
			if v := c.ring[p]; c.concave[v] && c.convex(p) {
				delete(c.concave, v)
			}
		}
		start = next
	}
	return append(triangles, [3]int{c.ring[0], c.ring[1], c.ring[2]})
}
