package shapes

import "math"

// flatBottom is the start angle that puts an edge of a regular n-gon
// horizontal at the bottom (screen space, y down).
func flatBottom(n int) float64 {
	return math.Pi/2 + math.Pi/float64(n)
}

func regularPolygon(n int, r, start float64) []Point {
	if n < 3 {
		return nil
	}
	out := make([]Point, n)
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(start + step*float64(i))
		out[i] = Point{X: r * cos, Y: r * sin}
	}
	return out
}

func ellipsePoints(rx, ry float64, n int) []Point {
	if n < 3 {
		n = 3
	}
	out := make([]Point, n)
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(step * float64(i))
		out[i] = Point{X: rx * cos, Y: ry * sin}
	}
	return out
}

func boxPoints(w, h float64) []Point {
	hw, hh := w/2, h/2
	return []Point{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
}

func inBox(w, h, x, y float64) bool {
	return math.Abs(x) <= w/2 && math.Abs(y) <= h/2
}

// starPoints alternates outer and inner vertices starting with a tip pointing up.
func starPoints(outer, inner float64) []Point {
	const tips = 5
	out := make([]Point, 0, tips*2)
	step := math.Pi / tips
	start := -math.Pi / 2
	for i := 0; i < tips*2; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		sin, cos := math.Sincos(start + step*float64(i))
		out = append(out, Point{X: r * cos, Y: r * sin})
	}
	return out
}

// DefaultHull is the triangle used when a vertex hull is degenerate.
func DefaultHull(radius float64) []Point {
	if radius <= 0 {
		radius = 1
	}
	return regularPolygon(3, radius, flatBottom(3))
}

// polygonArea is the shoelace formula; winding does not matter.
func polygonArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

func maxDistance(pts []Point) float64 {
	var m float64
	for _, p := range pts {
		if d := math.Hypot(p.X, p.Y); d > m {
			m = d
		}
	}
	return m
}

// pointInPolygon is an even-odd crossing test, valid for concave outlines.
func pointInPolygon(pts []Point, x, y float64) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > y) != (b.Y > y) {
			cross := (b.X-a.X)*(y-a.Y)/(b.Y-a.Y) + a.X
			if x < cross {
				inside = !inside
			}
		}
	}
	return inside
}

// ToLocal maps a world point into the frame of a node at (x, y) rotated by angle.
func ToLocal(px, py, x, y, angle float64) (float64, float64) {
	dx, dy := px-x, py-y
	sin, cos := math.Sincos(-angle)
	return dx*cos - dy*sin, dx*sin + dy*cos
}
