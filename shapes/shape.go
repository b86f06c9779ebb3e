package shapes

import (
	"image/color"
	"math"
)

const (
	// DefaultEllipseSegments is the ellipse hull vertex count on wide viewports.
	DefaultEllipseSegments = 20

	// outlineSegments is how finely circles and ellipses are sampled for drawing.
	outlineSegments = 48

	rectangleAspect = 0.5
	ellipseAspect   = 0.6
	starArea        = 0.7
	starInnerRatio  = 0.5
	irregularScale  = 1.15
)

// basePentagon is the unit vertex list behind every irregular polygon.
var basePentagon = []Point{
	{X: 0, Y: -1},
	{X: 0.95, Y: -0.35},
	{X: 0.6, Y: 0.8},
	{X: -0.55, Y: 0.85},
	{X: -0.9, Y: -0.3},
}

// Point is a 2D coordinate in pixels.
type Point struct {
	X float64
	Y float64
}

// Shape is one drawable, simulated geometric shape. Vertex data is in
// shape-local coordinates centred on (X, Y), y pointing down.
type Shape struct {
	Kind  Kind
	X     float64
	Y     float64
	Size  float64
	Color color.NRGBA

	// Vertices holds the irregular polygon descriptor.
	Vertices []Point
	// HullSegments is the ellipse hull vertex count.
	HullSegments int
}

// New builds a shape of the given kind with its kind-specific descriptor filled in.
func New(kind Kind, x, y, size float64, c color.NRGBA) *Shape {
	s := &Shape{
		Kind:         kind,
		X:            x,
		Y:            y,
		Size:         size,
		Color:        c,
		HullSegments: DefaultEllipseSegments,
	}
	if kind == KindIrregular {
		s.Vertices = IrregularVertices(size)
	}
	return s
}

// IrregularVertices scales the base pentagon for a shape of the given size.
func IrregularVertices(size float64) []Point {
	k := irregularScale * size / 2
	out := make([]Point, len(basePentagon))
	for i, p := range basePentagon {
		out[i] = Point{X: p.X * k, Y: p.Y * k}
	}
	return out
}

// Area returns the shape's area in px².
func (s *Shape) Area() float64 {
	if s == nil || !s.Kind.Valid() {
		return 0
	}
	return kindTable[s.Kind].area(s)
}

// BoundingRadius returns the radius used for spawn offsets and hull sizing.
func (s *Shape) BoundingRadius() float64 {
	if s == nil || !s.Kind.Valid() {
		return 0
	}
	return kindTable[s.Kind].radius(s)
}

// Outline returns the drawn outline as a closed polygon in local coordinates.
func (s *Shape) Outline() []Point {
	if s == nil || !s.Kind.Valid() {
		return nil
	}
	return kindTable[s.Kind].outline(s)
}

// Hull returns the collision geometry the physics body is built from.
func (s *Shape) Hull() Hull {
	if s == nil || !s.Kind.Valid() {
		return Hull{}
	}
	return kindTable[s.Kind].hull(s)
}

// ContainsLocal reports whether the local point lies inside the drawn outline.
func (s *Shape) ContainsLocal(x, y float64) bool {
	if s == nil || !s.Kind.Valid() {
		return false
	}
	return kindTable[s.Kind].contains(s, x, y)
}

// HullKind selects the physics primitive for a hull.
type HullKind int

const (
	HullCircle HullKind = iota
	HullBox
	HullPolygon
)

// Hull describes a physics approximation in local coordinates.
type Hull struct {
	Kind     HullKind
	Radius   float64
	Width    float64
	Height   float64
	Vertices []Point
}

type kindOps struct {
	area     func(s *Shape) float64
	radius   func(s *Shape) float64
	outline  func(s *Shape) []Point
	hull     func(s *Shape) Hull
	contains func(s *Shape, x, y float64) bool
}

// kindTable is the per-variant dispatch table. Adding a variant means adding a row.
var kindTable = [kindCount]kindOps{
	KindCircle: {
		area:    func(s *Shape) float64 { return math.Pi * half(s) * half(s) },
		radius:  half,
		outline: func(s *Shape) []Point { return ellipsePoints(half(s), half(s), outlineSegments) },
		hull:    func(s *Shape) Hull { return Hull{Kind: HullCircle, Radius: half(s)} },
		contains: func(s *Shape, x, y float64) bool {
			r := half(s)
			return x*x+y*y <= r*r
		},
	},
	KindSquare: {
		area:     func(s *Shape) float64 { return s.Size * s.Size },
		radius:   func(s *Shape) float64 { return math.Hypot(s.Size, s.Size) / 2 },
		outline:  func(s *Shape) []Point { return boxPoints(s.Size, s.Size) },
		hull:     func(s *Shape) Hull { return Hull{Kind: HullBox, Width: s.Size, Height: s.Size} },
		contains: func(s *Shape, x, y float64) bool { return inBox(s.Size, s.Size, x, y) },
	},
	KindRectangle: {
		area:    func(s *Shape) float64 { return s.Size * s.Size * rectangleAspect },
		radius:  func(s *Shape) float64 { return math.Hypot(s.Size, s.Size*rectangleAspect) / 2 },
		outline: func(s *Shape) []Point { return boxPoints(s.Size, s.Size*rectangleAspect) },
		hull: func(s *Shape) Hull {
			return Hull{Kind: HullBox, Width: s.Size, Height: s.Size * rectangleAspect}
		},
		contains: func(s *Shape, x, y float64) bool { return inBox(s.Size, s.Size*rectangleAspect, x, y) },
	},
	KindTriangle: regularOps(3, func(s float64) float64 { return math.Sqrt(3) / 4 * s * s }),
	KindPentagon: regularOps(5, func(s float64) float64 { return math.Sqrt(5*(5+2*math.Sqrt(5))) / 4 * s * s }),
	KindHexagon:  regularOps(6, func(s float64) float64 { return 3 * math.Sqrt(3) / 2 * s * s }),
	KindEllipse: {
		area: func(s *Shape) float64 {
			rx, ry := ellipseRadii(s)
			return math.Pi * rx * ry
		},
		radius: func(s *Shape) float64 {
			rx, ry := ellipseRadii(s)
			return math.Max(rx, ry)
		},
		outline: func(s *Shape) []Point {
			rx, ry := ellipseRadii(s)
			return ellipsePoints(rx, ry, outlineSegments)
		},
		hull: func(s *Shape) Hull {
			rx, ry := ellipseRadii(s)
			n := s.HullSegments
			if n <= 0 {
				n = DefaultEllipseSegments
			}
			return Hull{Kind: HullPolygon, Vertices: ellipsePoints(rx, ry, n)}
		},
		contains: func(s *Shape, x, y float64) bool {
			rx, ry := ellipseRadii(s)
			if rx <= 0 || ry <= 0 {
				return false
			}
			nx, ny := x/rx, y/ry
			return nx*nx+ny*ny <= 1
		},
	},
	KindStar: {
		area:    func(s *Shape) float64 { return math.Pi * half(s) * half(s) * starArea },
		radius:  half,
		outline: func(s *Shape) []Point { return starPoints(half(s), half(s)*starInnerRatio) },
		// The hull is a regular pentagon, not the star outline.
		hull: func(s *Shape) Hull {
			return Hull{Kind: HullPolygon, Vertices: regularPolygon(5, half(s), flatBottom(5))}
		},
		contains: func(s *Shape, x, y float64) bool {
			return pointInPolygon(starPoints(half(s), half(s)*starInnerRatio), x, y)
		},
	},
	KindIrregular: {
		area:   func(s *Shape) float64 { return polygonArea(s.Vertices) },
		radius: func(s *Shape) float64 { return maxDistance(s.Vertices) },
		outline: func(s *Shape) []Point {
			return append([]Point(nil), s.Vertices...)
		},
		hull: func(s *Shape) Hull {
			return Hull{Kind: HullPolygon, Vertices: append([]Point(nil), s.Vertices...)}
		},
		contains: func(s *Shape, x, y float64) bool { return pointInPolygon(s.Vertices, x, y) },
	},
}

// regularOps builds the table row for a regular n-gon of circumradius size/2
// resting on a flat edge.
func regularOps(n int, area func(size float64) float64) kindOps {
	points := func(s *Shape) []Point { return regularPolygon(n, half(s), flatBottom(n)) }
	return kindOps{
		area:    func(s *Shape) float64 { return area(s.Size) },
		radius:  half,
		outline: points,
		hull:    func(s *Shape) Hull { return Hull{Kind: HullPolygon, Vertices: points(s)} },
		contains: func(s *Shape, x, y float64) bool {
			return pointInPolygon(points(s), x, y)
		},
	}
}

func half(s *Shape) float64 {
	return s.Size / 2
}

func ellipseRadii(s *Shape) (float64, float64) {
	rx := s.Size / 2
	return rx, rx * ellipseAspect
}
