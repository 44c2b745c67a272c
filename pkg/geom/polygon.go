package geom

import (
	"math"

	gogeom "github.com/twpayne/go-geom"
)

// Polygon is a closed ring of grid points. The closing vertex is implicit:
// the last point connects back to the first.
type Polygon []Point

// Open drops a trailing vertex that repeats the first one.
func (p Polygon) Open() Polygon {
	if len(p) > 1 && p[0].SameXY(p[len(p)-1]) {
		return p[:len(p)-1]
	}
	return p
}

// Clone returns an independent copy of p.
func (p Polygon) Clone() Polygon {
	out := make(Polygon, len(p))
	copy(out, p)
	return out
}

// IsManhattan reports whether p has at least four vertices, an even vertex
// count, no zero-length edge and edges that alternate between horizontal and
// vertical, closing edge included.
func (p Polygon) IsManhattan() bool {
	n := len(p)
	if n < 4 || n%2 != 0 {
		return false
	}
	prevVertical := false
	for i := 0; i < n; i++ {
		a, b := p[i], p[(i+1)%n]
		vertical := a.X == b.X
		horizontal := a.Y == b.Y
		if vertical == horizontal {
			// Either zero length or diagonal.
			return false
		}
		if i > 0 && vertical == prevVertical {
			return false
		}
		prevVertical = vertical
	}
	return true
}

// Area returns the enclosed area, independent of winding.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	flat := make([]float64, 0, 2*(len(p)+1))
	for _, pt := range p {
		flat = append(flat, float64(pt.X), float64(pt.Y))
	}
	flat = append(flat, float64(p[0].X), float64(p[0].Y))
	poly := gogeom.NewPolygonFlat(gogeom.XY, flat, []int{len(flat)})
	return math.Abs(poly.Area())
}

// Bounds returns the flat bounding rectangle of p.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	r := Rect{X1: p[0].X, X2: p[0].X, Y1: p[0].Y, Y2: p[0].Y}
	for _, pt := range p[1:] {
		r.X1 = min(r.X1, pt.X)
		r.X2 = max(r.X2, pt.X)
		r.Y1 = min(r.Y1, pt.Y)
		r.Y2 = max(r.Y2, pt.Y)
	}
	return r
}

// Contains reports whether (x, y) lies inside p or on its boundary.
func (p Polygon) Contains(x, y float64) bool {
	n := len(p)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		ax, ay := float64(p[j].X), float64(p[j].Y)
		bx, by := float64(p[i].X), float64(p[i].Y)
		if onSegment(ax, ay, bx, by, x, y) {
			return true
		}
		if (ay > y) != (by > y) && x < (bx-ax)*(y-ay)/(by-ay)+ax {
			inside = !inside
		}
	}
	return inside
}

func onSegment(ax, ay, bx, by, x, y float64) bool {
	if ax == bx {
		return x == ax && y >= math.Min(ay, by) && y <= math.Max(ay, by)
	}
	if ay == by {
		return y == ay && x >= math.Min(ax, bx) && x <= math.Max(ax, bx)
	}
	return false
}

// RectFromPolygon converts a four point ring, or a five point ring closed by
// a duplicate, into a flat rectangle.
func RectFromPolygon(p Polygon) (Rect, error) {
	if len(p) < 4 || len(p) > 5 {
		return Rect{}, ErrShapeTransform
	}
	r := p.Bounds()
	r.Normal = NormalFlat
	return r, nil
}
