package geom

import "fmt"

// Rect is an axis-aligned box on the integer grid that is degenerate in one
// axis. Flat footprints have Z1 == Z2 == 0 and NormalFlat until they are
// extruded.
type Rect struct {
	X1, X2 int
	Y1, Y2 int
	Z1, Z2 int
	Normal Normal
}

// R builds a flat footprint.
func R(x1, y1, x2, y2 int) Rect {
	return Rect{X1: x1, X2: x2, Y1: y1, Y2: y2}
}

// Width is the x extent.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height is the y extent.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Area returns the area on the rectangle's supporting plane, or -1 when the
// box is not planar in any axis.
func (r Rect) Area() int {
	switch {
	case r.Z1 == r.Z2:
		return (r.X2 - r.X1) * (r.Y2 - r.Y1)
	case r.X1 == r.X2:
		return (r.Y2 - r.Y1) * (r.Z2 - r.Z1)
	case r.Y1 == r.Y2:
		return (r.X2 - r.X1) * (r.Z2 - r.Z1)
	}
	return -1
}

// Overlaps reports a strictly positive xy intersection.
func (r Rect) Overlaps(o Rect) bool {
	return r.X1 < o.X2 && o.X1 < r.X2 && r.Y1 < o.Y2 && o.Y1 < r.Y2
}

// Overlaps3D reports whether r and o lie on the same plane and overlap with
// positive area on it.
func (r Rect) Overlaps3D(o Rect) bool {
	switch {
	case r.Z1 == r.Z2 && o.Z1 == o.Z2:
		return r.Z1 == o.Z1 && r.Overlaps(o)
	case r.X1 == r.X2 && o.X1 == o.X2:
		return r.X1 == o.X1 &&
			r.Y1 < o.Y2 && o.Y1 < r.Y2 && r.Z1 < o.Z2 && o.Z1 < r.Z2
	case r.Y1 == r.Y2 && o.Y1 == o.Y2:
		return r.Y1 == o.Y1 &&
			r.X1 < o.X2 && o.X1 < r.X2 && r.Z1 < o.Z2 && o.Z1 < r.Z2
	}
	return false
}

// Touches reports an xy intersection or a shared edge or corner.
func (r Rect) Touches(o Rect) bool {
	return !(r.X2 < o.X1 || r.X1 > o.X2 || r.Y2 < o.Y1 || r.Y1 > o.Y2)
}

// HasCornerInside reports whether any xy corner of r lies strictly inside o.
func (r Rect) HasCornerInside(o Rect) bool {
	for _, x := range [2]int{r.X1, r.X2} {
		for _, y := range [2]int{r.Y1, r.Y2} {
			if o.X1 < x && x < o.X2 && o.Y1 < y && y < o.Y2 {
				return true
			}
		}
	}
	return false
}

// Contains reports whether o lies inside r in xy, boundaries included.
func (r Rect) Contains(o Rect) bool {
	return r.X1 <= o.X1 && o.X2 <= r.X2 && r.Y1 <= o.Y1 && o.Y2 <= r.Y2
}

// Polygon returns the counter-clockwise xy ring of r.
func (r Rect) Polygon() Polygon {
	return Polygon{Pt(r.X1, r.Y1), Pt(r.X2, r.Y1), Pt(r.X2, r.Y2), Pt(r.X1, r.Y2)}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d]x[%d,%d]x[%d,%d]%s", r.X1, r.X2, r.Y1, r.Y2, r.Z1, r.Z2, r.Normal)
}
