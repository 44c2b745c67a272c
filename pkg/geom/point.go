package geom

import "fmt"

// EdgeDir is the inward direction of a polygon edge. It only has meaning
// while a polygon is being decomposed.
type EdgeDir int8

const (
	EdgeNone   EdgeDir = 0
	EdgeXPlus  EdgeDir = 1
	EdgeXMinus EdgeDir = -1
	EdgeYPlus  EdgeDir = 2
	EdgeYMinus EdgeDir = -2
)

// Opposite returns the direction pointing the other way.
func (d EdgeDir) Opposite() EdgeDir { return -d }

// IsX reports whether d lies on the x axis.
func (d EdgeDir) IsX() bool { return d == EdgeXPlus || d == EdgeXMinus }

// Sign returns +1 or -1 along the direction's axis, 0 for EdgeNone.
func (d EdgeDir) Sign() int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	}
	return 0
}

func (d EdgeDir) String() string {
	switch d {
	case EdgeXPlus:
		return "+x"
	case EdgeXMinus:
		return "-x"
	case EdgeYPlus:
		return "+y"
	case EdgeYMinus:
		return "-y"
	case EdgeNone:
		return "none"
	default:
		return fmt.Sprintf("EdgeDir(%d)", int(d))
	}
}

// Point is a grid coordinate. Dir and Len describe the edge that starts at
// the point and are filled in by the decomposer.
type Point struct {
	X, Y, Z int
	Dir     EdgeDir
	Len     int
}

// Pt is shorthand for a planar point.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// SameXY reports whether p and q sit on the same planar location.
func (p Point) SameXY(q Point) bool { return p.X == q.X && p.Y == q.Y }

// dirTo returns the direction of travel from p to q. The two points must
// share one coordinate.
func (p Point) dirTo(q Point) EdgeDir {
	if p.X == q.X {
		if q.Y > p.Y {
			return EdgeYPlus
		}
		return EdgeYMinus
	}
	if q.X > p.X {
		return EdgeXPlus
	}
	return EdgeXMinus
}

// manhattanDist is |dx| + |dy|.
func (p Point) manhattanDist(q Point) int {
	return abs(q.X-p.X) + abs(q.Y-p.Y)
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func sign(a int) int {
	switch {
	case a > 0:
		return 1
	case a < 0:
		return -1
	}
	return 0
}
