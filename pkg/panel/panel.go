// Package panel is the floating-point side of the pipeline: unit-scaled
// panels with a shape descriptor, the index-stable Bucket that holds them,
// per-conductor bucket tables, uniform discretization and the support index
// used to find facing panels.
package panel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/golang/geo/r1"
)

// ShapeType tells flat panels from decaying extensions.
type ShapeType int8

const (
	ShapeFlat ShapeType = iota
	ShapeArch
	ShapeSide
)

func (t ShapeType) String() string {
	switch t {
	case ShapeFlat:
		return "flat"
	case ShapeArch:
		return "arch"
	case ShapeSide:
		return "side"
	}
	return fmt.Sprintf("ShapeType(%d)", int(t))
}

// DecayAxis is the axis along which a shape decays. The values are the
// record codes of the .caplet format.
type DecayAxis int8

const (
	DecayX    DecayAxis = 0
	DecayY    DecayAxis = 1
	DecayZ    DecayAxis = 2
	DecayNone DecayAxis = 3
)

func (d DecayAxis) String() string {
	switch d {
	case DecayX:
		return "x"
	case DecayY:
		return "y"
	case DecayZ:
		return "z"
	case DecayNone:
		return "none"
	}
	return fmt.Sprintf("DecayAxis(%d)", int(d))
}

// Shape describes how a panel's basis function varies. Distance is signed
// for arches. Projection marks panels synthesized from a facing conductor.
type Shape struct {
	Type       ShapeType
	Decay      DecayAxis
	Distance   float64
	Projection bool
}

// Panel is an axis-aligned rectangle in 3-D with exactly one nonzero
// normal component. A zero normal marks the empty panel.
type Panel struct {
	Normal   v3.Vec
	Min, Max v3.Vec
	Shape    Shape
}

// Empty is the panel returned by failed intersections.
var Empty = Panel{}

func comp(v v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setComp(v *v3.Vec, axis int, x float64) {
	switch axis {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
}

// inPlane returns the two axes spanning the plane normal to axis.
func inPlane(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	}
	return 0, 1
}

// Axis returns the normal axis, or -1 for the empty panel.
func (p Panel) Axis() int {
	switch {
	case p.Normal.X != 0:
		return 0
	case p.Normal.Y != 0:
		return 1
	case p.Normal.Z != 0:
		return 2
	}
	return -1
}

// IsEmpty reports whether p carries no normal.
func (p Panel) IsEmpty() bool { return p.Axis() < 0 }

// Sign is +1 or -1 along the normal axis.
func (p Panel) Sign() float64 {
	if comp(p.Normal, p.Axis()) < 0 {
		return -1
	}
	return 1
}

// Plane is the coordinate of the supporting plane.
func (p Panel) Plane() float64 { return comp(p.Min, p.Axis()) }

// Span returns the extent of p along axis.
func (p Panel) Span(axis int) r1.Interval {
	return r1.Interval{Lo: comp(p.Min, axis), Hi: comp(p.Max, axis)}
}

// SetSpan overwrites the extent of p along axis.
func (p *Panel) SetSpan(axis int, iv r1.Interval) {
	setComp(&p.Min, axis, iv.Lo)
	setComp(&p.Max, axis, iv.Hi)
}

// Area is the product of the two in-plane lengths.
func (p Panel) Area() float64 {
	if p.IsEmpty() {
		return 0
	}
	a, b := inPlane(p.Axis())
	return p.Span(a).Length() * p.Span(b).Length()
}

// Center returns the midpoint of the panel.
func (p Panel) Center() v3.Vec {
	return p.Min.Add(p.Max).MulScalar(0.5)
}

func strict(a, b r1.Interval) bool { return a.Lo < b.Hi && b.Lo < a.Hi }

func closed(a, b r1.Interval) bool { return a.Lo <= b.Hi && b.Lo <= a.Hi }

func sameAxis(p, o Panel) bool {
	ax := p.Axis()
	return ax >= 0 && ax == o.Axis()
}

// OverlapsProjection reports a strictly positive overlap of the two
// footprints when both are projected along their common normal axis.
func (p Panel) OverlapsProjection(o Panel) bool {
	if !sameAxis(p, o) {
		return false
	}
	a, b := inPlane(p.Axis())
	return strict(p.Span(a), o.Span(a)) && strict(p.Span(b), o.Span(b))
}

// Overlaps is OverlapsProjection restricted to panels on the same plane.
func (p Panel) Overlaps(o Panel) bool {
	return sameAxis(p, o) && p.Plane() == o.Plane() && p.OverlapsProjection(o)
}

// OverlapsOrEdgeNeighbouring reports panels on the same plane that overlap
// or share an edge: closed on one in-plane axis, strict on the other.
func (p Panel) OverlapsOrEdgeNeighbouring(o Panel) bool {
	if !sameAxis(p, o) || p.Plane() != o.Plane() {
		return false
	}
	a, b := inPlane(p.Axis())
	pa, pb, oa, ob := p.Span(a), p.Span(b), o.Span(a), o.Span(b)
	return (closed(pa, oa) && strict(pb, ob)) || (strict(pa, oa) && closed(pb, ob))
}

// Contains reports whether o lies within p on the same plane with the same
// signed normal.
func (p Panel) Contains(o Panel) bool {
	if p.IsEmpty() || p.Normal != o.Normal || p.Plane() != o.Plane() {
		return false
	}
	a, b := inPlane(p.Axis())
	return p.Span(a).ContainsInterval(o.Span(a)) && p.Span(b).ContainsInterval(o.Span(b))
}

// Equal compares normal and corners. The shape is ignored.
func (p Panel) Equal(o Panel) bool {
	return p.Normal == o.Normal && p.Min == o.Min && p.Max == o.Max
}

// IsCoincidental reports whether p sits inside support, on the same plane
// with the same normal, with each of its edges within margin times the
// support length of the matching support edge. The margin applies on both
// in-plane axes, so for x and y walls it bounds the z edges as well.
func (p Panel) IsCoincidental(support Panel, margin float64) bool {
	if p.IsEmpty() || p.Normal != support.Normal || p.Plane() != support.Plane() {
		return false
	}
	a, b := inPlane(p.Axis())
	for _, axis := range [2]int{a, b} {
		ps, ss := p.Span(axis), support.Span(axis)
		m := margin * ss.Length()
		if !(ss.Lo <= ps.Lo && ps.Lo <= ss.Lo+m && ss.Hi-m <= ps.Hi && ps.Hi <= ss.Hi) {
			return false
		}
	}
	return true
}

// IntersectProjection projects src onto p: the result keeps p's plane and
// normal, spans the in-plane intersection of the two footprints and is
// marked as a projection. The caller sets the distance.
func (p Panel) IntersectProjection(src Panel) Panel {
	out := Panel{Normal: p.Normal, Min: p.Min, Max: p.Max}
	a, b := inPlane(p.Axis())
	out.SetSpan(a, p.Span(a).Intersection(src.Span(a)))
	out.SetSpan(b, p.Span(b).Intersection(src.Span(b)))
	out.Shape = Shape{Type: ShapeFlat, Decay: DecayNone, Projection: true}
	return out
}

// IntersectArchOnFlat clips the arch p to the flat panel f it extends
// over. It returns Empty unless f is flat, overlaps p, and holds the edge
// the arch decays away from.
func (p Panel) IntersectArchOnFlat(f Panel) Panel {
	if f.Shape.Type != ShapeFlat || !p.Overlaps(f) {
		return Empty
	}
	if d := int(p.Shape.Decay); d <= 2 {
		ps, fs := p.Span(d), f.Span(d)
		switch {
		case p.Shape.Distance > 0 && !(fs.Lo <= ps.Lo && ps.Lo < fs.Hi):
			return Empty
		case p.Shape.Distance < 0 && !(fs.Lo < ps.Hi && ps.Hi <= fs.Hi):
			return Empty
		}
	}
	out := p
	a, b := inPlane(p.Axis())
	out.SetSpan(a, p.Span(a).Intersection(f.Span(a)))
	out.SetSpan(b, p.Span(b).Intersection(f.Span(b)))
	return out
}

func (p Panel) String() string {
	return fmt.Sprintf("n=(%g,%g,%g) [%g,%g]x[%g,%g]x[%g,%g] %s/%s d=%g proj=%t",
		p.Normal.X, p.Normal.Y, p.Normal.Z,
		p.Min.X, p.Max.X, p.Min.Y, p.Max.Y, p.Min.Z, p.Max.Z,
		p.Shape.Type, p.Shape.Decay, p.Shape.Distance, p.Shape.Projection)
}
