// Package basis turns flat conductor panels into instantiable basis
// functions: projections of facing conductors onto each support, pruned and
// merged, plus decaying arches along the projection edges.
package basis

import (
	"math"

	"github.com/chazu/caplet/pkg/panel"
)

// facing returns the plane gap between src and t when t lies in front of
// src, looking opposite ways, strictly closer than maxDistance.
func facing(src, t panel.Panel, maxDistance float64) (float64, bool) {
	ax := src.Axis()
	if ax < 0 || ax != t.Axis() || src.Sign() == t.Sign() {
		return 0, false
	}
	gap := (t.Plane() - src.Plane()) * src.Sign()
	if gap <= 0 || gap >= maxDistance {
		return 0, false
	}
	return math.Abs(t.Plane() - src.Plane()), true
}

// InsertProjections projects src onto every support of target it faces
// within maxDistance. The projections are appended in support order and
// their handles returned.
func InsertProjections(target *panel.Bucket, src panel.Panel, maxDistance float64) []panel.Handle {
	var out []panel.Handle
	for _, t := range target.Supports() {
		d, ok := facing(src, t, maxDistance)
		if !ok || !t.OverlapsProjection(src) {
			continue
		}
		p := t.IntersectProjection(src)
		p.Shape.Distance = d
		out = append(out, target.PushBack(p))
	}
	return out
}

// AbsorbCommonSupport erases every panel equal to an earlier one.
func AbsorbCommonSupport(b *panel.Bucket) {
	for each := b.Front(); each != panel.NoHandle; each = b.Next(each) {
		e := b.At(each)
		for after := b.Next(each); after != panel.NoHandle; {
			if b.At(after).Equal(e) {
				after = b.Erase(after)
				continue
			}
			after = b.Next(after)
		}
	}
}
