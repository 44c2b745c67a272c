package basis

import (
	"math"

	"github.com/chazu/caplet/pkg/panel"
	"github.com/golang/geo/r1"
)

// absorbFunc decides whether each swallows after, growing each in place
// when the two coalesce.
type absorbFunc func(each *panel.Panel, after panel.Panel) bool

// MergeProjections coalesces the projections of a single-sided bucket.
// A projection contained in a nearer one is dropped. Two projections on the
// same plane sharing a full edge merge when their distances differ by less
// than mergeDistance.
func MergeProjections(b *panel.Bucket, mergeDistance float64) {
	mergeWith(b, func(each *panel.Panel, after panel.Panel) bool {
		if each.Contains(after) && each.Shape.Distance <= after.Shape.Distance {
			return true
		}
		if each.Normal != after.Normal {
			return false
		}
		if math.Abs(each.Shape.Distance-after.Shape.Distance) >= mergeDistance {
			return false
		}
		return coalesce(each, after)
	})
}

// MergeProjectionsLoose is MergeProjections without any regard for the
// projection distance. It only serves the coincidence test of
// RemoveBadProjections, on a scratch copy.
func MergeProjectionsLoose(b *panel.Bucket) {
	mergeWith(b, func(each *panel.Panel, after panel.Panel) bool {
		if each.Contains(after) {
			return true
		}
		return coalesce(each, after)
	})
}

// coalesce grows each over after. z panels need one matching in-plane
// range; x and y panels merge along their horizontal edge only when their
// z ranges match.
func coalesce(each *panel.Panel, after panel.Panel) bool {
	switch each.Axis() {
	case 2:
		switch {
		case each.Span(0) == after.Span(0):
			each.SetSpan(1, union(each.Span(1), after.Span(1)))
		case each.Span(1) == after.Span(1):
			each.SetSpan(0, union(each.Span(0), after.Span(0)))
		default:
			return false
		}
	case 0, 1:
		if each.Span(2) != after.Span(2) {
			return false
		}
		h := 1 - each.Axis()
		each.SetSpan(h, union(each.Span(h), after.Span(h)))
	default:
		return false
	}
	return true
}

func union(a, b r1.Interval) r1.Interval {
	return r1.Interval{Lo: min(a.Lo, b.Lo), Hi: max(a.Hi, b.Hi)}
}

// mergeWith runs the pairwise scan over the projections of b. After every
// removal the inner scan starts over from the first projection.
func mergeWith(b *panel.Bucket, absorb absorbFunc) {
	first := b.FirstProjection()
	for each := first; each != panel.NoHandle; each = b.Next(each) {
		if !b.At(each).Shape.Projection {
			continue
		}
		for after := b.FirstProjection(); after != panel.NoHandle; {
			a := b.At(after)
			if after == each || !a.Shape.Projection || !b.At(each).OverlapsOrEdgeNeighbouring(a) {
				after = b.Next(after)
				continue
			}
			if !absorb(b.Ref(each), a) {
				after = b.Next(after)
				continue
			}
			b.Erase(after)
			after = b.FirstProjection()
		}
	}
}
