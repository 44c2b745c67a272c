package basis

import (
	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/panel"
)

// RemoveBadProjections drops projections until no loosely merged group of
// them covers a support almost entirely. Each round removes the farthest
// component of the first offending group. A group with no component of
// positive distance is reported and left alone.
func RemoveBadProjections(b *panel.Bucket, margin float64, rep *diag.Report) {
	warned := make(map[panel.Panel]bool)
	for removeFarthest(b, margin, rep, warned) {
	}
}

func removeFarthest(b *panel.Bucket, margin float64, rep *diag.Report, warned map[panel.Panel]bool) bool {
	first := b.FirstProjection()
	if first == panel.NoHandle {
		return false
	}
	merged := panel.NewBucket()
	for h := first; h != panel.NoHandle; h = b.Next(h) {
		merged.PushBack(b.At(h))
	}
	MergeProjectionsLoose(merged)

	supports := b.Supports()
	for _, m := range merged.All() {
		for _, s := range supports {
			if !m.IsCoincidental(s, margin) {
				continue
			}
			farthest, best := panel.NoHandle, 0.0
			for h := first; h != panel.NoHandle; h = b.Next(h) {
				c := b.At(h)
				if m.Contains(c) && c.Shape.Distance > best {
					farthest, best = h, c.Shape.Distance
				}
			}
			if farthest == panel.NoHandle {
				if !warned[m] {
					warned[m] = true
					rep.Warn(diag.CodeCoincidentNoOwner, "merged projection %s covers support %s without a component", m, s)
				}
				continue
			}
			b.Erase(farthest)
			return true
		}
	}
	return false
}
