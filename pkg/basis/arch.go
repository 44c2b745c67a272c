package basis

import (
	"github.com/chazu/caplet/pkg/panel"
	"github.com/golang/geo/r1"
)

// ArchSource selects the panels arches grow from.
type ArchSource int8

const (
	// ArchFromProjections grows arches from flat projections.
	ArchFromProjections ArchSource = iota
	// ArchFromSupports grows arches from the flat supports instead.
	ArchFromSupports
)

func (s ArchSource) String() string {
	if s == ArchFromSupports {
		return "supports"
	}
	return "projections"
}

// GenerateArch extends every source panel by two decaying arches of
// length archLength per applicable in-plane axis: y arches for x and z
// normals, x arches for y and z normals. Each arch is clipped against the
// supports and only the clipped pieces are kept, right after their source.
// With ArchFromProjections nothing happens unless the bucket holds a
// projection.
func GenerateArch(b *panel.Bucket, archLength float64, source ArchSource) {
	first := b.FirstProjection()
	start, stop := first, panel.NoHandle
	if source == ArchFromSupports {
		start, stop = b.Front(), first
	}
	if start == panel.NoHandle {
		return
	}
	for each := start; each != stop; each = b.Next(each) {
		p := b.At(each)
		if p.Shape.Type != panel.ShapeFlat {
			continue
		}
		dist := p.Shape.Distance
		if source == ArchFromSupports {
			dist = archLength
		}
		insertPos := b.Next(each)
		ax := p.Axis()
		if ax == 0 || ax == 2 {
			growArches(b, p, 1, panel.DecayY, archLength, dist, first, insertPos)
		}
		if ax == 1 || ax == 2 {
			growArches(b, p, 0, panel.DecayX, archLength, dist, first, insertPos)
		}
	}
}

// growArches inserts the clipped lower then upper arch of p along axis.
func growArches(b *panel.Bucket, p panel.Panel, axis int, decay panel.DecayAxis, length, dist float64, supportsEnd, insertPos panel.Handle) {
	span := p.Span(axis)
	arches := [2]struct {
		iv   r1.Interval
		dist float64
	}{
		{r1.Interval{Lo: span.Lo - length, Hi: span.Lo}, -dist},
		{r1.Interval{Lo: span.Hi, Hi: span.Hi + length}, dist},
	}
	for _, a := range arches {
		arch := p
		arch.SetSpan(axis, a.iv)
		arch.Shape = panel.Shape{Type: panel.ShapeArch, Decay: decay, Distance: a.dist}
		for h := b.Front(); h != supportsEnd; h = b.Next(h) {
			if clipped := arch.IntersectArchOnFlat(b.At(h)); !clipped.IsEmpty() {
				b.InsertBefore(insertPos, clipped)
			}
		}
	}
}
