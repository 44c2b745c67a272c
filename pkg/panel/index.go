package panel

import (
	"sort"

	"github.com/chazu/caplet/pkg/solid"
	"github.com/dhconnelly/rtreego"
)

// Source names one support panel of a conductor list.
type Source struct {
	Cond  int
	Layer int
	Side  solid.Side
	Seq   int
	Panel Panel
}

type indexed struct {
	src  Source
	rect rtreego.Rect
}

func (e *indexed) Bounds() rtreego.Rect { return e.rect }

// SupportIndex is an R-tree over the support panels of the metal layers of
// a conductor list. It is read-only after construction.
type SupportIndex struct {
	tree *rtreego.Rtree
	n    int
}

// minExtent pads the flat axis of a panel so the tree accepts it.
const minExtent = 1e-21

func boxOf(lo, hi [3]float64) rtreego.Rect {
	lengths := make([]float64, 3)
	for i := range lengths {
		lengths[i] = max(hi[i]-lo[i], minExtent)
	}
	r, err := rtreego.NewRect(rtreego.Point{lo[0], lo[1], lo[2]}, lengths)
	if err != nil {
		panic(err)
	}
	return r
}

func corners(p Panel) (lo, hi [3]float64) {
	return [3]float64{p.Min.X, p.Min.Y, p.Min.Z}, [3]float64{p.Max.X, p.Max.Y, p.Max.Z}
}

// NewSupportIndex indexes every non-projection panel of the metal layers.
func NewSupportIndex(conds []*ConductorFP) *SupportIndex {
	ix := &SupportIndex{tree: rtreego.NewTree(3, 25, 50)}
	for ci, c := range conds {
		for l := 0; l < c.NumMetal; l++ {
			for s := range c.Layers[l] {
				seq := 0
				for _, p := range c.Layers[l][s].All() {
					if p.Shape.Projection {
						continue
					}
					lo, hi := corners(p)
					ix.tree.Insert(&indexed{
						src:  Source{Cond: ci, Layer: l, Side: solid.Side(s), Seq: seq, Panel: p},
						rect: boxOf(lo, hi),
					})
					seq++
					ix.n++
				}
			}
		}
	}
	return ix
}

// Len returns the number of indexed panels.
func (ix *SupportIndex) Len() int { return ix.n }

// Near returns the indexed panels on side s that intersect the footprint of
// targets grown by distance along their normal axis, skipping conductor
// skip. Results are ordered by conductor, layer and bucket position.
func (ix *SupportIndex) Near(targets []Panel, distance float64, s solid.Side, skip int) []Source {
	if len(targets) == 0 || ix.n == 0 {
		return nil
	}
	lo, hi := corners(targets[0])
	for _, t := range targets[1:] {
		tl, th := corners(t)
		for i := range lo {
			lo[i] = min(lo[i], tl[i])
			hi[i] = max(hi[i], th[i])
		}
	}
	axis := targets[0].Axis()
	lo[axis] -= distance
	hi[axis] += distance

	var out []Source
	for _, sp := range ix.tree.SearchIntersect(boxOf(lo, hi)) {
		src := sp.(*indexed).src
		if src.Cond == skip || src.Side != s {
			continue
		}
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Cond != b.Cond {
			return a.Cond < b.Cond
		}
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		return a.Seq < b.Seq
	})
	return out
}
