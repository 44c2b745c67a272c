package geom

import (
	"github.com/chazu/caplet/pkg/diag"
	"github.com/google/btree"
)

// Merge coalesces rectangles that share a normal and a plane and abut along
// a full side. The input is not modified. After every coalesce the inner
// scan restarts from the first rectangle, so the result is a fixed point:
// merging it again changes nothing. It is not guaranteed to be minimal.
func Merge(rects []Rect) []Rect {
	out := make([]Rect, len(rects))
	copy(out, rects)
	for i := 0; i < len(out)-1; i++ {
		for j := 0; j < len(out); {
			if j == i || !coalesce(&out[i], out[j]) {
				j++
				continue
			}
			out = append(out[:j], out[j+1:]...)
			if j < i {
				i--
			}
			j = 0
		}
	}
	return out
}

// coalesce grows a by b when the two form a single rectangle.
func coalesce(a *Rect, b Rect) bool {
	if a.Normal != b.Normal || a.Z1 != b.Z1 || a.Z2 != b.Z2 {
		return false
	}
	if a.X1 == b.X1 && a.X2 == b.X2 {
		switch {
		case a.Y2 == b.Y1:
			a.Y2 = b.Y2
			return true
		case a.Y1 == b.Y2:
			a.Y1 = b.Y1
			return true
		}
	}
	if a.Y1 == b.Y1 && a.Y2 == b.Y2 {
		switch {
		case a.X2 == b.X1:
			a.X2 = b.X2
			return true
		case a.X1 == b.X2:
			a.X1 = b.X1
			return true
		}
	}
	return false
}

// areaItem orders rectangles by descending area. seq keeps insertion order
// among equal areas, and fragments re-enter with a fresh, larger seq.
type areaItem struct {
	area int
	seq  int
	rect Rect
}

func (a areaItem) Less(than btree.Item) bool {
	b := than.(areaItem)
	if a.area != b.area {
		return a.area > b.area
	}
	return a.seq < b.seq
}

// Decompose turns a possibly overlapping set of flat rectangles into a
// disjoint one covering the same area. Larger rectangles win: every later
// rectangle overlapping the current one is carved into up to four pieces
// and the overlap is discarded.
func Decompose(rects []Rect, rep *diag.Report) []Rect {
	tree := btree.New(8)
	seq := 0
	insert := func(r Rect) {
		tree.ReplaceOrInsert(areaItem{area: r.Area(), seq: seq, rect: r})
		seq++
	}
	for _, r := range rects {
		insert(r)
	}
	if tree.Len() < 2 {
		return collect(tree)
	}

	cur := tree.Min().(areaItem)
	for {
		var later []areaItem
		tree.AscendGreaterOrEqual(cur, func(it btree.Item) bool {
			if ai := it.(areaItem); ai.seq != cur.seq {
				later = append(later, ai)
			}
			return true
		})
		if len(later) == 0 {
			break
		}

		var pending []Rect
		for _, j := range later {
			tree.Delete(j)
			if !cur.rect.Overlaps(j.rect) {
				pending = append(pending, j.rect)
				continue
			}
			pending = append(pending, carve(cur.rect, j.rect)...)
		}
		for _, r := range pending {
			insert(r)
		}

		next, ok := after(tree, cur)
		if !ok {
			break
		}
		cur = next
	}

	out := collect(tree)
	checkCorners(out, rep)
	return out
}

func after(tree *btree.BTree, cur areaItem) (areaItem, bool) {
	var next areaItem
	found := false
	tree.AscendGreaterOrEqual(cur, func(it btree.Item) bool {
		ai := it.(areaItem)
		if ai.seq == cur.seq {
			return true
		}
		next, found = ai, true
		return false
	})
	return next, found
}

func collect(tree *btree.BTree) []Rect {
	out := make([]Rect, 0, tree.Len())
	tree.Ascend(func(it btree.Item) bool {
		out = append(out, it.(areaItem).rect)
		return true
	})
	return out
}

// carve returns the parts of j outside i. The axis i spans completely is
// cut first. Failing that, the axis leaving the smaller residual goes first.
func carve(i, j Rect) []Rect {
	ovX := min(i.X2, j.X2) - max(i.X1, j.X1)
	ovY := min(i.Y2, j.Y2) - max(i.Y1, j.Y1)
	remX := j.Width() - ovX
	remY := j.Height() - ovY

	xFirst := false
	switch {
	case ovX == i.Width():
		xFirst = true
	case ovY == i.Height():
		xFirst = false
	case remY < remX:
		xFirst = true
	}

	var out []Rect
	if xFirst {
		out = carveX(i, &j, out)
		out = carveY(i, &j, out)
	} else {
		out = carveY(i, &j, out)
		out = carveX(i, &j, out)
	}
	return out
}

func carveX(i Rect, j *Rect, out []Rect) []Rect {
	if j.X1 < i.X1 && i.X1 < j.X2 {
		part := *j
		part.X2 = i.X1
		out = append(out, part)
		j.X1 = i.X1
	}
	if j.X1 < i.X2 && i.X2 < j.X2 {
		part := *j
		part.X1 = i.X2
		out = append(out, part)
		j.X2 = i.X2
	}
	return out
}

func carveY(i Rect, j *Rect, out []Rect) []Rect {
	if j.Y1 < i.Y1 && i.Y1 < j.Y2 {
		part := *j
		part.Y2 = i.Y1
		out = append(out, part)
		j.Y1 = i.Y1
	}
	if j.Y1 < i.Y2 && i.Y2 < j.Y2 {
		part := *j
		part.Y1 = i.Y2
		out = append(out, part)
		j.Y2 = i.Y2
	}
	return out
}

// checkCorners reports pairs the carver left overlapping.
func checkCorners(rects []Rect, rep *diag.Report) {
	for a := range rects {
		for b := a + 1; b < len(rects); b++ {
			if rects[a].HasCornerInside(rects[b]) || rects[b].HasCornerInside(rects[a]) {
				rep.Warn(diag.CodeDecomposeCorner, "rectangles %s and %s still overlap", rects[a], rects[b])
			}
		}
	}
}
