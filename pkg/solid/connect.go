package solid

import (
	"sort"

	"github.com/chazu/caplet/pkg/geom"
)

// ConnectedComponents partitions rects into groups that touch, shared edges
// and corners included. The first remaining rectangle seeds each group and
// members follow in breadth-first discovery order from that seed.
func ConnectedComponents(rects []geom.Rect) [][]geom.Rect {
	used := make([]bool, len(rects))
	var out [][]geom.Rect
	for seed := range rects {
		if used[seed] {
			continue
		}
		used[seed] = true
		members := []int{seed}
		for k := 0; k < len(members); k++ {
			cur := rects[members[k]]
			for j := range rects {
				if !used[j] && cur.Touches(rects[j]) {
					used[j] = true
					members = append(members, j)
				}
			}
		}
		comp := make([]geom.Rect, len(members))
		for i, m := range members {
			comp[i] = rects[m]
		}
		out = append(out, comp)
	}
	return out
}

// Span is a closed-open integer range along one axis.
type Span struct {
	Lo, Hi int
}

// Len returns Hi - Lo.
func (s Span) Len() int { return s.Hi - s.Lo }

// Walls holds one span list per lateral side, indexed by SideLeft through
// SideFront. Left and right spans run along y, back and front along x.
type Walls [4][]Span

// ComputeAdjacency finds, for every rectangle of a disjoint set, the parts
// of each lateral side touched by a neighbour, and their complement. The
// complement is what becomes exterior wall.
func ComputeAdjacency(rects []geom.Rect) (adj, comp []Walls) {
	adj = make([]Walls, len(rects))
	for i := range rects {
		a := rects[i]
		for j := i + 1; j < len(rects); j++ {
			b := rects[j]
			if lo, hi := max(a.Y1, b.Y1), min(a.Y2, b.Y2); lo < hi {
				switch {
				case a.X2 == b.X1:
					adj[i][SideRight] = append(adj[i][SideRight], Span{lo, hi})
					adj[j][SideLeft] = append(adj[j][SideLeft], Span{lo, hi})
				case a.X1 == b.X2:
					adj[i][SideLeft] = append(adj[i][SideLeft], Span{lo, hi})
					adj[j][SideRight] = append(adj[j][SideRight], Span{lo, hi})
				}
			}
			if lo, hi := max(a.X1, b.X1), min(a.X2, b.X2); lo < hi {
				switch {
				case a.Y2 == b.Y1:
					adj[i][SideFront] = append(adj[i][SideFront], Span{lo, hi})
					adj[j][SideBack] = append(adj[j][SideBack], Span{lo, hi})
				case a.Y1 == b.Y2:
					adj[i][SideBack] = append(adj[i][SideBack], Span{lo, hi})
					adj[j][SideFront] = append(adj[j][SideFront], Span{lo, hi})
				}
			}
		}
	}

	comp = make([]Walls, len(rects))
	for i, r := range rects {
		for _, s := range Lateral {
			sort.Slice(adj[i][s], func(p, q int) bool { return adj[i][s][p].Lo < adj[i][s][q].Lo })
			lo, hi := r.Y1, r.Y2
			if s == SideBack || s == SideFront {
				lo, hi = r.X1, r.X2
			}
			comp[i][s] = Complement(adj[i][s], lo, hi)
		}
	}
	return adj, comp
}

// Complement returns the parts of [lo, hi) not covered by spans. spans must
// be sorted by Lo. No spans yields the whole range.
func Complement(spans []Span, lo, hi int) []Span {
	var out []Span
	cursor := lo
	for _, s := range spans {
		if cursor >= hi {
			break
		}
		if s.Lo > cursor {
			out = append(out, Span{cursor, min(s.Lo, hi)})
		}
		cursor = max(cursor, s.Hi)
	}
	if cursor < hi {
		out = append(out, Span{cursor, hi})
	}
	return out
}
