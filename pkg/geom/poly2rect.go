package geom

import (
	"github.com/chazu/caplet/pkg/diag"
	"github.com/cockroachdb/errors"
)

var (
	errNoExtension = errors.New("edge extension reaches no boundary")
	errNoProgress  = errors.New("no reflex vertex left to cut")
)

// PolygonsToRects decomposes every polygon of a layer and concatenates the
// results in input order.
func PolygonsToRects(polys []Polygon, rep *diag.Report) ([]Rect, error) {
	var out []Rect
	for i, p := range polys {
		rects, err := PolyToRects(p, rep)
		if err != nil {
			return nil, errors.Wrapf(err, "polygon %d", i)
		}
		out = append(out, rects...)
	}
	return out, nil
}

// PolyToRects decomposes a simple Manhattan polygon into flat rectangles
// that tile it exactly. A polygon the cutter cannot reduce is dropped with a
// warning; only non-Manhattan input is an error.
func PolyToRects(poly Polygon, rep *diag.Report) ([]Rect, error) {
	p := poly.Open()
	if !p.IsManhattan() {
		return nil, ErrNotManhattan
	}
	p = simplify(p.Clone())

	var out []Rect
	queue := []Polygon{p}
	budget := 4*len(p) + 16
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		if len(q) < 4 {
			rep.Warn(diag.CodePolyNoProgress, "degenerate piece with %d vertices dropped", len(q))
			continue
		}
		if len(q) == 4 {
			r, err := RectFromPolygon(q)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
			continue
		}

		budget--
		if budget < 0 {
			rep.Warn(diag.CodePolyNoProgress, "polygon at %s did not converge, %d pieces dropped",
				p.Bounds(), len(queue)+1)
			break
		}
		pieces, err := cutStep(q)
		if err != nil {
			code := diag.CodePolyNoExtension
			if errors.Is(err, errNoProgress) {
				code = diag.CodePolyNoProgress
			}
			rep.Warn(code, "piece at %s dropped: %v", q.Bounds(), err)
			continue
		}
		queue = append(queue, pieces...)
	}
	diag.Logger().Debug("poly2rect", "vertices", len(p), "rects", len(out))
	return out, nil
}

// cutStep performs one round on a polygon with more than four vertices:
// extend the longest edge at its reflex ends, then cut along the closest
// facing parallel edge. Every returned piece is smaller than q.
func cutStep(q Polygon) ([]Polygon, error) {
	annotate(q)
	rest, cuts, err := extendEdge(q, longestEdge(q))
	if err != nil {
		return nil, err
	}
	progressed := len(cuts) > 0

	if len(rest) > 4 {
		if o := closestOpposite(rest, longestEdge(rest)); o >= 0 {
			r, c, err := extendEdge(rest, o)
			if err != nil {
				return nil, err
			}
			rest = r
			cuts = append(cuts, c...)
			progressed = progressed || len(c) > 0
		}
	}

	if !progressed && len(rest) > 4 {
		v := firstReflex(rest)
		if v < 0 {
			return nil, errNoProgress
		}
		n := len(rest)
		k, h, ok := castRay(rest, rest[v], rest[v].dirTo(rest[(v+1)%n]).Opposite())
		if !ok {
			return nil, errNoExtension
		}
		a, b := split(rest, v, k, h)
		rest = a
		cuts = append(cuts, b)
	}
	return append(cuts, rest), nil
}

// extendEdge extends edge e of an annotated polygon past each reflex
// endpoint until it meets the boundary. It returns the piece that still
// holds the (now longer) edge, annotated, and the pieces cut away.
func extendEdge(p Polygon, e int) (Polygon, []Polygon, error) {
	n := len(p)
	s, t := p[e], p[(e+1)%n]
	u := s.dirTo(t)
	rest := p
	var cuts []Polygon

	if isReflex(rest, e) {
		k, h, ok := castRay(rest, s, u.Opposite())
		if !ok {
			return nil, nil, errNoExtension
		}
		a, b := split(rest, e, k, h)
		rest = a
		cuts = append(cuts, b)
		annotate(rest)
	}

	if j := indexOf(rest, t); j >= 0 && isReflex(rest, j) {
		k, h, ok := castRay(rest, t, u)
		if !ok {
			return nil, nil, errNoExtension
		}
		a, b := split(rest, j, k, h)
		rest = b
		cuts = append(cuts, a)
		annotate(rest)
	}
	return rest, cuts, nil
}

// annotate stores on every vertex the inward direction and length of the
// edge starting there. The walk is anchored at the leftmost vertical edge,
// whose interior lies towards +x.
func annotate(p Polygon) {
	n := len(p)
	if n < 3 {
		return
	}
	anchor := 0
	for i := 1; i < n; i++ {
		if p[i].X < p[anchor].X {
			anchor = i
		}
	}
	if anchor == 0 && p[n-1].X == p[0].X {
		anchor = n - 1
	}
	p[anchor].Dir = EdgeXPlus
	p[anchor].Len = p[anchor].manhattanDist(p[(anchor+1)%n])
	for k := 1; k < n; k++ {
		j := (anchor + k) % n
		prev, cur, next := p[(j+n-1)%n], p[j], p[(j+1)%n]
		cross := (cur.X-prev.X)*(next.Y-cur.Y) - (cur.Y-prev.Y)*(next.X-cur.X)
		p[j].Dir = turn(prev.Dir, cross > 0)
		p[j].Len = cur.manhattanDist(next)
	}
}

// turn rotates an inward direction by a quarter turn, counter-clockwise
// when left is set.
func turn(d EdgeDir, left bool) EdgeDir {
	switch d {
	case EdgeXPlus:
		if left {
			return EdgeYPlus
		}
		return EdgeYMinus
	case EdgeXMinus:
		if left {
			return EdgeYMinus
		}
		return EdgeYPlus
	case EdgeYPlus:
		if left {
			return EdgeXMinus
		}
		return EdgeXPlus
	case EdgeYMinus:
		if left {
			return EdgeXPlus
		}
		return EdgeXMinus
	}
	return EdgeNone
}

// isReflex reports whether the interior angle at vertex v exceeds 180
// degrees. At a convex vertex the outgoing edge runs along the incoming
// edge's inward direction.
func isReflex(p Polygon, v int) bool {
	n := len(p)
	out := p[v].dirTo(p[(v+1)%n])
	return out != p[(v+n-1)%n].Dir
}

func firstReflex(p Polygon) int {
	for v := range p {
		if isReflex(p, v) {
			return v
		}
	}
	return -1
}

func longestEdge(p Polygon) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i].Len > p[best].Len {
			best = i
		}
	}
	return best
}

// closestOpposite finds the nearest edge in front of edge l whose inward
// direction is opposite and whose span overlaps l's span with positive
// length. Ties go to the first edge in ring order.
func closestOpposite(p Polygon, l int) int {
	n := len(p)
	d := p[l].Dir
	a, b := p[l], p[(l+1)%n]
	best, bestDist := -1, 0
	for i := range p {
		if i == l || p[i].Dir != d.Opposite() {
			continue
		}
		c, e := p[i], p[(i+1)%n]
		var lo1, hi1, lo2, hi2, dist int
		if d.IsX() {
			lo1, hi1 = min(a.Y, b.Y), max(a.Y, b.Y)
			lo2, hi2 = min(c.Y, e.Y), max(c.Y, e.Y)
			dist = (c.X - a.X) * d.Sign()
		} else {
			lo1, hi1 = min(a.X, b.X), max(a.X, b.X)
			lo2, hi2 = min(c.X, e.X), max(c.X, e.X)
			dist = (c.Y - a.Y) * d.Sign()
		}
		if dist <= 0 || hi2 <= lo1 || hi1 <= lo2 {
			continue
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// castRay shoots a ray from o along d and returns the first edge it meets
// at a strictly positive distance, spans inclusive, plus the hit point.
func castRay(p Polygon, o Point, d EdgeDir) (int, Point, bool) {
	n := len(p)
	best, bestT := -1, 0
	for k := 0; k < n; k++ {
		a, b := p[k], p[(k+1)%n]
		var t int
		if d.IsX() {
			if a.X != b.X || (a.Y-o.Y)*(b.Y-o.Y) > 0 {
				continue
			}
			t = (a.X - o.X) * d.Sign()
		} else {
			if a.Y != b.Y || (a.X-o.X)*(b.X-o.X) > 0 {
				continue
			}
			t = (a.Y - o.Y) * d.Sign()
		}
		if t <= 0 {
			continue
		}
		if best < 0 || t < bestT {
			best, bestT = k, t
		}
	}
	if best < 0 {
		return -1, Point{}, false
	}
	if d.IsX() {
		return best, Pt(p[best].X, o.Y), true
	}
	return best, Pt(o.X, p[best].Y), true
}

// split cuts p along the chord from vertex v to h, which lies on edge k.
// The first piece runs v..k then h, the second h then k+1..v. A hit on an
// existing vertex collapses into it.
func split(p Polygon, v, k int, h Point) (Polygon, Polygon) {
	n := len(p)
	var a, b Polygon
	for i := v; ; i = (i + 1) % n {
		a = append(a, p[i])
		if i == k {
			break
		}
	}
	a = append(a, h)
	b = append(b, h)
	for i := (k + 1) % n; ; i = (i + 1) % n {
		b = append(b, p[i])
		if i == v {
			break
		}
	}
	return simplify(a), simplify(b)
}

// simplify removes repeated and collinear vertices in place.
func simplify(p Polygon) Polygon {
	for changed := true; changed && len(p) >= 3; {
		changed = false
		n := len(p)
		for i := 0; i < n; i++ {
			prev, cur, next := p[(i+n-1)%n], p[i], p[(i+1)%n]
			if cur.SameXY(next) || collinear(prev, cur, next) {
				p = append(p[:i], p[i+1:]...)
				changed = true
				break
			}
		}
	}
	return p
}

func collinear(a, b, c Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

func indexOf(p Polygon, q Point) int {
	for i, pt := range p {
		if pt.SameXY(q) {
			return i
		}
	}
	return -1
}
