package solid

import (
	"slices"

	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/layout"
)

// GenerateVia adds the panels of one via footprint to c. Undecomposed, the
// via gets full top and bottom caps. Decomposed, the facing bottom panels of
// the upper metal and top panels of the lower metal are carved around the
// via, and a cap is only kept for via area no metal panel covers. The four
// side walls are always added.
func (c *Conductor) GenerateVia(via geom.Rect, viaIndex int, stack layout.Stack, decomposed bool, rep *diag.Report) {
	layer := stack.ViaLayer(viaIndex)
	v := stack.Vias[viaIndex]
	flat := geom.Rect{X1: via.X1, X2: via.X2, Y1: via.Y1, Y2: via.Y2}

	if decomposed {
		c.stitchCap(flat, layer, v.Top, v.TopMetal, SideBottom, SideTop, rep)
		c.stitchCap(flat, layer, v.Bottom, v.BottomMetal, SideTop, SideBottom, rep)
	} else {
		top := flat
		top.Z1, top.Z2, top.Normal = v.Top, v.Top, geom.NormalZPlus
		bottom := flat
		bottom.Z1, bottom.Z2, bottom.Normal = v.Bottom, v.Bottom, geom.NormalZMinus
		c.Add(layer, SideTop, top)
		c.Add(layer, SideBottom, bottom)
	}

	elev := v.Elevation
	c.Add(layer, SideLeft, wallX(via.X1, Span{via.Y1, via.Y2}, elev, geom.NormalXMinus))
	c.Add(layer, SideRight, wallX(via.X2, Span{via.Y1, via.Y2}, elev, geom.NormalXPlus))
	c.Add(layer, SideBack, wallY(via.Y1, Span{via.X1, via.X2}, elev, geom.NormalYMinus))
	c.Add(layer, SideFront, wallY(via.Y2, Span{via.X1, via.X2}, elev, geom.NormalYPlus))
}

// stitchCap carves the metal panels facing one end of a via and adds the
// uncovered remainder as the via cap at height z.
func (c *Conductor) stitchCap(via geom.Rect, layer, z, metal int, metalSide, viaSide Side, rep *diag.Report) {
	rest := via
	for i := 0; i < len(c.Layers[metal][metalSide]); {
		m := c.Layers[metal][metalSide][i]
		if !m.Overlaps(rest) {
			i++
			continue
		}
		var inserted int
		c.Layers[metal][metalSide], inserted, rest = innerDecompose(c.Layers[metal][metalSide], i, rest, rep)
		i += inserted
		if rest.Area() == 0 {
			return
		}
	}
	rest.Z1, rest.Z2, rest.Normal = z, z, viaSide.Normal()
	c.Add(layer, viaSide, rest)
}

// innerDecompose replaces bucket[i] by the up to four pieces of it lying
// outside via, inserted where it stood. It returns the new bucket, how many
// pieces went in, and the part of via left uncovered past the first metal
// edge inside it. The zero rectangle means the panel covers the via.
func innerDecompose(bucket []geom.Rect, i int, via geom.Rect, rep *diag.Report) ([]geom.Rect, int, geom.Rect) {
	m := bucket[i]
	if m.HasCornerInside(via) {
		rep.Warn(diag.CodeViaCornerInside, "metal panel %s has a corner inside via %s", m, via)
	}

	var outside geom.Rect
	switch {
	case via.X1 < m.X1 && m.X1 < via.X2:
		outside = via
		outside.X2 = m.X1
	case via.X1 < m.X2 && m.X2 < via.X2:
		outside = via
		outside.X1 = m.X2
	case via.Y1 < m.Y1 && m.Y1 < via.Y2:
		outside = via
		outside.Y2 = m.Y1
	case via.Y1 < m.Y2 && m.Y2 < via.Y2:
		outside = via
		outside.Y1 = m.Y2
	}

	left, right, back, front := m, m, m, m
	left.X2 = min(m.X2, via.X1)
	right.X1 = max(m.X1, via.X2)
	back.Y2 = min(m.Y2, via.Y1)
	front.Y1 = max(m.Y1, via.Y2)
	if m.Width() > m.Height() {
		back.X1, back.X2 = max(m.X1, via.X1), min(m.X2, via.X2)
		front.X1, front.X2 = back.X1, back.X2
	} else {
		left.Y1, left.Y2 = max(m.Y1, via.Y1), min(m.Y2, via.Y2)
		right.Y1, right.Y2 = left.Y1, left.Y2
	}

	var pieces []geom.Rect
	for _, p := range [4]geom.Rect{left, right, back, front} {
		if p.X2 > p.X1 && p.Y2 > p.Y1 {
			pieces = append(pieces, p)
		}
	}
	bucket = slices.Replace(bucket, i, i+1, pieces...)
	return bucket, len(pieces), outside
}

// GenerateConductorList stitches every via into a copy of the metal
// conductors. The first conductor in list order touching the lower metal,
// and the first touching the upper metal, are the ones joined; when they
// differ the upper one is absorbed into the lower one. A via touching
// neither is dropped with a warning.
func GenerateConductorList(metal []*Conductor, vias [][]geom.Rect, stack layout.Stack, decomposed bool, rep *diag.Report) ([]*Conductor, error) {
	conds := make([]*Conductor, len(metal))
	for i, c := range metal {
		conds[i] = c.Clone()
	}

	for vi, rects := range vias {
		v := stack.Vias[vi]
		for _, r := range rects {
			bottom, top := -1, -1
			for k, c := range conds {
				if bottom < 0 && c.touches(r, v.BottomMetal) {
					bottom = k
				}
				if top < 0 && c.touches(r, v.TopMetal) {
					top = k
				}
			}

			switch {
			case bottom >= 0 && top >= 0 && bottom != top:
				if err := conds[bottom].Absorb(conds[top]); err != nil {
					return nil, err
				}
				conds = slices.Delete(conds, top, top+1)
				if top < bottom {
					bottom--
				}
				conds[bottom].GenerateVia(r, vi, stack, decomposed, rep)
			case bottom >= 0:
				conds[bottom].GenerateVia(r, vi, stack, decomposed, rep)
			case top >= 0:
				conds[top].GenerateVia(r, vi, stack, decomposed, rep)
			default:
				rep.Add(diag.Warning{
					Code:      diag.CodeViaUnconnected,
					Message:   "via " + r.String() + " touches no metal, dropped",
					Layer:     stack.ViaLayer(vi),
					Conductor: -1,
				})
			}
		}
	}
	diag.Logger().Debug("conductor list", "metal", len(metal), "conductors", len(conds))
	return conds, nil
}
