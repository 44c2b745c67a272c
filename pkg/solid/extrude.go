package solid

import (
	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/layout"
)

// Extrude turns each footprint into a bottom and a top panel at the layer
// elevation and one wall per complement span.
func Extrude(rects []geom.Rect, comp []Walls, elev layout.Elevation, layer int, c *Conductor) {
	for i, r := range rects {
		bottom := geom.Rect{X1: r.X1, X2: r.X2, Y1: r.Y1, Y2: r.Y2, Z1: elev.Bottom, Z2: elev.Bottom, Normal: geom.NormalZMinus}
		top := bottom
		top.Z1, top.Z2, top.Normal = elev.Top, elev.Top, geom.NormalZPlus
		c.Add(layer, SideBottom, bottom)
		c.Add(layer, SideTop, top)

		for _, s := range comp[i][SideLeft] {
			c.Add(layer, SideLeft, wallX(r.X1, s, elev, geom.NormalXMinus))
		}
		for _, s := range comp[i][SideRight] {
			c.Add(layer, SideRight, wallX(r.X2, s, elev, geom.NormalXPlus))
		}
		for _, s := range comp[i][SideBack] {
			c.Add(layer, SideBack, wallY(r.Y1, s, elev, geom.NormalYMinus))
		}
		for _, s := range comp[i][SideFront] {
			c.Add(layer, SideFront, wallY(r.Y2, s, elev, geom.NormalYPlus))
		}
	}
}

func wallX(x int, s Span, elev layout.Elevation, n geom.Normal) geom.Rect {
	return geom.Rect{X1: x, X2: x, Y1: s.Lo, Y2: s.Hi, Z1: elev.Bottom, Z2: elev.Top, Normal: n}
}

func wallY(y int, s Span, elev layout.Elevation, n geom.Normal) geom.Rect {
	return geom.Rect{X1: s.Lo, X2: s.Hi, Y1: y, Y2: y, Z1: elev.Bottom, Z2: elev.Top, Normal: n}
}
