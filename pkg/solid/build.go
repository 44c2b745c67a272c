package solid

import (
	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/layout"
	"github.com/cockroachdb/errors"
)

// BuildMetalConductors decomposes every metal layer of l into conductors,
// one per connected component, in layer order. Non-Manhattan polygons are
// rejected before any layer is processed.
func BuildMetalConductors(l *layout.Layout, rep *diag.Report) ([]*Conductor, error) {
	if err := checkManhattan(l); err != nil {
		return nil, err
	}
	nm, nv := l.Stack.NumMetal(), l.Stack.NumVia()
	var conds []*Conductor
	for i, polys := range l.Metal {
		rects, err := geom.PolygonsToRects(polys, rep)
		if err != nil {
			return nil, errors.Wrapf(err, "metal layer %d", i)
		}
		comps := ConnectedComponents(rects)
		diag.Logger().Debug("metal layer", "layer", i, "rects", len(rects), "components", len(comps))
		for _, comp := range comps {
			flat := geom.Merge(geom.Decompose(comp, rep))
			_, walls := ComputeAdjacency(flat)
			c := NewConductor(nm, nv)
			Extrude(flat, walls, l.Stack.Metals[i], i, c)
			c.MergeBuckets()
			conds = append(conds, c)
		}
	}
	return conds, nil
}

// ViaRects decomposes the polygons of every via layer.
func ViaRects(l *layout.Layout, rep *diag.Report) ([][]geom.Rect, error) {
	out := make([][]geom.Rect, len(l.Via))
	for i, polys := range l.Via {
		rects, err := geom.PolygonsToRects(polys, rep)
		if err != nil {
			return nil, errors.Wrapf(err, "via layer %d", i)
		}
		out[i] = rects
	}
	return out, nil
}

func checkManhattan(l *layout.Layout) error {
	check := func(kind string, layers [][]geom.Polygon) error {
		for i, polys := range layers {
			for j, p := range polys {
				if !p.Open().IsManhattan() {
					return errors.Wrapf(geom.ErrNotManhattan, "%s layer %d polygon %d", kind, i, j)
				}
			}
		}
		return nil
	}
	if err := check("metal", l.Metal); err != nil {
		return err
	}
	return check("via", l.Via)
}
