// Package tessellate turns floating-point panel lists into triangle meshes.
// One mesh is produced per conductor, two triangles per panel.
package tessellate

import (
	"fmt"

	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/kernel"
	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Palette is the default set of colors assigned to conductors in order.
var Palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Options controls tessellation.
type Options struct {
	// Scale multiplies every coordinate. Zero means 1.
	Scale float64
	// SupportsOnly skips projections, arches and side panels.
	SupportsOnly bool
}

// Tessellate produces one mesh per conductor. Conductors without panels
// still get an empty mesh so indices line up with the input. The
// tessellator never mutates conds.
func Tessellate(conds []*panel.ConductorFP, opts Options) []*kernel.Mesh {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	meshes := make([]*kernel.Mesh, 0, len(conds))
	for i, c := range conds {
		m := &kernel.Mesh{
			Name:  fmt.Sprintf("conductor %d", i),
			Color: Palette[i%len(Palette)],
		}
		c.Each(func(_ int, _ solid.Side, p panel.Panel) {
			if opts.SupportsOnly && (p.Shape.Projection || p.Shape.Type != panel.ShapeFlat) {
				return
			}
			addPanel(m, p, scale)
		})
		meshes = append(meshes, m)
	}

	diag.Logger().Debug("tessellated", "conductors", len(meshes), "triangles", triangleCount(meshes))
	return meshes
}

// addPanel appends p as a quad wound counter-clockwise around its normal.
func addPanel(m *kernel.Mesh, p panel.Panel, scale float64) {
	axis := p.Axis()
	if axis < 0 {
		return
	}
	c := corners(p, axis)
	// The in-plane pair of the y normal runs x then z, which winds toward -y.
	ccw := axis != 1
	if p.Sign() < 0 {
		ccw = !ccw
	}
	if !ccw {
		c[1], c[3] = c[3], c[1]
	}
	m.AddQuad(f32(c[0], scale), f32(c[1], scale), f32(c[2], scale), f32(c[3], scale), f32(p.Normal, 1))
}

// corners lists the four corners of p in the order (u0,v0) (u1,v0) (u1,v1)
// (u0,v1) over its in-plane axes.
func corners(p panel.Panel, axis int) [4]v3.Vec {
	lo, hi := p.Min, p.Max
	switch axis {
	case 0:
		return [4]v3.Vec{
			{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
			{X: lo.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		}
	case 1:
		return [4]v3.Vec{
			{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
			{X: hi.X, Y: lo.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		}
	}
	return [4]v3.Vec{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
	}
}

func f32(v v3.Vec, scale float64) [3]float32 {
	return [3]float32{float32(v.X * scale), float32(v.Y * scale), float32(v.Z * scale)}
}

func triangleCount(meshes []*kernel.Mesh) int {
	n := 0
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	return n
}
