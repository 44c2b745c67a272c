package panel

import (
	"io"
	"math"

	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/solid"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ConductorFP is the floating-point counterpart of solid.Conductor: one
// bucket per stack layer and side.
type ConductorFP struct {
	NumMetal int
	NumVia   int
	Layers   [][solid.NumSides]*Bucket
}

// NewConductorFP returns a conductor with empty buckets.
func NewConductorFP(numMetal, numVia int) *ConductorFP {
	c := &ConductorFP{
		NumMetal: numMetal,
		NumVia:   numVia,
		Layers:   make([][solid.NumSides]*Bucket, numMetal+numVia),
	}
	for l := range c.Layers {
		for s := range c.Layers[l] {
			c.Layers[l][s] = &Bucket{}
		}
	}
	return c
}

// Bucket returns the bucket for a layer and side.
func (c *ConductorFP) Bucket(layer int, s solid.Side) *Bucket {
	return c.Layers[layer][s]
}

// Size returns the total panel count.
func (c *ConductorFP) Size() int {
	n := 0
	for l := range c.Layers {
		for s := range c.Layers[l] {
			n += c.Layers[l][s].Len()
		}
	}
	return n
}

// Each calls fn for every panel in layer, side and bucket order.
func (c *ConductorFP) Each(fn func(layer int, s solid.Side, p Panel)) {
	for l := range c.Layers {
		for s := range c.Layers[l] {
			for _, p := range c.Layers[l][s].All() {
				fn(l, solid.Side(s), p)
			}
		}
	}
}

// Bounds returns the box enclosing every panel.
func (c *ConductorFP) Bounds() sdf.Box3 {
	var box sdf.Box3
	first := true
	c.Each(func(_ int, _ solid.Side, p Panel) {
		b := sdf.Box3{Min: p.Min, Max: p.Max}
		if first {
			box, first = b, false
			return
		}
		box = box.Extend(b)
	})
	return box
}

// Clone deep-copies every bucket.
func (c *ConductorFP) Clone() *ConductorFP {
	out := &ConductorFP{
		NumMetal: c.NumMetal,
		NumVia:   c.NumVia,
		Layers:   make([][solid.NumSides]*Bucket, len(c.Layers)),
	}
	for l := range c.Layers {
		for s := range c.Layers[l] {
			out.Layers[l][s] = c.Layers[l][s].Clone()
		}
	}
	return out
}

// TotalSize sums Size over conds.
func TotalSize(conds []*ConductorFP) int {
	n := 0
	for _, c := range conds {
		n += c.Size()
	}
	return n
}

func normalVec(n geom.Normal) v3.Vec {
	switch n {
	case geom.NormalXPlus:
		return v3.Vec{X: 1}
	case geom.NormalXMinus:
		return v3.Vec{X: -1}
	case geom.NormalYPlus:
		return v3.Vec{Y: 1}
	case geom.NormalYMinus:
		return v3.Vec{Y: -1}
	case geom.NormalZMinus:
		return v3.Vec{Z: -1}
	}
	// Flat footprints face up.
	return v3.Vec{Z: 1}
}

// FromRect scales a grid rectangle by unit into a flat support panel.
func FromRect(r geom.Rect, unit float64) Panel {
	return Panel{
		Normal: normalVec(r.Normal),
		Min:    v3.Vec{X: float64(r.X1) * unit, Y: float64(r.Y1) * unit, Z: float64(r.Z1) * unit},
		Max:    v3.Vec{X: float64(r.X2) * unit, Y: float64(r.Y2) * unit, Z: float64(r.Z2) * unit},
		Shape:  Shape{Type: ShapeFlat, Decay: DecayNone},
	}
}

// ToRect rounds p back onto the grid.
func ToRect(p Panel, unit float64) geom.Rect {
	g := func(x float64) int { return int(math.Round(x / unit)) }
	r := geom.Rect{
		X1: g(p.Min.X), X2: g(p.Max.X),
		Y1: g(p.Min.Y), Y2: g(p.Max.Y),
		Z1: g(p.Min.Z), Z2: g(p.Max.Z),
	}
	switch p.Axis() {
	case 0:
		r.Normal = geom.NormalXPlus
	case 1:
		r.Normal = geom.NormalYPlus
	case 2:
		r.Normal = geom.NormalZPlus
	}
	if p.Sign() < 0 {
		r.Normal = -r.Normal
	}
	return r
}

// FromConductors scales every conductor into a fresh floating-point list.
func FromConductors(conds []*solid.Conductor, unit float64) []*ConductorFP {
	out := make([]*ConductorFP, len(conds))
	for i, c := range conds {
		fp := NewConductorFP(c.NumMetal, c.NumVia)
		for l := range c.Layers {
			for s, rects := range c.Layers[l] {
				for _, r := range rects {
					fp.Layers[l][s].PushBack(FromRect(r, unit))
				}
			}
		}
		out[i] = fp
	}
	return out
}

// ToConductors rounds every panel back onto the grid.
func ToConductors(conds []*ConductorFP, unit float64) []*solid.Conductor {
	out := make([]*solid.Conductor, len(conds))
	for i, fp := range conds {
		c := solid.NewConductor(fp.NumMetal, fp.NumVia)
		fp.Each(func(l int, s solid.Side, p Panel) {
			c.Add(l, s, ToRect(p, unit))
		})
		out[i] = c
	}
	return out
}

// Writer serializes a conductor list for a solver.
type Writer interface {
	Write(w io.Writer, name string, conds []*ConductorFP) error
}
