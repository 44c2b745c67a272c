// Package solid turns per-layer rectangles into 3-D conductors: connected
// components, side adjacency, extrusion into wall, top and bottom panels,
// and via stitching between metal layers.
package solid

import (
	"fmt"

	"github.com/chazu/caplet/pkg/geom"
	"github.com/cockroachdb/errors"
)

// Side selects one of the six panel buckets of a layer.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideBack
	SideFront
	SideBottom
	SideTop

	NumSides = 6
)

// Lateral lists the four wall sides in bucket order.
var Lateral = [4]Side{SideLeft, SideRight, SideBack, SideFront}

// Opposite returns the side facing s.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideBack:
		return SideFront
	case SideFront:
		return SideBack
	case SideBottom:
		return SideTop
	case SideTop:
		return SideBottom
	}
	panic(fmt.Sprintf("solid: invalid side %d", int(s)))
}

// Normal returns the outward normal of panels in the s bucket.
func (s Side) Normal() geom.Normal {
	switch s {
	case SideLeft:
		return geom.NormalXMinus
	case SideRight:
		return geom.NormalXPlus
	case SideBack:
		return geom.NormalYMinus
	case SideFront:
		return geom.NormalYPlus
	case SideBottom:
		return geom.NormalZMinus
	case SideTop:
		return geom.NormalZPlus
	}
	panic(fmt.Sprintf("solid: invalid side %d", int(s)))
}

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideBack:
		return "back"
	case SideFront:
		return "front"
	case SideBottom:
		return "bottom"
	case SideTop:
		return "top"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Sides holds the six panel buckets of one layer.
type Sides [NumSides][]geom.Rect

// Conductor is one electrically connected solid. Layers is indexed by stack
// layer, metals first and vias after.
type Conductor struct {
	NumMetal int
	NumVia   int
	Layers   []Sides
}

// NewConductor returns an empty conductor shaped for the given stack.
func NewConductor(numMetal, numVia int) *Conductor {
	return &Conductor{
		NumMetal: numMetal,
		NumVia:   numVia,
		Layers:   make([]Sides, numMetal+numVia),
	}
}

// Add appends r to a bucket.
func (c *Conductor) Add(layer int, s Side, r geom.Rect) {
	c.Layers[layer][s] = append(c.Layers[layer][s], r)
}

// Bucket returns the panels of one bucket. The slice is shared.
func (c *Conductor) Bucket(layer int, s Side) []geom.Rect {
	return c.Layers[layer][s]
}

// Size returns the total panel count.
func (c *Conductor) Size() int {
	n := 0
	for l := range c.Layers {
		for s := range c.Layers[l] {
			n += len(c.Layers[l][s])
		}
	}
	return n
}

// Clone returns a deep copy.
func (c *Conductor) Clone() *Conductor {
	out := NewConductor(c.NumMetal, c.NumVia)
	for l := range c.Layers {
		for s := range c.Layers[l] {
			if len(c.Layers[l][s]) > 0 {
				out.Layers[l][s] = append([]geom.Rect(nil), c.Layers[l][s]...)
			}
		}
	}
	return out
}

// MergeBuckets coalesces every bucket with geom.Merge.
func (c *Conductor) MergeBuckets() {
	for l := range c.Layers {
		for s := range c.Layers[l] {
			if len(c.Layers[l][s]) > 1 {
				c.Layers[l][s] = geom.Merge(c.Layers[l][s])
			}
		}
	}
}

// ErrIncompatible marks every IncompatibleError.
var ErrIncompatible = errors.New("incompatible conductors")

// IncompatibleError reports two conductors built for different stacks.
type IncompatibleError struct {
	Metal1, Via1 int
	Metal2, Via2 int
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("incompatible conductors: %d metals/%d vias vs %d metals/%d vias",
		e.Metal1, e.Via1, e.Metal2, e.Via2)
}

// Is makes errors.Is(err, ErrIncompatible) hold.
func (e *IncompatibleError) Is(target error) bool { return target == ErrIncompatible }

// Absorb appends every bucket of o onto the matching bucket of c.
func (c *Conductor) Absorb(o *Conductor) error {
	if c.NumMetal != o.NumMetal || c.NumVia != o.NumVia {
		return &IncompatibleError{Metal1: c.NumMetal, Via1: c.NumVia, Metal2: o.NumMetal, Via2: o.NumVia}
	}
	for l := range o.Layers {
		for s := range o.Layers[l] {
			c.Layers[l][s] = append(c.Layers[l][s], o.Layers[l][s]...)
		}
	}
	return nil
}

// touches reports whether the metal layer holds a top or bottom panel
// overlapping the via footprint.
func (c *Conductor) touches(via geom.Rect, metal int) bool {
	for _, s := range [2]Side{SideTop, SideBottom} {
		for _, r := range c.Layers[metal][s] {
			if r.Overlaps(via) {
				return true
			}
		}
	}
	return false
}
