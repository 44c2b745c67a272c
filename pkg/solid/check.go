package solid

import (
	"fmt"

	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/layout"
)

// CheckSelfOverlap warns about panels of one conductor that overlap on the
// same plane within a bucket. With interfaces set it also compares via caps
// against the metal panels they sit on, which only stitched-in-place
// (decomposed) vias are expected to keep apart.
func CheckSelfOverlap(conds []*Conductor, stack layout.Stack, interfaces bool, rep *diag.Report) int {
	found := 0
	warn := func(ci, layer int, msg string) {
		found++
		rep.Add(diag.Warning{Code: diag.CodeSelfOverlap, Message: msg, Layer: layer, Conductor: ci})
	}
	for ci, c := range conds {
		for l := range c.Layers {
			for s := range c.Layers[l] {
				b := c.Layers[l][s]
				for i := range b {
					for j := i + 1; j < len(b); j++ {
						if b[i].Overlaps3D(b[j]) {
							warn(ci, l, fmt.Sprintf("%s panels %s and %s overlap", Side(s), b[i], b[j]))
						}
					}
				}
			}
		}
		if !interfaces {
			continue
		}
		for vi, v := range stack.Vias {
			layer := stack.ViaLayer(vi)
			pairs := []struct {
				via, metal Side
				m          int
			}{
				{SideTop, SideBottom, v.TopMetal},
				{SideBottom, SideTop, v.BottomMetal},
			}
			for _, p := range pairs {
				for _, a := range c.Layers[layer][p.via] {
					for _, b := range c.Layers[p.m][p.metal] {
						if a.Overlaps3D(b) {
							warn(ci, layer, fmt.Sprintf("via cap %s overlaps metal %d panel %s", a, p.m, b))
						}
					}
				}
			}
		}
	}
	return found
}

// CheckZeroArea warns about panels without positive area.
func CheckZeroArea(conds []*Conductor, rep *diag.Report) int {
	found := 0
	for ci, c := range conds {
		for l := range c.Layers {
			for s := range c.Layers[l] {
				for _, r := range c.Layers[l][s] {
					if r.Area() <= 0 {
						found++
						rep.Add(diag.Warning{
							Code:      diag.CodeZeroArea,
							Message:   fmt.Sprintf("%s panel %s has no area", Side(s), r),
							Layer:     l,
							Conductor: ci,
						})
					}
				}
			}
		}
	}
	return found
}
