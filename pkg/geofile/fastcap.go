package geofile

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
	"github.com/cockroachdb/errors"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FastcapWriter writes FastCap quadrilaterals, one conductor number per
// conductor counted from 1.
type FastcapWriter struct{}

var _ panel.Writer = FastcapWriter{}

func (FastcapWriter) Write(w io.Writer, name string, conds []*panel.ConductorFP) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "0 %s\n", name)
	for ci, c := range conds {
		c.Each(func(_ int, _ solid.Side, p panel.Panel) {
			fmt.Fprintf(bw, "Q %d    ", ci+1)
			for k, v := range quad(p) {
				if k > 0 {
					bw.WriteString("    ")
				}
				fmt.Fprintf(bw, "%14.6g%14.6g%14.6g", v.X, v.Y, v.Z)
			}
			bw.WriteString("\n")
		})
	}
	return bw.Flush()
}

// quad returns the corners of p wound counter-clockwise around its normal.
func quad(p panel.Panel) [4]v3.Vec {
	a, b := p.Min, p.Max
	switch {
	case p.Normal.Z > 0:
		return [4]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: b.X, Y: a.Y, Z: a.Z}, {X: b.X, Y: b.Y, Z: a.Z}, {X: a.X, Y: b.Y, Z: a.Z}}
	case p.Normal.Z < 0:
		return [4]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: a.X, Y: b.Y, Z: a.Z}, {X: b.X, Y: b.Y, Z: a.Z}, {X: b.X, Y: a.Y, Z: a.Z}}
	case p.Normal.X > 0:
		return [4]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: a.X, Y: b.Y, Z: a.Z}, {X: a.X, Y: b.Y, Z: b.Z}, {X: a.X, Y: a.Y, Z: b.Z}}
	case p.Normal.X < 0:
		return [4]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: a.X, Y: a.Y, Z: b.Z}, {X: a.X, Y: b.Y, Z: b.Z}, {X: a.X, Y: b.Y, Z: a.Z}}
	case p.Normal.Y > 0:
		return [4]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: a.X, Y: a.Y, Z: b.Z}, {X: b.X, Y: a.Y, Z: b.Z}, {X: b.X, Y: a.Y, Z: a.Z}}
	}
	return [4]v3.Vec{{X: a.X, Y: a.Y, Z: a.Z}, {X: b.X, Y: a.Y, Z: a.Z}, {X: b.X, Y: a.Y, Z: b.Z}, {X: a.X, Y: a.Y, Z: b.Z}}
}

// ReadFastcap parses a .qui file back into conductors, for viewing. Each
// conductor gets a single metal layer; panels land in the bucket whose side
// matches the winding of their corners. Conductors are ordered by number.
func ReadFastcap(r io.Reader) ([]*panel.ConductorFP, error) {
	sc := bufio.NewScanner(r)
	byNum := make(map[int]*panel.ConductorFP)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if line == 1 || text == "" || strings.HasPrefix(text, "*") {
			continue
		}
		f := strings.Fields(text)
		if f[0] != "Q" {
			return nil, errors.Wrapf(ErrSyntax, "line %d: only Q records are supported", line)
		}
		if len(f) < 14 {
			return nil, errors.Wrapf(ErrSyntax, "line %d: want a conductor and 12 coordinates", line)
		}
		num, err := strconv.Atoi(f[1])
		if err != nil {
			return nil, errors.Wrapf(ErrSyntax, "line %d: bad conductor %q", line, f[1])
		}
		var c [12]float64
		for i := range c {
			if c[i], err = strconv.ParseFloat(f[2+i], 64); err != nil {
				return nil, errors.Wrapf(ErrSyntax, "line %d: bad coordinate %q", line, f[2+i])
			}
		}
		p, s, err := fromQuad(c)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		cond, ok := byNum[num]
		if !ok {
			cond = panel.NewConductorFP(1, 0)
			byNum[num] = cond
		}
		cond.Bucket(0, s).PushBack(p)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading")
	}
	nums := make([]int, 0, len(byNum))
	for n := range byNum {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	out := make([]*panel.ConductorFP, len(nums))
	for i, n := range nums {
		out[i] = byNum[n]
	}
	return out, nil
}

func fromQuad(c [12]float64) (panel.Panel, solid.Side, error) {
	v0 := v3.Vec{X: c[0], Y: c[1], Z: c[2]}
	v1 := v3.Vec{X: c[3], Y: c[4], Z: c[5]}
	v2 := v3.Vec{X: c[6], Y: c[7], Z: c[8]}
	n := v1.Sub(v0).Cross(v2.Sub(v1))
	p := panel.Panel{
		Min:   v0.Min(v2),
		Max:   v0.Max(v2),
		Shape: panel.Shape{Type: panel.ShapeFlat, Decay: panel.DecayNone},
	}
	var s solid.Side
	switch {
	case n.X != 0 && n.Y == 0 && n.Z == 0:
		p.Normal, s = v3.Vec{X: sign(n.X)}, solid.SideLeft
	case n.Y != 0 && n.X == 0 && n.Z == 0:
		p.Normal, s = v3.Vec{Y: sign(n.Y)}, solid.SideBack
	case n.Z != 0 && n.X == 0 && n.Y == 0:
		p.Normal, s = v3.Vec{Z: sign(n.Z)}, solid.SideBottom
	default:
		return panel.Panel{}, 0, errors.Wrap(ErrSyntax, "quadrilateral is not axis aligned")
	}
	if p.Sign() > 0 {
		s++
	}
	return p, s, nil
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
