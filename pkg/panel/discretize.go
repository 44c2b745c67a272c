package panel

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r1"
	"golang.org/x/sync/errgroup"
)

// ErrPanelSize is returned for a non-positive discretization size.
var ErrPanelSize = errors.New("panel size must be positive")

// Discretize splits every panel into a uniform grid of pieces no longer than
// size along either in-plane axis, for piecewise-constant basis functions.
// Conductors are processed concurrently, at most workers at a time.
func Discretize(ctx context.Context, conds []*ConductorFP, size float64, workers int) error {
	if !(size > 0) {
		return errors.Wrapf(ErrPanelSize, "size %g", size)
	}
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, c := range conds {
		g.Go(func() error {
			for l := range c.Layers {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, b := range c.Layers[l] {
					var out []Panel
					for _, p := range b.All() {
						out = append(out, Split(p, size)...)
					}
					b.Reset(out)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Split cuts p into ceil(len/size) equal pieces along each in-plane axis.
func Split(p Panel, size float64) []Panel {
	if p.IsEmpty() {
		return nil
	}
	a, b := inPlane(p.Axis())
	sa, sb := p.Span(a), p.Span(b)
	na := pieces(sa.Length(), size)
	nb := pieces(sb.Length(), size)
	out := make([]Panel, 0, na*nb)
	for i := 0; i < na; i++ {
		ia := cut(sa.Lo, sa.Hi, i, na)
		for j := 0; j < nb; j++ {
			q := p
			q.SetSpan(a, ia)
			q.SetSpan(b, cut(sb.Lo, sb.Hi, j, nb))
			out = append(out, q)
		}
	}
	return out
}

// pieces tolerates the rounding of unit-scaled lengths, so an exact
// multiple of size does not grow an extra sliver.
func pieces(length, size float64) int {
	return max(1, int(math.Ceil(length/size-1e-9)))
}

func cut(lo, hi float64, i, n int) r1.Interval {
	iv := r1.Interval{Lo: lo + (hi-lo)*float64(i)/float64(n), Hi: lo + (hi-lo)*float64(i+1)/float64(n)}
	if i == n-1 {
		iv.Hi = hi
	}
	return iv
}
