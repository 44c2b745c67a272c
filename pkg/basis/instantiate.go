package basis

import (
	"context"

	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
	"golang.org/x/sync/errgroup"
)

// Params tunes the basis pipeline. Lengths are in the unit-scaled space of
// the panels.
type Params struct {
	// ArchLength is the arch extent. Zero disables arches, a negative value
	// disables the whole pipeline.
	ArchLength float64
	// ProjectionDistance is the exclusive upper bound on the plane gap of
	// a facing pair.
	ProjectionDistance float64
	// MergeDistance is the distance tolerance under which two adjacent
	// projections merge.
	MergeDistance float64
	// Margin is the relative edge tolerance of the coincidence test.
	Margin     float64
	ArchSource ArchSource
	// Workers bounds the number of buckets processed at once. Zero means
	// no limit.
	Workers int
}

// DefaultParams returns the settings for an arch length of archLength.
func DefaultParams(archLength float64) Params {
	return Params{
		ArchLength:         archLength,
		ProjectionDistance: 1e-6,
		MergeDistance:      1e-9,
		Margin:             0.1,
	}
}

// Instantiate rewrites the metal buckets of conds in place. Every support
// first receives the projections of facing supports of the other
// conductors; then each bucket is merged, deduplicated, pruned and, for a
// positive arch length, extended with arches. Buckets are independent, so
// each one is handed to a single worker; candidate sources come from an
// index built before any bucket changes.
func Instantiate(ctx context.Context, conds []*panel.ConductorFP, p Params, rep *diag.Report) error {
	if p.ArchLength < 0 || len(conds) == 0 {
		return nil
	}
	ix := panel.NewSupportIndex(conds)
	diag.Logger().Debug("basis: support index built", "panels", ix.Len(), "conductors", len(conds))

	g, ctx := errgroup.WithContext(ctx)
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	}
	for ci, c := range conds {
		for l := 0; l < c.NumMetal; l++ {
			for s := solid.Side(0); s < solid.NumSides; s++ {
				b := c.Bucket(l, s)
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					instantiateBucket(b, ci, s, ix, p, rep)
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	diag.Logger().Debug("basis: instantiated", "panels", panel.TotalSize(conds))
	return nil
}

func instantiateBucket(b *panel.Bucket, cond int, s solid.Side, ix *panel.SupportIndex, p Params, rep *diag.Report) {
	for _, src := range ix.Near(b.Supports(), p.ProjectionDistance, s.Opposite(), cond) {
		InsertProjections(b, src.Panel, p.ProjectionDistance)
	}
	MergeProjections(b, p.MergeDistance)
	AbsorbCommonSupport(b)
	RemoveBadProjections(b, p.Margin, rep)
	if p.ArchLength > 0 {
		GenerateArch(b, p.ArchLength, p.ArchSource)
	}
}
