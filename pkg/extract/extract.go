// Package extract is the request facade over the geometry pipeline. An
// Extractor is built once per layout and then answers geometry, PWC and
// instantiable-basis requests, each of which rebuilds its floating-point
// conductor list from the integer conductors kept at load time.
package extract

import (
	"context"
	"time"

	"github.com/chazu/caplet/pkg/basis"
	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/layout"
	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
	"github.com/cockroachdb/errors"
)

// Extractor holds the metal conductors and via rectangles of one layout.
type Extractor struct {
	stack layout.Stack
	metal []*solid.Conductor
	vias  [][]geom.Rect
	load  *diag.Report

	// Workers bounds the concurrency of the float stages. Zero means no
	// limit.
	Workers int
}

// Result is the outcome of one request.
type Result struct {
	Conductors []*panel.ConductorFP
	// Report holds the warnings raised while serving the request.
	Report  *diag.Report
	Elapsed time.Duration
}

// New validates l and builds its metal conductors.
func New(l *layout.Layout) (*Extractor, error) {
	res := layout.Validate(l)
	if !res.OK() {
		return nil, res.Err()
	}
	for _, w := range res.Warnings {
		diag.Logger().Warn(w.Message, "layer", w.Layer, "polygon", w.Polygon)
	}
	rep := diag.NewReport()
	metal, err := solid.BuildMetalConductors(l, rep)
	if err != nil {
		return nil, errors.Wrap(err, "building metal conductors")
	}
	vias, err := solid.ViaRects(l, rep)
	if err != nil {
		return nil, errors.Wrap(err, "reading via rectangles")
	}
	diag.Logger().Info("layout loaded",
		"metal_layers", l.Stack.NumMetal(), "via_layers", l.Stack.NumVia(),
		"polygons", l.PolygonCount(), "metal_conductors", len(metal), "warnings", rep.Len())
	return &Extractor{stack: l.Stack, metal: metal, vias: vias, load: rep}, nil
}

// Load reads a layout through loader and builds an Extractor from it.
func Load(ctx context.Context, loader layout.Loader) (*Extractor, error) {
	l, err := loader.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading layout")
	}
	return New(l)
}

// Stack returns the layer stack of the loaded layout.
func (e *Extractor) Stack() layout.Stack { return e.stack }

// LoadReport returns the warnings raised while building the metal
// conductors.
func (e *Extractor) LoadReport() *diag.Report { return e.load }

// MetalConductors returns the number of conductors before via stitching.
func (e *Extractor) MetalConductors() int { return len(e.metal) }

// conductors stitches the vias into a fresh conductor list, checks it, and
// scales it by unit.
func (e *Extractor) conductors(unit float64, decomposed bool, rep *diag.Report) ([]*panel.ConductorFP, error) {
	if !(unit > 0) {
		return nil, errors.Newf("unit must be positive, got %g", unit)
	}
	conds, err := solid.GenerateConductorList(e.metal, e.vias, e.stack, decomposed, rep)
	if err != nil {
		return nil, errors.Wrap(err, "stitching vias")
	}
	solid.CheckSelfOverlap(conds, e.stack, decomposed, rep)
	solid.CheckZeroArea(conds, rep)
	return panel.FromConductors(conds, unit), nil
}

func (e *Extractor) finish(name string, start time.Time, conds []*panel.ConductorFP, rep *diag.Report) *Result {
	res := &Result{Conductors: conds, Report: rep, Elapsed: time.Since(start)}
	diag.Logger().Info(name+" done",
		"conductors", len(conds), "panels", panel.TotalSize(conds),
		"warnings", rep.Len(), "elapsed", res.Elapsed)
	return res
}

// Geometry returns the plain conductor surfaces with vias capped, not
// stitched into the metal panels.
func (e *Extractor) Geometry(unit float64) (*Result, error) {
	start := time.Now()
	rep := diag.NewReport()
	conds, err := e.conductors(unit, false, rep)
	if err != nil {
		return nil, err
	}
	return e.finish("geometry", start, conds, rep), nil
}

// PWC returns piecewise-constant basis panels: vias are stitched into the
// metal surfaces and every panel is cut into pieces no longer than size,
// both in the unit-scaled space.
func (e *Extractor) PWC(ctx context.Context, unit, size float64) (*Result, error) {
	start := time.Now()
	diag.Logger().Info("pwc requested", "unit", unit, "size", size)
	rep := diag.NewReport()
	conds, err := e.conductors(unit, true, rep)
	if err != nil {
		return nil, err
	}
	if err := panel.Discretize(ctx, conds, size, e.Workers); err != nil {
		return nil, errors.Wrap(err, "discretizing")
	}
	return e.finish("pwc", start, conds, rep), nil
}

// Instantiable returns the instantiable basis functions for p.
func (e *Extractor) Instantiable(ctx context.Context, unit float64, p basis.Params) (*Result, error) {
	start := time.Now()
	diag.Logger().Info("instantiable basis requested",
		"unit", unit, "arch_length", p.ArchLength, "projection_distance", p.ProjectionDistance)
	rep := diag.NewReport()
	conds, err := e.conductors(unit, false, rep)
	if err != nil {
		return nil, err
	}
	if p.Workers == 0 {
		p.Workers = e.Workers
	}
	if err := basis.Instantiate(ctx, conds, p, rep); err != nil {
		return nil, errors.Wrap(err, "instantiating basis")
	}
	return e.finish("instantiable", start, conds, rep), nil
}
