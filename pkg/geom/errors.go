package geom

import "github.com/cockroachdb/errors"

var (
	// ErrNotManhattan is returned for a polygon whose edges do not alternate
	// between horizontal and vertical, or that has fewer than four vertices.
	ErrNotManhattan = errors.New("geometry is not Manhattan")

	// ErrShapeTransform is returned when a ring that should describe a single
	// rectangle carries more than five points.
	ErrShapeTransform = errors.New("polygon cannot be transformed into a rectangle")
)
