// Package geom defines the integer-grid geometry of a layered Manhattan
// layout: points, polygons, axis-aligned rectangles, the polygon decomposer
// and the rectangle-set algebra (merge and decompose) built on top of them.
package geom
