// Package sdfx writes kernel meshes with the github.com/deadsy/sdfx
// renderer.
package sdfx

import (
	"github.com/chazu/caplet/pkg/kernel"
	"github.com/cockroachdb/errors"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Exporter = STLExporter{}

// STLExporter writes all meshes into one binary STL file.
type STLExporter struct{}

// Export implements kernel.Exporter.
func (STLExporter) Export(path string, meshes []*kernel.Mesh) error {
	tris := Triangles(meshes)
	if len(tris) == 0 {
		return errors.Newf("export %s: no triangles", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return errors.Wrapf(err, "export %s", path)
	}
	return nil
}

// Triangles converts meshes into sdfx triangles in mesh order.
func Triangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	n := 0
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	out := make([]*sdf.Triangle3, 0, n)
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			c := m.Triangle(i)
			out = append(out, &sdf.Triangle3{vec(c[0]), vec(c[1]), vec(c[2])})
		}
	}
	return out
}

// Bounds returns the box enclosing every vertex.
func Bounds(meshes []*kernel.Mesh) sdf.Box3 {
	var bb sdf.Box3
	first := true
	for _, m := range meshes {
		for i := 0; i < m.VertexCount(); i++ {
			p := vec(m.Vertex(uint32(i)))
			if first {
				bb = sdf.Box3{Min: p, Max: p}
				first = false
				continue
			}
			bb = bb.Extend(sdf.Box3{Min: p, Max: p})
		}
	}
	return bb
}

func vec(c [3]float32) v3.Vec {
	return v3.Vec{X: float64(c[0]), Y: float64(c[1]), Z: float64(c[2])}
}
