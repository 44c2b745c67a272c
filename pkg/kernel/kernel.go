// Package kernel holds the triangle mesh produced from panel lists and the
// interface for writing meshes to disk. Implementations live in
// subpackages so the rest of the system does not depend on a mesh format.
package kernel

// Exporter writes meshes to a file.
type Exporter interface {
	Export(path string, meshes []*Mesh) error
}
