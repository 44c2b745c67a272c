package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		mesh      Mesh
		vertices  int
		triangles int
	}{
		{"empty", Mesh{}, 0, 0},
		{"one vertex", Mesh{Vertices: []float32{1, 2, 3}}, 1, 0},
		{"two triangles", Mesh{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
			Indices:  []uint32{0, 1, 2, 2, 3, 0},
		}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.vertices, tt.mesh.VertexCount())
			assert.Equal(t, tt.triangles, tt.mesh.TriangleCount())
			assert.Equal(t, tt.vertices == 0, tt.mesh.IsEmpty())
		})
	}
}

func TestAddQuad(t *testing.T) {
	var m Mesh
	up := [3]float32{0, 0, 1}
	m.AddQuad([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{1, 1, 0}, [3]float32{0, 1, 0}, up)
	m.AddQuad([3]float32{0, 0, 1}, [3]float32{1, 0, 1}, [3]float32{1, 1, 1}, [3]float32{0, 1, 1}, up)

	require.Equal(t, 8, m.VertexCount())
	require.Equal(t, 4, m.TriangleCount())
	assert.Len(t, m.Normals, len(m.Vertices))
	assert.Equal(t, [3][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}}, m.Triangle(2))
	assert.Equal(t, [3][3]float32{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}}, m.Triangle(1))
}
