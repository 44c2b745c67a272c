package tessellate_test

import (
	"testing"

	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
	"github.com/chazu/caplet/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func face(n, lo, hi v3.Vec) panel.Panel {
	return panel.Panel{Normal: n, Min: lo, Max: hi}
}

// cube returns a conductor holding the six faces of [0,1]x[0,2]x[0,3].
func cube() *panel.ConductorFP {
	c := panel.NewConductorFP(1, 0)
	add := func(s solid.Side, p panel.Panel) { c.Bucket(0, s).PushBack(p) }
	add(solid.SideLeft, face(v3.Vec{X: -1}, v3.Vec{}, v3.Vec{Y: 2, Z: 3}))
	add(solid.SideRight, face(v3.Vec{X: 1}, v3.Vec{X: 1}, v3.Vec{X: 1, Y: 2, Z: 3}))
	add(solid.SideBack, face(v3.Vec{Y: -1}, v3.Vec{}, v3.Vec{X: 1, Z: 3}))
	add(solid.SideFront, face(v3.Vec{Y: 1}, v3.Vec{Y: 2}, v3.Vec{X: 1, Y: 2, Z: 3}))
	add(solid.SideBottom, face(v3.Vec{Z: -1}, v3.Vec{}, v3.Vec{X: 1, Y: 2}))
	add(solid.SideTop, face(v3.Vec{Z: 1}, v3.Vec{Z: 3}, v3.Vec{X: 1, Y: 2, Z: 3}))
	return c
}

func vec(c [3]float32) v3.Vec {
	return v3.Vec{X: float64(c[0]), Y: float64(c[1]), Z: float64(c[2])}
}

func TestTessellateCube(t *testing.T) {
	meshes := tessellate.Tessellate([]*panel.ConductorFP{cube()}, tessellate.Options{})
	require.Len(t, meshes, 1)
	m := meshes[0]
	assert.Equal(t, "conductor 0", m.Name)
	assert.Equal(t, tessellate.Palette[0], m.Color)
	require.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, 24, m.VertexCount())

	// Every triangle winds counter-clockwise around its stored normal.
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		a, b, c := vec(tri[0]), vec(tri[1]), vec(tri[2])
		geomN := b.Sub(a).Cross(c.Sub(b))
		k := m.Indices[3*i]
		stored := v3.Vec{X: float64(m.Normals[3*k]), Y: float64(m.Normals[3*k+1]), Z: float64(m.Normals[3*k+2])}
		assert.Greater(t, geomN.Dot(stored), 0.0, "triangle %d", i)
	}
}

func TestTessellateOptions(t *testing.T) {
	c := cube()
	top := c.Bucket(0, solid.SideTop)
	p := top.At(top.Front())
	p.Shape.Projection = true
	top.PushBack(p)
	p.Shape = panel.Shape{Type: panel.ShapeArch, Decay: panel.DecayX, Distance: 1}
	top.PushBack(p)

	all := tessellate.Tessellate([]*panel.ConductorFP{c}, tessellate.Options{})
	assert.Equal(t, 16, all[0].TriangleCount())

	supports := tessellate.Tessellate([]*panel.ConductorFP{c}, tessellate.Options{SupportsOnly: true, Scale: 10})
	assert.Equal(t, 12, supports[0].TriangleCount())
	var maxZ float32
	for i := 0; i < supports[0].VertexCount(); i++ {
		maxZ = max(maxZ, supports[0].Vertex(uint32(i))[2])
	}
	assert.Equal(t, float32(30), maxZ)
}

func TestTessellatePalette(t *testing.T) {
	conds := make([]*panel.ConductorFP, len(tessellate.Palette)+1)
	for i := range conds {
		conds[i] = panel.NewConductorFP(1, 0)
	}
	meshes := tessellate.Tessellate(conds, tessellate.Options{})
	require.Len(t, meshes, len(conds))
	assert.Equal(t, tessellate.Palette[0], meshes[len(conds)-1].Color)
	assert.True(t, meshes[0].IsEmpty())
}
