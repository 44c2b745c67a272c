package geom

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ring(xy ...int) Polygon {
	p := make(Polygon, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		p = append(p, Pt(xy[i], xy[i+1]))
	}
	return p
}

func TestIsManhattan(t *testing.T) {
	tests := []struct {
		name string
		p    Polygon
		want bool
	}{
		{"square", ring(0, 0, 10, 0, 10, 10, 0, 10), true},
		{"clockwise square", ring(0, 0, 0, 10, 10, 10, 10, 0), true},
		{"L shape", ring(0, 0, 20, 0, 20, 10, 10, 10, 10, 20, 0, 20), true},
		{"triangle", ring(0, 0, 10, 0, 0, 10), false},
		{"diagonal edge", ring(0, 0, 10, 0, 12, 10, 0, 10), false},
		{"collinear vertex", ring(0, 0, 5, 0, 10, 0, 10, 10, 0, 10, 0, 5), false},
		{"zero length edge", ring(0, 0, 0, 0, 10, 0, 10, 10), false},
		{"too few", ring(0, 0, 10, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.IsManhattan())
		})
	}
}

func TestPolygonOpenDropsClosingVertex(t *testing.T) {
	p := ring(0, 0, 10, 0, 10, 10, 0, 10, 0, 0)
	assert.Len(t, p.Open(), 4)
	assert.True(t, p.Open().IsManhattan())
}

func TestPolygonArea(t *testing.T) {
	assert.InDelta(t, 100.0, ring(0, 0, 10, 0, 10, 10, 0, 10).Area(), 1e-9)
	assert.InDelta(t, 100.0, ring(0, 0, 0, 10, 10, 10, 10, 0).Area(), 1e-9)
	assert.InDelta(t, 300.0, ring(0, 0, 20, 0, 20, 10, 10, 10, 10, 20, 0, 20).Area(), 1e-9)
}

func TestRectFromPolygon(t *testing.T) {
	r, err := RectFromPolygon(ring(2, 3, 7, 3, 7, 9, 2, 9))
	require.NoError(t, err)
	assert.Equal(t, R(2, 3, 7, 9), r)

	r, err = RectFromPolygon(ring(2, 3, 7, 3, 7, 9, 2, 9, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 30, r.Area())

	_, err = RectFromPolygon(ring(0, 0, 20, 0, 20, 10, 10, 10, 10, 20, 0, 20))
	assert.True(t, errors.Is(err, ErrShapeTransform))
}

func TestRectPredicates(t *testing.T) {
	a := R(0, 0, 10, 10)
	assert.True(t, a.Overlaps(R(5, 5, 15, 15)))
	assert.False(t, a.Overlaps(R(10, 0, 20, 10)), "shared edge is not an overlap")
	assert.True(t, a.Touches(R(10, 0, 20, 10)))
	assert.True(t, a.Touches(R(10, 10, 20, 20)), "shared corner touches")
	assert.False(t, a.Touches(R(11, 0, 20, 10)))

	assert.True(t, R(2, 2, 20, 20).HasCornerInside(a))
	assert.False(t, R(-5, -5, 20, 20).HasCornerInside(a))

	wall := Rect{X1: 0, X2: 0, Y1: 0, Y2: 10, Z1: 0, Z2: 5, Normal: NormalXMinus}
	assert.Equal(t, 50, wall.Area())
	assert.Equal(t, -1, Rect{X2: 1, Y2: 1, Z2: 1}.Area())
	assert.True(t, wall.Overlaps3D(Rect{Y1: 5, Y2: 15, Z1: 2, Z2: 3, Normal: NormalXMinus}))
	assert.False(t, wall.Overlaps3D(Rect{X1: 1, X2: 1, Y1: 5, Y2: 15, Z1: 2, Z2: 3}))
}
