package geom

import (
	"testing"

	"github.com/chazu/caplet/pkg/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAbuttingSquares(t *testing.T) {
	out := Merge([]Rect{R(0, 0, 10, 10), R(10, 0, 20, 10)})
	require.Len(t, out, 1)
	assert.Equal(t, R(0, 0, 20, 10), out[0])
}

func TestMergeLeavesInputAlone(t *testing.T) {
	in := []Rect{R(0, 0, 10, 10), R(0, 10, 10, 20)}
	_ = Merge(in)
	assert.Equal(t, R(0, 0, 10, 10), in[0])
	assert.Len(t, in, 2)
}

func TestMergeRespectsNormal(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(10, 0, 20, 10)
	b.Normal = NormalZPlus
	assert.Len(t, Merge([]Rect{a, b}), 2)
}

func TestMergeRestartsScan(t *testing.T) {
	// The 2x1 strip only becomes mergeable with the row above once its
	// right half has been absorbed.
	in := []Rect{R(0, 0, 10, 10), R(0, 10, 20, 20), R(10, 0, 20, 10)}
	out := Merge(in)
	require.Len(t, out, 1)
	assert.Equal(t, R(0, 0, 20, 20), out[0])
}

func TestMergeIdempotent(t *testing.T) {
	in := []Rect{
		R(0, 0, 10, 10), R(10, 0, 20, 10), R(20, 0, 30, 5),
		R(0, 10, 5, 20), R(5, 10, 10, 20), R(30, 0, 40, 5),
		R(0, 20, 10, 25), R(50, 50, 60, 60),
	}
	once := Merge(in)
	assert.Equal(t, once, Merge(once))
}

func TestDecomposeDisjointAndAreaPreserving(t *testing.T) {
	tests := []struct {
		name  string
		in    []Rect
		union int
	}{
		{"cross", []Rect{R(0, 10, 30, 20), R(10, 0, 20, 30)}, 500},
		{"nested", []Rect{R(0, 0, 30, 30), R(10, 10, 20, 20)}, 900},
		{"corner overlap", []Rect{R(0, 0, 20, 20), R(10, 10, 30, 30)}, 700},
		{"duplicate", []Rect{R(0, 0, 10, 10), R(0, 0, 10, 10)}, 100},
		{"three way", []Rect{R(0, 0, 20, 10), R(10, 0, 30, 10), R(5, 5, 25, 15)}, 400},
		{"disjoint", []Rect{R(0, 0, 10, 10), R(20, 0, 30, 10)}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := diag.NewReport()
			out := Decompose(tt.in, rep)
			total := 0
			for i, a := range out {
				total += a.Area()
				for _, b := range out[i+1:] {
					assert.False(t, a.Overlaps(b), "%s overlaps %s", a, b)
				}
			}
			assert.Equal(t, tt.union, total)
			assert.Zero(t, rep.Count(diag.CodeDecomposeCorner))
		})
	}
}

func TestDecomposeLargestFirst(t *testing.T) {
	out := Decompose([]Rect{R(10, 0, 20, 30), R(0, 10, 40, 20)}, nil)
	require.NotEmpty(t, out)
	assert.Equal(t, R(0, 10, 40, 20), out[0], "largest rectangle survives whole")
}

func TestDecomposeAxisChoice(t *testing.T) {
	// I spans J's full height inside J's x range: J is cut along x only.
	i := R(0, 0, 100, 100)
	j := R(50, 20, 150, 80)
	out := carve(i, j)
	require.Len(t, out, 1)
	assert.Equal(t, R(100, 20, 150, 80), out[0])
}

// Decompose never leaves an overlap behind, so the corner check is only
// reachable on hand-built input.
func TestCheckCornersReportsLeftoverOverlap(t *testing.T) {
	rep := diag.NewReport()
	checkCorners([]Rect{R(0, 0, 20, 20), R(10, 10, 30, 30), R(40, 0, 50, 10)}, rep)
	assert.Equal(t, 1, rep.Count(diag.CodeDecomposeCorner))

	rep = diag.NewReport()
	checkCorners(Decompose([]Rect{R(0, 0, 20, 20), R(10, 10, 30, 30)}, nil), rep)
	assert.Zero(t, rep.Len())
}
