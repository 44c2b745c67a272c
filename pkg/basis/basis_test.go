package basis

import (
	"context"
	"testing"

	"github.com/chazu/caplet/pkg/diag"
	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zPanel(sign, x1, y1, x2, y2, z float64) panel.Panel {
	return panel.Panel{
		Normal: v3.Vec{Z: sign},
		Min:    v3.Vec{X: x1, Y: y1, Z: z},
		Max:    v3.Vec{X: x2, Y: y2, Z: z},
		Shape:  panel.Shape{Type: panel.ShapeFlat, Decay: panel.DecayNone},
	}
}

func proj(p panel.Panel, d float64) panel.Panel {
	p.Shape.Projection = true
	p.Shape.Distance = d
	return p
}

func projections(b *panel.Bucket) []panel.Panel {
	var out []panel.Panel
	for _, p := range b.All() {
		if p.Shape.Projection {
			out = append(out, p)
		}
	}
	return out
}

func TestInsertProjectionsFacing(t *testing.T) {
	tests := []struct {
		name      string
		src       panel.Panel
		threshold float64
		want      int
	}{
		{"one unit apart", zPanel(1, 0, 0, 10, 10, 4), 2, 1},
		{"beyond threshold", zPanel(1, 0, 0, 10, 10, 4), 1, 0},
		{"same direction", zPanel(-1, 0, 0, 10, 10, 4), 2, 0},
		{"behind", zPanel(1, 0, 0, 10, 10, 6), 2, 0},
		{"no footprint overlap", zPanel(1, 10, 0, 20, 10, 4), 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := panel.NewBucket(zPanel(-1, 0, 0, 10, 10, 5))
			hs := InsertProjections(b, tt.src, tt.threshold)
			require.Len(t, hs, tt.want)
			if tt.want == 0 {
				return
			}
			p := b.At(hs[0])
			assert.True(t, p.Shape.Projection)
			assert.Equal(t, 1.0, p.Shape.Distance)
			assert.Equal(t, 5.0, p.Plane())
			assert.Equal(t, b.Back(), hs[0])
		})
	}
}

func TestInsertProjectionsSkipsExistingProjections(t *testing.T) {
	b := panel.NewBucket(zPanel(-1, 0, 0, 10, 10, 5))
	InsertProjections(b, zPanel(1, 0, 0, 5, 10, 4), 2)
	hs := InsertProjections(b, zPanel(1, 5, 0, 10, 10, 3), 3)
	require.Len(t, hs, 1)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 2.0, b.At(hs[0]).Shape.Distance)
}

func TestMergeProjections(t *testing.T) {
	support := zPanel(-1, 0, 0, 20, 20, 5)
	tests := []struct {
		name  string
		in    []panel.Panel
		want  int
		first panel.Panel
	}{
		{
			name:  "shared x range at equal distance",
			in:    []panel.Panel{proj(zPanel(-1, 0, 0, 5, 5, 5), 1), proj(zPanel(-1, 0, 5, 5, 9, 5), 1)},
			want:  1,
			first: proj(zPanel(-1, 0, 0, 5, 9, 5), 1),
		},
		{
			name:  "shared y range at equal distance",
			in:    []panel.Panel{proj(zPanel(-1, 0, 0, 5, 5, 5), 1), proj(zPanel(-1, 5, 0, 8, 5, 5), 1)},
			want:  1,
			first: proj(zPanel(-1, 0, 0, 8, 5, 5), 1),
		},
		{
			name:  "distances too far apart",
			in:    []panel.Panel{proj(zPanel(-1, 0, 0, 5, 5, 5), 1), proj(zPanel(-1, 0, 5, 5, 9, 5), 2)},
			want:  2,
			first: proj(zPanel(-1, 0, 0, 5, 5, 5), 1),
		},
		{
			name:  "nearer container absorbs",
			in:    []panel.Panel{proj(zPanel(-1, 0, 0, 10, 10, 5), 1), proj(zPanel(-1, 2, 2, 4, 4, 5), 3)},
			want:  1,
			first: proj(zPanel(-1, 0, 0, 10, 10, 5), 1),
		},
		{
			name:  "farther container keeps the nearer piece",
			in:    []panel.Panel{proj(zPanel(-1, 0, 0, 10, 10, 5), 3), proj(zPanel(-1, 2, 2, 4, 4, 5), 1)},
			want:  2,
			first: proj(zPanel(-1, 0, 0, 10, 10, 5), 3),
		},
		{
			name:  "apart",
			in:    []panel.Panel{proj(zPanel(-1, 0, 0, 5, 5, 5), 1), proj(zPanel(-1, 6, 0, 9, 5, 5), 1)},
			want:  2,
			first: proj(zPanel(-1, 0, 0, 5, 5, 5), 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := panel.NewBucket(append([]panel.Panel{support}, tt.in...)...)
			MergeProjections(b, 1e-9)
			got := projections(b)
			require.Len(t, got, tt.want)
			assert.Equal(t, tt.first, got[0])
			assert.Equal(t, support, b.At(b.Front()), "supports are untouched")
		})
	}
}

func TestMergeProjectionsLooseIgnoresDistance(t *testing.T) {
	b := panel.NewBucket(proj(zPanel(-1, 0, 0, 5, 5, 5), 1), proj(zPanel(-1, 0, 5, 5, 9, 5), 7))
	MergeProjectionsLoose(b)
	require.Equal(t, 1, b.Len())
	assert.Equal(t, 9.0, b.At(b.Front()).Max.Y)
}

func TestMergeProjectionsXWall(t *testing.T) {
	wall := func(y1, y2 float64) panel.Panel {
		return proj(panel.Panel{
			Normal: v3.Vec{X: 1},
			Min:    v3.Vec{X: 3, Y: y1, Z: 0},
			Max:    v3.Vec{X: 3, Y: y2, Z: 4},
		}, 1)
	}
	b := panel.NewBucket(wall(0, 2), wall(2, 6), wall(6, 7))
	MergeProjections(b, 1e-9)
	require.Equal(t, 1, b.Len())
	assert.Equal(t, 0.0, b.At(b.Front()).Min.Y)
	assert.Equal(t, 7.0, b.At(b.Front()).Max.Y)
}

func TestMergeProjectionsWallNeedsEqualHeight(t *testing.T) {
	tests := []struct {
		name string
		a, b panel.Panel
	}{
		{
			name: "x wall",
			a:    panel.Panel{Normal: v3.Vec{X: 1}, Min: v3.Vec{X: 3, Y: 0, Z: 0}, Max: v3.Vec{X: 3, Y: 4, Z: 1}},
			b:    panel.Panel{Normal: v3.Vec{X: 1}, Min: v3.Vec{X: 3, Y: 2, Z: 0}, Max: v3.Vec{X: 3, Y: 6, Z: 3}},
		},
		{
			name: "y wall",
			a:    panel.Panel{Normal: v3.Vec{Y: -1}, Min: v3.Vec{X: 0, Y: 3, Z: 0}, Max: v3.Vec{X: 4, Y: 3, Z: 1}},
			b:    panel.Panel{Normal: v3.Vec{Y: -1}, Min: v3.Vec{X: 4, Y: 3, Z: 0}, Max: v3.Vec{X: 6, Y: 3, Z: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := panel.NewBucket(proj(tt.a, 1), proj(tt.b, 1))
			MergeProjections(b, 1e-9)
			assert.Len(t, projections(b), 2)

			tt.b.Min.Z, tt.b.Max.Z = tt.a.Min.Z, tt.a.Max.Z
			b = panel.NewBucket(proj(tt.a, 1), proj(tt.b, 1))
			MergeProjections(b, 1e-9)
			assert.Len(t, projections(b), 1)
		})
	}
}

func TestAbsorbCommonSupport(t *testing.T) {
	a := zPanel(1, 0, 0, 1, 1, 0)
	c := zPanel(1, 1, 0, 2, 1, 0)
	dup := a
	dup.Shape.Distance = 3
	b := panel.NewBucket(a, c, dup, a, c)
	AbsorbCommonSupport(b)
	assert.Equal(t, []panel.Panel{a, c}, b.Panels())
}

func TestRemoveBadProjectionsDropsFarthest(t *testing.T) {
	support := zPanel(-1, 0, 0, 10, 10, 5)
	near := proj(zPanel(-1, 0, 0, 5, 10, 5), 1)
	far := proj(zPanel(-1, 5, 0, 10, 10, 5), 2)
	b := panel.NewBucket(support, near, far)

	rep := diag.NewReport()
	RemoveBadProjections(b, 0.1, rep)
	assert.Equal(t, []panel.Panel{support, near}, b.Panels())
	assert.Zero(t, rep.Len())
}

func TestRemoveBadProjectionsLeavesNoCoincidentGroup(t *testing.T) {
	support := zPanel(-1, 0, 0, 10, 10, 5)
	b := panel.NewBucket(support,
		proj(zPanel(-1, 0, 0, 4, 10, 5), 3),
		proj(zPanel(-1, 4, 0, 7, 10, 5), 1),
		proj(zPanel(-1, 7, 0, 10, 10, 5), 2),
		proj(zPanel(-1, 0.5, 0.5, 9.5, 9.5, 5), 4),
	)
	RemoveBadProjections(b, 0.1, nil)

	merged := panel.NewBucket(projections(b)...)
	MergeProjectionsLoose(merged)
	for _, m := range merged.All() {
		assert.False(t, m.IsCoincidental(support, 0.1), "still coincident: %s", m)
	}
	for _, p := range projections(b) {
		assert.NotEqual(t, 4.0, p.Shape.Distance, "the farthest component goes first")
	}
}

func TestRemoveBadProjectionsWithoutComponent(t *testing.T) {
	support := zPanel(-1, 0, 0, 10, 10, 5)
	b := panel.NewBucket(support, proj(zPanel(-1, 0, 0, 10, 10, 5), 0))
	rep := diag.NewReport()
	RemoveBadProjections(b, 0.1, rep)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 1, rep.Count(diag.CodeCoincidentNoOwner))
}

func TestGenerateArch(t *testing.T) {
	support := zPanel(-1, 0, 0, 10, 10, 5)

	t.Run("no projection", func(t *testing.T) {
		b := panel.NewBucket(support)
		GenerateArch(b, 3, ArchFromProjections)
		assert.Equal(t, 1, b.Len())
	})

	t.Run("only the edge inside the support grows", func(t *testing.T) {
		p := proj(zPanel(-1, 0, 0, 4, 10, 5), 1)
		b := panel.NewBucket(support, p)
		GenerateArch(b, 3, ArchFromProjections)

		got := b.Panels()
		require.Len(t, got, 3)
		assert.Equal(t, p, got[1])
		arch := got[2]
		assert.Equal(t, panel.ShapeArch, arch.Shape.Type)
		assert.Equal(t, panel.DecayX, arch.Shape.Decay)
		assert.False(t, arch.Shape.Projection)
		assert.Equal(t, 1.0, arch.Shape.Distance)
		assert.Equal(t, 4.0, arch.Min.X)
		assert.Equal(t, 7.0, arch.Max.X)
	})

	t.Run("clipped at the support edge", func(t *testing.T) {
		p := proj(zPanel(-1, 2, 4, 8, 6, 5), 2)
		b := panel.NewBucket(support, p)
		GenerateArch(b, 5, ArchFromProjections)

		got := b.Panels()
		require.Len(t, got, 6)
		lower := got[2]
		assert.Equal(t, panel.DecayY, lower.Shape.Decay)
		assert.Equal(t, -2.0, lower.Shape.Distance)
		assert.Equal(t, 0.0, lower.Min.Y)
		assert.Equal(t, 4.0, lower.Max.Y)
		upper := got[3]
		assert.Equal(t, 6.0, upper.Min.Y)
		assert.Equal(t, 10.0, upper.Max.Y)
	})

	t.Run("from supports", func(t *testing.T) {
		left := zPanel(1, 0, 0, 10, 10, 0)
		right := zPanel(1, 10, 0, 20, 10, 0)
		b := panel.NewBucket(left, right)
		GenerateArch(b, 3, ArchFromSupports)

		got := b.Panels()
		require.Len(t, got, 4)
		assert.Equal(t, left, got[0])
		assert.Equal(t, 10.0, got[1].Min.X)
		assert.Equal(t, 13.0, got[1].Max.X)
		assert.Equal(t, right, got[2])
		assert.Equal(t, 7.0, got[3].Min.X)
		assert.Equal(t, -3.0, got[3].Shape.Distance)
	})
}

func facingPair() []*panel.ConductorFP {
	a := panel.NewConductorFP(1, 0)
	a.Bucket(0, solid.SideTop).PushBack(zPanel(1, 0, 0, 4, 10, 4))
	b := panel.NewConductorFP(1, 0)
	b.Bucket(0, solid.SideBottom).PushBack(zPanel(-1, 0, 0, 10, 10, 5))
	return []*panel.ConductorFP{a, b}
}

func TestInstantiate(t *testing.T) {
	conds := facingPair()
	p := DefaultParams(3)
	p.ProjectionDistance = 2
	p.Workers = 2
	rep := diag.NewReport()
	require.NoError(t, Instantiate(context.Background(), conds, p, rep))

	top := conds[0].Bucket(0, solid.SideTop).Panels()
	assert.Len(t, top, 1, "a projection covering the whole support is pruned")

	bottom := conds[1].Bucket(0, solid.SideBottom).Panels()
	require.Len(t, bottom, 3)
	assert.True(t, bottom[1].Shape.Projection)
	assert.Equal(t, 1.0, bottom[1].Shape.Distance)
	assert.Equal(t, 4.0, bottom[1].Max.X)
	assert.Equal(t, panel.ShapeArch, bottom[2].Shape.Type)
	assert.Equal(t, 7.0, bottom[2].Max.X)
}

func TestInstantiateDisabled(t *testing.T) {
	conds := facingPair()
	require.NoError(t, Instantiate(context.Background(), conds, DefaultParams(-1), nil))
	assert.Equal(t, 2, panel.TotalSize(conds))

	conds = facingPair()
	p := DefaultParams(0)
	p.ProjectionDistance = 2
	require.NoError(t, Instantiate(context.Background(), conds, p, nil))
	assert.Equal(t, 3, panel.TotalSize(conds), "projection only, no arches")
}

func TestInstantiateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Instantiate(ctx, facingPair(), DefaultParams(1), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
