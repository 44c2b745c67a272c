package geofile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/chazu/caplet/pkg/panel"
	"github.com/chazu/caplet/pkg/solid"
)

// CapletWriter writes the .caplet panel list: the conductor count, the
// per-conductor panel counts, the total, then one record per panel.
type CapletWriter struct{}

var _ panel.Writer = CapletWriter{}

var shapeCode = map[panel.ShapeType]string{
	panel.ShapeFlat: "F 1 ",
	panel.ShapeArch: "A 1 ",
	panel.ShapeSide: "S 1 ",
}

// Write ignores name; the format has no title line.
func (CapletWriter) Write(w io.Writer, _ string, conds []*panel.ConductorFP) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(conds))
	for _, c := range conds {
		fmt.Fprintf(bw, "%d ", c.Size())
	}
	fmt.Fprintf(bw, "\n%d\n", panel.TotalSize(conds))
	for _, c := range conds {
		c.Each(func(_ int, _ solid.Side, p panel.Panel) {
			writeCapletLine(bw, p)
		})
	}
	return bw.Flush()
}

func writeCapletLine(w io.Writer, p panel.Panel) {
	shift := 0.0
	if p.Shape.Projection {
		shift = 1
	}
	fmt.Fprintf(w, "%s%14.6g%14.6g%14.6g%14.6g%14.6g%14.6g %d %d%14.6g%14.6g\n",
		shapeCode[p.Shape.Type],
		p.Min.X, p.Max.X, p.Min.Y, p.Max.Y, p.Min.Z, p.Max.Z,
		p.Axis(), int(p.Shape.Decay), p.Shape.Distance, shift)
}
