// Package geofile reads and writes the text formats around the pipeline:
// the .geo layout format, the .caplet panel list and the FastCap .qui
// quadrilateral list.
package geofile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/layout"
	"github.com/cockroachdb/errors"
)

// ErrSyntax marks malformed input.
var ErrSyntax = errors.New("syntax error")

// Reader loads a .geo file from disk.
type Reader struct {
	Path string
}

var _ layout.Loader = (*Reader)(nil)

// Load opens Path and parses it.
func (r *Reader) Load(ctx context.Context) (*layout.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", r.Path)
	}
	defer f.Close()
	l, err := ParseGeo(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", r.Path)
	}
	return l, nil
}

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

func (lr *lineReader) next() (string, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return "", errors.Wrap(err, "reading")
		}
		return "", errors.Wrapf(ErrSyntax, "line %d: unexpected end of input", lr.line+1)
	}
	lr.line++
	return lr.sc.Text(), nil
}

// ints reads one line and returns its first n comma or space separated
// integers. Extra fields are ignored.
func (lr *lineReader) ints(n int) ([]int, error) {
	s, err := lr.next()
	if err != nil {
		return nil, err
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(fields) < n {
		return nil, errors.Wrapf(ErrSyntax, "line %d: want %d integers, got %q", lr.line, n, s)
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, errors.Wrapf(ErrSyntax, "line %d: %q is not an integer", lr.line, fields[i])
		}
		out[i] = v
	}
	return out, nil
}

// maxCount bounds every count read from a file, so a corrupt header cannot
// drive a huge allocation.
const maxCount = 1 << 20

func (lr *lineReader) count(what string) (int, error) {
	v, err := lr.ints(1)
	if err != nil {
		return 0, err
	}
	if v[0] < 0 {
		return 0, errors.Wrapf(ErrSyntax, "line %d: negative %s count %d", lr.line, what, v[0])
	}
	if v[0] > maxCount {
		return 0, errors.Wrapf(ErrSyntax, "line %d: %s count %d exceeds %d", lr.line, what, v[0], maxCount)
	}
	return v[0], nil
}

// ParseGeo reads a .geo layout: the metal definitions, the via
// definitions, then the polygons of every metal layer followed by every via
// layer. Each polygon lists its closing vertex, which is skipped.
func ParseGeo(r io.Reader) (*layout.Layout, error) {
	lr := &lineReader{sc: bufio.NewScanner(r)}

	nMetal, err := lr.count("metal")
	if err != nil {
		return nil, err
	}
	var s layout.Stack
	s.Metals = make([]layout.Elevation, nMetal)
	for range nMetal {
		v, err := lr.ints(3)
		if err != nil {
			return nil, err
		}
		if v[0] < 0 || v[0] >= nMetal {
			return nil, errors.Wrapf(ErrSyntax, "line %d: metal index %d out of range", lr.line, v[0])
		}
		s.Metals[v[0]] = layout.Elevation{Bottom: v[1], Top: v[2]}
	}

	nVia, err := lr.count("via")
	if err != nil {
		return nil, err
	}
	s.Vias = make([]layout.Via, nVia)
	for i := range nVia {
		v, err := lr.ints(5)
		if err != nil {
			return nil, err
		}
		s.Vias[i] = layout.Via{
			Elevation:   layout.Elevation{Bottom: v[1], Top: v[2]},
			BottomMetal: v[3],
			TopMetal:    v[4],
		}
	}

	l := layout.New(s)
	for i := range nMetal + nVia {
		polys, err := readLayer(lr)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i)
		}
		if i < nMetal {
			l.Metal[i] = polys
		} else {
			l.Via[i-nMetal] = polys
		}
	}
	return l, nil
}

func readLayer(lr *lineReader) ([]geom.Polygon, error) {
	if _, err := lr.ints(1); err != nil {
		return nil, err
	}
	nPoly, err := lr.count("polygon")
	if err != nil {
		return nil, err
	}
	polys := make([]geom.Polygon, 0, nPoly)
	for range nPoly {
		nPoint, err := lr.count("point")
		if err != nil {
			return nil, err
		}
		if nPoint < 1 {
			return nil, errors.Wrapf(ErrSyntax, "line %d: empty polygon", lr.line)
		}
		p := make(geom.Polygon, 0, nPoint-1)
		for range nPoint - 1 {
			v, err := lr.ints(2)
			if err != nil {
				return nil, err
			}
			p = append(p, geom.Pt(v[0], v[1]))
		}
		if _, err := lr.next(); err != nil {
			return nil, err
		}
		polys = append(polys, p)
	}
	return polys, nil
}

// WriteGeo writes l in the .geo format ParseGeo reads. Via rows carry their
// global layer index.
func WriteGeo(w io.Writer, l *layout.Layout) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", l.Stack.NumMetal())
	for i, m := range l.Stack.Metals {
		fmt.Fprintf(bw, "%d, %d, %d\n", i, m.Bottom, m.Top)
	}
	fmt.Fprintf(bw, "%d\n", l.Stack.NumVia())
	for i, v := range l.Stack.Vias {
		fmt.Fprintf(bw, "%d, %d, %d, %d, %d\n", l.Stack.ViaLayer(i), v.Bottom, v.Top, v.BottomMetal, v.TopMetal)
	}
	layers := append(append([][]geom.Polygon{}, l.Metal...), l.Via...)
	for i, polys := range layers {
		fmt.Fprintf(bw, "%d\n%d\n", i, len(polys))
		for _, p := range polys {
			p = p.Open()
			fmt.Fprintf(bw, "%d\n", len(p)+1)
			for k := range len(p) + 1 {
				if len(p) == 0 {
					bw.WriteString("\n")
					break
				}
				pt := p[k%len(p)]
				fmt.Fprintf(bw, "%d, %d\n", pt.X, pt.Y)
			}
		}
	}
	return bw.Flush()
}
