// Package layout holds the input model of the geometry pipeline: a layer
// stack of metals and vias with their elevations and one polygon list per
// layer, all on the integer grid.
package layout

import (
	"context"

	"github.com/chazu/caplet/pkg/geom"
)

// Elevation is the z extent of a layer.
type Elevation struct {
	Bottom int `json:"bottom" yaml:"bottom"`
	Top    int `json:"top" yaml:"top"`
}

// Thickness is Top - Bottom.
func (e Elevation) Thickness() int { return e.Top - e.Bottom }

// Via describes one via layer: its elevation and the metal layers it joins.
type Via struct {
	Elevation   `yaml:",inline"`
	BottomMetal int `json:"bottomMetal" yaml:"bottomMetal"`
	TopMetal    int `json:"topMetal" yaml:"topMetal"`
}

// Stack is the ordered layer table. Layer indices run over the metals first
// and the vias after them.
type Stack struct {
	Metals []Elevation `json:"metals" yaml:"metals"`
	Vias   []Via       `json:"vias" yaml:"vias"`
}

// NumMetal returns the number of metal layers.
func (s Stack) NumMetal() int { return len(s.Metals) }

// NumVia returns the number of via layers.
func (s Stack) NumVia() int { return len(s.Vias) }

// NumLayers returns NumMetal() + NumVia().
func (s Stack) NumLayers() int { return len(s.Metals) + len(s.Vias) }

// ViaLayer maps a via index to its layer index.
func (s Stack) ViaLayer(via int) int { return len(s.Metals) + via }

// Elevation returns the z extent of a layer index. It panics on an index
// outside the stack.
func (s Stack) Elevation(layer int) Elevation {
	if layer < len(s.Metals) {
		return s.Metals[layer]
	}
	return s.Vias[layer-len(s.Metals)].Elevation
}

// Layout is a complete input: the stack plus polygons per metal and per via
// layer, in grid units.
type Layout struct {
	Stack Stack
	Metal [][]geom.Polygon
	Via   [][]geom.Polygon
}

// New returns a layout with empty polygon lists sized to the stack.
func New(s Stack) *Layout {
	return &Layout{
		Stack: s,
		Metal: make([][]geom.Polygon, len(s.Metals)),
		Via:   make([][]geom.Polygon, len(s.Vias)),
	}
}

// AddMetal appends a polygon to metal layer i.
func (l *Layout) AddMetal(i int, p geom.Polygon) { l.Metal[i] = append(l.Metal[i], p) }

// AddVia appends a polygon to via layer i.
func (l *Layout) AddVia(i int, p geom.Polygon) { l.Via[i] = append(l.Via[i], p) }

// PolygonCount returns the number of polygons over all layers.
func (l *Layout) PolygonCount() int {
	n := 0
	for _, ps := range l.Metal {
		n += len(ps)
	}
	for _, ps := range l.Via {
		n += len(ps)
	}
	return n
}

// Loader produces a layout from some source: a layout file, a script.
type Loader interface {
	Load(ctx context.Context) (*Layout, error)
}
