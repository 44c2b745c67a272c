package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chazu/caplet/pkg/geom"
	"github.com/chazu/caplet/pkg/layout"
	"github.com/cockroachdb/errors"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms layout script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: top-metal -> top_metal
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Layer references
// ---------------------------------------------------------------------------

type layerKind int8

const (
	kindMetal layerKind = iota
	kindVia
)

func (k layerKind) String() string {
	if k == kindVia {
		return "via"
	}
	return "metal"
}

// sexpLayer is returned by `metal` and `via` and consumed by `rect` and
// `poly` through their :layer argument.
type sexpLayer struct {
	kind  layerKind
	index int
}

func (l *sexpLayer) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %d)", l.kind, l.index)
}
func (l *sexpLayer) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, errors.Newf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a grid coordinate. Floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.Newf("expected integer, got %g", f)
	}
	return int(f), nil
}

// toLayer extracts a layer reference.
func toLayer(s zygo.Sexp) (*sexpLayer, error) {
	if l, ok := s.(*sexpLayer); ok {
		return l, nil
	}
	return nil, errors.Newf("expected layer reference, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, errors.Newf("expected list or array, got %T", s)
}

// coords flattens positional arguments into integers. A single list or
// array argument is expanded in place.
func coords(args []zygo.Sexp) ([]int, error) {
	if len(args) == 1 {
		if items, err := sexpListToSlice(args[0]); err == nil {
			args = items
		}
	}
	out := make([]int, len(args))
	for i, a := range args {
		v, err := toInt(a)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinate %d", i)
		}
		out[i] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Layout builder
// ---------------------------------------------------------------------------

type layerKey struct {
	kind  layerKind
	index int
}

// builder accumulates the layers and polygons declared by a script.
type builder struct {
	metals map[int]layout.Elevation
	vias   map[int]layout.Via
	polys  map[layerKey][]geom.Polygon
	order  []layerKey
}

func newBuilder() *builder {
	return &builder{
		metals: make(map[int]layout.Elevation),
		vias:   make(map[int]layout.Via),
		polys:  make(map[layerKey][]geom.Polygon),
	}
}

func (b *builder) defineMetal(i int, e layout.Elevation) error {
	if old, ok := b.metals[i]; ok && old != e {
		return errors.Newf("metal %d redefined", i)
	}
	b.metals[i] = e
	return nil
}

func (b *builder) defineVia(i int, v layout.Via) error {
	if old, ok := b.vias[i]; ok && old != v {
		return errors.Newf("via %d redefined", i)
	}
	b.vias[i] = v
	return nil
}

func (b *builder) addPolygon(l *sexpLayer, p geom.Polygon) {
	k := layerKey{l.kind, l.index}
	if _, ok := b.polys[k]; !ok {
		b.order = append(b.order, k)
	}
	b.polys[k] = append(b.polys[k], p)
}

// layout assembles the declared stack. Layer indices must be contiguous
// from zero and every polygon must sit on a declared layer.
func (b *builder) layout() (*layout.Layout, error) {
	var s layout.Stack
	for i := 0; i < len(b.metals); i++ {
		e, ok := b.metals[i]
		if !ok {
			return nil, errors.Newf("metal %d is not declared", i)
		}
		s.Metals = append(s.Metals, e)
	}
	for i := 0; i < len(b.vias); i++ {
		v, ok := b.vias[i]
		if !ok {
			return nil, errors.Newf("via %d is not declared", i)
		}
		s.Vias = append(s.Vias, v)
	}

	l := layout.New(s)
	keys := append([]layerKey(nil), b.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].index < keys[j].index
	})
	for _, k := range keys {
		for _, p := range b.polys[k] {
			switch {
			case k.kind == kindMetal && k.index < len(s.Metals):
				l.AddMetal(k.index, p)
			case k.kind == kindVia && k.index < len(s.Vias):
				l.AddVia(k.index, p)
			default:
				return nil, errors.Newf("polygon on undeclared %s %d", k.kind, k.index)
			}
		}
	}
	return l, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the layout builtins into a zygomys environment.
// The builtins populate b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (metal 0 :bottom 0 :top 10)
	// (metal 0) refers to a layer declared elsewhere.
	env.AddFunction("metal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		idx, err := layerIndex(name, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		ints, declared, err := intKWs(name, pa, "bottom", "top")
		if err != nil {
			return zygo.SexpNull, err
		}
		if declared {
			if err := b.defineMetal(idx, layout.Elevation{Bottom: ints[0], Top: ints[1]}); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpLayer{kind: kindMetal, index: idx}, nil
	})

	// (via 0 :bottom 10 :top 20 :from 0 :to 1)
	env.AddFunction("via", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		idx, err := layerIndex(name, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		ints, declared, err := intKWs(name, pa, "bottom", "top", "from", "to")
		if err != nil {
			return zygo.SexpNull, err
		}
		if declared {
			v := layout.Via{
				Elevation:   layout.Elevation{Bottom: ints[0], Top: ints[1]},
				BottomMetal: ints[2],
				TopMetal:    ints[3],
			}
			if err := b.defineVia(idx, v); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpLayer{kind: kindVia, index: idx}, nil
	})

	// (rect :layer (metal 0) 0 0 10 10)
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		l, err := layerKW(name, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		c, err := coords(pa.positional)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, name)
		}
		if len(c) != 4 {
			return zygo.SexpNull, errors.Newf("%s: expected x1 y1 x2 y2, got %d values", name, len(c))
		}
		x1, x2 := min(c[0], c[2]), max(c[0], c[2])
		y1, y2 := min(c[1], c[3]), max(c[1], c[3])
		if x1 == x2 || y1 == y2 {
			return zygo.SexpNull, errors.Newf("%s: zero area", name)
		}
		b.addPolygon(l, geom.R(x1, y1, x2, y2).Polygon())
		return l, nil
	})

	// (poly :layer (via 0) 0 0 10 0 10 10 0 10)
	env.AddFunction("poly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		l, err := layerKW(name, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		c, err := coords(pa.positional)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, name)
		}
		if len(c)%2 != 0 || len(c) < 8 {
			return zygo.SexpNull, errors.Newf("%s: expected at least four x y pairs, got %d values", name, len(c))
		}
		p := make(geom.Polygon, 0, len(c)/2)
		for i := 0; i < len(c); i += 2 {
			p = append(p, geom.Pt(c[i], c[i+1]))
		}
		b.addPolygon(l, p)
		return l, nil
	})
}

func layerIndex(name string, pa kwArgs) (int, error) {
	if len(pa.positional) != 1 {
		return 0, errors.Newf("%s: expected one layer index, got %d", name, len(pa.positional))
	}
	i, err := toInt(pa.positional[0])
	if err != nil {
		return 0, errors.Wrapf(err, "%s: index", name)
	}
	if i < 0 {
		return 0, errors.Newf("%s: negative index %d", name, i)
	}
	return i, nil
}

// intKWs reads the named integer keywords. They must be given all together
// or not at all; declared reports which.
func intKWs(name string, pa kwArgs, keys ...string) (vals []int, declared bool, err error) {
	vals = make([]int, len(keys))
	n := 0
	for i, k := range keys {
		v, ok := pa.kw[k]
		if !ok {
			continue
		}
		n++
		if vals[i], err = toInt(v); err != nil {
			return nil, false, errors.Wrapf(err, "%s: %s", name, k)
		}
	}
	if n != 0 && n != len(keys) {
		return nil, false, errors.Newf("%s: expected all of :%s", name, strings.Join(keys, " :"))
	}
	return vals, n != 0, nil
}

func layerKW(name string, pa kwArgs) (*sexpLayer, error) {
	v, ok := pa.kw["layer"]
	if !ok {
		return nil, errors.Newf("%s: missing :layer", name)
	}
	l, err := toLayer(v)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: layer", name)
	}
	return l, nil
}
