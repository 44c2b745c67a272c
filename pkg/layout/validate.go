package layout

import (
	"fmt"

	"github.com/chazu/caplet/pkg/geom"
	"github.com/cockroachdb/errors"
)

// ErrInvalidStack is the cause of every structural stack error.
var ErrInvalidStack = errors.New("invalid layer stack")

// ValidationSeverity tells whether a finding blocks processing.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks processing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError is a single finding. Layer is a stack layer index and
// Polygon an index into that layer's list; either is -1 when it does not
// apply. Cause is the sentinel the finding maps to.
type ValidationError struct {
	Layer    int
	Polygon  int
	Message  string
	Severity ValidationSeverity
	Cause    error
}

func (e ValidationError) Error() string {
	switch {
	case e.Polygon >= 0:
		return fmt.Sprintf("[%s] layer %d polygon %d: %s", e.Severity, e.Layer, e.Polygon, e.Message)
	case e.Layer >= 0:
		return fmt.Sprintf("[%s] layer %d: %s", e.Severity, e.Layer, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking error was found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err returns the first blocking finding as an error wrapping its cause,
// or nil.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	e := r.Errors[0]
	cause := e.Cause
	if cause == nil {
		cause = ErrInvalidStack
	}
	switch {
	case e.Polygon >= 0:
		return errors.Wrapf(cause, "layer %d polygon %d: %s", e.Layer, e.Polygon, e.Message)
	case e.Layer >= 0:
		return errors.Wrapf(cause, "layer %d: %s", e.Layer, e.Message)
	}
	return errors.Wrap(cause, e.Message)
}

// Validate checks the stack and every polygon. It never mutates l.
func Validate(l *Layout) ValidationResult {
	var res ValidationResult
	stackErrs, stackWarns := validateStack(l.Stack)
	res.Errors = append(res.Errors, stackErrs...)
	res.Warnings = append(res.Warnings, stackWarns...)

	if len(l.Metal) != l.Stack.NumMetal() || len(l.Via) != l.Stack.NumVia() {
		res.Errors = append(res.Errors, ValidationError{
			Layer: -1, Polygon: -1, Severity: SeverityError, Cause: ErrInvalidStack,
			Message: fmt.Sprintf("%d metal and %d via polygon lists for a stack of %d metals and %d vias",
				len(l.Metal), len(l.Via), l.Stack.NumMetal(), l.Stack.NumVia()),
		})
		return res
	}

	for i, polys := range l.Metal {
		e, w := validatePolygons(i, polys)
		res.Errors = append(res.Errors, e...)
		res.Warnings = append(res.Warnings, w...)
	}
	for i, polys := range l.Via {
		e, w := validatePolygons(l.Stack.ViaLayer(i), polys)
		res.Errors = append(res.Errors, e...)
		res.Warnings = append(res.Warnings, w...)
	}
	return res
}

func validateStack(s Stack) ([]ValidationError, []ValidationError) {
	var errs, warns []ValidationError
	bad := func(layer int, format string, args ...any) {
		errs = append(errs, ValidationError{
			Layer: layer, Polygon: -1, Severity: SeverityError, Cause: ErrInvalidStack,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if s.NumMetal() == 0 {
		bad(-1, "stack has no metal layer")
	}
	for i, m := range s.Metals {
		if m.Top <= m.Bottom {
			bad(i, "metal top %d not above bottom %d", m.Top, m.Bottom)
		}
	}
	for i, v := range s.Vias {
		layer := s.ViaLayer(i)
		if v.Top <= v.Bottom {
			bad(layer, "via top %d not above bottom %d", v.Top, v.Bottom)
		}
		if v.BottomMetal < 0 || v.BottomMetal >= s.NumMetal() {
			bad(layer, "via connects unknown bottom metal %d", v.BottomMetal)
			continue
		}
		if v.TopMetal < 0 || v.TopMetal >= s.NumMetal() {
			bad(layer, "via connects unknown top metal %d", v.TopMetal)
			continue
		}
		if v.BottomMetal == v.TopMetal {
			bad(layer, "via connects metal %d to itself", v.TopMetal)
			continue
		}
		if s.Metals[v.BottomMetal].Top != v.Bottom {
			warns = append(warns, ValidationError{
				Layer: layer, Polygon: -1, Severity: SeverityWarning,
				Message: fmt.Sprintf("via bottom %d does not meet metal %d top %d",
					v.Bottom, v.BottomMetal, s.Metals[v.BottomMetal].Top),
			})
		}
		if s.Metals[v.TopMetal].Bottom != v.Top {
			warns = append(warns, ValidationError{
				Layer: layer, Polygon: -1, Severity: SeverityWarning,
				Message: fmt.Sprintf("via top %d does not meet metal %d bottom %d",
					v.Top, v.TopMetal, s.Metals[v.TopMetal].Bottom),
			})
		}
	}
	return errs, warns
}

func validatePolygons(layer int, polys []geom.Polygon) ([]ValidationError, []ValidationError) {
	var errs, warns []ValidationError
	if len(polys) == 0 {
		warns = append(warns, ValidationError{
			Layer: layer, Polygon: -1, Severity: SeverityWarning, Message: "layer has no polygon",
		})
	}
	for j, p := range polys {
		if !p.Open().IsManhattan() {
			errs = append(errs, ValidationError{
				Layer: layer, Polygon: j, Severity: SeverityError, Cause: geom.ErrNotManhattan,
				Message: fmt.Sprintf("%d vertices, edges must alternate horizontal and vertical", len(p)),
			})
		}
	}
	return errs, warns
}
