package diag

import (
	"fmt"
	"sync"
)

// Warning codes recorded by the pipeline.
const (
	CodePolyNoExtension   = "POLY_NO_EXTENSION"
	CodePolyNoProgress    = "POLY_NO_PROGRESS"
	CodeDecomposeCorner   = "DECOMPOSE_CORNER_INSIDE"
	CodeViaCornerInside   = "VIA_CORNER_INSIDE"
	CodeViaUnconnected    = "VIA_UNCONNECTED"
	CodeSelfOverlap       = "SELF_OVERLAP"
	CodeZeroArea          = "ZERO_AREA"
	CodeCoincidentNoOwner = "COINCIDENT_WITHOUT_COMPONENT"
)

// Warning is a non-fatal finding about degenerate or borderline geometry.
// Layer and Conductor are -1 when they do not apply.
type Warning struct {
	Code      string
	Message   string
	Layer     int
	Conductor int
}

func (w Warning) String() string {
	ctx := ""
	if w.Conductor >= 0 {
		ctx += fmt.Sprintf(" conductor=%d", w.Conductor)
	}
	if w.Layer >= 0 {
		ctx += fmt.Sprintf(" layer=%d", w.Layer)
	}
	return fmt.Sprintf("[%s] %s%s", w.Code, w.Message, ctx)
}

// Report collects warnings. A nil *Report is valid and only logs.
// It is safe for concurrent use.
type Report struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Warn records a warning that is not tied to a layer or conductor.
func (r *Report) Warn(code, format string, args ...any) {
	r.Add(Warning{Code: code, Message: fmt.Sprintf(format, args...), Layer: -1, Conductor: -1})
}

// Add records w and logs it at warn level.
func (r *Report) Add(w Warning) {
	Logger().Warn(w.Message, "code", w.Code, "layer", w.Layer, "conductor", w.Conductor)
	if r == nil {
		return
	}
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

// Warnings returns a copy of everything recorded so far, in recording order.
func (r *Report) Warnings() []Warning {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Count returns how many warnings carry code.
func (r *Report) Count(code string) int {
	n := 0
	for _, w := range r.Warnings() {
		if w.Code == code {
			n++
		}
	}
	return n
}

// Len returns the number of recorded warnings.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}
