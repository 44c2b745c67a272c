package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		l, evalErrs, err := eng.Evaluate(context.Background(), src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("unexpected eval errors: %v", evalErrs)
		}
		if l == nil {
			t.Fatal("expected non-nil layout")
		}
		if l.PolygonCount() != 0 || l.Stack.NumLayers() != 0 {
			t.Errorf("expected empty layout, got %d polygons", l.PolygonCount())
		}
	}
}

func TestEvaluatePlainArithmetic(t *testing.T) {
	eng := NewEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	l, evalErrs, err := eng.Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if l == nil {
		t.Fatal("expected non-nil layout")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	// Unmatched paren is a parse error.
	l, evalErrs, err := eng.Evaluate(context.Background(), "(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if l != nil {
		t.Fatal("expected nil layout on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	l, evalErrs, err := eng.Evaluate(context.Background(), "(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if l != nil {
		t.Fatal("expected nil layout on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorString(t *testing.T) {
	e := EvalError{Line: 3, Message: "bad thing"}
	if got := e.Error(); got != "line 3: bad thing" {
		t.Errorf("Error() = %q", got)
	}
	e = EvalError{Message: "no line"}
	if got := e.Error(); got != "no line" {
		t.Errorf("Error() = %q", got)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	src := `(rect :layer (metal 0 :bottom 0 :top 10) 0 0 10 10)`

	first, _, err := eng.Evaluate(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	for i := 0; i < 3; i++ {
		l, _, err := eng.Evaluate(context.Background(), src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if l.PolygonCount() != first.PolygonCount() || l.Stack.NumLayers() != first.Stack.NumLayers() {
			t.Fatalf("run %d differs from the first", i)
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // Never sends

	_, _, err := waitWithTimeout(context.Background(), ch, 1, 20*time.Millisecond, &mu, &gen)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := waitWithTimeout(ctx, ch, 1, time.Minute, &mu, &gen)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(context.Background(), ch, 1, time.Second, &mu, &gen)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "short line format",
			msg:      "line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestEvaluateCommentsOnly(t *testing.T) {
	eng := NewEngine()

	l, evalErrs, err := eng.Evaluate(context.Background(), "; just a note\n;; and another :keyword\n")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if l == nil || l.PolygonCount() != 0 {
		t.Fatalf("expected empty layout, got %v", l)
	}
}

func TestEvaluateRapid(t *testing.T) {
	eng := NewEngine()
	src := `(def w (/ 20 2)) (rect :layer (metal 0 :bottom 0 :top w) 0 0 w (* w 2))`

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = eng.Evaluate(context.Background(), src)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil && !errors.Is(err, ErrSuperseded) {
			t.Errorf("evaluation %d: unexpected error %v", i, err)
		}
	}

	// A lone evaluation after the burst always lands.
	l, evalErrs, err := eng.Evaluate(context.Background(), src)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("final evaluation failed: %v %v", err, evalErrs)
	}
	if got := l.Stack.Metals[0].Top; got != 10 {
		t.Errorf("top = %d, want 10", got)
	}
}
