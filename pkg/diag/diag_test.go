package diag

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportConcurrentAdd(t *testing.T) {
	r := NewReport()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Add(Warning{Code: CodeZeroArea, Message: "zero", Layer: i, Conductor: -1})
			r.Warn(CodeSelfOverlap, "overlap %d", i)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 32, r.Len())
	assert.Equal(t, 16, r.Count(CodeZeroArea))
	assert.Equal(t, 16, r.Count(CodeSelfOverlap))
}

func TestNilReport(t *testing.T) {
	var r *Report
	r.Warn(CodeViaUnconnected, "via %d", 3)
	assert.Zero(t, r.Len())
	assert.Nil(t, r.Warnings())
	assert.Zero(t, r.Count(CodeViaUnconnected))
}

func TestWarningsIsACopy(t *testing.T) {
	r := NewReport()
	r.Warn(CodeZeroArea, "a")
	ws := r.Warnings()
	ws[0].Code = "CHANGED"
	assert.Equal(t, 1, r.Count(CodeZeroArea))
}

func TestWarningString(t *testing.T) {
	assert.Equal(t, "[ZERO_AREA] empty", Warning{Code: CodeZeroArea, Message: "empty", Layer: -1, Conductor: -1}.String())
	assert.Equal(t, "[SELF_OVERLAP] hit conductor=2 layer=1",
		Warning{Code: CodeSelfOverlap, Message: "hit", Layer: 1, Conductor: 2}.String())
}

func TestLoggerReceivesWarnings(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	NewReport().Warn(CodeZeroArea, "flat panel")
	require.Contains(t, buf.String(), "flat panel")
	assert.Contains(t, buf.String(), "code=ZERO_AREA")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
