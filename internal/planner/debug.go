package planner

import (
	"io"
	"log"

	"github.com/banshee-data/coverage.planner/internal/planner/coverage"
	"github.com/banshee-data/coverage.planner/internal/planner/emit"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

var (
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures the three logging streams for the planner
// package and for grid, coverage, path and emit. Pass nil for any writer to disable
// that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger("[planner] ", ops)
	diagLogger = newLogger("[planner] ", diag)
	traceLogger = newLogger("[planner] ", trace)

	grid.SetLogWriters(ops, diag, trace)
	coverage.SetLogWriters(ops, diag, trace)
	path.SetLogWriters(ops, diag, trace)
	emit.SetLogWriters(ops, diag, trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// opsf logs to the ops stream (actionable warnings, errors).
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// diagf logs to the diag stream (per-request diagnostics).
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

// tracef logs to the trace stream (per-step detail).
func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
