// Package monitoring holds the process-wide logger used by the planner
// binaries and the HTTP server.
package monitoring

import (
	"io"
	"log"
	"strings"
)

// Logf is the process logger. It defaults to log.Printf; SetLogger swaps it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Writer returns an io.Writer that forwards each written line to Logf with
// tag prepended, so package log streams can be routed into the process log.
func Writer(tag string) io.Writer {
	return lineWriter{tag: tag}
}

type lineWriter struct {
	tag string
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		if w.tag != "" {
			Logf("%s %s", w.tag, line)
		} else {
			Logf("%s", line)
		}
	}
	return len(p), nil
}
