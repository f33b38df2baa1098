package monitoring

import (
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)
	Logf("plan %d", 7)
	assert.Equal(t, []string{"plan 7"}, *lines)
}

func TestSetLoggerNilMutes(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("dropped") })
}

func TestWriterSplitsLines(t *testing.T) {
	lines := capture(t)

	n, err := io.WriteString(Writer("[ops]"), "first\nsecond\n")
	assert.NoError(t, err)
	assert.Equal(t, len("first\nsecond\n"), n)
	assert.Equal(t, []string{"[ops] first", "[ops] second"}, *lines)
}

func TestWriterAsLogOutput(t *testing.T) {
	lines := capture(t)

	l := log.New(Writer(""), "[grid] ", 0)
	l.Printf("n_rows: %d", 3)
	assert.Equal(t, []string{"[grid] n_rows: 3"}, *lines)
}
