// Package output handles progress reporting and summary serialization.
package output

import (
	"fmt"
	"os"
	"time"
)

// Progress reports sweep status to stderr, stamped with elapsed time since
// the sweep started. Stdout stays clean for piped summaries.
type Progress struct {
	enabled bool
	start   time.Time
}

// NewProgress creates a Progress reporter. Set enabled=false for --quiet mode.
func NewProgress(enabled bool) *Progress {
	return &Progress{
		enabled: enabled,
		start:   time.Now(),
	}
}

// Log prints a progress message to stderr if enabled.
func (p *Progress) Log(format string, args ...interface{}) {
	if !p.enabled {
		return
	}
	elapsed := time.Since(p.start).Round(time.Millisecond)
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[%s] %s\n", elapsed, msg)
}

// Enabled reports whether progress output is on.
func (p *Progress) Enabled() bool {
	return p.enabled
}
