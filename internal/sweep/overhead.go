package sweep

import "fmt"

// TracerOverhead quantifies how much the tracing wrappers inflate one
// configuration's runtime relative to its plain run. strace in particular
// can slow a syscall-heavy workload by an order of magnitude, so the factor
// is worth surfacing next to each measurement: it tells the reader how far
// the traced views drifted from the plain run they are meant to explain.
type TracerOverhead struct {
	PlainSec  float64
	StraceSec float64
	PerfSec   float64
}

// StraceFactor returns the strace run's slowdown relative to the plain run,
// or 0 when either duration is unknown.
func (t TracerOverhead) StraceFactor() float64 {
	return factor(t.StraceSec, t.PlainSec)
}

// PerfFactor returns the perf run's slowdown relative to the plain run,
// or 0 when either duration is unknown.
func (t TracerOverhead) PerfFactor() float64 {
	return factor(t.PerfSec, t.PlainSec)
}

func factor(traced, plain float64) float64 {
	if traced <= 0 || plain <= 0 {
		return 0
	}
	return traced / plain
}

// String renders the overhead for progress output, e.g.
// "strace 11.8x, perf 1.1x". Unknown factors render as "?".
func (t TracerOverhead) String() string {
	return fmt.Sprintf("strace %s, perf %s",
		formatFactor(t.StraceFactor()), formatFactor(t.PerfFactor()))
}

func formatFactor(f float64) string {
	if f == 0 {
		return "?"
	}
	return fmt.Sprintf("%.1fx", f)
}
