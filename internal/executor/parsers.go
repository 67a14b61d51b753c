package executor

import (
	"strconv"
	"strings"

	"github.com/baikal/recsweep/internal/model"
)

// SyscallSummary aggregates an strace -c report: total calls and total time
// summed over every per-syscall row.
type SyscallSummary struct {
	Calls   int64
	TimeSec float64
}

// straceHeaderMarker begins the summary table. Everything above it is
// whatever the traced program wrote to stderr, so it is ignored.
const straceHeaderMarker = "% time"

// ParseStraceSummary folds an strace -c report into a SyscallSummary.
// The table framing varies across strace versions, so parsing is
// best-effort per line: separator lines, the column-header echo, and
// anything that does not yield numeric time/calls fields are skipped
// rather than failing the parse. A report with no parseable rows yields
// a zero summary.
func ParseStraceSummary(raw string) SyscallSummary {
	var sum SyscallSummary
	started := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, straceHeaderMarker) {
			started = true
			continue
		}
		if !started {
			continue
		}
		if strings.HasPrefix(line, "------") || strings.HasPrefix(line, "syscall") {
			continue
		}
		seconds, calls, ok := parseStraceRow(line)
		if !ok {
			continue
		}
		sum.TimeSec += seconds
		sum.Calls += calls
	}

	return sum
}

// parseStraceRow extracts (seconds, calls) from one table row, or ok=false
// for rows that are not per-syscall data. The footer "total" row repeats
// the column sums and must not be counted again.
func parseStraceRow(line string) (float64, int64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return 0, 0, false
	}
	if fields[len(fields)-1] == "total" {
		return 0, 0, false
	}
	seconds, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, false
	}
	calls, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return seconds, calls, true
}

// notSupportedSentinel marks counters the host PMU cannot provide, e.g.
// "<not supported>" or "<not counted>". Such lines are normal, not errors.
const notSupportedSentinel = "<not"

// ParsePerfStat parses `perf stat -x ,` CSV-ish output into a CounterSet.
// Each line is value,unit,event[,...]; comment lines start with '#'.
// Unsupported counters and unparseable lines are skipped, so a host
// missing every requested event yields an empty set.
func ParsePerfStat(raw string) model.CounterSet {
	counters := make(model.CounterSet)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			continue
		}
		valueStr := strings.TrimSpace(parts[0])
		event := strings.TrimSpace(parts[2])
		if event == "" || strings.Contains(valueStr, notSupportedSentinel) {
			continue
		}
		value, ok := parsePerfValue(valueStr)
		if !ok {
			continue
		}
		counters[event] = value
	}

	return counters
}

// parsePerfValue parses a counter value with an optional SI suffix
// (K=1e3, M=1e6, G=1e9).
func parsePerfValue(s string) (float64, bool) {
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "K"):
		scale = 1e3
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		scale = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		scale = 1e9
		s = strings.TrimSuffix(s, "G")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * scale, true
}
