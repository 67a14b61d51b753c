// Package model defines the sweep configuration and measurement types
// shared by the orchestrator, result store, visualizer, and MCP server.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Access modes for the workload.
const (
	ModeSeq  = "seq"
	ModeRand = "rand"
)

// DefaultPerfEvents is the fixed counter list requested from perf stat.
// "cs" is perf's short name for context switches.
var DefaultPerfEvents = []string{
	"cycles",
	"instructions",
	"cache-misses",
	"major-faults",
	"minor-faults",
	"cs",
}

// DefaultRecordSizes spans 1 MiB down to 4 KiB, large to small, so the
// cheapest configurations run first.
var DefaultRecordSizes = []int64{
	1024 * 1024,
	256 * 1024,
	64 * 1024,
	16 * 1024,
	4 * 1024,
}

// SweepConfig holds every parameter of one sweep. It is built once by the
// caller and never mutated by the orchestrator.
type SweepConfig struct {
	BenchPath string `json:"bench_path" mapstructure:"bench"`
	DataPath  string `json:"data_path" mapstructure:"data"`
	OutPath   string `json:"out_path" mapstructure:"out"`

	RecordSizes []int64 `json:"record_sizes" mapstructure:"record_sizes"`
	TotalBytes  int64   `json:"total_bytes" mapstructure:"total_bytes"`
	Mode        string  `json:"mode" mapstructure:"mode"`
	Seed        int64   `json:"seed" mapstructure:"seed"`

	PerfEvents []string `json:"perf_events" mapstructure:"perf_events"`

	// Tracer binary names, resolved via PATH. Overridable for testing.
	StraceBin string `json:"strace_bin" mapstructure:"strace_bin"`
	PerfBin   string `json:"perf_bin" mapstructure:"perf_bin"`

	Quiet bool `json:"quiet" mapstructure:"quiet"`
}

// DefaultSweepConfig returns a SweepConfig with the standard record-size
// experiment parameters: 8 GiB per run, random access, fixed seed.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		BenchPath:   "./fs_bench",
		DataPath:    "data.bin",
		OutPath:     "results.csv",
		RecordSizes: append([]int64(nil), DefaultRecordSizes...),
		TotalBytes:  8 * 1024 * 1024 * 1024,
		Mode:        ModeRand,
		Seed:        12345,
		PerfEvents:  append([]string(nil), DefaultPerfEvents...),
		StraceBin:   "strace",
		PerfBin:     "perf",
	}
}

// Validate reports the first invalid field, if any.
func (c SweepConfig) Validate() error {
	if c.BenchPath == "" {
		return fmt.Errorf("bench path is empty")
	}
	if c.DataPath == "" {
		return fmt.Errorf("data path is empty")
	}
	if c.OutPath == "" {
		return fmt.Errorf("output path is empty")
	}
	if len(c.RecordSizes) == 0 {
		return fmt.Errorf("no record sizes given")
	}
	for _, rs := range c.RecordSizes {
		if rs <= 0 {
			return fmt.Errorf("record size %d is not positive", rs)
		}
	}
	if c.TotalBytes <= 0 {
		return fmt.Errorf("total bytes %d is not positive", c.TotalBytes)
	}
	if c.Mode != ModeSeq && c.Mode != ModeRand {
		return fmt.Errorf("mode %q is not %q or %q", c.Mode, ModeSeq, ModeRand)
	}
	if len(c.PerfEvents) == 0 {
		return fmt.Errorf("no perf events given")
	}
	return nil
}

// WorkloadArgs builds the workload argv for one record size. The plain and
// traced runs must execute the identical command line, so this is the single
// place it is assembled.
func (c SweepConfig) WorkloadArgs(recordSize int64) []string {
	return []string{
		"--file", c.DataPath,
		"--mode", c.Mode,
		"--record-size", strconv.FormatInt(recordSize, 10),
		"--total-bytes", strconv.FormatInt(c.TotalBytes, 10),
		"--seed", strconv.FormatInt(c.Seed, 10),
	}
}

// CounterSet maps a perf event name to its measured value. Events the host
// cannot count are simply absent.
type CounterSet map[string]float64

// Get returns the counter value, or 0 when the event was not measured.
func (cs CounterSet) Get(name string) float64 {
	return cs[name]
}

// ResultRow is the merged measurement for one successfully completed
// configuration: the plain run's wall time plus the two tracer summaries.
type ResultRow struct {
	RecordSize     int64      `json:"record_size"`
	TotalBytes     int64      `json:"total_bytes"`
	Mode           string     `json:"mode"`
	WallTimeSec    float64    `json:"wall_time_sec"`
	SyscallCount   int64      `json:"syscall_count"`
	SyscallTimeSec float64    `json:"syscall_time_sec"`
	Counters       CounterSet `json:"counters"`
}

// RunStatus enumerates how a configuration ended.
type RunStatus int

const (
	// StatusSuccess means all three runs completed and a row was produced.
	StatusSuccess RunStatus = iota
	// StatusFailed means the plain run exited non-zero; no row exists.
	StatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("RunStatus(%d)", int(s))
	}
}

// Outcome is the per-configuration result the sweep loop folds over:
// either a row to persist or a reason the configuration was skipped.
type Outcome struct {
	RecordSize int64
	Status     RunStatus
	Row        *ResultRow // set iff Status == StatusSuccess
	Reason     string     // set iff Status == StatusFailed
}

// SweepSummary describes a finished sweep for JSON output and MCP clients.
type SweepSummary struct {
	OutPath    string         `json:"out_path"`
	Attempted  int            `json:"attempted"`
	Succeeded  int            `json:"succeeded"`
	Failed     []FailedConfig `json:"failed,omitempty"`
	ElapsedSec float64        `json:"elapsed_sec"`
}

// FailedConfig records one skipped configuration and why.
type FailedConfig struct {
	RecordSize int64  `json:"record_size"`
	Reason     string `json:"reason"`
}

// ParseSize parses a byte count with an optional K/M/G binary suffix,
// e.g. "4K" -> 4096, "1M" -> 1048576.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	orig := s
	mult := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", orig, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size %q is not positive", orig)
	}
	return n * mult, nil
}

// ParseSizeList parses a comma-separated list of sizes, preserving order.
func ParseSizeList(s string) ([]int64, error) {
	var sizes []int64
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := ParseSize(part)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes in %q", s)
	}
	return sizes, nil
}
