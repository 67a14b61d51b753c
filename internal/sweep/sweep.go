// Package sweep drives the record-size experiment: each configuration is
// measured three ways (plain run for wall time, strace -c for syscall cost,
// perf stat for hardware counters), merged into one row, and persisted
// before the next configuration starts.
package sweep

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/baikal/recsweep/internal/executor"
	"github.com/baikal/recsweep/internal/model"
	"github.com/baikal/recsweep/internal/output"
	"github.com/baikal/recsweep/internal/store"
)

// Orchestrator runs one sweep. Configurations execute strictly one at a
// time: overlapping measurement processes would corrupt the syscall and
// counter attribution for each run.
type Orchestrator struct {
	cfg      model.SweepConfig
	runner   executor.Runner
	progress *output.Progress
}

// New creates an Orchestrator. A nil runner selects the os/exec-backed one.
func New(cfg model.SweepConfig, runner executor.Runner) *Orchestrator {
	if runner == nil {
		runner = executor.NewExecRunner()
	}
	return &Orchestrator{
		cfg:      cfg,
		runner:   runner,
		progress: output.NewProgress(!cfg.Quiet),
	}
}

// Preflight checks everything the whole sweep depends on. Any error here is
// fatal and must be reported before the result file is touched.
func (o *Orchestrator) Preflight() error {
	if err := o.cfg.Validate(); err != nil {
		return fmt.Errorf("sweep config: %w", err)
	}
	if err := executor.VerifyExecutable(o.cfg.BenchPath); err != nil {
		return fmt.Errorf("benchmark binary: %w", err)
	}
	info, err := os.Stat(o.cfg.DataPath)
	if err != nil {
		return fmt.Errorf("data file: %w (create it first, e.g.: fallocate -l 16G %s)", err, o.cfg.DataPath)
	}
	if info.IsDir() {
		return fmt.Errorf("data file %q is a directory", o.cfg.DataPath)
	}
	if _, err := executor.ResolveTool(o.cfg.StraceBin); err != nil {
		return fmt.Errorf("syscall tracer: %w", err)
	}
	if _, err := executor.ResolveTool(o.cfg.PerfBin); err != nil {
		return fmt.Errorf("counter tracer: %w", err)
	}
	return nil
}

// Run executes the sweep. A failed configuration is logged and skipped; only
// preflight and result-file errors abort the sweep.
func (o *Orchestrator) Run(ctx context.Context) (*model.SweepSummary, error) {
	if err := o.Preflight(); err != nil {
		return nil, err
	}

	w, err := store.NewWriter(o.cfg.OutPath, o.cfg.PerfEvents)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	start := time.Now()
	summary := &model.SweepSummary{OutPath: o.cfg.OutPath}

	var bar *progressbar.ProgressBar
	if !o.cfg.Quiet {
		bar = progressbar.Default(int64(len(o.cfg.RecordSizes)), "sweep:")
	}

	for _, recordSize := range o.cfg.RecordSizes {
		summary.Attempted++

		outcome := o.measure(ctx, recordSize)
		switch outcome.Status {
		case model.StatusSuccess:
			// Flush-per-row: a crash after this point still leaves a
			// valid prefix of results on disk.
			if err := w.Append(*outcome.Row); err != nil {
				return nil, fmt.Errorf("persist record_size=%d: %w", recordSize, err)
			}
			summary.Succeeded++
		case model.StatusFailed:
			o.progress.Log("record_size=%d failed: %s", recordSize, outcome.Reason)
			summary.Failed = append(summary.Failed, model.FailedConfig{
				RecordSize: recordSize,
				Reason:     outcome.Reason,
			})
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	summary.ElapsedSec = time.Since(start).Seconds()
	o.progress.Log("sweep done: %d/%d configurations succeeded", summary.Succeeded, summary.Attempted)
	return summary, nil
}

// measure collects the three views for one record size. The traced runs
// exist only to explain the plain run's cost, so a failed plain run skips
// them and fails the configuration.
func (o *Orchestrator) measure(ctx context.Context, recordSize int64) model.Outcome {
	args := o.cfg.WorkloadArgs(recordSize)

	o.progress.Log("running record_size=%d", recordSize)

	plain, err := o.runner.Run(ctx, o.cfg.BenchPath, args)
	if err != nil {
		return failed(recordSize, err.Error())
	}
	if plain.ExitCode != 0 {
		return failed(recordSize, fmt.Sprintf("exit status %d: %s",
			plain.ExitCode, strings.TrimSpace(plain.Stderr)))
	}

	row := &model.ResultRow{
		RecordSize:  recordSize,
		TotalBytes:  o.cfg.TotalBytes,
		Mode:        o.cfg.Mode,
		WallTimeSec: plain.Duration.Seconds(),
		Counters:    model.CounterSet{},
	}

	// Both tracers wrap the identical workload command line; only the
	// wrapper differs, so all three views measure the same work. Their
	// reports arrive on stderr. A tracer that produces nothing parseable
	// leaves zero-valued metrics rather than failing the configuration.
	overhead := TracerOverhead{PlainSec: row.WallTimeSec}

	straceArgs := append([]string{"-c", "--", o.cfg.BenchPath}, args...)
	if traced, err := o.runner.Run(ctx, o.cfg.StraceBin, straceArgs); err != nil {
		o.progress.Log("record_size=%d: strace run: %v", recordSize, err)
	} else {
		sum := executor.ParseStraceSummary(traced.Stderr)
		row.SyscallCount = sum.Calls
		row.SyscallTimeSec = sum.TimeSec
		overhead.StraceSec = traced.Duration.Seconds()
	}

	perfArgs := append([]string{
		"stat", "-x", ",",
		"-e", strings.Join(o.cfg.PerfEvents, ","),
		"--", o.cfg.BenchPath,
	}, args...)
	if traced, err := o.runner.Run(ctx, o.cfg.PerfBin, perfArgs); err != nil {
		o.progress.Log("record_size=%d: perf run: %v", recordSize, err)
	} else {
		row.Counters = executor.ParsePerfStat(traced.Stderr)
		overhead.PerfSec = traced.Duration.Seconds()
	}

	o.progress.Log("record_size=%d tracer overhead: %s", recordSize, overhead)

	return model.Outcome{RecordSize: recordSize, Status: model.StatusSuccess, Row: row}
}

func failed(recordSize int64, reason string) model.Outcome {
	return model.Outcome{RecordSize: recordSize, Status: model.StatusFailed, Reason: reason}
}
