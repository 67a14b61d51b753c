// Package executor handles running the workload binary and its tracing
// wrappers, and parsing the tracers' text reports.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// RawOutput captures one finished subprocess.
type RawOutput struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Truncated bool // true if stdout was capped
}

// Runner executes external commands synchronously.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (*RawOutput, error)
}

// ExecRunner is the os/exec-backed Runner used outside tests.
type ExecRunner struct {
	maxOutputBytes int64
}

// NewExecRunner creates an ExecRunner with the default 8MB stdout cap.
// The workload writes nothing meaningful on stdout, so the cap only guards
// against a misbehaving binary flooding memory.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{maxOutputBytes: 8 * 1024 * 1024}
}

// Run executes the command and blocks until it exits. A non-zero exit
// status is reported in RawOutput.ExitCode, not as an error; the error
// return is reserved for failures to run the command at all.
func (e *ExecRunner) Run(ctx context.Context, name string, args []string) (*RawOutput, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = measurementEnv()

	var stdout, stderr bytes.Buffer
	lw := &LimitedWriter{W: &stdout, N: e.maxOutputBytes}
	cmd.Stdout = lw
	cmd.Stderr = &stderr

	err := cmd.Run()

	raw := &RawOutput{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  time.Since(start),
		Truncated: lw.Truncated,
	}
	if cmd.ProcessState != nil {
		raw.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return raw, nil
		}
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return raw, nil
}

// measurementEnv returns the inherited environment with LC_ALL pinned to C.
// perf and strace localize their report formats; the parsers assume the C
// locale's decimal point.
func measurementEnv() []string {
	return append(os.Environ(), "LC_ALL=C")
}

// LimitedWriter wraps a buffer with a byte limit.
type LimitedWriter struct {
	W         *bytes.Buffer
	N         int64
	written   int64
	Truncated bool
}

func (lw *LimitedWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.N {
		lw.Truncated = true
		// Report all bytes consumed so exec.Cmd keeps draining the pipe.
		return len(p), nil
	}
	remaining := lw.N - lw.written
	if int64(len(p)) > remaining {
		n, err := lw.W.Write(p[:remaining])
		lw.written += int64(n)
		lw.Truncated = true
		return len(p), err
	}
	n, err := lw.W.Write(p)
	lw.written += int64(n)
	return n, err
}
