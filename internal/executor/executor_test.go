package executor

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestExecRunnerCapturesStreams(t *testing.T) {
	r := NewExecRunner()
	raw, err := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo err >&2"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if raw.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", raw.ExitCode)
	}
	if strings.TrimSpace(raw.Stdout) != "out" {
		t.Errorf("stdout = %q, want out", raw.Stdout)
	}
	if strings.TrimSpace(raw.Stderr) != "err" {
		t.Errorf("stderr = %q, want err", raw.Stderr)
	}
	if raw.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", raw.Duration)
	}
}

func TestExecRunnerNonZeroExitIsNotError(t *testing.T) {
	r := NewExecRunner()
	raw, err := r.Run(context.Background(), "sh", []string{"-c", "echo boom >&2; exit 3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if raw.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", raw.ExitCode)
	}
	if !strings.Contains(raw.Stderr, "boom") {
		t.Errorf("stderr = %q, want diagnostic preserved", raw.Stderr)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner()
	if _, err := r.Run(context.Background(), "/no/such/binary", nil); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestLimitedWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := &LimitedWriter{W: &buf, N: 5}

	n, err := lw.Write([]byte("abc"))
	if err != nil || n != 3 {
		t.Fatalf("Write = (%d, %v), want (3, nil)", n, err)
	}
	// Crosses the cap: full length reported, excess dropped.
	n, err = lw.Write([]byte("defgh"))
	if err != nil || n != 5 {
		t.Fatalf("Write = (%d, %v), want (5, nil)", n, err)
	}
	if !lw.Truncated {
		t.Error("Truncated = false, want true")
	}
	if buf.String() != "abcde" {
		t.Errorf("buffer = %q, want abcde", buf.String())
	}

	// Writes past the cap report success without storing anything.
	n, err = lw.Write([]byte("xyz"))
	if err != nil || n != 3 {
		t.Fatalf("Write = (%d, %v), want (3, nil)", n, err)
	}
	if buf.String() != "abcde" {
		t.Errorf("buffer grew past cap: %q", buf.String())
	}
}
