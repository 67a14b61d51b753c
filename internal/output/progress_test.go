package output

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStderr(fn func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func TestProgressLogEnabled(t *testing.T) {
	out := captureStderr(func() {
		p := NewProgress(true)
		p.Log("record_size=%d", 4096)
	})

	if !strings.Contains(out, "record_size=4096") {
		t.Errorf("expected 'record_size=4096' in output, got %q", out)
	}
}

func TestProgressLogDisabled(t *testing.T) {
	out := captureStderr(func() {
		p := NewProgress(false)
		p.Log("should not appear")
	})

	if out != "" {
		t.Errorf("quiet mode should produce no output, got %q", out)
	}
}

func TestProgressEnabled(t *testing.T) {
	if !NewProgress(true).Enabled() {
		t.Error("Enabled() = false, want true")
	}
	if NewProgress(false).Enabled() {
		t.Error("Enabled() = true, want false")
	}
}
