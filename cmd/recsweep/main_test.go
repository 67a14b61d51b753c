package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baikal/recsweep/internal/model"
)

// These tests verify the flag and config-file wiring that sweep's RunE
// performs, without running the workload.

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	content := `{
		"bench": "/opt/fs_bench",
		"data": "/mnt/data.bin",
		"out": "run1.csv",
		"record_sizes": [4096, 65536],
		"total_bytes": 1073741824,
		"mode": "seq",
		"seed": 7,
		"quiet": true
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := model.DefaultSweepConfig()
	if err := loadConfigFile(path, &cfg); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.BenchPath != "/opt/fs_bench" {
		t.Errorf("BenchPath = %q", cfg.BenchPath)
	}
	if cfg.DataPath != "/mnt/data.bin" {
		t.Errorf("DataPath = %q", cfg.DataPath)
	}
	if cfg.OutPath != "run1.csv" {
		t.Errorf("OutPath = %q", cfg.OutPath)
	}
	if len(cfg.RecordSizes) != 2 || cfg.RecordSizes[0] != 4096 || cfg.RecordSizes[1] != 65536 {
		t.Errorf("RecordSizes = %v", cfg.RecordSizes)
	}
	if cfg.TotalBytes != 1073741824 {
		t.Errorf("TotalBytes = %d", cfg.TotalBytes)
	}
	if cfg.Mode != model.ModeSeq {
		t.Errorf("Mode = %q", cfg.Mode)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d", cfg.Seed)
	}
	if !cfg.Quiet {
		t.Error("Quiet should be true")
	}
}

func TestLoadConfigFileShortListsReplaceDefaults(t *testing.T) {
	// Lists shorter than the defaults must replace them entirely, not
	// overwrite the leading elements and keep the default tail.
	path := filepath.Join(t.TempDir(), "sweep.json")
	content := `{
		"record_sizes": [4096, 65536],
		"perf_events": ["cycles"]
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := model.DefaultSweepConfig()
	if err := loadConfigFile(path, &cfg); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if len(cfg.RecordSizes) != 2 || cfg.RecordSizes[0] != 4096 || cfg.RecordSizes[1] != 65536 {
		t.Errorf("RecordSizes = %v, want [4096 65536]", cfg.RecordSizes)
	}
	if len(cfg.PerfEvents) != 1 || cfg.PerfEvents[0] != "cycles" {
		t.Errorf("PerfEvents = %v, want [cycles]", cfg.PerfEvents)
	}
}

func TestLoadConfigFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	if err := os.WriteFile(path, []byte(`{"mode": "seq"}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := model.DefaultSweepConfig()
	if err := loadConfigFile(path, &cfg); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.Mode != model.ModeSeq {
		t.Errorf("Mode = %q, want seq", cfg.Mode)
	}
	// Untouched fields keep their defaults.
	if cfg.Seed != 12345 {
		t.Errorf("Seed = %d, want default 12345", cfg.Seed)
	}
	if len(cfg.RecordSizes) != len(model.DefaultRecordSizes) {
		t.Errorf("RecordSizes = %v, want defaults", cfg.RecordSizes)
	}
}

func TestLoadConfigFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	if err := os.WriteFile(path, []byte(`{"bnech": "/opt/fs_bench"}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := model.DefaultSweepConfig()
	if err := loadConfigFile(path, &cfg); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadConfigFileRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.json")
	if err := os.WriteFile(path, []byte(`{`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := model.DefaultSweepConfig()
	if err := loadConfigFile(path, &cfg); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg := model.DefaultSweepConfig()
	if err := loadConfigFile(filepath.Join(t.TempDir(), "nope.json"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"cycles", []string{"cycles"}},
		{"cycles,cs", []string{"cycles", "cs"}},
		{" cycles , cs ", []string{"cycles", "cs"}},
		{"cycles,,cs", []string{"cycles", "cs"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := splitList(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitList(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("splitList(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCLISizesFlagParsing(t *testing.T) {
	// Simulates --sizes 4K,64K,1M
	sizes, err := model.ParseSizeList("4K,64K,1M")
	if err != nil {
		t.Fatalf("ParseSizeList: %v", err)
	}
	want := []int64{4096, 65536, 1048576}
	if len(sizes) != len(want) {
		t.Fatalf("sizes = %v, want %v", sizes, want)
	}
	for i := range sizes {
		if sizes[i] != want[i] {
			t.Errorf("sizes[%d] = %d, want %d", i, sizes[i], want[i])
		}
	}
}

func TestCLITotalBytesFlagParsing(t *testing.T) {
	// Simulates --total-bytes 8G
	tb, err := model.ParseSize("8G")
	if err != nil {
		t.Fatalf("ParseSize: %v", err)
	}
	if tb != 8*1024*1024*1024 {
		t.Errorf("total bytes = %d, want 8 GiB", tb)
	}
}
