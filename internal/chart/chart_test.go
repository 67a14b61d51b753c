package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baikal/recsweep/internal/model"
)

func row(recordSize int64, wall float64) model.ResultRow {
	return model.ResultRow{
		RecordSize:     recordSize,
		TotalBytes:     8589934592,
		Mode:           model.ModeRand,
		WallTimeSec:    wall,
		SyscallCount:   recordSize / 128,
		SyscallTimeSec: wall / 2,
		Counters:       model.CounterSet{},
	}
}

func TestSortByRecordSize(t *testing.T) {
	// Stored order is execution order: large to small, with a duplicate
	// to check stability.
	in := []model.ResultRow{
		row(1048576, 1.0),
		row(65536, 2.0),
		row(65536, 3.0),
		row(4096, 4.0),
	}

	got := SortByRecordSize(in)

	for i := 1; i < len(got); i++ {
		if got[i].RecordSize < got[i-1].RecordSize {
			t.Errorf("not monotonic at %d: %d < %d", i, got[i].RecordSize, got[i-1].RecordSize)
		}
	}
	// Ties keep stored order.
	if got[1].WallTimeSec != 2.0 || got[2].WallTimeSec != 3.0 {
		t.Errorf("tie order broken: %v then %v", got[1].WallTimeSec, got[2].WallTimeSec)
	}
	// Input untouched.
	if in[0].RecordSize != 1048576 {
		t.Error("input slice was mutated")
	}
}

func TestSortByRecordSizeArbitraryOrders(t *testing.T) {
	orders := [][]int64{
		{4096, 1048576, 65536},
		{65536, 4096, 1048576},
		{1048576, 65536, 4096},
	}
	for _, order := range orders {
		var in []model.ResultRow
		for _, rs := range order {
			in = append(in, row(rs, 1.0))
		}
		got := SortByRecordSize(in)
		for i := 1; i < len(got); i++ {
			if got[i].RecordSize < got[i-1].RecordSize {
				t.Errorf("order %v: x-values not non-decreasing", order)
			}
		}
	}
}

func TestRenderWritesBothCharts(t *testing.T) {
	dir := t.TempDir()
	rows := []model.ResultRow{
		row(1048576, 1.2),
		row(262144, 1.5),
		row(65536, 2.1),
		row(16384, 3.4),
		row(4096, 6.8),
	}

	paths, err := Render(rows, dir)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %d, want 2", len(paths))
	}

	want := map[string]bool{
		filepath.Join(dir, TimeChartFile):     true,
		filepath.Join(dir, SyscallsChartFile): true,
	}
	for _, p := range paths {
		if !want[p] {
			t.Errorf("unexpected chart path %q", p)
		}
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("chart not written: %v", err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("chart %s is empty", p)
		}
	}
}

func TestRenderNoRows(t *testing.T) {
	if _, err := Render(nil, t.TempDir()); err == nil {
		t.Error("expected error for empty result set")
	}
}
