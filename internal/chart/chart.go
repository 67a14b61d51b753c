// Package chart renders the sweep result file into the two experiment
// charts: time versus record size and syscall count versus record size.
package chart

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/baikal/recsweep/internal/model"
)

// Fixed chart file names, matching the experiment write-up.
const (
	TimeChartFile     = "fs_bench_time_vs_record_size.png"
	SyscallsChartFile = "fs_bench_syscalls_vs_record_size.png"
)

// SortByRecordSize returns the rows in ascending record-size order without
// mutating the input. The sort is stable: ties keep their stored order.
// The result file stores execution order, which is typically descending.
func SortByRecordSize(rows []model.ResultRow) []model.ResultRow {
	sorted := append([]model.ResultRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordSize < sorted[j].RecordSize
	})
	return sorted
}

// Render draws both charts into outDir and returns the written file paths.
func Render(rows []model.ResultRow, outDir string) ([]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no result rows to plot")
	}
	sorted := SortByRecordSize(rows)

	timePath := filepath.Join(outDir, TimeChartFile)
	if err := renderTimeChart(sorted, timePath); err != nil {
		return nil, err
	}
	syscallsPath := filepath.Join(outDir, SyscallsChartFile)
	if err := renderSyscallsChart(sorted, syscallsPath); err != nil {
		return nil, err
	}
	return []string{timePath, syscallsPath}, nil
}

func renderTimeChart(rows []model.ResultRow, path string) error {
	p := newRecordSizePlot(rows, "Wall time vs syscall time vs record size")
	p.Y.Label.Text = "Seconds"

	wall := make(plotter.XYs, len(rows))
	syscallTime := make(plotter.XYs, len(rows))
	for i, row := range rows {
		x := recordSizeKiB(row)
		wall[i] = plotter.XY{X: x, Y: row.WallTimeSec}
		syscallTime[i] = plotter.XY{X: x, Y: row.SyscallTimeSec}
	}

	if err := addLinePoints(p, "Wall time (s)", wall, color.RGBA{R: 31, G: 119, B: 180, A: 255}); err != nil {
		return err
	}
	if err := addLinePoints(p, "Syscall time (s)", syscallTime, color.RGBA{R: 255, G: 127, B: 14, A: 255}); err != nil {
		return err
	}

	return savePlot(p, path)
}

func renderSyscallsChart(rows []model.ResultRow, path string) error {
	p := newRecordSizePlot(rows, "Syscall count vs record size")
	p.Y.Label.Text = "Syscall count"

	counts := make(plotter.XYs, len(rows))
	for i, row := range rows {
		counts[i] = plotter.XY{X: recordSizeKiB(row), Y: float64(row.SyscallCount)}
	}
	if err := addLinePoints(p, "Syscalls", counts, color.RGBA{R: 31, G: 119, B: 180, A: 255}); err != nil {
		return err
	}

	return savePlot(p, path)
}

// newRecordSizePlot builds a plot with a log-scale x-axis ticked at each
// measured record size, labeled in KiB so the powers of two read cleanly.
func newRecordSizePlot(rows []model.ResultRow, title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Record size (KiB, log scale)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = recordSizeTicks(rows)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Padding = 1 * vg.Millimeter
	return p
}

func recordSizeTicks(rows []model.ResultRow) plot.ConstantTicks {
	seen := make(map[int64]bool)
	var ticks []plot.Tick
	for _, row := range rows {
		if seen[row.RecordSize] {
			continue
		}
		seen[row.RecordSize] = true
		kib := recordSizeKiB(row)
		ticks = append(ticks, plot.Tick{
			Value: kib,
			Label: strconv.FormatFloat(kib, 'f', -1, 64),
		})
	}
	return plot.ConstantTicks(ticks)
}

func recordSizeKiB(row model.ResultRow) float64 {
	return float64(row.RecordSize) / 1024
}

func addLinePoints(p *plot.Plot, label string, xys plotter.XYs, c color.Color) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("build series %q: %w", label, err)
	}
	line.Color = c
	points.Color = c
	p.Add(line, points)
	p.Legend.Add(label, line, points)
	return nil
}

func savePlot(p *plot.Plot, path string) error {
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}
