// Package store persists sweep results as an append-only CSV file with a
// fixed header, flushed after every row so a crash mid-sweep leaves a valid
// prefix of results.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/baikal/recsweep/internal/model"
)

// fixedColumns precede the per-counter columns in the header.
var fixedColumns = []string{
	"record_size",
	"total_bytes",
	"mode",
	"wall_time_sec",
	"syscall_count",
	"syscall_time_sec",
}

// ColumnName maps a perf event name to its CSV column.
func ColumnName(event string) string {
	// perf abbreviates context-switches as "cs"; the column keeps the
	// descriptive name.
	if event == "cs" {
		return "perf_context_switches"
	}
	return "perf_" + strings.ReplaceAll(event, "-", "_")
}

// eventName is the inverse of ColumnName.
func eventName(column string) string {
	if column == "perf_context_switches" {
		return "cs"
	}
	return strings.ReplaceAll(strings.TrimPrefix(column, "perf_"), "_", "-")
}

// Header returns the full column list for the given event order.
func Header(events []string) []string {
	cols := append([]string(nil), fixedColumns...)
	for _, ev := range events {
		cols = append(cols, ColumnName(ev))
	}
	return cols
}

// Writer appends ResultRows to a CSV file. The file is created (truncated)
// by NewWriter and held open for the sweep duration.
type Writer struct {
	f      *os.File
	csvw   *csv.Writer
	events []string
}

// NewWriter creates the result file and writes the header immediately, so
// even a sweep that fails on its first configuration leaves a readable file.
func NewWriter(path string, events []string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create result file: %w", err)
	}

	w := &Writer{
		f:      f,
		csvw:   csv.NewWriter(f),
		events: append([]string(nil), events...),
	}
	if err := w.csvw.Write(Header(events)); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.flush(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Append writes one row and flushes it to disk before returning. This
// flush-per-row is the crash-safety contract of the sweep.
func (w *Writer) Append(row model.ResultRow) error {
	record := []string{
		strconv.FormatInt(row.RecordSize, 10),
		strconv.FormatInt(row.TotalBytes, 10),
		row.Mode,
		strconv.FormatFloat(row.WallTimeSec, 'f', 6, 64),
		strconv.FormatInt(row.SyscallCount, 10),
		strconv.FormatFloat(row.SyscallTimeSec, 'f', 6, 64),
	}
	for _, ev := range w.events {
		record = append(record, strconv.FormatInt(int64(row.Counters.Get(ev)), 10))
	}

	if err := w.csvw.Write(record); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return w.flush()
}

func (w *Writer) flush() error {
	w.csvw.Flush()
	if err := w.csvw.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("sync result file: %w", err)
	}
	return nil
}

// Close flushes pending output and closes the file.
func (w *Writer) Close() error {
	w.csvw.Flush()
	if err := w.csvw.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// ReadAll loads every row of a result file in stored (execution) order.
// Consumers needing the record-size sort order apply it themselves.
func ReadAll(path string) ([]model.ResultRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("result file %s is empty", path)
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range fixedColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("result file missing column %q", name)
		}
	}

	var rows []model.ResultRow
	for _, rec := range records[1:] {
		row, err := parseRow(rec, header, col)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec, header []string, col map[string]int) (model.ResultRow, error) {
	var row model.ResultRow
	var err error

	field := func(name string) string { return rec[col[name]] }

	if row.RecordSize, err = strconv.ParseInt(field("record_size"), 10, 64); err != nil {
		return row, fmt.Errorf("parse record_size: %w", err)
	}
	if row.TotalBytes, err = strconv.ParseInt(field("total_bytes"), 10, 64); err != nil {
		return row, fmt.Errorf("parse total_bytes: %w", err)
	}
	row.Mode = field("mode")
	if row.WallTimeSec, err = strconv.ParseFloat(field("wall_time_sec"), 64); err != nil {
		return row, fmt.Errorf("parse wall_time_sec: %w", err)
	}
	if row.SyscallCount, err = strconv.ParseInt(field("syscall_count"), 10, 64); err != nil {
		return row, fmt.Errorf("parse syscall_count: %w", err)
	}
	if row.SyscallTimeSec, err = strconv.ParseFloat(field("syscall_time_sec"), 64); err != nil {
		return row, fmt.Errorf("parse syscall_time_sec: %w", err)
	}

	// csv.Reader enforces a uniform field count, so rec and header align.
	row.Counters = make(model.CounterSet)
	for i, name := range header {
		if !strings.HasPrefix(name, "perf_") {
			continue
		}
		v, err := strconv.ParseFloat(rec[i], 64)
		if err != nil {
			return row, fmt.Errorf("parse %s: %w", name, err)
		}
		row.Counters[eventName(name)] = v
	}
	return row, nil
}
