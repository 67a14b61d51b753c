// recsweep — record-size sweep driver for the fs_bench I/O workload.
//
// Runs the workload across a series of record sizes, once plain for wall
// time and once each under strace -c and perf stat for syscall and hardware
// counters, and appends one CSV row per configuration. A plot command turns
// the result file into charts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"

	"github.com/baikal/recsweep/internal/chart"
	"github.com/baikal/recsweep/internal/executor"
	"github.com/baikal/recsweep/internal/model"
	"github.com/baikal/recsweep/internal/output"
	"github.com/baikal/recsweep/internal/store"
	"github.com/baikal/recsweep/internal/sweep"
)

var (
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recsweep",
		Short: "Record-size micro-benchmark sweep for file I/O workloads",
		Long: `recsweep — single Go binary for record-size I/O experiments.

Drives an external fs_bench workload across a list of record sizes.
Each configuration is executed three times: plain (wall time), under
strace -c (syscall counts and time), and under perf stat (hardware
counters). Results land in a CSV file, one row per configuration,
flushed after every row so a crashed sweep keeps its finished work.`,
		Version: version,
	}

	// --- sweep command ---
	var (
		sweepBench       string
		sweepData        string
		sweepOut         string
		sweepSizes       string
		sweepTotalBytes  string
		sweepMode        string
		sweepSeed        int64
		sweepEvents      string
		sweepStrace      string
		sweepPerf        string
		sweepConfigFile  string
		sweepSummaryJSON string
		sweepQuiet       bool
	)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the record-size benchmark sweep",
		Long:  "Run fs_bench plain, under strace -c, and under perf stat for each record size, appending one CSV row per configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := model.DefaultSweepConfig()

			if sweepConfigFile != "" {
				if err := loadConfigFile(sweepConfigFile, &cfg); err != nil {
					return fmt.Errorf("load config %s: %w", sweepConfigFile, err)
				}
			}

			// Flags set explicitly override the config file.
			flags := cmd.Flags()
			if flags.Changed("bench") {
				cfg.BenchPath = sweepBench
			}
			if flags.Changed("data") {
				cfg.DataPath = sweepData
			}
			if flags.Changed("out") {
				cfg.OutPath = sweepOut
			}
			if flags.Changed("mode") {
				cfg.Mode = sweepMode
			}
			if flags.Changed("seed") {
				cfg.Seed = sweepSeed
			}
			if flags.Changed("strace") {
				cfg.StraceBin = sweepStrace
			}
			if flags.Changed("perf") {
				cfg.PerfBin = sweepPerf
			}
			if flags.Changed("quiet") {
				cfg.Quiet = sweepQuiet
			}
			if flags.Changed("sizes") {
				sizes, err := model.ParseSizeList(sweepSizes)
				if err != nil {
					return fmt.Errorf("invalid --sizes: %w", err)
				}
				cfg.RecordSizes = sizes
			}
			if flags.Changed("total-bytes") {
				tb, err := model.ParseSize(sweepTotalBytes)
				if err != nil {
					return fmt.Errorf("invalid --total-bytes: %w", err)
				}
				cfg.TotalBytes = tb
			}
			if flags.Changed("events") {
				cfg.PerfEvents = splitList(sweepEvents)
			}

			summary, err := sweep.New(cfg, nil).Run(cmd.Context())
			if err != nil {
				return err
			}

			if sweepSummaryJSON != "" {
				if err := output.WriteJSON(summary, sweepSummaryJSON); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
			}

			if summary.Succeeded == 0 {
				return fmt.Errorf("all %d configurations failed", summary.Attempted)
			}
			return nil
		},
	}

	sweepCmd.Flags().StringVar(&sweepBench, "bench", "./fs_bench", "Path to the fs_bench workload binary")
	sweepCmd.Flags().StringVar(&sweepData, "data", "data.bin", "Path to the backing data file the workload reads")
	sweepCmd.Flags().StringVarP(&sweepOut, "out", "o", "results.csv", "Result CSV path (recreated each sweep)")
	sweepCmd.Flags().StringVar(&sweepSizes, "sizes", "", "Comma-separated record sizes, K/M/G suffixes allowed (default 1M,256K,64K,16K,4K)")
	sweepCmd.Flags().StringVar(&sweepTotalBytes, "total-bytes", "", "Bytes read per configuration, suffixes allowed (default 8G)")
	sweepCmd.Flags().StringVar(&sweepMode, "mode", "rand", "Access mode: seq or rand")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", 12345, "Seed for random access mode")
	sweepCmd.Flags().StringVar(&sweepEvents, "events", "", "Comma-separated perf events (default cycles,instructions,cache-misses,major-faults,minor-faults,cs)")
	sweepCmd.Flags().StringVar(&sweepStrace, "strace", "strace", "strace binary name or path")
	sweepCmd.Flags().StringVar(&sweepPerf, "perf", "perf", "perf binary name or path")
	sweepCmd.Flags().StringVar(&sweepConfigFile, "config", "", "JSON config file; explicit flags override its values")
	sweepCmd.Flags().StringVar(&sweepSummaryJSON, "summary-json", "", "Write the sweep summary as JSON to this path (- for stdout)")
	sweepCmd.Flags().BoolVarP(&sweepQuiet, "quiet", "q", false, "Suppress progress output")

	// --- plot command ---
	var (
		plotResults string
		plotOutDir  string
	)

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Render charts from a sweep result CSV",
		Long:  "Read a result CSV and write wall-time and syscall-count charts as PNG files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(plotResults, plotOutDir)
		},
	}
	plotCmd.Flags().StringVar(&plotResults, "results", "results.csv", "Result CSV path")
	plotCmd.Flags().StringVar(&plotOutDir, "out-dir", ".", "Directory the chart PNGs are written to")

	// --- capabilities command ---
	var (
		capBench  string
		capStrace string
		capPerf   string
	)

	capabilitiesCmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show whether the required external tools are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapabilities(capBench, capStrace, capPerf)
		},
	}
	capabilitiesCmd.Flags().StringVar(&capBench, "bench", "", "Workload binary path to verify")
	capabilitiesCmd.Flags().StringVar(&capStrace, "strace", "strace", "strace binary name or path")
	capabilitiesCmd.Flags().StringVar(&capPerf, "perf", "perf", "perf binary name or path")

	rootCmd.AddCommand(sweepCmd, plotCmd, capabilitiesCmd, mcpCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfigFile decodes a JSON config file into cfg. The file is decoded
// into a generic map first so unknown keys fail loudly instead of being
// dropped.
func loadConfigFile(path string, cfg *model.SweepConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		ErrorUnused: true,
		// Replace list values wholesale. Without this, a file listing
		// fewer record sizes or events than the defaults would overwrite
		// the default slices element by element and keep the tail.
		ZeroFields: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// runPlot handles the `plot` command.
func runPlot(resultsPath, outDir string) error {
	rows, err := store.ReadAll(resultsPath)
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}
	paths, err := chart.Render(rows, outDir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("Wrote %s\n", p)
	}
	return nil
}

// runCapabilities handles the `capabilities` command.
func runCapabilities(bench, straceBin, perfBin string) error {
	report := func(name, bin string) {
		path, err := executor.ResolveTool(bin)
		if err != nil {
			fmt.Printf("%-8s MISSING (%v)\n", name+":", err)
			return
		}
		fmt.Printf("%-8s %s\n", name+":", path)
	}

	report("strace", straceBin)
	report("perf", perfBin)

	if bench != "" {
		if err := executor.VerifyExecutable(bench); err != nil {
			fmt.Printf("%-8s NOT RUNNABLE (%v)\n", "bench:", err)
		} else {
			fmt.Printf("%-8s %s\n", "bench:", bench)
		}
	}

	// Probe which default counters this kernel/PMU actually exposes by
	// running perf stat against a trivial command.
	if _, err := executor.ResolveTool(perfBin); err == nil {
		probeEvents(perfBin)
	}
	return nil
}

// probeEvents runs perf stat on /bin/true and reports per-event support.
func probeEvents(perfBin string) {
	runner := executor.NewExecRunner()
	args := []string{"stat", "-x", ",", "-e", strings.Join(model.DefaultPerfEvents, ","), "--", "true"}
	raw, err := runner.Run(context.Background(), perfBin, args)
	if err != nil {
		fmt.Printf("events:  probe failed (%v)\n", err)
		return
	}

	counters := executor.ParsePerfStat(raw.Stderr)
	fmt.Println("events:")
	for _, ev := range model.DefaultPerfEvents {
		if _, ok := counters[ev]; ok {
			fmt.Printf("  %-16s supported\n", ev)
		} else {
			fmt.Printf("  %-16s not supported\n", ev)
		}
	}
}
