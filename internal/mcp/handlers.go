package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/baikal/recsweep/internal/chart"
	"github.com/baikal/recsweep/internal/executor"
	"github.com/baikal/recsweep/internal/model"
	"github.com/baikal/recsweep/internal/store"
	"github.com/baikal/recsweep/internal/sweep"
)

// handleRunSweep runs a full sweep with the given parameters. No timeout is
// imposed: the sweep takes as long as the workload does.
func handleRunSweep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	cfg := model.DefaultSweepConfig()
	cfg.Quiet = true
	cfg.BenchPath = stringArg(args, "bench", "")
	cfg.DataPath = stringArg(args, "data", "")
	cfg.OutPath = stringArg(args, "out", cfg.OutPath)
	cfg.Mode = stringArg(args, "mode", cfg.Mode)

	if cfg.BenchPath == "" {
		return errResult("bench is required"), nil
	}
	if cfg.DataPath == "" {
		return errResult("data is required"), nil
	}

	if s := stringArg(args, "sizes", ""); s != "" {
		sizes, err := model.ParseSizeList(s)
		if err != nil {
			return errResult(fmt.Sprintf("invalid sizes: %v", err)), nil
		}
		cfg.RecordSizes = sizes
	}
	if v, ok := numberArg(args, "total_bytes"); ok {
		cfg.TotalBytes = int64(v)
	}
	if v, ok := numberArg(args, "seed"); ok {
		cfg.Seed = int64(v)
	}

	summary, err := sweep.New(cfg, nil).Run(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("sweep failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleGetResults loads a result CSV and returns its rows.
func handleGetResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	path := stringArg(args, "results", "results.csv")

	rows, err := store.ReadAll(path)
	if err != nil {
		return errResult(fmt.Sprintf("read results: %v", err)), nil
	}
	if boolArg(args, "sorted", true) {
		rows = chart.SortByRecordSize(rows)
	}
	// Rows is never null in the response, even for a header-only file.
	if rows == nil {
		rows = []model.ResultRow{}
	}

	jsonData, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// handleCheckTools reports tracer and workload availability.
func handleCheckTools(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	status := map[string]interface{}{
		"strace": executor.Available("strace"),
		"perf":   executor.Available("perf"),
	}
	if bench := stringArg(args, "bench", ""); bench != "" {
		if err := executor.VerifyExecutable(bench); err != nil {
			status["bench"] = false
			status["bench_error"] = err.Error()
		} else {
			status["bench"] = true
		}
	}

	jsonData, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(jsonData)), nil
}

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

// numberArg extracts a numeric argument. JSON numbers arrive as float64.
func numberArg(args map[string]interface{}, key string) (float64, bool) {
	val, ok := args[key]
	if !ok || val == nil {
		return 0, false
	}
	f, ok := val.(float64)
	return f, ok
}

// boolArg extracts a boolean argument with a default value.
func boolArg(args map[string]interface{}, key string, defaultVal bool) bool {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	b, ok := val.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true).
// This is a tool-level error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
