// Package mcp exposes the sweep over the Model Context Protocol so AI
// assistants can run experiments and inspect result files interactively.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with registered tools.
func NewServer(version string) *Server {
	s := server.NewMCPServer("recsweep", version, server.WithLogging())
	registerTools(s)
	return &Server{
		mcpServer: s,
	}
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools adds all supported tools to the server.
func registerTools(s *server.MCPServer) {
	sweepTool := mcp.NewTool("run_sweep",
		mcp.WithDescription("Run the record-size benchmark sweep. Each configuration is measured plain, under strace -c, and under perf stat; results are appended to a CSV file. Returns a summary with per-configuration failures. Runs for as long as the benchmark takes."),
		mcp.WithString("bench",
			mcp.Required(),
			mcp.Description("Path to the fs_bench workload binary"),
		),
		mcp.WithString("data",
			mcp.Required(),
			mcp.Description("Path to the backing data file the workload reads"),
		),
		mcp.WithString("out",
			mcp.Description("Result CSV path"),
			mcp.DefaultString("results.csv"),
		),
		mcp.WithString("sizes",
			mcp.Description("Comma-separated record sizes, K/M/G suffixes allowed (default 1M,256K,64K,16K,4K)"),
		),
		mcp.WithString("mode",
			mcp.Description("Access mode"),
			mcp.DefaultString("rand"),
			mcp.Enum("seq", "rand"),
		),
		mcp.WithNumber("total_bytes",
			mcp.Description("Bytes read per configuration (default 8 GiB)"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Seed for random access mode (default 12345)"),
		),
	)
	s.AddTool(sweepTool, handleRunSweep)

	resultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Read a sweep result CSV and return its rows as JSON, sorted by record size unless sorted=false."),
		mcp.WithString("results",
			mcp.Description("Result CSV path"),
			mcp.DefaultString("results.csv"),
		),
		mcp.WithBoolean("sorted",
			mcp.Description("Sort rows by record size ascending (stored order is execution order)"),
			mcp.DefaultBool(true),
		),
	)
	s.AddTool(resultsTool, handleGetResults)

	toolsTool := mcp.NewTool("check_tools",
		mcp.WithDescription("Check whether strace, perf, and optionally the workload binary are available on this host."),
		mcp.WithString("bench",
			mcp.Description("Workload binary path to verify"),
		),
	)
	s.AddTool(toolsTool, handleCheckTools)
}
