package cli

import (
	"fmt"

	"github.com/mvp-joe/autofix/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server exposing the fix tools",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
ask for compile-error explanations and static-analysis fixes.

The MCP server:
- Provides auto_fix_compilation_errors (compiler check + explanation)
- Provides analyze_file (linter findings + structured fixes as JSON)
- Communicates via stdio (standard MCP transport); logs go to stderr

Example:
  autofix mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// stdout carries the protocol, so no spinner here. Tool calls run
	// concurrently and return their fixes as JSON, so no shared report file.
	p, cleanup, err := buildPipeline(ctx, logger, noReport)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcp.NewMCPServer(p, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
