package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/autofix/internal/fixer"
	mcputils "github.com/mvp-joe/autofix/internal/mcp-utils"
	"github.com/mvp-joe/autofix/internal/pipeline"
)

// FileRunner runs the fix pipeline on a file. *pipeline.Pipeline implements it.
type FileRunner interface {
	RunFile(ctx context.Context, filePath, lang string, mode fixer.Mode) (*pipeline.Outcome, error)
}

// AddAutoFixTool registers auto_fix_compilation_errors with an MCP server.
func AddAutoFixTool(s *server.MCPServer, runner FileRunner) {
	tool := mcp.NewTool(
		"auto_fix_compilation_errors",
		mcp.WithDescription("Compile a source file and, if it fails, return the compiler error together with an AI explanation and corrected code. The language is inferred from the file extension (.cpp, .c, .py, .java, .js)."),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the source file to check")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createAutoFixHandler(runner))
}

// createAutoFixHandler returns the composite text for a failed compile, or
// the success line when the file compiles.
func createAutoFixHandler(runner FileRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AutoFixRequest
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		outcome, err := runner.RunFile(ctx, args.FilePath, "", fixer.ModeSingleShot)
		if err != nil {
			return failureResult(err), nil
		}
		return mcp.NewToolResultText(outcome.Message()), nil
	}
}

// AddAnalyzeFileTool registers analyze_file with an MCP server.
func AddAnalyzeFileTool(s *server.MCPServer, runner FileRunner) {
	tool := mcp.NewTool(
		"analyze_file",
		mcp.WithDescription(`Run static analysis on a source file and return structured fix suggestions as JSON.

Batched mode (default for C and C++) sends every linter finding with its surrounding lines and returns one fix object per finding:
{"status", "diagnostics": [...], "fixes": [{"line", "issue", "explanation", "suggested_fix"}], "dropped"}

Languages without a line-level analyser fall back to single-shot mode, which returns the whole-file fix.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the source file to analyse")),
		mcp.WithString("language",
			mcp.Description("Language override: cpp, c, python, java, javascript. Inferred from the extension when omitted.")),
		mcp.WithString("mode",
			mcp.Description("'batched' or 'single'. When omitted, batched is used if the language supports it."),
			mcp.Enum(string(fixer.ModeBatched), string(fixer.ModeSingleShot))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createAnalyzeFileHandler(runner))
}

func createAnalyzeFileHandler(runner FileRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AnalyzeFileRequest
		if err := mcputils.CoerceBindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		mode := fixer.Mode(args.Mode)
		if mode == "" {
			mode = fixer.ModeBatched
		}

		outcome, err := runner.RunFile(ctx, args.FilePath, args.Language, mode)
		if errors.Is(err, pipeline.ErrNoLinter) && args.Mode == "" {
			outcome, err = runner.RunFile(ctx, args.FilePath, args.Language, fixer.ModeSingleShot)
		}
		if err != nil {
			return failureResult(err), nil
		}

		return marshalToolResponse(&AnalyzeFileResponse{
			Status:      string(outcome.Status),
			Mode:        string(outcome.Mode),
			FilePath:    outcome.FilePath,
			Language:    string(outcome.Language),
			Tool:        outcome.Tool,
			Message:     outcome.Message(),
			Diagnostics: outcome.Diagnostics,
			Fixes:       outcome.Fixes,
			Dropped:     outcome.Dropped,
			ReportPath:  outcome.ReportPath,
		})
	}
}
