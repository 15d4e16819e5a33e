// Package mcp exposes the fix pipeline as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	ServerName    = "autofix"
	ServerVersion = "1.0.0"
)

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewMCPServer creates a server with both fix tools registered.
func NewMCPServer(runner FileRunner, logger *zap.Logger) (*MCPServer, error) {
	if runner == nil {
		return nil, errors.New("pipeline is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	AddAutoFixTool(mcpServer, runner)
	AddAnalyzeFileTool(mcpServer, runner)

	return &MCPServer{mcp: mcpServer, logger: logger}, nil
}

// Serve runs the server on stdio and blocks until the client disconnects,
// a shutdown signal arrives, or ctx is cancelled.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		// stdout carries the protocol; logs go to stderr via zap
		s.logger.Info("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Server returns the underlying mcp-go server.
func (s *MCPServer) Server() *server.MCPServer {
	return s.mcp
}
