// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to query the filing corpus via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/finrag/finrag/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs finrag as an MCP (Model Context Protocol) server, exposing
financial question answering and filing search over stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCPServer,
		Example: `  # Start MCP server (typically called by an MCP client)
  finrag mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "finrag": {
  #       "command": "finrag",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCPServer builds the query pipeline and serves it over stdio
func runMCPServer(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	qa, ix, err := buildAgent(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing query pipeline: %w", err)
	}

	server := mcpserver.NewMCPServer(
		"Financial Filing Q&A",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, qa, ix)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("finrag MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, exiting")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
