package cmd

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ordinex/ordinex/internal/mcptools"
	"github.com/ordinex/ordinex/internal/version"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the detector and generator as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so coding agents can
call Ordinex directly.

Tools:
  ordinex_detect_large_plan            score a plan
  ordinex_generate_mission_breakdown   split a plan into missions
  ordinex_get_mission_breakdown        fetch a breakdown by ID

Logs go to stderr; stdout carries only the protocol.

Example client configuration:
  {"command": "ordinex", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			a.logger.Info("mcp server starting", "transport", "stdio", "history", p.HasStore())
			if err := server.ServeStdio(mcptools.NewServer(p, version.Version)); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
