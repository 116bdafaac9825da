package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/vizlab/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing diagram generation, repair, completion and rendering tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		assistant, err := createAssistantFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: AI tools disabled: %v\n", err)
		}
		renderer := createRendererFromConfig(cfg)

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "vizlab MCP server started on stdio (renderer=%s)\n", renderer.Name())

		srv := mcpserver.NewServer(mcpserver.Deps{
			Assistant: assistant,
			Renderer:  renderer,
			Defaults:  cfg.DiagramOptions(),
			PNGScale:  cfg.Export.PNGScale,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
