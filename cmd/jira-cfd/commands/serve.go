package commands

import (
	"jira-cfd/internal/mcp"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(mcp.ServerDeps{
			Provider:     newProvider(),
			Workflow:     cfg.Workflow,
			EmptyHistory: cfg.EmptyHistoryPolicy,
			Mermaid:      cfg.EnableMermaidCharts,
			Version:      Version,
		})
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
