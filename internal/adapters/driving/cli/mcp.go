package cli

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose search to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run a Model Context Protocol server backed by the local result cache
and search history.

Tools:     search, suggest, recent_searches, clear_history
Resources: sercha://history, sercha://cache/stats,
           sercha://cache/results/{query}

JSON-RPC is spoken on stdin/stdout unless --port is given, in which case
the streamable HTTP transport listens on --host:--port.

  sercha mcp serve
  sercha mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Surfaces: surfaces,
		History:  searchHistory,
		Cache:    resultCache,
	})
	if err != nil {
		return err
	}

	stop := startScheduler(cmd)
	defer stop()

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
