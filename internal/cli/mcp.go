package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/treerag/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the document tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewServer(a.Store, a.Engine, a.Indexer, a.Config, a.Log)
		return srv.Serve(cmd.Context(), cmd.InOrStdin(), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
