// Package cli implements the chronctl command tree.
package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/chroniclehq/chronicle/internal/cli/client"
)

var rootCmd = &cobra.Command{
	Use:   "chronctl",
	Short: "Chronicle timeline store CLI",
	Long: `chronctl is the command-line interface for the chronicle timeline store.

Ingest entity batches, query entities and event timelines, and manage
access-control domains from your terminal.`,
	Version: "0.1.0",
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8188", "chronicle server base URL")
	rootCmd.PersistentFlags().String("user", "", "caller identity sent as X-Remote-User")
}

func apiClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	user, _ := cmd.Flags().GetString("user")
	return client.New(server, user)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
