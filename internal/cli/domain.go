package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chroniclehq/chronicle/pkg/model"
)

var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage access-control domains",
}

var domainPutCmd = &cobra.Command{
	Use:   "put <id>",
	Short: "Create or update a domain",
	Example: `  chronctl --user alice domain put team-a --readers "bob carol"
  chronctl --user alice domain put public --readers "*"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		readers, _ := cmd.Flags().GetString("readers")
		writers, _ := cmd.Flags().GetString("writers")

		stored, err := apiClient(cmd).PutDomain(&model.Domain{
			ID:          args[0],
			Description: description,
			Readers:     readers,
			Writers:     writers,
		})
		if err != nil {
			return fmt.Errorf("put domain failed: %w", err)
		}
		return printJSON(stored)
	},
}

var domainGetCmd = &cobra.Command{
	Use:     "get <id>",
	Short:   "Fetch one domain",
	Example: `  chronctl domain get team-a`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := apiClient(cmd).GetDomain(args[0])
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		return printJSON(domain)
	},
}

var domainListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List domains by owner",
	Example: `  chronctl --user alice domain list`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		list, err := apiClient(cmd).GetDomains(owner)
		if err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		return printJSON(list)
	},
}

func init() {
	domainPutCmd.Flags().String("description", "", "human-readable description")
	domainPutCmd.Flags().String("readers", "", "reader principals, space or comma separated (\"*\" for everyone)")
	domainPutCmd.Flags().String("writers", "", "writer principals, space or comma separated")
	domainCmd.AddCommand(domainPutCmd)
	domainCmd.AddCommand(domainGetCmd)

	domainListCmd.Flags().String("owner", "", "owner to list (defaults to --user)")
	domainCmd.AddCommand(domainListCmd)

	rootCmd.AddCommand(domainCmd)
}
