package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bytematch-org/bytematch-cli/internal/cli/render"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var repository string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the contract mapping",
		Long: `List every contract in the mapping together with its pinned repository
and commit.`,
		Example: `  # List all mapped contracts
  bytematch list

  # List contracts pinned to one repository
  bytematch list --repo hyperliquid-dex/core`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListContracts.Run(cmd.Context(), usecase.ListContractsParams{
				Repository: repository,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				// Mirror the mapping file shape, entries keyed by name
				out := make(map[string]*models.MappingEntry, len(result.Entries))
				for _, entry := range result.Entries {
					out[entry.Name] = entry
				}
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewListRenderer(cmd.OutOrStdout())
			return renderer.RenderMapping(result)
		},
	}

	cmd.Flags().StringVar(&repository, "repo", "", "Only entries whose repository contains this substring")

	return cmd
}
