package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bytematch-org/bytematch-cli/internal/cli/render"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:   "show <contract>",
		Short: "Show one mapping entry",
		Long: `Show the mapping entry for a single contract.

The contract can be referenced by canonical name, by a name fragment, or
by its 0x address. Ambiguous fragments prompt for a choice in interactive
runs. With --fetch the live deployment metadata is pulled from upstream
as well.`,
		Example: `  # Show by canonical name
  bytematch show WrappedHype

  # Show by address
  bytematch show 0x5555555555555555555555555555555555555555

  # Include the live deployment state
  bytematch show WrappedHype --fetch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowContract.Run(cmd.Context(), usecase.ShowContractParams{
				Ref:   args[0],
				Fetch: fetch,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				output := map[string]interface{}{
					"name":  result.Entry.Name,
					"entry": result.Entry,
				}
				if result.Deployment != nil {
					output["deployment"] = result.Deployment
				}
				data, err := json.MarshalIndent(output, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderer := render.NewShowRenderer(cmd.OutOrStdout())
			return renderer.RenderEntry(result)
		},
	}

	cmd.Flags().BoolVar(&fetch, "fetch", false, "Also fetch the live deployment state from upstream")

	return cmd
}
