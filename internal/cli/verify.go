package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bytematch-org/bytematch-cli/internal/adapters/progress"
	"github.com/bytematch-org/bytematch-cli/internal/app"
	"github.com/bytematch-org/bytematch-cli/internal/cli/render"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		all          bool
		address      string
		name         string
		file         string
		changedFile  string
		skipUnmapped bool
		output       string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify deployed bytecode against pinned sources",
		Long: `Verify that the bytecode deployed at each candidate address matches the
bytecode produced by rebuilding the mapped source commit with the
deployment's own compiler settings.

Candidates come from exactly one input mode: the whole address book
(--all), a single address (--address), a named address file (--file), or
a changed-files listing (--changed-file). With no mode flag an
interactive run prompts for a selection from the contract mapping.`,
		Example: `  # Verify every contract in the address book
  bytematch verify --all

  # Verify one address, labeling it for the report
  bytematch verify --address 0x5555...4444 --name WrappedHype

  # Verify the contracts named in one address file
  bytematch verify --file addresses/core.json

  # Verify only contracts touched by a change set, writing a report
  bytematch verify --changed-file changed.json --skip-unmapped -o report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var requests []models.ContractRequest
			modeGiven := all || address != "" || file != "" || changedFile != ""
			if !modeGiven && !app.Config.NonInteractive && !app.Config.JSON {
				requests, err = pickRequests(ctx, app)
				if err != nil {
					return err
				}
				if len(requests) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), render.FormatWarning("No contracts selected"))
					return nil
				}
			} else {
				requests, err = app.CollectCandidates.Run(ctx, usecase.CollectCandidatesParams{
					All:         all,
					Address:     address,
					Name:        name,
					File:        file,
					ChangedFile: changedFile,
				})
				if err != nil {
					return err
				}
			}

			var sink usecase.ProgressSink = usecase.NopProgress{}
			if !app.Config.JSON {
				verifySink := progress.NewVerifySink(cmd.OutOrStdout(), !app.Config.NonInteractive)
				defer verifySink.Stop()
				sink = verifySink
			}

			report, err := app.VerifyContracts.Run(ctx, usecase.VerifyContractsParams{
				Requests:     requests,
				SkipUnmapped: skipUnmapped,
				Progress:     sink,
			})
			if err != nil {
				return err
			}
			sink.OnProgress(ctx, usecase.ProgressEvent{
				Stage:   string(usecase.StageCompleted),
				Message: fmt.Sprintf("Verified %d of %d contracts", report.Summary.Verified, report.Summary.Total),
			})

			if app.Config.JSON {
				if err := app.Reports.Write(ctx, report, output); err != nil {
					return err
				}
				if !report.Passed() {
					return domain.ErrVerificationFailed
				}
				return nil
			}

			renderer := render.NewVerifyRenderer(cmd.OutOrStdout())
			if err := renderer.RenderReport(report); err != nil {
				return err
			}
			if output != "" {
				if err := app.Reports.Write(ctx, report, output); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess(fmt.Sprintf("Report written to %s", output)))
			}

			if !report.Passed() {
				return domain.ErrVerificationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Verify every address in the address book")
	cmd.Flags().StringVar(&address, "address", "", "Verify a single contract address")
	cmd.Flags().StringVar(&name, "name", "", "Label for the contract given with --address")
	cmd.Flags().StringVar(&file, "file", "", "Verify the addresses in one address file")
	cmd.Flags().StringVar(&changedFile, "changed-file", "", "Verify contracts listed in a changed-files file")
	cmd.Flags().BoolVar(&skipUnmapped, "skip-unmapped", false, "Drop contracts without a source mapping instead of failing them")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the JSON report to this file")
	cmd.Flags().Int("fetch-workers", 8, "Concurrent deployment metadata fetches")
	cmd.Flags().Int("build-workers", 2, "Concurrent workspace builds")
	cmd.Flags().String("build-timeout", "10m", "Per-build time budget")
	cmd.Flags().Bool("keep-workspaces", false, "Keep build workspaces around for inspection")

	return cmd
}

// pickRequests prompts for a subset of the mapping to verify. Only entries
// with a recorded address qualify.
func pickRequests(ctx context.Context, app *app.App) ([]models.ContractRequest, error) {
	all, err := app.Mappings.Load(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.MappingEntry, 0, len(all))
	for _, entry := range all {
		if entry.Address == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no mapping entries carry an address")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	selected, err := app.Picker.SelectEntries(ctx, entries, "Select contracts to verify")
	if err != nil {
		return nil, err
	}

	requests := make([]models.ContractRequest, 0, len(selected))
	for _, entry := range selected {
		requests = append(requests, models.ContractRequest{
			Alias:   entry.Name,
			Address: common.HexToAddress(entry.Address),
		})
	}
	return requests, nil
}
