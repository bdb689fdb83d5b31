package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// ShowContractParams contains parameters for showing a mapped contract
type ShowContractParams struct {
	// Ref is a canonical name, a name fragment, or a 0x address
	Ref string
	// Fetch also queries upstream for the live deployment state
	Fetch bool
}

// ShowContractResult contains the resolved entry and, when requested, the
// deployment state fetched from upstream
type ShowContractResult struct {
	Entry      *models.MappingEntry
	Deployment *models.DeploymentInfo
}

// ShowContract is the use case for inspecting one mapping entry
type ShowContract struct {
	config   *config.RuntimeConfig
	mappings MappingStore
	fetcher  DeploymentFetcher
	picker   EntryPicker
}

// NewShowContract creates a new ShowContract use case
func NewShowContract(cfg *config.RuntimeConfig, mappings MappingStore, fetcher DeploymentFetcher, picker EntryPicker) *ShowContract {
	return &ShowContract{
		config:   cfg,
		mappings: mappings,
		fetcher:  fetcher,
		picker:   picker,
	}
}

// Run resolves the reference to a single mapping entry, prompting when the
// reference is ambiguous and the run is interactive.
func (uc *ShowContract) Run(ctx context.Context, params ShowContractParams) (*ShowContractResult, error) {
	all, err := uc.mappings.Load(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := uc.resolveRef(ctx, all, params.Ref)
	if err != nil {
		return nil, err
	}

	result := &ShowContractResult{Entry: entry}
	if params.Fetch {
		if entry.Address == "" {
			return nil, fmt.Errorf("mapping for %s has no address to fetch", entry.Name)
		}
		info, err := uc.fetcher.FetchDeployment(ctx, common.HexToAddress(entry.Address))
		if err != nil {
			return nil, err
		}
		result.Deployment = info
	}
	return result, nil
}

func (uc *ShowContract) resolveRef(ctx context.Context, all map[string]*models.MappingEntry, ref string) (*models.MappingEntry, error) {
	if common.IsHexAddress(ref) {
		for _, entry := range all {
			if strings.EqualFold(entry.Address, ref) {
				return entry, nil
			}
		}
		return nil, fmt.Errorf("no mapping entry has address %s", ref)
	}

	if entry, ok := all[ref]; ok {
		return entry, nil
	}

	var matches []*models.MappingEntry
	for name, entry := range all {
		if strings.Contains(strings.ToLower(name), strings.ToLower(ref)) {
			matches = append(matches, entry)
		}
	}
	switch len(matches) {
	case 0:
		// Lookup attaches closest-name suggestions to the error
		_, err := uc.mappings.Lookup(ctx, ref)
		return nil, err
	case 1:
		return matches[0], nil
	}

	if uc.config.NonInteractive {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return nil, fmt.Errorf("%q matches multiple contracts: %s", ref, strings.Join(names, ", "))
	}
	sortEntries(matches)
	return uc.picker.PickEntry(ctx, matches, fmt.Sprintf("Multiple contracts match %q", ref))
}
