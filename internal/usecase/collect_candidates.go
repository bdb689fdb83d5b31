package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// CollectCandidates assembles the candidate set for a verification run from
// one of the supported input modes.
type CollectCandidates struct {
	cfg    *config.RuntimeConfig
	source AddressSource
}

// NewCollectCandidates creates a new collect candidates use case
func NewCollectCandidates(cfg *config.RuntimeConfig, source AddressSource) *CollectCandidates {
	return &CollectCandidates{cfg: cfg, source: source}
}

// CollectCandidatesParams selects the input mode. Exactly one of All,
// Address, File and ChangedFile must be set; Name only accompanies Address.
type CollectCandidatesParams struct {
	All         bool
	Address     string
	Name        string
	File        string
	ChangedFile string
}

// Run returns the candidate set in input order. Zero addresses never make
// it into the set.
func (c *CollectCandidates) Run(ctx context.Context, params CollectCandidatesParams) ([]models.ContractRequest, error) {
	modes := 0
	if params.All {
		modes++
	}
	if params.Address != "" {
		modes++
	}
	if params.File != "" {
		modes++
	}
	if params.ChangedFile != "" {
		modes++
	}
	if modes != 1 {
		return nil, fmt.Errorf("exactly one of --all, --address, --file or --changed-file is required")
	}

	switch {
	case params.All:
		return c.source.All(ctx)
	case params.Address != "":
		return singleCandidate(params.Address, params.Name)
	case params.File != "":
		return c.source.FromFile(ctx, params.File)
	default:
		return c.source.FromChangedFile(ctx, params.ChangedFile)
	}
}

// singleCandidate validates an explicitly given address and labels it.
func singleCandidate(address, name string) ([]models.ContractRequest, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}
	addr := common.HexToAddress(address)
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("refusing to verify the zero address")
	}
	req := models.ContractRequest{Alias: name, Address: addr}
	if req.Alias == "" {
		req.Alias = req.AddressHex()
	}
	return []models.ContractRequest{req}, nil
}
