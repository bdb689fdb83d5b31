package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// ListContractsParams contains parameters for listing mapped contracts
type ListContractsParams struct {
	// Repository narrows the listing to entries whose repository contains
	// the given substring
	Repository string
}

// ListContractsResult contains the result of listing mapped contracts
type ListContractsResult struct {
	Entries []*models.MappingEntry
	Summary MappingSummary
}

// MappingSummary provides summary statistics over the mapping
type MappingSummary struct {
	Total        int
	ByRepository map[string]int
	WithAddress  int
}

// ListContracts is the use case for listing the contract mapping
type ListContracts struct {
	config   *config.RuntimeConfig
	mappings MappingStore
}

// NewListContracts creates a new ListContracts use case
func NewListContracts(cfg *config.RuntimeConfig, mappings MappingStore) *ListContracts {
	return &ListContracts{
		config:   cfg,
		mappings: mappings,
	}
}

// Run executes the list contracts use case
func (uc *ListContracts) Run(ctx context.Context, params ListContractsParams) (*ListContractsResult, error) {
	all, err := uc.mappings.Load(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.MappingEntry, 0, len(all))
	for _, entry := range all {
		if params.Repository != "" && !strings.Contains(entry.Repository, params.Repository) {
			continue
		}
		entries = append(entries, entry)
	}
	sortEntries(entries)

	return &ListContractsResult{
		Entries: entries,
		Summary: summarizeEntries(entries),
	}, nil
}

// sortEntries sorts mapping entries by repository, then contract name
func sortEntries(entries []*models.MappingEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Repository != entries[j].Repository {
			return entries[i].Repository < entries[j].Repository
		}
		return entries[i].Name < entries[j].Name
	})
}

// summarizeEntries calculates summary statistics for mapping entries
func summarizeEntries(entries []*models.MappingEntry) MappingSummary {
	summary := MappingSummary{
		Total:        len(entries),
		ByRepository: make(map[string]int),
	}
	for _, entry := range entries {
		summary.ByRepository[entry.Repository]++
		if entry.Address != "" {
			summary.WithAddress++
		}
	}
	return summary
}
