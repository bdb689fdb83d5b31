package app

import (
	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	CollectCandidates *usecase.CollectCandidates
	VerifyContracts   *usecase.VerifyContracts
	ListContracts     *usecase.ListContracts
	ShowContract      *usecase.ShowContract

	// Adapters the CLI drives directly
	Mappings usecase.MappingStore
	Picker   usecase.EntryPicker
	Reports  usecase.ReportWriter
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	collectCandidates *usecase.CollectCandidates,
	verifyContracts *usecase.VerifyContracts,
	listContracts *usecase.ListContracts,
	showContract *usecase.ShowContract,
	mappings usecase.MappingStore,
	picker usecase.EntryPicker,
	reports usecase.ReportWriter,
) (*App, error) {
	return &App{
		Config:            cfg,
		CollectCandidates: collectCandidates,
		VerifyContracts:   verifyContracts,
		ListContracts:     listContracts,
		ShowContract:      showContract,
		Mappings:          mappings,
		Picker:            picker,
		Reports:           reports,
	}, nil
}
