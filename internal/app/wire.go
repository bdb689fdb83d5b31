//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/bytematch-org/bytematch-cli/internal/adapters"
	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/logging"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Resolved configuration and logging
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewCollectCandidates,
		usecase.NewVerifyContracts,
		usecase.NewListContracts,
		usecase.NewShowContract,

		// App
		NewApp,
	)
	return nil, nil
}
