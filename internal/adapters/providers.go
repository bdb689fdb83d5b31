package adapters

import (
	"io"
	"os"

	"github.com/google/wire"

	"github.com/bytematch-org/bytematch-cli/internal/adapters/addresses"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/blockchain"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/explorer"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/forge"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/foundry"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/interactive"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/mapping"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/report"
	"github.com/bytematch-org/bytematch-cli/internal/adapters/workspace"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// ProvideReportOut provides the stream reports land on when no output file
// is configured
func ProvideReportOut() io.Writer {
	return os.Stdout
}

// SourceSet provides candidate and mapping inputs
var SourceSet = wire.NewSet(
	addresses.NewLoader,
	wire.Bind(new(usecase.AddressSource), new(*addresses.Loader)),

	mapping.NewStore,
	wire.Bind(new(usecase.MappingStore), new(*mapping.Store)),
)

// UpstreamSet provides explorer and node access
var UpstreamSet = wire.NewSet(
	blockchain.NewNodeReader,
	wire.Bind(new(usecase.CodeReader), new(*blockchain.NodeReader)),

	explorer.NewClient,
	wire.Bind(new(usecase.DeploymentFetcher), new(*explorer.Client)),
)

// BuildSet provides workspace provisioning and compilation
var BuildSet = wire.NewSet(
	workspace.NewManager,
	wire.Bind(new(usecase.WorkspaceManager), new(*workspace.Manager)),

	foundry.NewPatcher,
	wire.Bind(new(usecase.ConfigPatcher), new(*foundry.Patcher)),

	forge.NewBuilder,
	wire.Bind(new(usecase.BuildRunner), new(*forge.Builder)),

	forge.NewArtifacts,
	wire.Bind(new(usecase.ArtifactRepository), new(*forge.Artifacts)),
)

// OutputSet provides report delivery and interactive selection
var OutputSet = wire.NewSet(
	ProvideReportOut,
	report.NewWriter,
	wire.Bind(new(usecase.ReportWriter), new(*report.Writer)),

	interactive.NewPicker,
	wire.Bind(new(usecase.EntryPicker), new(*interactive.Picker)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	SourceSet,
	UpstreamSet,
	BuildSet,
	OutputSet,
)
