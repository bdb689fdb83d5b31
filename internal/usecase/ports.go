package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// DeploymentFetcher retrieves a contract's verified metadata and bytecode
// from upstream. Implementations classify their failures with the domain
// error types so the engine can bucket them without string matching.
type DeploymentFetcher interface {
	FetchDeployment(ctx context.Context, address common.Address) (*models.DeploymentInfo, error)
}

// CodeReader reads raw runtime code from a node. The fetcher falls back to
// it when the explorer knows a contract is verified but serves no bytecode.
type CodeReader interface {
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
}

// MappingStore provides read access to the contract source mapping
type MappingStore interface {
	// Load returns all mapping entries keyed by canonical contract name
	Load(ctx context.Context) (map[string]*models.MappingEntry, error)
	// Lookup resolves one canonical name; absence is a NoMappingError
	// carrying close-name suggestions
	Lookup(ctx context.Context, canonicalName string) (*models.MappingEntry, error)
}

// AddressSource assembles the candidate set for a run from the various
// input shapes the CLI accepts.
type AddressSource interface {
	// All collects every known address from the configured address files
	All(ctx context.Context) ([]models.ContractRequest, error)
	// FromFile reads a flat name-to-address file
	FromFile(ctx context.Context, path string) ([]models.ContractRequest, error)
	// FromChangedFile reads a CI changed-contracts file
	FromChangedFile(ctx context.Context, path string) ([]models.ContractRequest, error)
}

// Workspace is a checked-out source tree a build group compiles in.
type Workspace struct {
	Key  string // repository@ref
	Root string // absolute path of the checkout
}

// WorkspaceManager materializes pinned source trees. Provision is safe for
// concurrent callers and returns the same workspace for the same
// repository@ref; serializing builds within a workspace is the scheduler's
// job, not the manager's.
type WorkspaceManager interface {
	Provision(ctx context.Context, mapping models.SourceMapping) (*Workspace, error)
	Cleanup(ctx context.Context) error
}

// RestoreFunc undoes a config patch. Must be called exactly once, on every
// path out of the build, including cancellation.
type RestoreFunc func() error

// ConfigPatcher rewrites a workspace's build configuration to match the
// deployment's compiler settings, returning the restore hook.
type ConfigPatcher interface {
	Patch(ctx context.Context, root string, settings models.CompilerSettings) (RestoreFunc, error)
}

// BuildOptions narrows a build to specific source paths.
type BuildOptions struct {
	Paths []string // targeted rebuild paths, empty means full build
	Force bool
}

// BuildRunner compiles a workspace. Returned errors carry a trimmed excerpt
// of compiler output; deadline expiry surfaces as the context error.
type BuildRunner interface {
	Build(ctx context.Context, root string, opts BuildOptions) error
}

// ArtifactRepository locates compiled artifacts in a workspace's build
// output. An artifact only counts for a role when it carries a non-empty
// bytecode object for it; a name match without usable bytecode is a miss,
// so the engine still gets its targeted-rebuild chance.
type ArtifactRepository interface {
	FindArtifact(ctx context.Context, root string, name string, role models.BytecodeRole) (*models.Artifact, error)
}

// ReportWriter persists the final report.
type ReportWriter interface {
	Write(ctx context.Context, report *models.VerificationReport, path string) error
}

// EntryPicker handles interactive selection over mapping entries.
type EntryPicker interface {
	// SelectEntries picks a subset for verification
	SelectEntries(ctx context.Context, entries []*models.MappingEntry, prompt string) ([]*models.MappingEntry, error)
	// PickEntry disambiguates a single entry
	PickEntry(ctx context.Context, entries []*models.MappingEntry, prompt string) (*models.MappingEntry, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// VerifyStage represents a stage in the verification pipeline
type VerifyStage string

const (
	StageGathering VerifyStage = "Gathering"
	StageFetching  VerifyStage = "Fetching"
	StageBuilding  VerifyStage = "Building"
	StageComparing VerifyStage = "Comparing"
	StageCompleted VerifyStage = "Completed"
)
