package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain"
	"github.com/bytematch-org/bytematch-cli/internal/domain/bytecode"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// VerifyContracts runs the verification pipeline: fetch deployment info for
// every candidate, resolve source mappings, build each distinct
// (repository, ref, settings) group once, and compare normalized bytecode.
// Per-contract failures become report rows; only run-level faults (bad
// input, unwritable report) surface as errors.
type VerifyContracts struct {
	cfg        *config.RuntimeConfig
	fetcher    DeploymentFetcher
	mappings   MappingStore
	workspaces WorkspaceManager
	patcher    ConfigPatcher
	builder    BuildRunner
	artifacts  ArtifactRepository
	log        *slog.Logger
}

// NewVerifyContracts creates a new verify contracts use case
func NewVerifyContracts(
	cfg *config.RuntimeConfig,
	fetcher DeploymentFetcher,
	mappings MappingStore,
	workspaces WorkspaceManager,
	patcher ConfigPatcher,
	builder BuildRunner,
	artifacts ArtifactRepository,
	log *slog.Logger,
) *VerifyContracts {
	return &VerifyContracts{
		cfg:        cfg,
		fetcher:    fetcher,
		mappings:   mappings,
		workspaces: workspaces,
		patcher:    patcher,
		builder:    builder,
		artifacts:  artifacts,
		log:        log.With("component", "verify"),
	}
}

// VerifyContractsParams contains options for a verification run
type VerifyContractsParams struct {
	Requests     []models.ContractRequest
	SkipUnmapped bool
	Progress     ProgressSink
}

// Run executes the pipeline over the candidate set. An empty candidate set
// yields an empty passing report.
func (v *VerifyContracts) Run(ctx context.Context, params VerifyContractsParams) (*models.VerificationReport, error) {
	progress := params.Progress
	if progress == nil {
		progress = NopProgress{}
	}
	if len(params.Requests) == 0 {
		v.log.Debug("empty candidate set")
		return AggregateReport(nil), nil
	}

	defer func() {
		if err := v.workspaces.Cleanup(context.WithoutCancel(ctx)); err != nil {
			v.log.Warn("workspace cleanup failed", "error", err)
		}
	}()

	outcomes := v.fetchAll(ctx, params.Requests, progress)
	resolved, results := v.resolveMappings(ctx, outcomes, params.SkipUnmapped, progress)

	groups := GroupContracts(resolved)
	v.log.Debug("scheduled build groups", "contracts", len(resolved), "groups", len(groups))
	results = append(results, v.processGroups(ctx, groups, progress)...)

	return AggregateReport(results), nil
}

// fetchOutcome pairs a candidate with what the fetch tiers produced for it.
type fetchOutcome struct {
	req  models.ContractRequest
	info *models.DeploymentInfo
	err  error
}

// fetchAll fetches deployment info for all candidates with a bounded worker
// pool. Worker errors stay attached to their candidate; nothing aborts here.
func (v *VerifyContracts) fetchAll(ctx context.Context, requests []models.ContractRequest, progress ProgressSink) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(requests))
	jobs := make(chan int)
	completions := make(chan int)

	workers := v.cfg.FetchWorkers
	if workers > len(requests) {
		workers = len(requests)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				req := requests[i]
				info, err := v.fetcher.FetchDeployment(ctx, req.Address)
				outcomes[i] = fetchOutcome{req: req, info: info, err: err}
				completions <- i
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range requests {
			jobs <- i
		}
	}()
	go func() {
		wg.Wait()
		close(completions)
	}()

	done := 0
	for i := range completions {
		done++
		progress.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageFetching),
			Current: done,
			Total:   len(requests),
			Message: requests[i].Alias,
		})
	}
	return outcomes
}

// resolveMappings turns fetch outcomes into build-ready contracts. Fetch
// failures and missing mappings become failed results immediately, except
// that unmapped contracts leave the run entirely when skipping is on.
func (v *VerifyContracts) resolveMappings(ctx context.Context, outcomes []fetchOutcome, skipUnmapped bool, progress ProgressSink) ([]*models.ResolvedContract, []*models.ComparisonResult) {
	var resolved []*models.ResolvedContract
	var results []*models.ComparisonResult

	for _, out := range outcomes {
		if out.err != nil {
			results = append(results, v.failResult(out.req, "", out.err, nil))
			continue
		}

		canonical := out.info.CanonicalName()
		if canonical == "" {
			canonical = out.req.Alias
			v.log.Debug("upstream reported no contract name, falling back to input alias",
				"address", out.req.AddressHex(), "alias", out.req.Alias)
		}

		entry, err := v.mappings.Lookup(ctx, canonical)
		if err != nil {
			var noMapping *domain.NoMappingError
			if errors.As(err, &noMapping) && skipUnmapped {
				v.log.Debug("skipping unmapped contract", "name", canonical)
				progress.Info(fmt.Sprintf("Skipping %s: no source mapping", canonical))
				continue
			}
			results = append(results, v.failResult(out.req, canonical, err, nil))
			continue
		}

		resolved = append(resolved, &models.ResolvedContract{
			Request:    out.req,
			Canonical:  canonical,
			Entry:      entry,
			Deployment: out.info,
		})
	}
	return resolved, results
}

// processGroups builds and compares all groups with a bounded worker pool.
// Group failures are isolated: one failing build marks its own members and
// leaves every other group alone.
func (v *VerifyContracts) processGroups(ctx context.Context, groups []*models.BuildGroup, progress ProgressSink) []*models.ComparisonResult {
	if len(groups) == 0 {
		return nil
	}
	locks := newWorkspaceLocks()
	perGroup := make([][]*models.ComparisonResult, len(groups))
	jobs := make(chan int)
	completions := make(chan int)

	workers := v.cfg.BuildWorkers
	if workers > len(groups) {
		workers = len(groups)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perGroup[i] = v.processGroup(ctx, groups[i], locks, progress)
				completions <- i
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := range groups {
			jobs <- i
		}
	}()
	go func() {
		wg.Wait()
		close(completions)
	}()

	done := 0
	for i := range completions {
		done++
		progress.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageBuilding),
			Current: done,
			Total:   len(groups),
			Message: fmt.Sprintf("%s (%s)", groups[i].Repository(), groups[i].Key.Fingerprint()),
		})
	}

	var results []*models.ComparisonResult
	for _, rs := range perGroup {
		results = append(results, rs...)
	}
	return results
}

// processGroup serializes on the group's workspace, then builds and compares
// its members. A group-level failure fails every member with the same cause.
func (v *VerifyContracts) processGroup(ctx context.Context, group *models.BuildGroup, locks *workspaceLocks, progress ProgressSink) []*models.ComparisonResult {
	lock := locks.get(group.Key.WorkspaceKey())
	lock.Lock()
	defer lock.Unlock()

	results, err := v.runGroup(ctx, group, progress)
	if err != nil {
		v.log.Debug("group failed",
			"repo", group.Repository(), "ref", group.Ref(), "error", err)
		failed := make([]*models.ComparisonResult, 0, len(group.Members))
		for _, member := range group.Members {
			failed = append(failed, v.failResult(member.Request, member.Canonical, err, v.baseDetails(member)))
		}
		return failed
	}
	return results
}

// runGroup provisions the workspace, patches its build config to the
// group's compiler settings, compiles once, and compares every member
// against the fresh artifacts. The config patch is undone before returning,
// whatever happens after it was applied.
func (v *VerifyContracts) runGroup(ctx context.Context, group *models.BuildGroup, progress ProgressSink) ([]*models.ComparisonResult, error) {
	ws, err := v.workspaces.Provision(ctx, models.SourceMapping{
		Repository: group.Repository(),
		Ref:        group.Ref(),
	})
	if err != nil {
		return nil, err
	}

	restore, err := v.patcher.Patch(ctx, ws.Root, group.Key.Settings)
	if err != nil {
		return nil, &domain.BuildError{Repository: group.Repository(), Ref: group.Ref(), Err: err}
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			v.log.Warn("failed to restore build config", "workspace", ws.Key, "error", rerr)
		}
	}()

	if err := v.build(ctx, ws.Root, group.Repository(), group.Ref(), nil); err != nil {
		return nil, err
	}

	results := make([]*models.ComparisonResult, 0, len(group.Members))
	for i, member := range group.Members {
		progress.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageComparing),
			Current: i + 1,
			Total:   len(group.Members),
			Message: member.Canonical,
		})
		results = append(results, v.compareMember(ctx, ws, member))
	}
	return results, nil
}

// build runs one compilation under the configured budget and classifies the
// failure mode. paths narrows the build to specific source files.
func (v *VerifyContracts) build(ctx context.Context, root, repository, ref string, paths []string) error {
	buildCtx := ctx
	if v.cfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(ctx, v.cfg.BuildTimeout)
		defer cancel()
	}

	err := v.builder.Build(buildCtx, root, BuildOptions{Paths: paths, Force: true})
	if err == nil {
		return nil
	}
	if errors.Is(buildCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return &domain.BuildTimeoutError{Repository: repository, Ref: ref, Budget: v.cfg.BuildTimeout.String()}
	}
	return &domain.BuildError{Repository: repository, Ref: ref, Err: err}
}

// compareMember locates one member's artifact and compares normalized
// bytecode. Returns a terminal result either way.
func (v *VerifyContracts) compareMember(ctx context.Context, ws *Workspace, member *models.ResolvedContract) *models.ComparisonResult {
	details := v.baseDetails(member)
	dep := member.Deployment

	artifact, err := v.findArtifact(ctx, ws, member)
	if err != nil {
		return v.failResult(member.Request, member.Canonical, err, details)
	}
	compiledRaw, ok := artifact.ObjectFor(dep.Role)
	if !ok {
		err := fmt.Errorf("%w: artifact %s has no %s bytecode", domain.ErrArtifactNotFound, member.ArtifactName(), dep.Role)
		return v.failResult(member.Request, member.Canonical, err, details)
	}

	compiled := bytecode.StripMetadata(bytecode.Clean(compiledRaw))
	deployed := bytecode.StripMetadata(bytecode.Clean(dep.Bytecode))
	details.DeployedSize = bytecode.ByteLen(deployed)
	details.CompiledSize = bytecode.ByteLen(compiled)

	equal, offset := bytecode.Compare(deployed, compiled)
	if !equal && dep.Role == models.RoleCreation {
		// Creation input may carry ABI-encoded constructor arguments after
		// the code.
		if stripped, argBytes := trailingArgsMatch(deployed, compiled); argBytes > 0 {
			details.ConstructorArgsSize = argBytes
			details.DeployedSize = bytecode.ByteLen(stripped)
			deployed = stripped
			equal = true
		}
	}
	if !equal && dep.Role == models.RoleCreation {
		// Factory and CREATE2 deployments record extra data ahead of the
		// creation code, possibly with constructor arguments behind it too.
		if trimmed, prefix, ok := bytecode.AlignLeadingPrefix(deployed, compiled); ok {
			same, _ := bytecode.Compare(trimmed, compiled)
			if !same {
				if stripped, argBytes := trailingArgsMatch(trimmed, compiled); argBytes > 0 {
					details.ConstructorArgsSize = argBytes
					trimmed = stripped
					same = true
				}
			}
			if same {
				details.Create2PrefixSize = prefix
				details.DeployedSize = bytecode.ByteLen(trimmed)
				deployed = trimmed
				equal = true
			}
		}
	}
	if !equal {
		if regions, ok := bytecode.MatchImmutables(deployed, compiled); ok {
			details.ImmutableVars = regions
			equal = true
		}
	}
	if !equal {
		charIdx := offset * 2
		details.FirstDiffPosition = &offset
		details.FirstDiffDeployed = bytecode.DiffWindow(deployed, charIdx)
		details.FirstDiffCompiled = bytecode.DiffWindow(compiled, charIdx)
		return v.failResult(member.Request, member.Canonical, &domain.MismatchError{Offset: offset}, details)
	}

	v.log.Debug("bytecode verified",
		"contract", member.Canonical,
		"address", member.Request.AddressHex(),
		"immutables", details.ImmutableVars)
	return &models.ComparisonResult{
		Status:        models.StatusVerified,
		Alias:         member.Request.Alias,
		CanonicalName: member.Canonical,
		Address:       member.Request.Address,
		Details:       details,
	}
}

// findArtifact looks a member's artifact up in the workspace build output.
// When the group build skipped the member's source file, one targeted
// rebuild of that file is attempted before giving up.
func (v *VerifyContracts) findArtifact(ctx context.Context, ws *Workspace, member *models.ResolvedContract) (*models.Artifact, error) {
	name := member.ArtifactName()
	role := member.Deployment.Role
	artifact, err := v.artifacts.FindArtifact(ctx, ws.Root, name, role)
	if err == nil {
		return artifact, nil
	}
	if !errors.Is(err, domain.ErrArtifactNotFound) || member.Entry.FilePath == "" {
		return nil, err
	}

	v.log.Debug("artifact missing after group build, rebuilding target",
		"artifact", name, "path", member.Entry.FilePath)
	if berr := v.build(ctx, ws.Root, member.Entry.Repository, member.Entry.Commit, []string{member.Entry.FilePath}); berr != nil {
		return nil, berr
	}
	return v.artifacts.FindArtifact(ctx, ws.Root, name, role)
}

// trailingArgsMatch strips a 32-byte aligned tail from the deployed blob and
// accepts the strip only when the remainder equals the compiled code.
// Returns the stripped blob and the number of argument bytes, zero when the
// blobs do not match this way.
func trailingArgsMatch(deployed, compiled string) (string, int) {
	stripped, argBytes := bytecode.StripConstructorArgs(deployed, len(compiled))
	if argBytes == 0 {
		return deployed, 0
	}
	if same, _ := bytecode.Compare(stripped, compiled); !same {
		return deployed, 0
	}
	return stripped, argBytes
}

// failResult converts a per-contract error into its report row.
func (v *VerifyContracts) failResult(req models.ContractRequest, canonical string, err error, details *models.ResultDetails) *models.ComparisonResult {
	return &models.ComparisonResult{
		Status:        domain.StatusForError(err),
		Alias:         req.Alias,
		CanonicalName: canonical,
		Address:       req.Address,
		Err:           err.Error(),
		Details:       details,
	}
}

// baseDetails seeds a member's diagnostic snapshot from its mapping and
// deployment metadata.
func (v *VerifyContracts) baseDetails(member *models.ResolvedContract) *models.ResultDetails {
	return &models.ResultDetails{
		Repository:      member.Entry.Repository,
		Commit:          member.Entry.Commit,
		CompilerVersion: member.Deployment.Settings.Version,
		OptimizerRuns:   member.Deployment.Settings.OptimizerRuns,
		BytecodeType:    string(member.Deployment.Role),
	}
}
