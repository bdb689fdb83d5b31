package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Status classifies the outcome of one contract's verification.
type Status string

const (
	StatusVerified     Status = "VERIFIED"
	StatusMismatch     Status = "MISMATCH"
	StatusUnverified   Status = "UNVERIFIED"
	StatusNoMapping    Status = "NO_MAPPING"
	StatusNotAContract Status = "NOT_A_CONTRACT"
	StatusNetworkError Status = "NETWORK_ERROR"
	StatusBuildFailure Status = "BUILD_FAILURE"
	StatusTimeout      Status = "TIMEOUT"
)

// ResultDetails is the diagnostic snapshot attached to a comparison result.
// Size fields are byte counts of the normalized blobs; the first-diff fields
// are only set on mismatches.
type ResultDetails struct {
	Repository          string `json:"repo,omitempty"`
	Commit              string `json:"commit,omitempty"`
	CompilerVersion     string `json:"compiler_version,omitempty"`
	OptimizerRuns       int    `json:"optimization_runs"`
	BytecodeType        string `json:"bytecode_type,omitempty"`
	DeployedSize        int    `json:"deployed_size,omitempty"`
	CompiledSize        int    `json:"compiled_size,omitempty"`
	ConstructorArgsSize int    `json:"constructor_args_size,omitempty"`
	Create2PrefixSize   int    `json:"create2_prefix_size,omitempty"`
	ImmutableVars       int    `json:"immutable_vars,omitempty"`
	FirstDiffPosition   *int   `json:"first_diff_position,omitempty"`
	FirstDiffDeployed   string `json:"first_diff_deployed,omitempty"`
	FirstDiffCompiled   string `json:"first_diff_compiled,omitempty"`
}

// ComparisonResult is the terminal per-contract outcome. Every per-contract
// error is converted into one of these at its own stage; none aborts the run.
type ComparisonResult struct {
	Status        Status
	Alias         string
	CanonicalName string
	Address       common.Address
	Err           string // failure message, empty when verified
	Details       *ResultDetails
}

// Verified reports whether the contract passed.
func (r *ComparisonResult) Verified() bool {
	return r.Status == StatusVerified
}

// SortKey orders report entries: ascending canonical name, falling back to
// the input alias for contracts whose canonical name was never learned.
func (r *ComparisonResult) SortKey() string {
	if r.CanonicalName != "" {
		return r.CanonicalName
	}
	return r.Alias
}

// Entry converts the result into its report row.
func (r *ComparisonResult) Entry() ReportEntry {
	entry := ReportEntry{
		Address:  strings.ToLower(r.Address.Hex()),
		Name:     r.Alias,
		Verified: r.Verified(),
		Details:  r.Details,
	}
	if !r.Verified() {
		msg := r.Err
		entry.Error = &msg
	}
	return entry
}

// ReportEntry is one row of the machine-readable report. Error is null for
// verified rows, never omitted.
type ReportEntry struct {
	Address  string         `json:"address"`
	Name     string         `json:"name"`
	Verified bool           `json:"verified"`
	Error    *string        `json:"error"`
	Details  *ResultDetails `json:"details,omitempty"`
}

// ReportSummary carries counts derived from the partitioned entries.
type ReportSummary struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Failed   int `json:"failed"`
}

// VerificationReport is the run's terminal artifact: verified and failed
// entries, each sorted, with derived counts. Built once, never mutated.
type VerificationReport struct {
	Verified []ReportEntry `json:"verified"`
	Failed   []ReportEntry `json:"failed"`
	Summary  ReportSummary `json:"summary"`
}

// Passed reports the overall run verdict: true iff nothing failed.
func (r *VerificationReport) Passed() bool {
	return len(r.Failed) == 0
}
