package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CompilerSettings captures the compiler configuration a contract was
// deployed with. Structural equality over all fields defines the build
// grouping fingerprint together with the source mapping.
type CompilerSettings struct {
	Version          string `json:"compiler_version"`    // e.g. "v0.8.24+commit.e11b9ed9"
	OptimizerEnabled bool   `json:"optimization_enabled"`
	OptimizerRuns    int    `json:"optimization_runs"`
	EVMVersion       string `json:"evm_version,omitempty"`
	ViaIR            bool   `json:"via_ir"`
}

// NewCompilerSettings validates field ranges at construction.
func NewCompilerSettings(version string, optimizerEnabled bool, optimizerRuns int, evmVersion string, viaIR bool) (CompilerSettings, error) {
	if optimizerRuns < 0 {
		return CompilerSettings{}, fmt.Errorf("optimizer runs must be >= 0, got %d", optimizerRuns)
	}
	return CompilerSettings{
		Version:          version,
		OptimizerEnabled: optimizerEnabled,
		OptimizerRuns:    optimizerRuns,
		EVMVersion:       evmVersion,
		ViaIR:            viaIR,
	}, nil
}

// SolcVersion extracts the bare "major.minor.patch" from the full version
// string, which usually carries a leading v and commit build metadata.
// Returns an empty string when the version does not parse.
func (s CompilerSettings) SolcVersion() string {
	if s.Version == "" {
		return ""
	}
	v, err := semver.NewVersion(s.Version)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// GroupKey identifies a build group: all contracts sharing it are compiled
// by a single toolchain invocation. Comparable, so it can key maps directly.
type GroupKey struct {
	Repository string
	Ref        string
	Settings   CompilerSettings
}

// Fingerprint returns a short stable hash of the key for logs and progress
// output. Derived from the same fields that define key equality.
func (k GroupKey) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s@%s|%s|%t|%d|%s|%t",
		k.Repository, k.Ref,
		k.Settings.Version, k.Settings.OptimizerEnabled, k.Settings.OptimizerRuns,
		k.Settings.EVMVersion, k.Settings.ViaIR)
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// WorkspaceKey identifies the checkout directory a group builds in. Groups
// differing only in compiler settings share a workspace and are serialized
// on it; groups differing in repository or ref never share one.
func (k GroupKey) WorkspaceKey() string {
	return k.Repository + "@" + k.Ref
}
