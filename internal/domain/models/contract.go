package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ContractRequest is one (name, address) pair from the input candidate set.
// The alias is whatever label the input file used for the address; it need
// not match the canonical contract name known upstream. Zero addresses are
// filtered by the loaders and never reach the engine.
type ContractRequest struct {
	Alias   string
	Address common.Address
}

// AddressHex returns the address in the lower-case form used in reports.
func (r ContractRequest) AddressHex() string {
	return strings.ToLower(r.Address.Hex())
}

// MappingEntry is one row of the externally maintained contract mapping,
// keyed by canonical contract name. It pins where a contract's source lives;
// compiler settings are deliberately absent because they are fetched from
// the deployment's own verified metadata each run. Name duplicates the map
// key so entries stay self-describing once loaded.
type MappingEntry struct {
	Name         string `json:"-"`
	Address      string `json:"address,omitempty"`
	Repository   string `json:"repo"`
	Commit       string `json:"commit"`
	ArtifactName string `json:"artifact_name,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	VerifiedAt   string `json:"verified_at,omitempty"`
}

// SourceMapping locates the source tree a contract must be built from.
// Immutable once resolved for a run.
type SourceMapping struct {
	Repository string // "org/repo"
	Ref        string // commit hash or tag
	Subpath    string // source file path within the repo, may be empty
}

// Mapping returns the source mapping pinned by a mapping entry.
func (e *MappingEntry) Mapping() SourceMapping {
	return SourceMapping{
		Repository: e.Repository,
		Ref:        e.Commit,
		Subpath:    e.FilePath,
	}
}

// Artifact returns the artifact name to look up in build output, defaulting
// to the given canonical name when the entry does not override it.
func (e *MappingEntry) Artifact(canonicalName string) string {
	if e.ArtifactName != "" {
		return e.ArtifactName
	}
	return canonicalName
}

// ChangedContract is one row of the CI changed-set file produced by the
// upstream diff-extraction step. Only Name and Address feed the engine.
type ChangedContract struct {
	File       string `json:"file"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	ChangeType string `json:"change_type,omitempty"`
}
