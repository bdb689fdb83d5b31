package config

import (
	"time"
)

// RuntimeConfig is the resolved configuration injected into use cases.
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string

	// Candidate sources
	MappingFile  string   // contract mapping path, relative paths resolve against ProjectRoot
	AddressFiles []string // explicit address files for verify --all
	AddressDir   string   // scanned for address files when AddressFiles is empty

	// Upstream endpoints
	ExplorerAPI string
	RPCURL      string

	// Build settings
	WorkspaceRoot  string // checkout root, empty means a run-scoped temp dir
	KeepWorkspaces bool
	BuildWorkers   int
	BuildTimeout   time.Duration

	// Fetch settings
	FetchWorkers int
	FetchRetries int

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration // whole-run budget, zero means none
}
