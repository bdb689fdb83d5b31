package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// BytecodeRole says which kind of blob a fetch produced. Creation bytecode
// still carries constructor arguments; runtime bytecode is what lives at the
// address after deployment.
type BytecodeRole string

const (
	RoleCreation BytecodeRole = "creation"
	RoleRuntime  BytecodeRole = "runtime"
)

// DeploymentInfo holds everything the engine learns about a deployed
// contract from upstream: the canonical name under which it was verified,
// the bytecode blob (from one of the fetch tiers), and the compiler settings
// it was built with. Produced once per address per run; immutable afterwards.
type DeploymentInfo struct {
	Address      common.Address
	ContractName string // canonical name from verified metadata
	Verified     bool
	Bytecode     string // hex, possibly 0x-prefixed, as fetched
	Role         BytecodeRole
	Settings     CompilerSettings
	FilePath     string // source path reported by the explorer
	CreationTx   string
	Deployer     string
}

// CanonicalName returns the lookup key for the source mapping: the verified
// upstream name, falling back to the source file stem when the explorer did
// not report a name.
func (d *DeploymentInfo) CanonicalName() string {
	if d.ContractName != "" {
		return d.ContractName
	}
	return fileStem(d.FilePath)
}

func fileStem(path string) string {
	if path == "" {
		return ""
	}
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
