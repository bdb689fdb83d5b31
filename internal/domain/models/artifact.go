package models

// BytecodeObject is the bytecode section of a Foundry compilation artifact.
type BytecodeObject struct {
	Object string `json:"object"`
}

// Artifact is the slice of a Foundry out/ artifact the verifier consumes.
// ContractName is present in some artifact formats; matching falls back to
// the artifact file stem when it is absent.
type Artifact struct {
	ContractName     string         `json:"contractName,omitempty"`
	Bytecode         BytecodeObject `json:"bytecode"`
	DeployedBytecode BytecodeObject `json:"deployedBytecode"`
}

// ObjectFor returns the bytecode blob matching the role of the deployed
// blob: creation bytecode for direct deploys, runtime bytecode otherwise.
// Empty and placeholder objects are reported as missing.
func (a *Artifact) ObjectFor(role BytecodeRole) (string, bool) {
	obj := a.DeployedBytecode.Object
	if role == RoleCreation {
		obj = a.Bytecode.Object
	}
	if obj == "" || obj == "0x" {
		return "", false
	}
	return obj, true
}
