package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/bytematch-org/bytematch-cli/internal/domain/bytecode"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

var headerStyle = color.New(color.Bold, color.FgHiWhite)

// ShowRenderer renders a single mapping entry
type ShowRenderer struct {
	out io.Writer
}

// NewShowRenderer creates a new show renderer
func NewShowRenderer(out io.Writer) *ShowRenderer {
	return &ShowRenderer{out: out}
}

// RenderEntry renders the mapping entry and, when present, the deployment
// state fetched from upstream.
func (r *ShowRenderer) RenderEntry(result *usecase.ShowContractResult) error {
	entry := result.Entry

	headerStyle.Fprintln(r.out, entry.Name)
	fmt.Fprintf(r.out, "  Repository:  %s\n", entry.Repository)
	fmt.Fprintf(r.out, "  Commit:      %s\n", entry.Commit)
	if entry.Address != "" {
		fmt.Fprintf(r.out, "  Address:     %s\n", entry.Address)
	} else {
		fmt.Fprintf(r.out, "  Address:     %s\n", unmappedStyle.Sprint("(none)"))
	}
	if entry.ArtifactName != "" {
		fmt.Fprintf(r.out, "  Artifact:    %s\n", entry.ArtifactName)
	}
	if entry.FilePath != "" {
		fmt.Fprintf(r.out, "  Source file: %s\n", entry.FilePath)
	}
	if entry.VerifiedAt != "" {
		fmt.Fprintf(r.out, "  Verified at: %s\n", entry.VerifiedAt)
	}

	if dep := result.Deployment; dep != nil {
		fmt.Fprintln(r.out)
		headerStyle.Fprintln(r.out, "Deployment")
		if name := dep.CanonicalName(); name != "" {
			fmt.Fprintf(r.out, "  Contract:    %s\n", name)
		}
		verified := "no"
		if dep.Verified {
			verified = "yes"
		}
		fmt.Fprintf(r.out, "  Verified:    %s\n", verified)
		fmt.Fprintf(r.out, "  Bytecode:    %s, %d bytes\n", dep.Role, bytecode.ByteLen(bytecode.Clean(dep.Bytecode)))
		if dep.Settings.Version != "" {
			fmt.Fprintf(r.out, "  Compiler:    solc %s\n", dep.Settings.Version)
			fmt.Fprintf(r.out, "  Optimizer:   enabled=%t runs=%d via_ir=%t\n",
				dep.Settings.OptimizerEnabled, dep.Settings.OptimizerRuns, dep.Settings.ViaIR)
			if dep.Settings.EVMVersion != "" {
				fmt.Fprintf(r.out, "  EVM version: %s\n", dep.Settings.EVMVersion)
			}
		}
		if dep.CreationTx != "" {
			fmt.Fprintf(r.out, "  Creation tx: %s\n", dep.CreationTx)
		}
		if dep.Deployer != "" {
			fmt.Fprintf(r.out, "  Deployer:    %s\n", dep.Deployer)
		}
	}
	return nil
}
