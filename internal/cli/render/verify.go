package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// VerifyRenderer handles rendering of verification reports
type VerifyRenderer struct {
	out io.Writer
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer) *VerifyRenderer {
	return &VerifyRenderer{out: out}
}

// RenderReport renders the full report: verified entries first, then failed
// entries with their diagnostics, then the verdict.
func (r *VerifyRenderer) RenderReport(report *models.VerificationReport) error {
	if report.Summary.Total == 0 {
		color.New(color.FgYellow).Fprintln(r.out, "No contracts to verify.")
		return nil
	}

	fmt.Fprintln(r.out)
	for _, entry := range report.Verified {
		color.New(color.FgGreen).Fprintf(r.out, "✓ %s (%s)\n", entry.Name, entry.Address)
		r.renderProvenance(entry.Details)
		r.renderTolerances(entry.Details)
	}

	if len(report.Verified) > 0 && len(report.Failed) > 0 {
		fmt.Fprintln(r.out)
	}
	for _, entry := range report.Failed {
		color.New(color.FgRed).Fprintf(r.out, "✗ %s (%s)\n", entry.Name, entry.Address)
		if entry.Error != nil {
			fmt.Fprintf(r.out, "    %s\n", *entry.Error)
		}
		r.renderDiff(entry.Details)
	}

	fmt.Fprintf(r.out, "\nVerified %d/%d contracts\n", report.Summary.Verified, report.Summary.Total)
	if report.Passed() {
		color.New(color.FgGreen).Fprintln(r.out, "✓ All contracts verified")
	} else {
		color.New(color.FgRed).Fprintf(r.out, "✗ %d contracts failed verification\n", report.Summary.Failed)
	}
	return nil
}

// renderProvenance shows where the compiled side of the comparison came from.
func (r *VerifyRenderer) renderProvenance(details *models.ResultDetails) {
	if details == nil {
		return
	}
	if details.Repository != "" {
		fmt.Fprintf(r.out, "    %s @ %s\n", details.Repository, shortCommit(details.Commit))
	}

	var parts []string
	if details.CompilerVersion != "" {
		parts = append(parts, "solc "+details.CompilerVersion)
	}
	if details.OptimizerRuns > 0 {
		parts = append(parts, fmt.Sprintf("%d optimizer runs", details.OptimizerRuns))
	}
	if details.BytecodeType != "" {
		parts = append(parts, cases.Title(language.English).String(details.BytecodeType)+" bytecode")
	}
	if details.DeployedSize > 0 {
		parts = append(parts, fmt.Sprintf("%d bytes", details.DeployedSize))
	}
	if len(parts) > 0 {
		fmt.Fprintf(r.out, "    %s\n", strings.Join(parts, ", "))
	}
}

// renderTolerances names the normalizations that were needed for the match.
func (r *VerifyRenderer) renderTolerances(details *models.ResultDetails) {
	if details == nil {
		return
	}
	if details.ConstructorArgsSize > 0 {
		fmt.Fprintf(r.out, "    stripped %d bytes of constructor args\n", details.ConstructorArgsSize)
	}
	if details.Create2PrefixSize > 0 {
		fmt.Fprintf(r.out, "    skipped %d bytes of factory prefix\n", details.Create2PrefixSize)
	}
	if details.ImmutableVars > 0 {
		fmt.Fprintf(r.out, "    tolerated %d immutable regions\n", details.ImmutableVars)
	}
}

// renderDiff shows the first-diff context for a bytecode mismatch.
func (r *VerifyRenderer) renderDiff(details *models.ResultDetails) {
	if details == nil || details.FirstDiffPosition == nil {
		return
	}
	fmt.Fprintf(r.out, "    first difference at byte %d\n", *details.FirstDiffPosition)
	if details.FirstDiffDeployed != "" {
		fmt.Fprintf(r.out, "      deployed: ..%s..\n", details.FirstDiffDeployed)
	}
	if details.FirstDiffCompiled != "" {
		fmt.Fprintf(r.out, "      compiled: ..%s..\n", details.FirstDiffCompiled)
	}
	if details.DeployedSize != details.CompiledSize {
		fmt.Fprintf(r.out, "      sizes: deployed %d bytes, compiled %d bytes\n", details.DeployedSize, details.CompiledSize)
	}
}

// shortCommit abbreviates a full commit hash for display.
func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
