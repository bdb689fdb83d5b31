package progress

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// VerifySink renders pipeline progress. Interactive runs share one spinner
// whose suffix follows the pipeline through its stages; non-interactive
// runs print one line per event so CI logs stay readable.
type VerifySink struct {
	out         io.Writer
	interactive bool
	spinner     *spinner.Spinner
	startTime   time.Time
}

// NewVerifySink creates a progress sink for the verification pipeline.
func NewVerifySink(out io.Writer, interactive bool) *VerifySink {
	return &VerifySink{
		out:         out,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// OnProgress handles progress events
func (v *VerifySink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	stage := usecase.VerifyStage(event.Stage)

	if stage == usecase.StageCompleted {
		v.stopSpinner()
		message := event.Message
		if message == "" {
			message = "Verification completed"
		}
		duration := time.Since(v.startTime).Round(time.Millisecond)
		color.New(color.FgGreen).Fprintf(v.out, "✅ %s in %s\n", message, duration)
		return
	}

	line := stageLine(stage, event)
	if line == "" {
		return
	}

	if !v.interactive {
		fmt.Fprintln(v.out, line)
		return
	}

	v.ensureSpinner()
	v.spinner.Suffix = " " + line
	if !v.spinner.Active() {
		v.spinner.Start()
	}
}

// Info prints an info message
func (v *VerifySink) Info(message string) {
	wasActive := v.stopSpinner()

	color.New(color.FgCyan).Fprintln(v.out, "ℹ️  "+message)

	if wasActive {
		v.spinner.Start()
	}
}

// Error prints an error message
func (v *VerifySink) Error(message string) {
	wasActive := v.stopSpinner()

	color.New(color.FgRed).Fprintln(v.out, "❌ "+message)

	if wasActive {
		v.spinner.Start()
	}
}

// stageLine renders one event as a log line or spinner suffix. Fetch and
// build events fire on completion, compare events fire on entry; the
// labels follow that.
func stageLine(stage usecase.VerifyStage, event usecase.ProgressEvent) string {
	switch stage {
	case usecase.StageGathering:
		if event.Message == "" {
			return "🔍 Gathering contracts to verify..."
		}
		return "🔍 " + event.Message
	case usecase.StageFetching:
		return fmt.Sprintf("🌐 [%d/%d] Fetched %s", event.Current, event.Total, event.Message)
	case usecase.StageBuilding:
		return fmt.Sprintf("🔨 [%d/%d] Built %s", event.Current, event.Total, event.Message)
	case usecase.StageComparing:
		return fmt.Sprintf("📝 [%d/%d] Comparing %s", event.Current, event.Total, event.Message)
	default:
		return event.Message
	}
}

func (v *VerifySink) ensureSpinner() {
	if v.spinner != nil {
		return
	}
	v.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	v.spinner.Writer = v.out
	_ = v.spinner.Color("cyan", "bold")
}

// Stop halts the spinner for good. Callers defer this so an error return
// never leaves the terminal animating.
func (v *VerifySink) Stop() {
	v.stopSpinner()
}

// stopSpinner halts an active spinner and reports whether it was running.
func (v *VerifySink) stopSpinner() bool {
	if v.spinner != nil && v.spinner.Active() {
		v.spinner.Stop()
		return true
	}
	return false
}

// Ensure it implements the interface
var _ usecase.ProgressSink = (*VerifySink)(nil)
