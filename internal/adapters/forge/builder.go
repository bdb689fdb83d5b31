package forge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// outputTail bounds how much compiler output rides along on a build error.
// Solc failures repeat the same diagnostics per file; the end of the log is
// where the actual cause sits.
const outputTail = 1200

// Builder runs forge build in a workspace.
type Builder struct {
	log   *slog.Logger
	debug bool
}

// NewBuilder creates a forge build runner.
func NewBuilder(cfg *config.RuntimeConfig, log *slog.Logger) *Builder {
	return &Builder{
		log:   log.With("component", "forge"),
		debug: cfg.Debug,
	}
}

// Build compiles the workspace. Paths narrows the build to specific source
// files for a targeted rebuild.
func (b *Builder) Build(ctx context.Context, root string, opts usecase.BuildOptions) error {
	args := buildArgs(opts)
	cmd := exec.CommandContext(ctx, "forge", args...)
	cmd.Dir = root

	start := time.Now()
	b.log.Debug("running forge build", "dir", root, "args", args)

	output, err := b.run(cmd)
	duration := time.Since(start)
	if err != nil {
		// Context expiry wins over the process error so the engine can
		// classify timeouts instead of reporting a killed process.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.log.Error("forge build failed", "dir", root, "duration", duration, "error", err)
		return fmt.Errorf("forge build failed: %w\nOutput: %s", err, tailOf(output, outputTail))
	}

	b.log.Debug("forge build completed", "dir", root, "duration", duration)
	return nil
}

// buildArgs assembles the forge invocation for the given options.
func buildArgs(opts usecase.BuildOptions) []string {
	args := []string{"build"}
	args = append(args, opts.Paths...)
	if opts.Force {
		args = append(args, "--force")
	}
	return args
}

// run executes the command, capturing combined output. Debug mode streams
// through a pty so forge keeps its progress bars and colors while the
// output still lands in the capture buffer.
func (b *Builder) run(cmd *exec.Cmd) (string, error) {
	if !b.debug {
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	var buf bytes.Buffer
	// The pty read errors out when the child exits; that is its EOF.
	_, _ = io.Copy(os.Stdout, io.TeeReader(ptyFile, &buf))

	return buf.String(), cmd.Wait()
}

// tailOf returns at most the last limit bytes of trimmed output.
func tailOf(output string, limit int) string {
	output = strings.TrimSpace(output)
	if len(output) <= limit {
		return output
	}
	return "..." + output[len(output)-limit:]
}

// Ensure the adapter implements the interface
var _ usecase.BuildRunner = (*Builder)(nil)
