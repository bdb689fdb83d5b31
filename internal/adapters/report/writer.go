package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// Writer persists verification reports as indented JSON.
type Writer struct {
	out io.Writer
	log *slog.Logger
}

// NewWriter creates a report writer. out receives the report when no file
// path is given.
func NewWriter(out io.Writer, log *slog.Logger) *Writer {
	return &Writer{
		out: out,
		log: log.With("component", "report"),
	}
}

// Write encodes the report and delivers it to path, or to the writer's
// output stream when path is empty or "-". File delivery goes through a
// temp file and rename so a crashed run never leaves a half-written report
// behind for CI to parse.
func (w *Writer) Write(ctx context.Context, report *models.VerificationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err := w.out.Write(data)
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	w.log.Debug("report written", "path", path, "verified", report.Summary.Verified, "failed", report.Summary.Failed)
	return nil
}

// Ensure the adapter implements the interface
var _ usecase.ReportWriter = (*Writer)(nil)
