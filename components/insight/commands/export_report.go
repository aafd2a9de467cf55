package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gocommand "github.com/goliatone/go-command"
)

// Report kinds accepted by the export command.
const (
	ReportKindSnapshot   = "snapshot"
	ReportKindStructured = "structured"
)

// ExportReportInput selects the report kind and output destination.
type ExportReportInput struct {
	Kind       string `json:"kind"`
	OutputPath string `json:"output_path"`
}

type reportExporter interface {
	WriteSnapshot(ctx context.Context, w io.Writer) error
	WriteStructured(ctx context.Context, w io.Writer) error
}

// ExportReportCommand drives the report pipeline and writes the PDF to disk.
type ExportReportCommand struct {
	exporter  reportExporter
	telemetry Telemetry
}

// NewExportReportCommand builds a command instance.
func NewExportReportCommand(exporter reportExporter, telemetry Telemetry) *ExportReportCommand {
	return &ExportReportCommand{exporter: exporter, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExportReportInput] = (*ExportReportCommand)(nil)

// Execute renders the requested report kind to the output path.
func (c *ExportReportCommand) Execute(ctx context.Context, msg ExportReportInput) error {
	if c.exporter == nil {
		return errors.New("export report command requires exporter")
	}
	if msg.OutputPath == "" {
		return errors.New("export report command requires output path")
	}

	f, err := os.Create(msg.OutputPath) //nolint:gosec
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	switch msg.Kind {
	case ReportKindStructured:
		err = c.exporter.WriteStructured(ctx, f)
	case ReportKindSnapshot, "":
		err = c.exporter.WriteSnapshot(ctx, f)
	default:
		return fmt.Errorf("unknown report kind %q", msg.Kind)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "insight.command.export_report", map[string]any{
		"kind": msg.Kind,
		"path": msg.OutputPath,
	})
	return nil
}
