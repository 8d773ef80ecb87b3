package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/export"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/registry"
	"github.com/spf13/cobra"
)

var exportCommandLog = logger.New("cli:export_command")

// ExportConfig holds configuration for export command execution
type ExportConfig struct {
	DryRun     bool
	JSONOutput bool
	Locale     string
	Snapshots  export.SnapshotSource
	Catalog    catalog.Source
	Submitter  export.Submitter
	Images     export.ImagePicker
	Out        io.Writer
	ErrOut     io.Writer
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <snapshot>",
		Short: "Validate a workflow snapshot and publish it to the AIHub registry",
		Long: `Validate a workflow snapshot and, when it is valid, publish it to the AIHub
registry of the server: the workflow payload, its locale bundle and an optional
cover image, in that order.

Nothing is submitted when validation fails. A cover image that cannot be read or
uploaded does not fail the export; the workflow is kept and a warning is shown.

Use "-" to read a JSON snapshot from stdin.

Examples:
  ` + constants.CLIName + ` export workflow.json                       # Validate, export and prompt for an image
  ` + constants.CLIName + ` export workflow.json --image cover.png     # Export with a cover image
  ` + constants.CLIName + ` export workflow.json --no-image            # Export without touching the image
  ` + constants.CLIName + ` export workflow.json --dry-run             # Validate only
  ` + constants.CLIName + ` export workflow.yaml --server http://gpu:8188  # Export to another server
  ` + constants.CLIName + ` export - --no-image < workflow.json        # Read the snapshot from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			imagePath, _ := cmd.Flags().GetString("image")
			noImage, _ := cmd.Flags().GetBool("no-image")

			if imagePath != "" && noImage {
				return errors.New("--image and --no-image cannot be used together")
			}

			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}

			var snapshots export.SnapshotSource
			snapshotDir := "."
			if args[0] == "-" {
				snapshots = export.ReaderSnapshot{R: cmd.InOrStdin()}
				if imagePath == "" {
					noImage = true
				}
			} else {
				snapshots = export.FileSnapshot{Path: args[0]}
				snapshotDir = filepath.Dir(args[0])
			}

			exportCommandLog.Printf("Running export command: snapshot=%s, dry_run=%v, locale=%s", args[0], dryRun, cfg.Locale)

			config := ExportConfig{
				DryRun:     dryRun,
				JSONOutput: jsonOutput,
				Locale:     cfg.Locale,
				Snapshots:  snapshots,
				Catalog:    cfg.CatalogSource(),
				Submitter:  registry.NewClient(cfg.Server, cfg.Timeout),
				Out:        cmd.OutOrStdout(),
				ErrOut:     cmd.ErrOrStderr(),
			}
			// Prompting would corrupt JSON output, and dry runs never upload.
			config.Images = newImagePicker(imagePath, noImage || dryRun || jsonOutput, snapshotDir)
			return RunExport(cmd.Context(), config)
		},
	}

	cmd.Flags().Bool("dry-run", false, "Validate the workflow without submitting anything")
	cmd.Flags().BoolP("json", "j", false, "Output the result in JSON format")
	cmd.Flags().String("image", "", "PNG file to upload as the cover image")
	cmd.Flags().Bool("no-image", false, "Export without a cover image and without prompting for one")
	cmd.Flags().StringP("locale", "l", constants.DefaultLocale, "Locale tag of the submitted locale bundle")

	return cmd
}

// RunExport runs one dry run or export and prints its report.
func RunExport(ctx context.Context, config ExportConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.ErrOut == nil {
		config.ErrOut = os.Stderr
	}
	if config.Images == nil {
		config.Images = export.NoImage{}
	}

	exporter := &export.Exporter{
		Snapshots: config.Snapshots,
		Catalog:   config.Catalog,
		Submitter: config.Submitter,
		Images:    config.Images,
		Locale:    config.Locale,
	}

	var report export.Report
	var err error
	if config.DryRun {
		report, err = exporter.DryRun(ctx)
	} else {
		report, err = exporter.Export(ctx)
	}

	if config.JSONOutput {
		encoder := json.NewEncoder(config.Out)
		encoder.SetIndent("", "  ")
		if encodeErr := encoder.Encode(report); encodeErr != nil {
			return fmt.Errorf("failed to encode report: %w", encodeErr)
		}
		return markReported(err)
	}

	fmt.Fprintln(config.ErrOut, console.FormatMessage(report.Severity, report.Message))
	if verr := validationError(err); verr != nil && verr.Suggestion != "" {
		fmt.Fprintln(config.ErrOut, console.FormatInfoMessage(verr.Suggestion))
	}
	return markReported(err)
}
