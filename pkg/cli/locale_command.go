package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/export"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var localeCommandLog = logger.New("cli:locale_command")

// NewLocaleCommand creates the locale command
func NewLocaleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale <snapshot>",
		Short: "Print the locale bundle that an export would submit",
		Long: `Print the translatable texts of a workflow snapshot: the locale bundle that
export submits next to the workflow.

Only expose, controller and run condition nodes are included, with their
description, name, tooltip, label, options_label, category,
metadata_fields_label and error inputs.

Examples:
  ` + constants.CLIName + ` locale workflow.json                  # Print the bundle as JSON
  ` + constants.CLIName + ` locale workflow.json --format yaml    # Print the bundle as YAML
  ` + constants.CLIName + ` locale - < workflow.json              # Read the snapshot from stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			var source export.SnapshotSource = export.FileSnapshot{Path: args[0]}
			if args[0] == "-" {
				source = export.ReaderSnapshot{R: cmd.InOrStdin()}
			}

			g, err := source.Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: %w", export.ErrSnapshot, err)
			}
			return writeLocale(cmd.OutOrStdout(), workflow.ProjectLocale(g), format)
		},
	}

	cmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func writeLocale(w io.Writer, projection workflow.LocaleProjection, format string) error {
	localeCommandLog.Printf("Writing locale bundle: nodes=%d, format=%s", len(projection), format)

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(projection)
	case "yaml", "yml":
		data, err := yaml.Marshal(projection)
		if err != nil {
			return fmt.Errorf("failed to encode locale bundle: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q, use json or yaml", format)
	}
}
