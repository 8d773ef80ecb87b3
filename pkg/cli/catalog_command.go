package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/export"
	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the checkpoints, diffusion models and LoRAs available on the server",
		Long: `List the model catalog that validation checks model and LoRA names against.

The catalog is read from the server, or from --catalog-file when one is given.
The JSON output has the same shape as a catalog file, so it can be saved and
used later to validate offline.

Examples:
  ` + constants.CLIName + ` catalog                                  # Show the server's catalog
  ` + constants.CLIName + ` catalog --json > models.json             # Save the catalog for offline use
  ` + constants.CLIName + ` catalog --server http://gpu:8188         # Show another server's catalog`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")

			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}

			cat, err := cfg.CatalogSource().Catalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("%w: %w", export.ErrCatalog, err)
			}
			return writeCatalog(cmd.OutOrStdout(), cat, jsonOutput)
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output the catalog in JSON format")

	return cmd
}

func writeCatalog(w io.Writer, cat *catalog.ModelCatalog, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cat)
	}

	var rows [][]string
	for _, group := range []struct {
		kind string
		set  catalog.Set
	}{
		{"checkpoint", cat.Checkpoints},
		{"diffusion model", cat.DiffusionModels},
		{"lora", cat.LoRAs},
	} {
		for _, name := range group.set.Sorted() {
			rows = append(rows, []string{group.kind, name})
		}
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, console.FormatWarningMessage("The catalog is empty"))
		return nil
	}

	fmt.Fprint(w, console.RenderTable(console.TableConfig{
		Title:   "Model Catalog",
		Headers: []string{"Type", "Name"},
		Rows:    rows,
	}))
	return nil
}
