package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/export"
	"github.com/aihub-tools/aihub-export/pkg/fileutil"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

var validateLog = logger.New("cli:validate_command")

// ValidateConfig holds configuration for validate command execution
type ValidateConfig struct {
	Paths      []string
	JSONOutput bool
	FailFast   bool
	Jobs       int
	Watch      bool
	Catalog    catalog.Source
	Out        io.Writer
	ErrOut     io.Writer
}

// FileResult is the validation result of one snapshot file.
type FileResult struct {
	File       string `json:"file"`
	Valid      bool   `json:"valid"`
	WorkflowID string `json:"workflow_id,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
	Input      string `json:"input,omitempty"`
	Line       int    `json:"line,omitempty"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`

	err     error
	skipped bool
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <snapshot>...",
		Short: "Validate AIHub workflow snapshots without exporting them",
		Long: `Validate one or more AIHub workflow snapshots against the model catalog of the server.

Each argument is a JSON or YAML snapshot file, or a directory whose snapshot files
are validated. Files are validated concurrently and every failing workflow is
reported, unless --fail-fast is given.

With --watch the files are validated again whenever they change, reusing the
fetched catalog for --catalog-ttl.

Examples:
  ` + constants.CLIName + ` validate workflow.json                 # Validate one snapshot
  ` + constants.CLIName + ` validate workflows/                    # Validate every snapshot in a directory
  ` + constants.CLIName + ` validate a.json b.yaml --json          # Output results in JSON format
  ` + constants.CLIName + ` validate workflows/ --fail-fast        # Stop at the first invalid workflow
  ` + constants.CLIName + ` validate workflow.json --watch         # Validate again on every save
  ` + constants.CLIName + ` validate workflow.json --catalog-file models.yaml  # Validate offline`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			failFast, _ := cmd.Flags().GetBool("fail-fast")
			jobs, _ := cmd.Flags().GetInt("jobs")
			watch, _ := cmd.Flags().GetBool("watch")

			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}

			validateLog.Printf("Running validate command: paths=%v, jobs=%d, watch=%v", args, jobs, watch)

			var source catalog.Source = cfg.CatalogSource()
			if watch {
				source = cfg.CachedCatalogSource()
			}

			config := ValidateConfig{
				Paths:      args,
				JSONOutput: jsonOutput,
				FailFast:   failFast,
				Jobs:       jobs,
				Watch:      watch,
				Catalog:    source,
				Out:        cmd.OutOrStdout(),
				ErrOut:     cmd.ErrOrStderr(),
			}
			return RunValidate(cmd.Context(), config)
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output results in JSON format")
	cmd.Flags().Bool("fail-fast", false, "Stop at the first invalid workflow instead of reporting all of them")
	cmd.Flags().Int("jobs", constants.DefaultValidateJobs, "Number of snapshots validated concurrently")
	cmd.Flags().BoolP("watch", "w", false, "Validate again whenever a snapshot file changes")

	return cmd
}

// RunValidate validates the snapshots named by config and reports the results.
// It returns an aggregated error naming every invalid workflow.
func RunValidate(ctx context.Context, config ValidateConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.ErrOut == nil {
		config.ErrOut = os.Stderr
	}

	paths, err := fileutil.ExpandSnapshotPaths(config.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve snapshot paths: %w", err)
	}
	if len(paths) == 0 {
		return errors.New("no snapshot files found, expected .json, .yaml or .yml files")
	}

	if config.Watch {
		return watchSnapshots(ctx, config, paths)
	}

	results, err := validateWithCatalog(ctx, config, paths)
	if err != nil {
		return err
	}
	if err := renderResults(config, results); err != nil {
		return err
	}
	return markReported(collectFailures(results, config.FailFast))
}

func validateWithCatalog(ctx context.Context, config ValidateConfig, paths []string) ([]FileResult, error) {
	cat, err := config.Catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", export.ErrCatalog, err)
	}
	return ValidateFiles(ctx, paths, cat, config.Jobs, config.FailFast), nil
}

// ValidateFiles validates paths on a bounded pool of jobs goroutines and
// returns the results sorted by file. With failFast the remaining files are
// skipped once one fails, so fewer results than paths may come back.
func ValidateFiles(ctx context.Context, paths []string, cat *catalog.ModelCatalog, jobs int, failFast bool) []FileResult {
	if jobs < 1 {
		jobs = 1
	}

	p := pool.NewWithResults[FileResult]().
		WithContext(ctx).
		WithMaxGoroutines(jobs).
		WithCollectErrored()
	if failFast {
		p = p.WithCancelOnError()
	}

	for _, path := range paths {
		p.Go(func(ctx context.Context) (FileResult, error) {
			if err := ctx.Err(); err != nil {
				return FileResult{File: path, skipped: true}, err
			}
			result := ValidateFile(path, cat)
			return result, result.err
		})
	}

	all, _ := p.Wait()

	results := make([]FileResult, 0, len(all))
	for _, r := range all {
		if !r.skipped {
			results = append(results, r)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].File < results[j].File
	})

	validateLog.Printf("Validated %d of %d files", len(results), len(paths))
	return results
}

// ValidateFile reads, decodes and validates one snapshot file.
func ValidateFile(path string, cat *catalog.ModelCatalog) FileResult {
	result := FileResult{File: path}

	data, err := fileutil.ReadLimited(path, fileutil.MaxFileSize)
	if err != nil {
		return result.fail(fmt.Errorf("%w: %w", export.ErrSnapshot, err))
	}
	g, err := graph.DecodeNamed(path, data)
	if err != nil {
		return result.fail(fmt.Errorf("%w: %w", export.ErrSnapshot, err))
	}

	outcome := workflow.Validate(g, cat)
	if !outcome.Valid() {
		return result.fail(outcome.Err)
	}

	result.Valid = true
	result.WorkflowID = outcome.WorkflowID
	return result
}

func (r FileResult) fail(err error) FileResult {
	r.err = err
	r.Error = err.Error()

	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		r.NodeID = verr.NodeID
		r.Input = verr.Input
		r.Line = verr.Line
		r.Suggestion = verr.Suggestion
	}
	return r
}

func renderResults(config ValidateConfig, results []FileResult) error {
	if config.JSONOutput {
		encoder := json.NewEncoder(config.Out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	}

	rows := make([][]string, 0, len(results))
	valid := 0
	for _, r := range results {
		status := "invalid"
		detail := r.Error
		if r.Valid {
			status = "valid"
			detail = ""
			valid++
		}
		rows = append(rows, []string{r.File, status, r.WorkflowID, stringutil.Truncate(detail, 80)})
	}

	fmt.Fprint(config.Out, console.RenderTable(console.TableConfig{
		Title:   "Workflow Validation",
		Headers: []string{"File", "Status", "Workflow ID", "Details"},
		Rows:    rows,
	}))

	for _, r := range results {
		if !r.Valid {
			fmt.Fprintf(config.ErrOut, "%s:\n", r.File)
			fprintValidationError(config.ErrOut, r.err)
		}
	}

	summary := fmt.Sprintf("%d of %d workflows valid", valid, len(results))
	if valid == len(results) {
		fmt.Fprintln(config.ErrOut, console.FormatSuccessMessage(summary))
	} else {
		fmt.Fprintln(config.ErrOut, console.FormatWarningMessage(summary))
	}
	return nil
}

func collectFailures(results []FileResult, failFast bool) error {
	collector := workflow.NewErrorCollector(failFast)
	for _, r := range results {
		if r.Valid {
			continue
		}
		if err := collector.Add(fmt.Errorf("%s: %w", r.File, r.err)); err != nil {
			return err
		}
	}
	return collector.FormattedError("workflow")
}
