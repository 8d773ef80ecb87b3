package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpLog = logger.New("cli:mcp_server")

// NewMCPServerCommand creates the mcp-server command
func NewMCPServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Run an MCP server exposing workflow validation tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so AI assistants can
validate AIHub workflow snapshots and inspect their locale bundles.

Tools:
  validate_workflow   Validate a snapshot (JSON or YAML text) against the catalog
  project_locale      Return the locale bundle of a snapshot

The catalog is fetched from the server on first use and reused for --catalog-ttl.

Examples:
  ` + constants.CLIName + ` mcp-server                                # Serve over stdio
  ` + constants.CLIName + ` mcp-server --catalog-file models.yaml     # Serve with an offline catalog
  DEBUG=cli:* ` + constants.CLIName + ` mcp-server 2> mcp.log          # Log requests to a file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}
			server := NewMCPServer(cfg.CachedCatalogSource())
			mcpLog.Print("Starting MCP server on stdio")
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	return cmd
}

// ValidateWorkflowArgs is the input of the validate_workflow tool.
type ValidateWorkflowArgs struct {
	Snapshot string `json:"snapshot" jsonschema:"the workflow snapshot as JSON or YAML text"`
	Format   string `json:"format,omitempty" jsonschema:"json or yaml, defaults to json"`
}

// ValidateWorkflowResult is the output of the validate_workflow tool.
type ValidateWorkflowResult struct {
	Valid      bool   `json:"valid"`
	WorkflowID string `json:"workflow_id,omitempty"`
	NodeID     string `json:"node_id,omitempty"`
	Input      string `json:"input,omitempty"`
	Line       int    `json:"line,omitempty"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ProjectLocaleArgs is the input of the project_locale tool.
type ProjectLocaleArgs struct {
	Snapshot string `json:"snapshot" jsonschema:"the workflow snapshot as JSON or YAML text"`
	Format   string `json:"format,omitempty" jsonschema:"json or yaml, defaults to json"`
}

// NewMCPServer builds the MCP server and registers its tools.
func NewMCPServer(source catalog.Source) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    constants.CLIName,
		Version: constants.Version,
	}, nil)
	server.AddReceivingMiddleware(loggingMiddleware(logger.NewSlogLogger("cli:mcp_server")))

	tools := &mcpTools{catalog: source}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_workflow",
		Description: "Validate an AIHub workflow snapshot against the model catalog of the server. Returns the workflow id when valid, or the first violated rule with the node, input and line it concerns.",
	}, tools.validateWorkflow)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_locale",
		Description: "Return the locale bundle of an AIHub workflow snapshot: the translatable texts of its expose, controller and run condition nodes, keyed by node id.",
	}, tools.projectLocale)

	return server
}

// loggingMiddleware logs every request the server handles.
func loggingMiddleware(slogger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			if err != nil {
				slogger.Warn("request failed", "method", method, "duration", time.Since(start), "error", err)
			} else {
				slogger.Debug("request handled", "method", method, "duration", time.Since(start))
			}
			return result, err
		}
	}
}

type mcpTools struct {
	catalog catalog.Source
}

func (t *mcpTools) validateWorkflow(ctx context.Context, req *mcp.CallToolRequest, args ValidateWorkflowArgs) (*mcp.CallToolResult, ValidateWorkflowResult, error) {
	mcpLog.Printf("validate_workflow: format=%q, bytes=%d", args.Format, len(args.Snapshot))

	g, err := decodeSnapshotText(args.Snapshot, args.Format)
	if err != nil {
		return nil, ValidateWorkflowResult{}, err
	}
	cat, err := t.catalog.Catalog(ctx)
	if err != nil {
		return nil, ValidateWorkflowResult{}, fmt.Errorf("failed to load model catalog: %w", err)
	}

	outcome := workflow.Validate(g, cat)
	if outcome.Valid() {
		return nil, ValidateWorkflowResult{Valid: true, WorkflowID: outcome.WorkflowID}, nil
	}

	result := ValidateWorkflowResult{Error: outcome.Err.Error()}
	var verr *workflow.ValidationError
	if errors.As(outcome.Err, &verr) {
		result.NodeID = verr.NodeID
		result.Input = verr.Input
		result.Line = verr.Line
		result.Suggestion = verr.Suggestion
	}
	return nil, result, nil
}

func (t *mcpTools) projectLocale(ctx context.Context, req *mcp.CallToolRequest, args ProjectLocaleArgs) (*mcp.CallToolResult, any, error) {
	mcpLog.Printf("project_locale: format=%q, bytes=%d", args.Format, len(args.Snapshot))

	g, err := decodeSnapshotText(args.Snapshot, args.Format)
	if err != nil {
		return nil, nil, err
	}
	data, err := json.MarshalIndent(workflow.ProjectLocale(g), "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode locale bundle: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func decodeSnapshotText(text, format string) (graph.NodeGraph, error) {
	switch format {
	case "", "json":
		return graph.Decode([]byte(text))
	case "yaml", "yml":
		return graph.DecodeYAML([]byte(text))
	default:
		return nil, fmt.Errorf("unsupported format %q, use json or yaml", format)
	}
}
