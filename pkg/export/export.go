// Package export validates a workflow snapshot and publishes it to the
// registry.
//
// An export runs strictly in order: snapshot, catalog, validation, workflow
// payload, locale bundle, then the optional cover image. Every external call
// is made once. A validation failure stops the export before anything is
// submitted, and an image failure only downgrades the result to a warning.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
)

var exportLog = logger.New("export:export")

// Error classes of a failed export, matched with errors.Is.
var (
	ErrSnapshot   = errors.New("failed to read workflow snapshot")
	ErrCatalog    = errors.New("failed to load model catalog")
	ErrValidation = errors.New("validation error")
	ErrSubmission = errors.New("failed to submit workflow")
)

// Report messages.
const (
	MsgValidationSuccess = "Validation Successful: The workflow is valid and ready for export."
	MsgExportWithImage   = "Export Successful: The workflow was exported with an image."
	MsgExportNoImage     = "Export Successful: The workflow was exported without an image, if an image already exists it was not changed."
	MsgExportImageFailed = "Export Successful: The workflow was exported without an image due to an error: "
)

// SnapshotSource produces the graph to export.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (graph.NodeGraph, error)
}

// Submitter publishes a validated workflow.
type Submitter interface {
	SubmitWorkflow(ctx context.Context, g graph.NodeGraph) error
	SubmitLocale(ctx context.Context, workflowID, locale string, projection workflow.LocaleProjection) error
	SubmitImage(ctx context.Context, workflowID string, png []byte) error
}

// ImagePicker optionally supplies a cover image. A nil image with a nil
// error means the user chose not to attach one.
type ImagePicker interface {
	PickImage(ctx context.Context) ([]byte, error)
}

// NoImage never supplies an image.
type NoImage struct{}

func (NoImage) PickImage(context.Context) ([]byte, error) { return nil, nil }

// Report is the single user-facing result of a dry run or an export.
type Report struct {
	Severity   console.Severity `json:"severity"`
	Message    string           `json:"message"`
	WorkflowID string           `json:"workflow_id,omitempty"`
}

// Exporter wires the collaborators of one export.
type Exporter struct {
	Snapshots SnapshotSource
	Catalog   catalog.Source
	Submitter Submitter
	Images    ImagePicker
	// Locale is the locale tag of the submitted bundle. Empty means the default locale.
	Locale string
}

// DryRun validates without submitting anything.
func (e *Exporter) DryRun(ctx context.Context) (Report, error) {
	exportLog.Print("Starting dry run")
	g, workflowID, err := e.validate(ctx)
	if err != nil {
		return errorReport(err), err
	}
	exportLog.Printf("Dry run passed: workflow=%s nodes=%d", workflowID, len(g))
	return Report{Severity: console.SeveritySuccess, Message: MsgValidationSuccess, WorkflowID: workflowID}, nil
}

// Export validates and publishes the workflow.
func (e *Exporter) Export(ctx context.Context) (Report, error) {
	exportLog.Print("Starting export")
	g, workflowID, err := e.validate(ctx)
	if err != nil {
		return errorReport(err), err
	}

	if err := e.Submitter.SubmitWorkflow(ctx, g); err != nil {
		err = fmt.Errorf("%w: workflow payload: %w", ErrSubmission, err)
		return errorReport(err), err
	}

	locale := e.Locale
	if locale == "" {
		locale = constants.DefaultLocale
	}
	if err := e.Submitter.SubmitLocale(ctx, workflowID, locale, workflow.ProjectLocale(g)); err != nil {
		err = fmt.Errorf("%w: locale bundle %q: %w", ErrSubmission, locale, err)
		return errorReport(err), err
	}
	exportLog.Printf("Submitted workflow %s with locale %s", workflowID, locale)

	return e.attachImage(ctx, workflowID), nil
}

// attachImage never fails the export: the payload and locale bundle are
// already published at this point.
func (e *Exporter) attachImage(ctx context.Context, workflowID string) Report {
	picker := e.Images
	if picker == nil {
		picker = NoImage{}
	}

	png, err := picker.PickImage(ctx)
	if err == nil && png != nil {
		err = e.Submitter.SubmitImage(ctx, workflowID, png)
		if err == nil {
			return Report{Severity: console.SeveritySuccess, Message: MsgExportWithImage, WorkflowID: workflowID}
		}
	}
	if err != nil {
		exportLog.Printf("Image step failed for %s: %v", workflowID, err)
		return Report{Severity: console.SeverityWarning, Message: MsgExportImageFailed + err.Error(), WorkflowID: workflowID}
	}
	return Report{Severity: console.SeveritySuccess, Message: MsgExportNoImage, WorkflowID: workflowID}
}

func (e *Exporter) validate(ctx context.Context) (graph.NodeGraph, string, error) {
	g, err := e.Snapshots.Snapshot(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	cat, err := e.Catalog.Catalog(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	outcome := workflow.Validate(g, cat)
	if !outcome.Valid() {
		return nil, "", fmt.Errorf("%w: %w", ErrValidation, outcome.Err)
	}
	return g, outcome.WorkflowID, nil
}

func errorReport(err error) Report {
	return Report{Severity: console.SeverityError, Message: Message(err)}
}

// Message renders an export error the way the editor dialog shows it.
func Message(err error) string {
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		return "Validation Error: " + verr.Error()
	}
	return err.Error()
}
