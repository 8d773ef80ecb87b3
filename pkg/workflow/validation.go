// Package workflow validates AIHub workflow graphs before they are published
// and derives their locale projection.
//
// # Validation Architecture
//
// The validation code is organized into focused files:
//
//   - validation.go: This file - package documentation only
//   - structure_validation.go: Graph-wide checks (controller, project type, actions, expose ids)
//   - node_validation.go: Per-node input checks (indexes, file names, labels, metadata fields)
//   - model_validation.go: Checkpoint and LoRA selection against the server catalog
//   - validation_helpers.go: Shared parsing and membership helpers
//   - validation_error.go: The ValidationError type
//   - error_aggregation.go: Collecting errors across several snapshots
//   - locale.go: Locale projection for translation bundles
//
// # Validation Patterns
//
// Validation is a pure function of the graph and the catalog snapshot. It
// never mutates its inputs, so the same graph validated twice yields the same
// Outcome and independent graphs may be validated concurrently.
//
// Checks are fail-fast: the first violated rule is returned as a
// *ValidationError and nothing after it runs. The metadata_fields language is
// parsed by pkg/metafield; its errors are wrapped so errors.Is matches both
// ErrInvalidWorkflow and the metafield error class.

package workflow
