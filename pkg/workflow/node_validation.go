// This file validates the inputs of a single AIHub node.
//
// ValidateNode runs each check in a fixed order and stops at the first
// failure. Every check is gated on the presence of its input and only reads
// literal values: a wired input is skipped here and rejected for expose nodes
// by the static value check at the end.

package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/metafield"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
)

var nodeValidationLog = logger.New("workflow:node_validation")

// fileNamePattern is the character class accepted for project file names.
var fileNamePattern = regexp.MustCompile(`^[A-Za-z_\-.]+$`)

// numericExposeRefInputs name another expose node whose value bounds this one.
var numericExposeRefInputs = []string{"max_expose_id", "min_expose_id", "maxlen_expose_id", "minlen_expose_id"}

// staticValueExceptions are expose inputs that may be wired.
var staticValueExceptions = map[string]bool{
	"normalizer": true,
}

type nodeCheck func(g graph.NodeGraph, id string, node *graph.Node, cat *catalog.ModelCatalog) error

// nodeChecks run in this order; the first failure wins.
var nodeChecks = []nodeCheck{
	checkBatchIndex,
	checkIndexes,
	checkFileName,
	checkOptionsLabel,
	checkMetadataFieldsLabel,
	checkMetadataFields,
	checkNumericExposeRefs,
	checkModelAndLoras,
	checkStaticValues,
}

// ValidateNode checks the inputs of one node. Nodes outside the AIHub node
// set are not validated.
func ValidateNode(g graph.NodeGraph, id string, node *graph.Node, cat *catalog.ModelCatalog) error {
	if !node.Kind.IsAIHub() {
		return nil
	}
	if cat == nil {
		cat = catalog.Empty()
	}
	nodeValidationLog.Printf("Validating node: id=%s class_type=%s", id, node.ClassType)
	for _, check := range nodeChecks {
		if err := check(g, id, node, cat); err != nil {
			nodeValidationLog.Printf("Node %s failed validation: %v", id, err)
			return err
		}
	}
	return nil
}

func checkBatchIndex(_ graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	text, ok := literalText(node, "batch_index")
	if !ok || stringutil.IsBlank(text) {
		return nil
	}
	if !isInteger(text) {
		return newNodeError(id, node.ClassType, "batch_index",
			"batch index %q must be a single integer", text)
	}
	return nil
}

func checkIndexes(_ graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	text, ok := literalText(node, "indexes")
	if !ok || stringutil.IsBlank(text) {
		return nil
	}
	for _, segment := range strings.Split(text, ",") {
		parts := strings.Split(segment, ":")
		if len(parts) > 2 {
			return newNodeError(id, node.ClassType, "indexes",
				"segment %q has more than two colon separated parts, use a single index or a start:end range",
				strings.TrimSpace(segment))
		}
		for _, part := range parts {
			if !isInteger(part) {
				return newNodeError(id, node.ClassType, "indexes",
					"segment %q contains %q which is not an integer", strings.TrimSpace(segment), strings.TrimSpace(part))
			}
		}
	}
	return nil
}

func checkFileName(_ graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	text, ok := literalText(node, "file_name")
	if !ok || stringutil.IsBlank(text) {
		return nil
	}
	if !fileNamePattern.MatchString(text) {
		err := newNodeError(id, node.ClassType, "file_name",
			"file name %q may only contain letters, underscores, dashes and dots", text)
		err.Suggestion = "Remove spaces, digits and path separators from the file name"
		return err
	}
	return nil
}

func checkOptionsLabel(_ graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	label, ok := literalText(node, "options_label")
	if !ok || stringutil.IsBlank(label) {
		return nil
	}
	options, _ := literalText(node, "options")
	if got, want := lineCount(label), lineCount(options); got != want {
		return newNodeError(id, node.ClassType, "options_label",
			"has %d lines but options has %d, there must be one label per option", got, want)
	}
	return nil
}

func checkMetadataFieldsLabel(_ graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	labels, labelsOK := literalText(node, "metadata_fields_label")
	fields, fieldsOK := literalText(node, "metadata_fields")
	hasLabels := labelsOK && !stringutil.IsBlank(labels)
	hasFields := fieldsOK && !stringutil.IsBlank(fields)
	if !hasLabels && !hasFields {
		return nil
	}
	for i, line := range stringutil.SplitLines(labels) {
		if stringutil.IsBlank(line) {
			err := newNodeError(id, node.ClassType, "metadata_fields_label", "label is empty")
			err.Line = i + 1
			return err
		}
	}
	if got, want := lineCount(labels), lineCount(fields); got != want {
		return newNodeError(id, node.ClassType, "metadata_fields_label",
			"has %d lines but metadata_fields has %d, there must be one label per field", got, want)
	}
	return nil
}

func checkMetadataFields(g graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	fields, ok := literalText(node, "metadata_fields")
	if !ok || stringutil.IsBlank(fields) {
		return nil
	}
	if _, err := metafield.ParseLines(fields, id, g); err != nil {
		var ferr *metafield.Error
		if errors.As(err, &ferr) {
			return &ValidationError{
				NodeID:    id,
				ClassType: node.ClassType,
				Input:     "metadata_fields",
				Line:      ferr.Line,
				Reason:    ferr.Msg,
				Err:       err,
			}
		}
		return err
	}
	return nil
}

func checkNumericExposeRefs(g graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	for _, input := range numericExposeRefInputs {
		lit, ok := node.Literal(input)
		if !ok || lit.IsBlank() {
			continue
		}
		ref, isString := lit.AsString()
		if !isString {
			return newNodeError(id, node.ClassType, input,
				"must be the id of an expose node, got %s", lit.Text())
		}
		ref = strings.TrimSpace(ref)
		if _, _, found := g.FindExpose(ref, graph.ExposeVariant.ProducesNumber); !found {
			return newNodeError(id, node.ClassType, input,
				"%q is not the id of an integer or float expose node", ref)
		}
	}
	return nil
}

func checkStaticValues(_ graph.NodeGraph, id string, node *graph.Node, _ *catalog.ModelCatalog) error {
	if node.Kind != graph.KindExpose {
		return nil
	}
	names := make([]string, 0, len(node.Inputs))
	for name := range node.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if staticValueExceptions[name] {
			continue
		}
		if conn, wired := node.Inputs[name].(graph.Connection); wired {
			err := newNodeError(id, node.ClassType, name,
				"is connected to node %s but expose nodes must have static values", conn.SourceNodeID)
			err.Suggestion = fmt.Sprintf("Disconnect %q and set its value directly on the node", name)
			return err
		}
	}
	return nil
}
