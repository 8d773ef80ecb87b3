package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWorkflow is wrapped by every ValidationError.
var ErrInvalidWorkflow = errors.New("invalid workflow")

// ValidationError describes the single rule a workflow violates. Graph-wide
// failures leave NodeID empty; node failures name the node and, where it
// applies, the input and the 1-based line of a multi-line input.
type ValidationError struct {
	NodeID     string
	ClassType  string
	Input      string
	Line       int
	Reason     string
	Suggestion string
	// Err is the underlying cause, for example a *metafield.Error.
	Err error
}

// NewValidationError creates a graph-wide validation error.
func NewValidationError(reason, suggestion string) *ValidationError {
	return &ValidationError{Reason: reason, Suggestion: suggestion}
}

// newNodeError creates a validation error attributed to a node input.
func newNodeError(nodeID, classType, input, format string, args ...any) *ValidationError {
	return &ValidationError{
		NodeID:    nodeID,
		ClassType: classType,
		Input:     input,
		Reason:    fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.NodeID != "" {
		fmt.Fprintf(&sb, "node %s", e.NodeID)
		if e.ClassType != "" {
			fmt.Fprintf(&sb, " (%s)", e.ClassType)
		}
	}
	if e.Input != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "input %q", e.Input)
		if e.Line > 0 {
			fmt.Fprintf(&sb, " line %d", e.Line)
		}
	}
	if sb.Len() > 0 {
		sb.WriteString(": ")
	}
	sb.WriteString(e.Reason)
	return sb.String()
}

// Unwrap exposes both the cause and ErrInvalidWorkflow to errors.Is.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidWorkflow, e.Err}
	}
	return []error{ErrInvalidWorkflow}
}
