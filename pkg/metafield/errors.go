package metafield

import (
	"errors"
	"fmt"
)

// Error classes, matched with errors.Is.
var (
	ErrSyntax              = errors.New("invalid metadata field definition")
	ErrModifier            = errors.New("invalid metadata field modifier")
	ErrUnresolvedReference = errors.New("unresolved metadata field reference")
	ErrConflict            = errors.New("conflicting metadata field modifiers")
)

// Error reports a failure on one metadata_fields line.
type Error struct {
	NodeID string
	Line   int
	Msg    string
	Kind   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("node %s metadata_fields line %d: %s", e.NodeID, e.Line, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, nodeID string, line int, format string, args ...any) *Error {
	return &Error{
		NodeID: nodeID,
		Line:   line,
		Msg:    fmt.Sprintf(format, args...),
		Kind:   kind,
	}
}
