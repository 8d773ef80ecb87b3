package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aihub-tools/aihub-export/pkg/console"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
)

// FormatValidationError formats err for the console. A *workflow.ValidationError
// that carries a suggestion gets it on a second, informational line.
//
// Validation packages return plain-text errors; styling is applied only here so
// the same errors stay readable in JSON output and MCP tool results.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	out := console.FormatErrorMessage(err.Error())
	if verr := validationError(err); verr != nil && verr.Suggestion != "" {
		out += "\n" + console.FormatInfoMessage(verr.Suggestion)
	}
	return out
}

// PrintValidationError prints a validation error to stderr with console formatting.
func PrintValidationError(err error) {
	fprintValidationError(os.Stderr, err)
}

func fprintValidationError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatValidationError(err))
}

func validationError(err error) *workflow.ValidationError {
	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}

// reportedError marks an error the command already showed to the user, so
// main only sets the exit status for it.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func markReported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already printed by the command that
// returned it.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
