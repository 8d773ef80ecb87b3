// Package console formats user-facing messages and tables for the terminal.
package console

import (
	"os"

	"github.com/aihub-tools/aihub-export/pkg/styles"
	"github.com/aihub-tools/aihub-export/pkg/tty"
)

// Severity classifies a user-facing outcome.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name used in JSON output.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets severities appear as strings in JSON and YAML.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FormatSuccessMessage formats a success line.
func FormatSuccessMessage(message string) string {
	return styles.Success.Render("✓ " + message)
}

// FormatWarningMessage formats a warning line.
func FormatWarningMessage(message string) string {
	return styles.Warning.Render("⚠ " + message)
}

// FormatErrorMessage formats an error line.
func FormatErrorMessage(message string) string {
	return styles.Error.Render("✗ " + message)
}

// FormatInfoMessage formats an informational line.
func FormatInfoMessage(message string) string {
	return styles.Info.Render("ℹ " + message)
}

// FormatVerboseMessage formats a dimmed detail line.
func FormatVerboseMessage(message string) string {
	return styles.Muted.Render(message)
}

// FormatMessage picks the formatter matching severity.
func FormatMessage(severity Severity, message string) string {
	switch severity {
	case SeveritySuccess:
		return FormatSuccessMessage(message)
	case SeverityWarning:
		return FormatWarningMessage(message)
	default:
		return FormatErrorMessage(message)
	}
}

// IsAccessibleMode reports whether prompts should run in accessible mode:
// when ACCESSIBLE is set, TERM is dumb, or stdout is not a terminal.
func IsAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != "" ||
		os.Getenv("TERM") == "dumb" ||
		!tty.IsStdoutTerminal()
}
