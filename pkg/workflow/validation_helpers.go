// This file provides validation helpers shared by the node field checks.
//
// # Available Helper Functions
//
//   - isInteger() - Reports whether a trimmed value is a base-10 integer
//   - parseFloatInRange() - Parses a float and checks an inclusive range
//   - validateInList() - Checks membership in a closed vocabulary
//   - lineCount() - Counts newline separated lines, empty lines included
//   - literalText() - Returns the text of a literal input, skipping connections
//
// For the validation architecture overview, see validation.go.

package workflow

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
)

var validationHelpersLog = logger.New("workflow:validation_helpers")

// isInteger reports whether s, trimmed, parses as a base-10 integer.
// Negative values are allowed; they count from the end of a batch.
func isInteger(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// parseFloatInRange parses s and validates that it lies within [min, max].
//
// Example:
//
//	strength, err := parseFloatInRange("0.75", 0, 1)
func parseFloatInRange(s string, min, max float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f < min || f > max {
		validationHelpersLog.Printf("Range validation failed: value=%v range=[%v,%v]", f, min, max)
		return 0, fmt.Errorf("%q must be between %s and %s",
			s, strconv.FormatFloat(min, 'f', -1, 64), strconv.FormatFloat(max, 'f', -1, 64))
	}
	return f, nil
}

// validateInList validates that a value is in an allowed list
func validateInList(value string, allowedValues []string) error {
	if slices.Contains(allowedValues, value) {
		return nil
	}
	validationHelpersLog.Printf("List validation failed: value=%s not in allowed list", value)
	return fmt.Errorf("%q must be one of %s", value, strings.Join(allowedValues, ", "))
}

// lineCount counts the newline separated lines of s. An empty string is one line.
func lineCount(s string) int {
	return len(stringutil.SplitLines(s))
}

// literalText returns the text of a literal input. ok is false when the input
// is absent or wired to another node.
func literalText(node *graph.Node, input string) (text string, ok bool) {
	lit, ok := node.Literal(input)
	if !ok {
		return "", false
	}
	return lit.Text(), true
}
