// This file provides error aggregation for validating several snapshots in
// one run.
//
// A single snapshot is always validated fail-fast: Validate returns the
// first violated rule. When the validate command is given several files it
// collects one error per failing file with an ErrorCollector, so the user
// sees every broken workflow at once unless --fail-fast is set.
//
// # Usage Pattern
//
//	collector := NewErrorCollector(failFast)
//	for _, path := range paths {
//	    if err := validateFile(path); err != nil {
//	        if returnErr := collector.Add(fmt.Errorf("%s: %w", path, err)); returnErr != nil {
//	            return returnErr // Fail-fast mode
//	        }
//	    }
//	}
//	return collector.FormattedError("workflow")

package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/logger"
)

var errorAggregationLog = logger.New("workflow:error_aggregation")

// ErrorCollector collects errors from independent validations.
type ErrorCollector struct {
	errors   []error
	failFast bool
}

// NewErrorCollector creates a new error collector.
// If failFast is true, Add returns the first error instead of collecting it.
func NewErrorCollector(failFast bool) *ErrorCollector {
	errorAggregationLog.Printf("Creating error collector: fail_fast=%v", failFast)
	return &ErrorCollector{
		errors:   make([]error, 0),
		failFast: failFast,
	}
}

// Add records err. In fail-fast mode it is returned immediately instead.
func (c *ErrorCollector) Add(err error) error {
	if err == nil {
		return nil
	}

	errorAggregationLog.Printf("Adding error to collector: %v", err)

	if c.failFast {
		errorAggregationLog.Print("Fail-fast enabled, returning error immediately")
		return err
	}

	c.errors = append(c.errors, err)
	return nil
}

// HasErrors returns true if any errors have been collected
func (c *ErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// Count returns the number of errors collected
func (c *ErrorCollector) Count() int {
	return len(c.errors)
}

// Errors returns the collected errors in the order they were added.
func (c *ErrorCollector) Errors() []error {
	return append([]error(nil), c.errors...)
}

// Error returns the collected errors joined with errors.Join, or nil.
func (c *ErrorCollector) Error() error {
	if len(c.errors) == 0 {
		return nil
	}

	errorAggregationLog.Printf("Aggregating %d errors", len(c.errors))

	if len(c.errors) == 1 {
		return c.errors[0]
	}

	return errors.Join(c.errors...)
}

// FormattedError returns the collected errors under a header with their
// count. A single error is returned unchanged. The result still matches
// every collected error with errors.Is.
func (c *ErrorCollector) FormattedError(category string) error {
	if len(c.errors) == 0 {
		return nil
	}

	errorAggregationLog.Printf("Formatting %d errors for category: %s", len(c.errors), category)

	if len(c.errors) == 1 {
		return c.errors[0]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d %s errors:", len(c.errors), category)
	for _, err := range c.errors {
		sb.WriteString("\n  • ")
		sb.WriteString(err.Error())
	}

	return &aggregatedError{msg: sb.String(), errs: c.Errors()}
}

type aggregatedError struct {
	msg  string
	errs []error
}

func (e *aggregatedError) Error() string   { return e.msg }
func (e *aggregatedError) Unwrap() []error { return e.errs }
