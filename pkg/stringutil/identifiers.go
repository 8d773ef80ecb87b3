// Package stringutil provides string helpers shared by the validators.
package stringutil

import "regexp"

// MinIDLength and MaxIDLength bound workflow, expose and metadata-field identifiers.
const (
	MinIDLength = 3
	MaxIDLength = 50
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// IsValidID reports whether s is a valid identifier: ASCII letters, digits
// and underscores only, between 3 and 50 characters long.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}
