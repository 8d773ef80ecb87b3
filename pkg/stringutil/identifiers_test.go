//go:build !integration

package stringutil

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "simple", input: "wf_demo", want: true},
		{name: "digits only", input: "123", want: true},
		{name: "minimum length", input: "abc", want: true},
		{name: "maximum length", input: strings.Repeat("a", 50), want: true},
		{name: "too short", input: "ab", want: false},
		{name: "too long", input: strings.Repeat("a", 51), want: false},
		{name: "empty", input: "", want: false},
		{name: "dash", input: "my-workflow", want: false},
		{name: "space", input: "my workflow", want: false},
		{name: "leading space", input: " seed", want: false},
		{name: "dot", input: "seed.v2", want: false},
		{name: "path traversal", input: "../etc", want: false},
		{name: "non ascii letter", input: "semilla_ñ", want: false},
		{name: "trailing newline", input: "seed\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidID(tt.input), "IsValidID(%q)", tt.input)
		})
	}
}

// TestIsValidID_MatchesGrammar checks IsValidID against the reference grammar
// for a spread of generated inputs.
func TestIsValidID_MatchesGrammar(t *testing.T) {
	reference := regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	alphabet := []string{"a", "Z", "0", "_", "-", " ", ".", "é", "\t"}

	for length := 0; length <= 52; length++ {
		for _, ch := range alphabet {
			s := strings.Repeat("x", length/2) + ch + strings.Repeat("y", length-length/2)
			assert.Equal(t, reference.MatchString(s), IsValidID(s), "IsValidID(%q)", s)
		}
	}
}
