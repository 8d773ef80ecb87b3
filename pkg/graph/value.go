package graph

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// InputValue is a node input: either a Literal known at export time or a
// Connection computed by the graph at run time.
type InputValue interface {
	isInputValue()
}

// Literal is a scalar input. The underlying value is a string, a float64 or a bool.
type Literal struct {
	value any
}

// Connection wires an input to the output slot of another node.
type Connection struct {
	SourceNodeID string
	OutputSlot   int
}

func (Literal) isInputValue()    {}
func (Connection) isInputValue() {}

// String returns a string literal.
func String(s string) Literal { return Literal{value: s} }

// Number returns a numeric literal.
func Number(f float64) Literal { return Literal{value: f} }

// Bool returns a boolean literal.
func Bool(b bool) Literal { return Literal{value: b} }

// AsString returns the literal when it holds a string.
func (l Literal) AsString() (string, bool) {
	s, ok := l.value.(string)
	return s, ok
}

// AsNumber returns the literal when it holds a number.
func (l Literal) AsNumber() (float64, bool) {
	f, ok := l.value.(float64)
	return f, ok
}

// AsBool returns the literal when it holds a boolean.
func (l Literal) AsBool() (bool, bool) {
	b, ok := l.value.(bool)
	return b, ok
}

// Text renders the literal the way the editor shows it in a widget.
// Numbers are formatted without an exponent.
func (l Literal) Text() string {
	switch v := l.value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// IsBlank reports whether the text form is empty after trimming.
func (l Literal) IsBlank() bool {
	return strings.TrimSpace(l.Text()) == ""
}

// Truthy follows the editor's truthiness: true, a non-zero number or a non-empty string.
func (l Literal) Truthy() bool {
	switch v := l.value.(type) {
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	}
	return false
}

func (l Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.value)
}

func (l Literal) MarshalYAML() (interface{}, error) {
	return l.value, nil
}

func (c Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.SourceNodeID, c.OutputSlot})
}

func (c Connection) MarshalYAML() (interface{}, error) {
	return []any{c.SourceNodeID, c.OutputSlot}, nil
}
