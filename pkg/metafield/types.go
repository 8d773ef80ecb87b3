package metafield

import (
	"math"
	"strconv"

	"github.com/aihub-tools/aihub-export/pkg/graph"
)

// Type is the declared value type of a metadata field.
type Type string

const (
	TypeInt     Type = "INT"
	TypeFloat   Type = "FLOAT"
	TypeBoolean Type = "BOOLEAN"
	TypeString  Type = "STRING"
)

// Special modifier names.
const (
	ModMax          = "MAX"
	ModMin          = "MIN"
	ModDefault      = "DEFAULT"
	ModMaxOffset    = "MAXOFFSET"
	ModMinOffset    = "MINOFFSET"
	ModMaxLen       = "MAXLEN"
	ModMinLen       = "MINLEN"
	ModMaxLenOffset = "MAXLENOFFSET"
	ModMinLenOffset = "MINLENOFFSET"
)

// Plain modifier names.
const (
	ModSorted    = "SORTED"
	ModUnique    = "UNIQUE"
	ModOneTrue   = "ONE_TRUE"
	ModOneFalse  = "ONE_FALSE"
	ModMultiline = "MULTILINE"
)

// typeRules is the modifier vocabulary of one type.
type typeRules struct {
	plain    map[string]bool
	special  map[string]bool
	deferred map[string]bool
	// parse converts a special modifier value to a literal.
	parse func(value string) (graph.Literal, bool)
	// accept selects the expose variants a deferred bound may name.
	accept func(graph.ExposeVariant) bool
	// refKind describes accept in error messages.
	refKind string
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var rules = map[Type]typeRules{
	TypeInt: {
		plain:    set(ModSorted, ModUnique),
		special:  set(ModMax, ModMin, ModDefault, ModMaxOffset, ModMinOffset),
		deferred: set(ModMax, ModMin),
		parse:    parseInt,
		accept:   graph.ExposeVariant.ProducesInteger,
		refKind:  "integer",
	},
	TypeFloat: {
		plain:    set(ModSorted, ModUnique),
		special:  set(ModMax, ModMin, ModDefault, ModMaxOffset, ModMinOffset),
		deferred: set(ModMax, ModMin),
		parse:    parseFloat,
		accept:   graph.ExposeVariant.ProducesNumber,
		refKind:  "integer or float",
	},
	TypeBoolean: {
		plain:    set(ModOneTrue, ModOneFalse),
		special:  set(ModDefault),
		deferred: set(),
		parse:    parseBool,
		accept:   func(graph.ExposeVariant) bool { return false },
		refKind:  "boolean",
	},
	TypeString: {
		plain:    set(ModUnique, ModMultiline),
		special:  set(ModMaxLen, ModMinLen, ModMaxLenOffset, ModMinLenOffset),
		deferred: set(ModMaxLen, ModMinLen),
		parse:    parseInt,
		accept:   graph.ExposeVariant.ProducesInteger,
		refKind:  "integer",
	},
}

func parseInt(value string) (graph.Literal, bool) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return graph.Literal{}, false
	}
	return graph.Number(float64(n)), true
}

func parseFloat(value string) (graph.Literal, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return graph.Literal{}, false
	}
	return graph.Number(f), true
}

func parseBool(value string) (graph.Literal, bool) {
	switch value {
	case "true":
		return graph.Bool(true), true
	case "false":
		return graph.Bool(false), true
	}
	return graph.Literal{}, false
}
