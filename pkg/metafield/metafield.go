// Package metafield parses the metadata_fields mini-language of image batch
// expose nodes.
//
// Each line declares one field:
//
//	<id> <TYPE> [MODIFIER ...]
//
// TYPE is INT, FLOAT, BOOLEAN or STRING. A modifier is either a plain flag
// (SORTED, UNIQUE, ONE_TRUE, ONE_FALSE, MULTILINE) or NAME:VALUE. Bound
// modifiers (MAX, MIN, MAXLEN, MINLEN) accept either a literal or the id of
// a numeric expose node whose value is read at run time.
package metafield

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
)

var parseLog = logger.New("metafield:parse")

// Bound is a MAX, MIN, MAXLEN or MINLEN value. Exactly one of Value and Ref
// is meaningful: Ref is set when the bound names an expose node id.
type Bound struct {
	Value float64
	Ref   string
}

// Deferred reports whether the bound is resolved at run time.
func (b *Bound) Deferred() bool {
	return b.Ref != ""
}

func (b *Bound) String() string {
	if b.Deferred() {
		return b.Ref
	}
	return graph.Number(b.Value).Text()
}

// Spec is one parsed metadata field line.
type Spec struct {
	ID        string
	Type      Type
	Modifiers map[string]bool
	Max       *Bound
	Min       *Bound
	MaxLen    *Bound
	MinLen    *Bound
	Default   *graph.Literal
	Offsets   map[string]float64
	OneTrue   bool
	OneFalse  bool
}

// ModifierNames returns the plain modifiers in lexical order.
func (s *Spec) ModifierNames() []string {
	names := make([]string, 0, len(s.Modifiers))
	for name := range s.Modifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse validates one line. nodeID and lineNo attribute errors; g resolves
// deferred bounds against the graph's expose nodes.
func Parse(line, nodeID string, lineNo int, g graph.NodeGraph) (*Spec, error) {
	if stringutil.IsBlank(line) {
		return nil, newError(ErrSyntax, nodeID, lineNo, "line is empty")
	}

	tokens := strings.Fields(line)
	id := tokens[0]
	if !stringutil.IsValidID(id) {
		return nil, newError(ErrSyntax, nodeID, lineNo,
			"invalid field id %q, it must be alphanumeric or underscores, and between %d and %d characters",
			id, stringutil.MinIDLength, stringutil.MaxIDLength)
	}
	if len(tokens) < 2 {
		return nil, newError(ErrSyntax, nodeID, lineNo, "field %q is missing a type", id)
	}

	typ := Type(tokens[1])
	r, ok := rules[typ]
	if !ok {
		return nil, newError(ErrSyntax, nodeID, lineNo,
			"field %q has invalid type %q, it must be one of INT, FLOAT, BOOLEAN, STRING", id, tokens[1])
	}

	spec := &Spec{
		ID:        id,
		Type:      typ,
		Modifiers: map[string]bool{},
		Offsets:   map[string]float64{},
	}

	for _, mod := range tokens[2:] {
		if err := spec.apply(r, mod, nodeID, lineNo, g); err != nil {
			return nil, err
		}
	}

	if err := spec.checkConflicts(nodeID, lineNo); err != nil {
		return nil, err
	}

	parseLog.Printf("Parsed field: node=%s line=%d id=%s type=%s", nodeID, lineNo, id, typ)
	return spec, nil
}

// ParseLines validates every line of a metadata_fields value in order and
// stops at the first failure. Line numbers start at 1.
func ParseLines(text, nodeID string, g graph.NodeGraph) ([]*Spec, error) {
	lines := stringutil.SplitLines(text)
	specs := make([]*Spec, 0, len(lines))
	for i, line := range lines {
		spec, err := Parse(line, nodeID, i+1, g)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (s *Spec) apply(r typeRules, mod, nodeID string, lineNo int, g graph.NodeGraph) error {
	name, value, special := strings.Cut(mod, ":")
	if !special {
		if !r.plain[mod] {
			return newError(ErrModifier, nodeID, lineNo, "field %q has invalid modifier %q for type %s", s.ID, mod, s.Type)
		}
		s.Modifiers[mod] = true
		switch mod {
		case ModOneTrue:
			s.OneTrue = true
		case ModOneFalse:
			s.OneFalse = true
		}
		return nil
	}

	if !r.special[name] {
		return newError(ErrModifier, nodeID, lineNo, "field %q has invalid modifier %q for type %s", s.ID, name, s.Type)
	}
	if value == "" {
		return newError(ErrModifier, nodeID, lineNo, "field %q modifier %s is missing a value", s.ID, name)
	}

	if lit, ok := r.parse(value); ok {
		s.setLiteral(name, lit)
		return nil
	}

	if !r.deferred[name] {
		return newError(ErrModifier, nodeID, lineNo, "field %q modifier %s has invalid value %q", s.ID, name, value)
	}
	if _, _, found := g.FindExpose(value, r.accept); !found {
		return newError(ErrUnresolvedReference, nodeID, lineNo,
			"field %q modifier %s references %q but no %s expose node has that id", s.ID, name, value, r.refKind)
	}
	s.setBound(name, &Bound{Ref: value})
	return nil
}

func (s *Spec) setLiteral(name string, lit graph.Literal) {
	switch name {
	case ModDefault:
		s.Default = &lit
	case ModMaxOffset, ModMinOffset, ModMaxLenOffset, ModMinLenOffset:
		f, _ := lit.AsNumber()
		s.Offsets[name] = f
	default:
		f, _ := lit.AsNumber()
		s.setBound(name, &Bound{Value: f})
	}
}

func (s *Spec) setBound(name string, b *Bound) {
	switch name {
	case ModMax:
		s.Max = b
	case ModMin:
		s.Min = b
	case ModMaxLen:
		s.MaxLen = b
	case ModMinLen:
		s.MinLen = b
	}
}

// checkConflicts only compares bounds that are both literal.
func (s *Spec) checkConflicts(nodeID string, lineNo int) error {
	if s.OneTrue && s.OneFalse {
		return newError(ErrConflict, nodeID, lineNo, "field %q cannot be both ONE_TRUE and ONE_FALSE", s.ID)
	}
	if err := compareBounds(s.Max, s.Min, ModMax, ModMin); err != "" {
		return newError(ErrConflict, nodeID, lineNo, "field %q %s", s.ID, err)
	}
	if err := compareBounds(s.MaxLen, s.MinLen, ModMaxLen, ModMinLen); err != "" {
		return newError(ErrConflict, nodeID, lineNo, "field %q %s", s.ID, err)
	}
	return nil
}

func compareBounds(upper, lower *Bound, upperName, lowerName string) string {
	if upper == nil || lower == nil || upper.Deferred() || lower.Deferred() {
		return ""
	}
	if upper.Value < lower.Value {
		return fmt.Sprintf("%s (%s) is less than %s (%s)", upperName, upper, lowerName, lower)
	}
	return ""
}
