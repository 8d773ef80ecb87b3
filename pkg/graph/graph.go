// Package graph holds the node-graph snapshot model shared by validation,
// locale projection and export.
//
// A snapshot maps node ids to nodes. Every node carries its class_type, the
// Kind and ExposeVariant resolved from it at decode time, and its inputs as
// either Literal or Connection values.
package graph

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Node is one entry of a NodeGraph.
type Node struct {
	ClassType string
	Kind      Kind
	Variant   ExposeVariant
	Inputs    map[string]InputValue

	// Raw is the node object exactly as it appeared in the snapshot. It is
	// what gets submitted, so number text, link ids and keys such as _meta
	// reach the server unchanged.
	Raw json.RawMessage
}

// NodeGraph maps node ids to nodes.
type NodeGraph map[string]*Node

// NewNode builds a node and classifies its type tag.
func NewNode(classType string, inputs map[string]InputValue) *Node {
	kind, variant := Classify(classType)
	if inputs == nil {
		inputs = map[string]InputValue{}
	}
	return &Node{
		ClassType: classType,
		Kind:      kind,
		Variant:   variant,
		Inputs:    inputs,
	}
}

// Literal returns the named input when it is set to a literal value.
func (n *Node) Literal(name string) (Literal, bool) {
	v, ok := n.Inputs[name]
	if !ok {
		return Literal{}, false
	}
	lit, ok := v.(Literal)
	return lit, ok
}

// Text returns the text form of a literal input, or "" when the input is
// absent or connected.
func (n *Node) Text(name string) string {
	lit, ok := n.Literal(name)
	if !ok {
		return ""
	}
	return lit.Text()
}

// ExposeID returns the trimmed id of an expose node.
func (n *Node) ExposeID() string {
	return strings.TrimSpace(n.Text("id"))
}

// SortedIDs returns the node ids in natural order: colon separated segments
// compare numerically when both are integers and lexically otherwise.
func (g NodeGraph) SortedIDs() []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return lessNodeID(ids[i], ids[j])
	})
	return ids
}

// OfKind returns the ids of nodes of the given kind in natural order.
func (g NodeGraph) OfKind(kind Kind) []string {
	var ids []string
	for _, id := range g.SortedIDs() {
		if g[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// FindExpose returns the expose node whose trimmed id equals exposeID and
// whose variant satisfies accept.
func (g NodeGraph) FindExpose(exposeID string, accept func(ExposeVariant) bool) (string, *Node, bool) {
	for _, id := range g.SortedIDs() {
		node := g[id]
		if node.Kind != KindExpose || !accept(node.Variant) {
			continue
		}
		if node.ExposeID() == exposeID {
			return id, node, true
		}
	}
	return "", nil, false
}

func lessNodeID(a, b string) bool {
	as := strings.Split(a, ":")
	bs := strings.Split(b, ":")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				return an < bn
			}
			// "01" and "1" share a value
			return as[i] < bs[i]
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
