package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/goccy/go-yaml"
)

var decodeLog = logger.New("graph:decode")

// ErrMalformed is returned when a snapshot does not have the node-graph shape.
var ErrMalformed = errors.New("malformed workflow snapshot")

// Decode parses a JSON snapshot. A ComfyUI prompt envelope of the form
// {"output": {...}, "workflow": {...}} is unwrapped to its output graph.
func Decode(data []byte) (NodeGraph, error) {
	data, err := unwrapEnvelope(data)
	if err != nil {
		return nil, err
	}
	if err := validateShape(data); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	g := make(NodeGraph, len(raw))
	for id, msg := range raw {
		node := &Node{}
		if err := json.Unmarshal(msg, node); err != nil {
			return nil, fmt.Errorf("%w: node %s: %v", ErrMalformed, id, err)
		}
		g[id] = node
	}
	decodeLog.Printf("Decoded snapshot with %d nodes", len(g))
	return g, nil
}

// DecodeYAML parses a YAML snapshot with the same shape as the JSON form.
func DecodeYAML(data []byte) (NodeGraph, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Decode(js)
}

// DecodeNamed picks the decoder from the file extension of name.
func DecodeNamed(name string, data []byte) (NodeGraph, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Decode(data)
	}
}

func unwrapEnvelope(data []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	output, ok := top["output"]
	if !ok {
		return data, nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(output, &probe); err != nil {
		// a node named "output" that is not an object fails the schema check
		return data, nil
	}
	if _, isNode := probe["class_type"]; isNode {
		return data, nil
	}
	decodeLog.Print("Unwrapping prompt envelope")
	return output, nil
}

// UnmarshalJSON decodes a node object, classifying its class_type and
// splitting inputs into literals and connections. Inputs of AIHub nodes must
// fit that model. Inputs of foreign nodes are never read by validation, so
// values that do not fit are left in Raw only.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var classType string
	if msg, ok := raw["class_type"]; ok {
		if err := json.Unmarshal(msg, &classType); err != nil {
			return fmt.Errorf("class_type: %w", err)
		}
	}
	if classType == "" {
		return errors.New("missing class_type")
	}
	kind, _ := Classify(classType)

	inputs := map[string]InputValue{}
	if msg, ok := raw["inputs"]; ok && !isNull(msg) {
		var rawInputs map[string]json.RawMessage
		if err := json.Unmarshal(msg, &rawInputs); err != nil {
			return fmt.Errorf("inputs: %w", err)
		}
		for name, value := range rawInputs {
			v, err := decodeInput(value)
			if err != nil {
				if !kind.IsAIHub() {
					decodeLog.Printf("Keeping input %q of %s raw: %v", name, classType, err)
					continue
				}
				return fmt.Errorf("input %q: %w", name, err)
			}
			if v != nil {
				inputs[name] = v
			}
		}
	}

	*n = *NewNode(classType, inputs)
	n.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the node as it was decoded, or in the editor's shape
// for nodes built in code.
func (n *Node) MarshalJSON() ([]byte, error) {
	if len(n.Raw) > 0 {
		return n.Raw, nil
	}
	inputs := n.Inputs
	if inputs == nil {
		inputs = map[string]InputValue{}
	}
	return json.Marshal(map[string]any{
		"class_type": n.ClassType,
		"inputs":     inputs,
	})
}

func decodeInput(msg json.RawMessage) (InputValue, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid number %s", t)
		}
		return Number(f), nil
	case []any:
		return decodeConnection(t)
	}
	return nil, fmt.Errorf("unsupported value %s", string(msg))
}

func decodeConnection(pair []any) (InputValue, error) {
	if len(pair) != 2 {
		return nil, fmt.Errorf("connection must have 2 elements, got %d", len(pair))
	}
	var source string
	switch s := pair[0].(type) {
	case string:
		source = s
	case json.Number:
		source = s.String()
	default:
		return nil, fmt.Errorf("connection source must be a node id, got %v", pair[0])
	}
	slotNum, ok := pair[1].(json.Number)
	if !ok {
		return nil, fmt.Errorf("connection slot must be a number, got %v", pair[1])
	}
	slot, err := slotNum.Int64()
	if err != nil || slot < 0 {
		return nil, fmt.Errorf("invalid connection slot %s", slotNum)
	}
	return Connection{SourceNodeID: source, OutputSlot: int(slot)}, nil
}

func isNull(msg json.RawMessage) bool {
	return string(bytes.TrimSpace(msg)) == "null"
}
