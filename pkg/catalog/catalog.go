// Package catalog provides the server's model and LoRA catalog that model
// expose nodes are checked against.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
)

// ErrUnavailable is returned when a catalog cannot be fetched or decoded.
var ErrUnavailable = errors.New("model catalog unavailable")

// Set is a set of file names.
type Set map[string]struct{}

// NewSet builds a set from a list, ignoring duplicates.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ModelCatalog is an immutable snapshot of the files the server can load.
type ModelCatalog struct {
	Checkpoints     Set
	DiffusionModels Set
	LoRAs           Set
}

// New builds a catalog from the three file lists.
func New(checkpoints, diffusionModels, loras []string) *ModelCatalog {
	return &ModelCatalog{
		Checkpoints:     NewSet(checkpoints...),
		DiffusionModels: NewSet(diffusionModels...),
		LoRAs:           NewSet(loras...),
	}
}

// Empty returns a catalog with no entries.
func Empty() *ModelCatalog {
	return New(nil, nil, nil)
}

// wireCatalog is the list form served by /aihub_list_models_and_loras.
type wireCatalog struct {
	Checkpoints     []string `json:"checkpoints" yaml:"checkpoints"`
	DiffusionModels []string `json:"diffusion_models" yaml:"diffusion_models"`
	LoRAs           []string `json:"loras" yaml:"loras"`
}

func (c *ModelCatalog) toWire() wireCatalog {
	return wireCatalog{
		Checkpoints:     c.Checkpoints.Sorted(),
		DiffusionModels: c.DiffusionModels.Sorted(),
		LoRAs:           c.LoRAs.Sorted(),
	}
}

func (c *ModelCatalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toWire())
}

func (c *ModelCatalog) MarshalYAML() (interface{}, error) {
	return c.toWire(), nil
}

// Decode parses the JSON list form.
func Decode(data []byte) (*ModelCatalog, error) {
	var w wireCatalog
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return New(w.Checkpoints, w.DiffusionModels, w.LoRAs), nil
}

// DecodeYAML parses the YAML list form.
func DecodeYAML(data []byte) (*ModelCatalog, error) {
	var w wireCatalog
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return New(w.Checkpoints, w.DiffusionModels, w.LoRAs), nil
}
