package workflow

import (
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
)

var localeLog = logger.New("workflow:locale")

// LocaleFields are the translatable inputs copied into a locale projection.
var LocaleFields = []string{
	"description",
	"name",
	"tooltip",
	"label",
	"options_label",
	"category",
	"metadata_fields_label",
	"error",
}

// LocaleProjection maps node ids to their translatable inputs.
type LocaleProjection map[string]map[string]graph.InputValue

// ProjectLocale derives the translation bundle of g. Only expose, controller
// and run condition nodes are included; g is not modified.
func ProjectLocale(g graph.NodeGraph) LocaleProjection {
	out := LocaleProjection{}
	for id, node := range g {
		switch node.Kind {
		case graph.KindExpose, graph.KindController, graph.KindAddRunCondition:
		default:
			continue
		}
		fields := map[string]graph.InputValue{}
		for _, name := range LocaleFields {
			if v, ok := node.Inputs[name]; ok {
				fields[name] = v
			}
		}
		out[id] = fields
	}
	localeLog.Printf("Projected %d of %d nodes", len(out), len(g))
	return out
}
