// This file validates a workflow graph as a whole before it is published.
//
// Validate runs the graph-wide checks in order and then the node field
// checks for every node in natural id order. It stops at the first failure,
// except for the expose id checks which report every offending id at once.

package workflow

import (
	"sort"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
)

var structureValidationLog = logger.New("workflow:structure_validation")

const idRules = "it must be alphanumeric or underscores, and between 3 and 50 characters"

// Outcome is the result of validating one graph. It is valid iff Err is nil.
type Outcome struct {
	WorkflowID string
	Err        error
}

// Valid reports whether the graph passed every check.
func (o Outcome) Valid() bool {
	return o.Err == nil
}

// ValidateWorkflow validates g and returns the workflow id of its controller.
func ValidateWorkflow(g graph.NodeGraph, cat *catalog.ModelCatalog) (string, error) {
	outcome := Validate(g, cat)
	return outcome.WorkflowID, outcome.Err
}

// Validate validates g against cat without modifying either.
func Validate(g graph.NodeGraph, cat *catalog.ModelCatalog) Outcome {
	structureValidationLog.Printf("Validating workflow with %d nodes", len(g))
	workflowID, err := validateStructure(g)
	if err != nil {
		structureValidationLog.Printf("Workflow failed structural validation: %v", err)
		return Outcome{Err: err}
	}
	for _, id := range g.SortedIDs() {
		if err := ValidateNode(g, id, g[id], cat); err != nil {
			return Outcome{Err: err}
		}
	}
	structureValidationLog.Printf("Workflow %s is valid", workflowID)
	return Outcome{WorkflowID: workflowID}
}

type controllerSettings struct {
	workflowID  string
	projectType string
	projectInit bool
}

func validateStructure(g graph.NodeGraph) (string, error) {
	ctrl, err := readController(g)
	if err != nil {
		return "", err
	}
	hasProjectType := !stringutil.IsBlank(ctrl.projectType)

	if hasProjectType && !stringutil.IsValidID(ctrl.projectType) {
		return "", NewValidationError(
			"The project type is invalid, "+idRules,
			"Set project_type on the AIHubWorkflowController node to a valid id such as 'my_project'",
		)
	}

	if ctrl.projectInit && !hasProjectType {
		return "", NewValidationError(
			"The project init is set but the project type is not, you must set a project type if you set a project init",
			"Set project_type on the AIHubWorkflowController node or disable project_init",
		)
	}

	if len(g.OfKind(graph.KindAction)) == 0 {
		return "", NewValidationError(
			"The workflow must contain at least one output action node",
			"Add an AIHubAction node, for example AIHubActionNewImage, to publish a result",
		)
	}

	if err := validateExposeIDs(g); err != nil {
		return "", err
	}

	if ctrl.projectInit || !hasProjectType {
		if scoped := projectScopedExposes(g); len(scoped) > 0 {
			structureValidationLog.Printf("Project scoped expose nodes without a usable project type: %v", scoped)
			return "", NewValidationError(
				"The workflow has a project init or no project type, it should not contain any AIHubExposeProject type nodes",
				"Remove nodes "+strings.Join(scoped, ", ")+" or set a project type without project init",
			)
		}
	}

	return ctrl.workflowID, nil
}

func readController(g graph.NodeGraph) (controllerSettings, error) {
	missing := NewValidationError(
		"The workflow must have a valid workflow id set in the AIHubWorkflowController node",
		"Add an AIHubWorkflowController node and set its id",
	)

	controllers := g.OfKind(graph.KindController)
	switch {
	case len(controllers) == 0:
		return controllerSettings{}, missing
	case len(controllers) > 1:
		return controllerSettings{}, NewValidationError(
			"The workflow has multiple workflow controller nodes: "+strings.Join(controllers, ", "),
			"Keep exactly one AIHubWorkflowController node",
		)
	}

	node := g[controllers[0]]
	workflowID, _ := literalText(node, "id")
	if stringutil.IsBlank(workflowID) {
		return controllerSettings{}, missing
	}
	if !stringutil.IsValidID(workflowID) {
		return controllerSettings{}, NewValidationError(
			"The workflow id is invalid, "+idRules,
			"Use letters, digits and underscores only, for example 'wf_portrait'",
		)
	}

	projectType, _ := literalText(node, "project_type")
	projectInit, _ := node.Literal("project_init")
	return controllerSettings{
		workflowID:  workflowID,
		projectType: projectType,
		projectInit: projectInit.Truthy(),
	}, nil
}

// validateExposeIDs reports every malformed id, then every repeated id.
func validateExposeIDs(g graph.NodeGraph) error {
	seen := map[string]bool{}
	repeating := map[string]bool{}
	for _, id := range g.OfKind(graph.KindExpose) {
		exposeID := g[id].ExposeID()
		if exposeID == "" {
			continue
		}
		if seen[exposeID] {
			repeating[exposeID] = true
		}
		seen[exposeID] = true
	}

	var invalid []string
	for exposeID := range seen {
		if !stringutil.IsValidID(exposeID) {
			invalid = append(invalid, exposeID)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return NewValidationError(
			"The following expose ids are invalid: "+strings.Join(invalid, ", "),
			"Expose ids "+idRules,
		)
	}

	if len(repeating) > 0 {
		return NewValidationError(
			"The workflow contains repeating expose ids: "+strings.Join(sortedKeys(repeating), ", "),
			"Give every expose node a unique id",
		)
	}
	return nil
}

func projectScopedExposes(g graph.NodeGraph) []string {
	var ids []string
	for _, id := range g.OfKind(graph.KindExpose) {
		if g[id].Variant.ProjectScoped() {
			ids = append(ids, id)
		}
	}
	return ids
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
