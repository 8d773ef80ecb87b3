//go:build !integration

package workflow

import (
	"testing"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inputs = map[string]graph.InputValue

func str(s string) graph.InputValue { return graph.String(s) }

func wire(source string) graph.InputValue {
	return graph.Connection{SourceNodeID: source, OutputSlot: 0}
}

// demoGraph is a minimal publishable workflow.
func demoGraph() graph.NodeGraph {
	return graph.NodeGraph{
		"1": graph.NewNode("AIHubWorkflowController", inputs{"id": str("wf_demo"), "name": str("Demo")}),
		"2": graph.NewNode("AIHubActionNewImage", inputs{"image": wire("5"), "name": str("result")}),
		"3": graph.NewNode("AIHubExposeSeed", inputs{"id": str("seed"), "label": str("Seed"), "value": graph.Number(7)}),
		"5": graph.NewNode("KSampler", inputs{"seed": wire("3"), "cfg": graph.Number(7.5)}),
	}
}

func requireValidationError(t *testing.T, outcome Outcome) *ValidationError {
	t.Helper()
	require.False(t, outcome.Valid(), "workflow should be rejected")
	var verr *ValidationError
	require.ErrorAs(t, outcome.Err, &verr, "failure should be a ValidationError")
	assert.ErrorIs(t, outcome.Err, ErrInvalidWorkflow)
	assert.Empty(t, outcome.WorkflowID, "failed outcomes carry no workflow id")
	return verr
}

func TestValidate_EndToEnd(t *testing.T) {
	outcome := Validate(demoGraph(), catalog.Empty())
	require.NoError(t, outcome.Err, "demo workflow should validate")
	assert.True(t, outcome.Valid())
	assert.Equal(t, "wf_demo", outcome.WorkflowID)

	id, err := ValidateWorkflow(demoGraph(), nil)
	require.NoError(t, err)
	assert.Equal(t, "wf_demo", id)
}

func TestValidate_Idempotent(t *testing.T) {
	g := demoGraph()
	g["4"] = graph.NewNode("AIHubExposeInteger", inputs{"id": str("seed")})
	cat := catalog.New([]string{"a.safetensors"}, nil, nil)

	first := Validate(g, cat)
	second := Validate(g, cat)
	assert.Equal(t, first.WorkflowID, second.WorkflowID)
	require.Error(t, first.Err)
	assert.Equal(t, first.Err.Error(), second.Err.Error(), "same graph gives the same outcome")
	assert.Len(t, g, 5, "graph is not modified")
}

func TestValidate_MissingWorkflowID(t *testing.T) {
	const msg = "The workflow must have a valid workflow id set in the AIHubWorkflowController node"

	tests := []struct {
		name   string
		mutate func(g graph.NodeGraph)
	}{
		{name: "no controller", mutate: func(g graph.NodeGraph) { delete(g, "1") }},
		{name: "empty id", mutate: func(g graph.NodeGraph) { g["1"].Inputs["id"] = str("") }},
		{name: "blank id", mutate: func(g graph.NodeGraph) { g["1"].Inputs["id"] = str("   ") }},
		{name: "id absent", mutate: func(g graph.NodeGraph) { delete(g["1"].Inputs, "id") }},
		{name: "id wired", mutate: func(g graph.NodeGraph) { g["1"].Inputs["id"] = wire("9") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := demoGraph()
			tt.mutate(g)
			verr := requireValidationError(t, Validate(g, catalog.Empty()))
			assert.Equal(t, msg, verr.Reason)
			assert.Equal(t, msg, verr.Error(), "graph-wide errors have no node prefix")
		})
	}
}

func TestValidate_StructuralFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g graph.NodeGraph)
		wantMsg string
	}{
		{
			name:    "invalid workflow id",
			mutate:  func(g graph.NodeGraph) { g["1"].Inputs["id"] = str("wf-demo") },
			wantMsg: "The workflow id is invalid, it must be alphanumeric or underscores, and between 3 and 50 characters",
		},
		{
			name: "multiple controllers",
			mutate: func(g graph.NodeGraph) {
				g["9"] = graph.NewNode("AIHubWorkflowController", inputs{"id": str("other")})
			},
			wantMsg: "The workflow has multiple workflow controller nodes: 1, 9",
		},
		{
			name:    "invalid project type",
			mutate:  func(g graph.NodeGraph) { g["1"].Inputs["project_type"] = str("my project") },
			wantMsg: "The project type is invalid, it must be alphanumeric or underscores, and between 3 and 50 characters",
		},
		{
			name:    "project init without project type",
			mutate:  func(g graph.NodeGraph) { g["1"].Inputs["project_init"] = graph.Bool(true) },
			wantMsg: "The project init is set but the project type is not, you must set a project type if you set a project init",
		},
		{
			name: "project init as blank project type",
			mutate: func(g graph.NodeGraph) {
				g["1"].Inputs["project_init"] = graph.Number(1)
				g["1"].Inputs["project_type"] = str(" ")
			},
			wantMsg: "The project init is set but the project type is not",
		},
		{
			name:    "no action node",
			mutate:  func(g graph.NodeGraph) { delete(g, "2") },
			wantMsg: "The workflow must contain at least one output action node",
		},
		{
			name: "repeating expose id",
			mutate: func(g graph.NodeGraph) {
				g["4"] = graph.NewNode("AIHubExposeInteger", inputs{"id": str(" seed ")})
			},
			wantMsg: "The workflow contains repeating expose ids: seed",
		},
		{
			name: "invalid expose ids are all reported",
			mutate: func(g graph.NodeGraph) {
				g["4"] = graph.NewNode("AIHubExposeInteger", inputs{"id": str("b-b")})
				g["6"] = graph.NewNode("AIHubExposeString", inputs{"id": str("a!")})
			},
			wantMsg: "The following expose ids are invalid: a!, b-b",
		},
		{
			name: "invalid ids are reported before repeats",
			mutate: func(g graph.NodeGraph) {
				g["4"] = graph.NewNode("AIHubExposeInteger", inputs{"id": str("seed")})
				g["6"] = graph.NewNode("AIHubExposeString", inputs{"id": str("x")})
			},
			wantMsg: "The following expose ids are invalid: x",
		},
		{
			name: "project expose without project type",
			mutate: func(g graph.NodeGraph) {
				g["7"] = graph.NewNode("AIHubExposeProjectText", inputs{"id": str("notes"), "file_name": str("notes.txt")})
			},
			wantMsg: "The workflow has a project init or no project type, it should not contain any AIHubExposeProject type nodes",
		},
		{
			name: "project expose with project init",
			mutate: func(g graph.NodeGraph) {
				g["1"].Inputs["project_type"] = str("comic")
				g["1"].Inputs["project_init"] = graph.Bool(true)
				g["7"] = graph.NewNode("AIHubExposeProjectImage", inputs{"id": str("page"), "file_name": str("page.png")})
			},
			wantMsg: "should not contain any AIHubExposeProject type nodes",
		},
		{
			name: "node field failure",
			mutate: func(g graph.NodeGraph) {
				g["3"].Inputs["value"] = wire("5")
			},
			wantMsg: "expose nodes must have static values",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := demoGraph()
			tt.mutate(g)
			verr := requireValidationError(t, Validate(g, catalog.Empty()))
			assert.Contains(t, verr.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_ProjectExposeAllowedWithProjectType(t *testing.T) {
	g := demoGraph()
	g["1"].Inputs["project_type"] = str("comic")
	g["1"].Inputs["project_init"] = graph.Bool(false)
	g["7"] = graph.NewNode("AIHubExposeProjectImage", inputs{"id": str("page"), "file_name": str("page.png")})

	outcome := Validate(g, catalog.Empty())
	require.NoError(t, outcome.Err, "project nodes are allowed when a project type is set without init")
	assert.Equal(t, "wf_demo", outcome.WorkflowID)
}

func TestValidate_ForeignNodesAreIgnored(t *testing.T) {
	g := demoGraph()
	g["8"] = graph.NewNode("LoadImage", inputs{"file_name": str("has spaces 1.png"), "indexes": str("1:2:3")})

	require.NoError(t, Validate(g, catalog.Empty()).Err)
}

func TestValidate_FirstFailingNodeInIDOrder(t *testing.T) {
	g := demoGraph()
	g["10"] = graph.NewNode("AIHubExposeImageBatch", inputs{"id": str("batch_b"), "file_name": str("bad name")})
	g["9"] = graph.NewNode("AIHubExposeImageBatch", inputs{"id": str("batch_a"), "indexes": str("1:2:3")})

	verr := requireValidationError(t, Validate(g, catalog.Empty()))
	assert.Equal(t, "9", verr.NodeID, "node 9 sorts before node 10")
}
