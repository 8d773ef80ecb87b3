//go:build !integration

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/stretchr/testify/require"
)

const validSnapshot = `{
  "1": {"class_type": "AIHubWorkflowController", "inputs": {"id": "wf_demo", "name": "Demo"}},
  "2": {"class_type": "AIHubActionNewImage", "inputs": {"image": ["5", 0], "name": "result"}},
  "3": {"class_type": "AIHubExposeSeed", "inputs": {"id": "seed", "label": "Seed", "value": 7}},
  "5": {"class_type": "KSampler", "inputs": {"seed": ["3", 0], "cfg": 7.5}}
}`

const invalidIDSnapshot = `{
  "1": {"class_type": "AIHubWorkflowController", "inputs": {"id": "x!", "name": "Demo"}},
  "2": {"class_type": "AIHubActionNewImage", "inputs": {"image": ["5", 0]}}
}`

const validYAMLSnapshot = `"1":
  class_type: AIHubWorkflowController
  inputs:
    id: wf_yaml
    name: Demo
"2":
  class_type: AIHubExposeInteger
  inputs:
    id: steps
    label: Steps
    value: 20
"3":
  class_type: AIHubActionNewText
  inputs:
    text: ["2", 0]
`

const invalidIDMessage = "The workflow id is invalid, it must be alphanumeric or underscores, and between 3 and 50 characters"

// writeFile writes content to name inside dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "writing %s", name)
	return path
}

func mustDecode(t *testing.T, snapshot string) graph.NodeGraph {
	t.Helper()
	g, err := graph.Decode([]byte(snapshot))
	require.NoError(t, err, "test snapshot should decode")
	return g
}
