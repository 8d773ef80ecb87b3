//go:build !integration

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/aihub-tools/aihub-export/pkg/export"
	"github.com/aihub-tools/aihub-export/pkg/workflow"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

// fakeAIHub serves the catalog and records the registry submissions.
type fakeAIHub struct {
	mu         sync.Mutex
	paths      []string
	failImages bool
}

func newFakeAIHub(t *testing.T) (*fakeAIHub, *httptest.Server) {
	t.Helper()
	hub := &fakeAIHub{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		hub.mu.Lock()
		hub.paths = append(hub.paths, r.Method+" "+r.URL.EscapedPath())
		failImages := hub.failImages
		hub.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == constants.CatalogPath:
			_, _ = w.Write([]byte(`{"checkpoints": ["sdxl.safetensors"], "diffusion_models": [], "loras": ["detail.safetensors"]}`))
		case failImages && r.Method == http.MethodPost && r.URL.Path == "/aihub_workflows/wf_demo/image":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("disk full"))
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return hub, server
}

func (h *fakeAIHub) requests() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

// executeCommand runs cmd under a root carrying the global flags, the way main wires it.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := &cobra.Command{Use: constants.CLIName, SilenceErrors: true, SilenceUsage: true}
	AddConfigFlags(root)
	root.AddCommand(cmd)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{cmd.Name()}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestNewExportCommand(t *testing.T) {
	cmd := NewExportCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "export <snapshot>", cmd.Use)
	for _, name := range []string{"dry-run", "json", "image", "no-image", "locale"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "export command should have a --%s flag", name)
	}
	assert.Equal(t, constants.DefaultLocale, cmd.Flags().Lookup("locale").DefValue)
	assert.Error(t, cmd.Args(cmd, nil), "export requires a snapshot")
	assert.Error(t, cmd.Args(cmd, []string{"a.json", "b.json"}), "export takes a single snapshot")
}

func TestExportCommand_EndToEnd(t *testing.T) {
	hub, server := newFakeAIHub(t)
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "wf.json", validSnapshot)
	image := writeFile(t, dir, "cover.png", string(pngBytes))

	_, errOut, err := executeCommand(t, NewExportCommand(), snapshot, "--server", server.URL, "--image", image)

	require.NoError(t, err, "export should succeed: %s", errOut)
	assert.Contains(t, errOut, export.MsgExportWithImage)
	assert.Equal(t, []string{
		"GET " + constants.CatalogPath,
		"POST /aihub_workflows",
		"POST /aihub_workflows/wf_demo/locale/default",
		"POST /aihub_workflows/wf_demo/image",
	}, hub.requests(), "export should call the server in order")
}

func TestExportCommand_LocaleFromEnvironment(t *testing.T) {
	hub, server := newFakeAIHub(t)
	snapshot := writeFile(t, t.TempDir(), "wf.json", validSnapshot)
	t.Setenv("AIHUB_LOCALE", "pt_BR")

	_, errOut, err := executeCommand(t, NewExportCommand(), snapshot, "--server", server.URL, "--no-image")

	require.NoError(t, err, "export should succeed: %s", errOut)
	assert.Contains(t, errOut, export.MsgExportNoImage)
	assert.Contains(t, hub.requests(), "POST /aihub_workflows/wf_demo/locale/pt_BR", "AIHUB_LOCALE should select the locale")
}

func TestExportCommand_ImageFailureIsWarning(t *testing.T) {
	hub, server := newFakeAIHub(t)
	hub.failImages = true
	dir := t.TempDir()
	snapshot := writeFile(t, dir, "wf.json", validSnapshot)
	image := writeFile(t, dir, "cover.png", string(pngBytes))

	_, errOut, err := executeCommand(t, NewExportCommand(), snapshot, "--server", server.URL, "--image", image)

	require.NoError(t, err, "an image failure does not fail the export")
	assert.Contains(t, errOut, export.MsgExportImageFailed)
	assert.Contains(t, errOut, "disk full")
}

func TestExportCommand_InvalidWorkflowSubmitsNothing(t *testing.T) {
	hub, server := newFakeAIHub(t)
	snapshot := writeFile(t, t.TempDir(), "wf.json", invalidIDSnapshot)

	_, errOut, err := executeCommand(t, NewExportCommand(), snapshot, "--server", server.URL, "--no-image")

	require.Error(t, err)
	assert.ErrorIs(t, err, export.ErrValidation)
	assert.ErrorIs(t, err, workflow.ErrInvalidWorkflow)
	assert.True(t, IsReported(err))
	assert.Contains(t, errOut, "Validation Error: "+invalidIDMessage)
	assert.Equal(t, []string{"GET " + constants.CatalogPath}, hub.requests(), "only the catalog is fetched")
}

func TestExportCommand_DryRunJSON(t *testing.T) {
	hub, server := newFakeAIHub(t)
	snapshot := writeFile(t, t.TempDir(), "wf.json", validSnapshot)

	out, _, err := executeCommand(t, NewExportCommand(), snapshot, "--server", server.URL, "--dry-run", "--json")
	require.NoError(t, err)

	var report map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &report), "output should be JSON: %s", out)
	assert.Equal(t, "success", report["severity"])
	assert.Equal(t, export.MsgValidationSuccess, report["message"])
	assert.Equal(t, "wf_demo", report["workflow_id"])
	assert.Equal(t, []string{"GET " + constants.CatalogPath}, hub.requests(), "a dry run submits nothing")
}

func TestExportCommand_ConflictingImageFlags(t *testing.T) {
	snapshot := writeFile(t, t.TempDir(), "wf.json", validSnapshot)
	_, _, err := executeCommand(t, NewExportCommand(), snapshot, "--image", "a.png", "--no-image")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used together")
}

func TestRunExport_OfflineCatalog(t *testing.T) {
	var out, errOut bytes.Buffer
	err := RunExport(context.Background(), ExportConfig{
		DryRun:    true,
		Snapshots: export.StaticSnapshot{G: mustDecode(t, validSnapshot)},
		Catalog:   catalog.Static{},
		Out:       &out,
		ErrOut:    &errOut,
	})
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), export.MsgValidationSuccess)
	assert.Empty(t, out.String(), "reports go to stderr unless --json is set")
}

func TestNewImagePicker(t *testing.T) {
	assert.Equal(t, export.NoImage{}, newImagePicker("cover.png", true, "."), "--no-image wins")
	assert.Equal(t, export.FileImage{Path: "cover.png"}, newImagePicker("cover.png", false, "."))
	// Tests never run with a terminal on stdin, so no prompt is offered.
	assert.Equal(t, export.NoImage{}, newImagePicker("", false, "."))
}
