// Package constants holds names and defaults shared across the CLI.
package constants

import "time"

// CLIName is the binary name used in help text and examples.
const CLIName = "aihub-export"

// Version is overridden at build time with -ldflags "-X .../constants.Version=v1.2.3".
var Version = "dev"

// DefaultLocale is the only locale the editor currently exports.
const DefaultLocale = "default"

// DefaultServerURL is the ComfyUI server hosting the AIHub registry endpoints.
const DefaultServerURL = "http://127.0.0.1:8188"

// DefaultTimeout bounds every HTTP call to the server.
const DefaultTimeout = 30 * time.Second

// DefaultCatalogTTL is how long a fetched model/LoRA catalog is reused in long-running modes.
const DefaultCatalogTTL = 30 * time.Second

// Registry endpoints, relative to the server URL.
const (
	CatalogPath         = "/aihub_list_models_and_loras"
	WorkflowsPath       = "/aihub_workflows"
	LocalePathFormat    = "/aihub_workflows/%s/locale/%s"
	ImagePathFormat     = "/aihub_workflows/%s/image"
	ImageContentType    = "image/png"
	RequestIDHeader     = "X-Request-ID"
	ConfigFileName      = ".aihub-export"
	EnvPrefix           = "AIHUB"
	DefaultValidateJobs = 4
)
