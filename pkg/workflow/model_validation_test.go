//go:build !integration

package workflow

import (
	"testing"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.ModelCatalog {
	return catalog.New(
		[]string{"sdxl.safetensors"},
		[]string{"flux.safetensors"},
		[]string{"a", "b", "detail.safetensors"},
	)
}

func validateModelNode(classType string, in inputs, cat *catalog.ModelCatalog) error {
	in["id"] = str("model")
	g := graph.NodeGraph{"4": graph.NewNode(classType, in)}
	return ValidateNode(g, "4", g["4"], cat)
}

func TestValidateNode_Model(t *testing.T) {
	tests := []struct {
		name    string
		in      inputs
		wantErr string
	}{
		{name: "checkpoint", in: inputs{"model": str("sdxl.safetensors")}},
		{name: "no model set", in: inputs{"model": str("")}},
		{name: "diffusion model with flag", in: inputs{"model": str("flux.safetensors"), "is_diffusion_model": graph.Bool(true)}},
		{name: "diffusion model without flag", in: inputs{"model": str("flux.safetensors"), "is_diffusion_model": graph.Bool(false)},
			wantErr: `"flux.safetensors" is a diffusion model but is_diffusion_model is not enabled`},
		{name: "diffusion model flag absent", in: inputs{"model": str("flux.safetensors")},
			wantErr: "is_diffusion_model is not enabled"},
		{name: "unknown model", in: inputs{"model": str("missing.ckpt")},
			wantErr: `"missing.ckpt" is not an available checkpoint or diffusion model on the server`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, classType := range []string{"AIHubExposeModel", "AIHubExposeModelSimple"} {
				err := validateModelNode(classType, tt.in, testCatalog())
				if tt.wantErr == "" {
					require.NoError(t, err, "%s should pass", classType)
					continue
				}
				require.Error(t, err, "%s should fail", classType)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateNode_Loras(t *testing.T) {
	tests := []struct {
		name    string
		in      inputs
		wantErr string
	}{
		{name: "no loras", in: inputs{}},
		{name: "loras with strengths and flags", in: inputs{
			"loras": str("a, b"), "loras_strengths": str("0.5,1"), "loras_use_loader_model_only": str("t,f"),
		}},
		{name: "loras without strengths", in: inputs{"loras": str("detail.safetensors")}},
		{name: "strength count mismatch", in: inputs{"loras": str("a,b"), "loras_strengths": str("0.5")},
			wantErr: "has 1 entries but loras has 2"},
		{name: "flag count mismatch", in: inputs{"loras": str("a"), "loras_use_loader_model_only": str("t,t")},
			wantErr: "there must be one flag per LoRA"},
		{name: "strengths without loras", in: inputs{"loras_strengths": str("0.5")},
			wantErr: "has 1 entries but loras has 0"},
		{name: "strength above one", in: inputs{"loras": str("a"), "loras_strengths": str("1.5")},
			wantErr: `strength "1.5" must be between 0 and 1`},
		{name: "strength not a number", in: inputs{"loras": str("a"), "loras_strengths": str("high")},
			wantErr: `strength "high" is not a number`},
		{name: "flag not t or f", in: inputs{"loras": str("a"), "loras_use_loader_model_only": str("true")},
			wantErr: `flag "true" must be one of t, f`},
		{name: "lora not in catalog", in: inputs{"loras": str("a,ghost")},
			wantErr: `"ghost" is not an available LoRA on the server`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateModelNode("AIHubExposeModel", tt.in, testCatalog())
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNode_LoraCountMismatchIgnoresCatalog(t *testing.T) {
	in := inputs{"loras": str("a,b"), "loras_strengths": str("0.5")}

	for _, cat := range []*catalog.ModelCatalog{catalog.Empty(), testCatalog()} {
		err := validateModelNode("AIHubExposeModelSimple", in, cat)
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "loras_strengths", verr.Input)
	}
}

func TestValidateNode_ModelChecksOnlyForModelExposes(t *testing.T) {
	err := validateModelNode("AIHubExposeString", inputs{"model": str("missing.ckpt"), "loras": str("ghost")}, catalog.Empty())
	require.NoError(t, err)
}
