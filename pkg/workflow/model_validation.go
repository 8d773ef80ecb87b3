package workflow

import (
	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/graph"
	"github.com/aihub-tools/aihub-export/pkg/logger"
	"github.com/aihub-tools/aihub-export/pkg/stringutil"
)

var modelValidationLog = logger.New("workflow:model_validation")

// loaderModelOnlyFlags are the values accepted in loras_use_loader_model_only.
var loaderModelOnlyFlags = []string{"t", "f"}

// checkModelAndLoras validates the checkpoint and LoRA selection of model
// expose nodes against the server catalog.
func checkModelAndLoras(_ graph.NodeGraph, id string, node *graph.Node, cat *catalog.ModelCatalog) error {
	if node.Kind != graph.KindExpose || !node.Variant.ExposesModel() {
		return nil
	}
	if err := checkModel(id, node, cat); err != nil {
		return err
	}
	return checkLoras(id, node, cat)
}

func checkModel(id string, node *graph.Node, cat *catalog.ModelCatalog) error {
	text, ok := literalText(node, "model")
	if !ok || stringutil.IsBlank(text) {
		return nil
	}
	if cat.Checkpoints.Has(text) {
		return nil
	}
	if cat.DiffusionModels.Has(text) {
		flag, _ := node.Literal("is_diffusion_model")
		if isDiffusion, isBool := flag.AsBool(); isBool && isDiffusion {
			return nil
		}
		err := newNodeError(id, node.ClassType, "model",
			"%q is a diffusion model but is_diffusion_model is not enabled", text)
		err.Suggestion = "Enable is_diffusion_model on the node"
		return err
	}
	modelValidationLog.Printf("Model not in catalog: node=%s model=%s", id, text)
	return newNodeError(id, node.ClassType, "model",
		"%q is not an available checkpoint or diffusion model on the server", text)
}

func checkLoras(id string, node *graph.Node, cat *catalog.ModelCatalog) error {
	lorasText, _ := literalText(node, "loras")
	strengthsText, _ := literalText(node, "loras_strengths")
	flagsText, _ := literalText(node, "loras_use_loader_model_only")
	if stringutil.IsBlank(lorasText) && stringutil.IsBlank(strengthsText) && stringutil.IsBlank(flagsText) {
		return nil
	}

	loras := stringutil.SplitList(lorasText)
	strengths := stringutil.SplitList(strengthsText)
	flags := stringutil.SplitList(flagsText)
	modelValidationLog.Printf("Checking LoRAs: node=%s loras=%d strengths=%d flags=%d", id, len(loras), len(strengths), len(flags))

	if len(strengths) > 0 && len(strengths) != len(loras) {
		return newNodeError(id, node.ClassType, "loras_strengths",
			"has %d entries but loras has %d, there must be one strength per LoRA", len(strengths), len(loras))
	}
	if len(flags) > 0 && len(flags) != len(loras) {
		return newNodeError(id, node.ClassType, "loras_use_loader_model_only",
			"has %d entries but loras has %d, there must be one flag per LoRA", len(flags), len(loras))
	}

	for _, s := range strengths {
		if _, err := parseFloatInRange(s, 0, 1); err != nil {
			return newNodeError(id, node.ClassType, "loras_strengths", "strength %v", err)
		}
	}
	for _, f := range flags {
		if err := validateInList(f, loaderModelOnlyFlags); err != nil {
			return newNodeError(id, node.ClassType, "loras_use_loader_model_only", "flag %v", err)
		}
	}
	for _, lora := range loras {
		if !cat.LoRAs.Has(lora) {
			return newNodeError(id, node.ClassType, "loras",
				"%q is not an available LoRA on the server", lora)
		}
	}
	return nil
}
