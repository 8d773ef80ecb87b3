package graph

// Kind is the node family, resolved once from the type tag when a snapshot is decoded.
type Kind int

const (
	// KindForeign is any node that is not part of the AIHub node set. Such
	// nodes are carried in the payload but never validated.
	KindForeign Kind = iota
	KindController
	KindExpose
	KindAction
	KindPatchAction
	KindAddRunCondition
	KindUtility
	KindMeta
)

var kindNames = map[Kind]string{
	KindForeign:         "foreign",
	KindController:      "controller",
	KindExpose:          "expose",
	KindAction:          "action",
	KindPatchAction:     "patch_action",
	KindAddRunCondition: "add_run_condition",
	KindUtility:         "utility",
	KindMeta:            "meta",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsAIHub reports whether nodes of this kind are subject to validation.
func (k Kind) IsAIHub() bool {
	return k != KindForeign
}

// ExposeVariant identifies the concrete expose node. It is VariantNone for
// every other kind.
type ExposeVariant int

const (
	VariantNone ExposeVariant = iota
	VariantInteger
	VariantSteps
	VariantSeed
	VariantFloat
	VariantCfg
	VariantBoolean
	VariantString
	VariantStringSelection
	VariantSampler
	VariantScheduler
	VariantExtendableScheduler
	VariantImage
	VariantFrame
	VariantImageInfoOnly
	VariantImageBatch
	VariantVideo
	VariantAudio
	VariantModel
	VariantModelSimple
	VariantProjectConfigInteger
	VariantProjectConfigFloat
	VariantProjectConfigBoolean
	VariantProjectConfigString
	VariantProjectImage
	VariantProjectImageBatch
	VariantProjectText
	VariantProjectVideo
	VariantProjectAudio
	VariantProjectLatent
)

// ProjectScoped reports whether the variant reads from or writes to project
// files, which requires a project type on the controller.
func (v ExposeVariant) ProjectScoped() bool {
	switch v {
	case VariantProjectConfigInteger, VariantProjectConfigFloat, VariantProjectConfigBoolean,
		VariantProjectConfigString, VariantProjectImage, VariantProjectImageBatch,
		VariantProjectText, VariantProjectVideo, VariantProjectAudio, VariantProjectLatent:
		return true
	}
	return false
}

// ProducesInteger reports whether the exposed value is an integer.
func (v ExposeVariant) ProducesInteger() bool {
	switch v {
	case VariantInteger, VariantSteps, VariantSeed, VariantProjectConfigInteger:
		return true
	}
	return false
}

// ProducesFloat reports whether the exposed value is a float.
func (v ExposeVariant) ProducesFloat() bool {
	switch v {
	case VariantFloat, VariantCfg, VariantProjectConfigFloat:
		return true
	}
	return false
}

// ProducesNumber reports whether the exposed value is an integer or a float.
func (v ExposeVariant) ProducesNumber() bool {
	return v.ProducesInteger() || v.ProducesFloat()
}

// ExposesModel reports whether the variant selects a checkpoint and LoRAs.
func (v ExposeVariant) ExposesModel() bool {
	return v == VariantModel || v == VariantModelSimple
}

type classification struct {
	kind    Kind
	variant ExposeVariant
}

// typeTags maps every known class_type to its kind. Tags missing from this
// table are foreign.
var typeTags = map[string]classification{
	"AIHubWorkflowController": {kind: KindController},

	"AIHubExposeInteger":             {KindExpose, VariantInteger},
	"AIHubExposeSteps":               {KindExpose, VariantSteps},
	"AIHubExposeSeed":                {KindExpose, VariantSeed},
	"AIHubExposeFloat":               {KindExpose, VariantFloat},
	"AIHubExposeCfg":                 {KindExpose, VariantCfg},
	"AIHubExposeBoolean":             {KindExpose, VariantBoolean},
	"AIHubExposeString":              {KindExpose, VariantString},
	"AIHubExposeStringSelection":     {KindExpose, VariantStringSelection},
	"AIHubExposeSampler":             {KindExpose, VariantSampler},
	"AIHubExposeScheduler":           {KindExpose, VariantScheduler},
	"AIHubExposeExtendableScheduler": {KindExpose, VariantExtendableScheduler},
	"AIHubExposeImage":               {KindExpose, VariantImage},
	"AIHubExposeFrame":               {KindExpose, VariantFrame},
	"AIHubExposeImageInfoOnly":       {KindExpose, VariantImageInfoOnly},
	"AIHubExposeImageBatch":          {KindExpose, VariantImageBatch},
	"AIHubExposeVideo":               {KindExpose, VariantVideo},
	"AIHubExposeAudio":               {KindExpose, VariantAudio},
	"AIHubExposeModel":               {KindExpose, VariantModel},
	"AIHubExposeModelSimple":         {KindExpose, VariantModelSimple},

	"AIHubExposeProjectConfigInteger": {KindExpose, VariantProjectConfigInteger},
	"AIHubExposeProjectConfigFloat":   {KindExpose, VariantProjectConfigFloat},
	"AIHubExposeProjectConfigBoolean": {KindExpose, VariantProjectConfigBoolean},
	"AIHubExposeProjectConfigString":  {KindExpose, VariantProjectConfigString},
	"AIHubExposeProjectImage":         {KindExpose, VariantProjectImage},
	"AIHubExposeProjectImageBatch":    {KindExpose, VariantProjectImageBatch},
	"AIHubExposeProjectText":          {KindExpose, VariantProjectText},
	"AIHubExposeProjectVideo":         {KindExpose, VariantProjectVideo},
	"AIHubExposeProjectAudio":         {KindExpose, VariantProjectAudio},
	"AIHubExposeProjectLatent":        {KindExpose, VariantProjectLatent},

	"AIHubActionNewImage":                {kind: KindAction},
	"AIHubActionNewImageBatch":           {kind: KindAction},
	"AIHubActionNewFrames":               {kind: KindAction},
	"AIHubActionNewLayer":                {kind: KindAction},
	"AIHubActionNewLatent":               {kind: KindAction},
	"AIHubActionNewAudio":                {kind: KindAction},
	"AIHubActionNewAudioSegment":         {kind: KindAction},
	"AIHubActionNewVideo":                {kind: KindAction},
	"AIHubActionNewVideoSegment":         {kind: KindAction},
	"AIHubActionNewText":                 {kind: KindAction},
	"AIHubActionSetProjectConfigInteger": {kind: KindAction},
	"AIHubActionSetProjectConfigFloat":   {kind: KindAction},
	"AIHubActionSetProjectConfigBoolean": {kind: KindAction},
	"AIHubActionSetProjectConfigString":  {kind: KindAction},

	"AIHubPatchActionSetProjectConfigInteger": {kind: KindPatchAction},
	"AIHubPatchActionSetProjectConfigFloat":   {kind: KindPatchAction},
	"AIHubPatchActionSetProjectConfigBoolean": {kind: KindPatchAction},
	"AIHubPatchActionSetProjectConfigString":  {kind: KindPatchAction},

	"AIHubAddRunCondition": {kind: KindAddRunCondition},

	"AIHubUtilsCropMergedImageToLayerSize": {kind: KindUtility},
	"AIHubUtilsFitLayerToMergedImage":      {kind: KindUtility},
	"AIHubUtilsFloatToInt":                 {kind: KindUtility},
	"AIHubUtilsStrToFloat":                 {kind: KindUtility},
	"AIHubUtilsStrToVector":                {kind: KindUtility},
	"AIHubUtilsLoadModel":                  {kind: KindUtility},
	"AIHubUtilsLoadVAE":                    {kind: KindUtility},
	"AIHubUtilsLoadCLIP":                   {kind: KindUtility},
	"AIHubUtilsLoadLora":                   {kind: KindUtility},
	"AIHubUtilsMetadataMap":                {kind: KindUtility},
	"AIHubUtilsNewNormalizer":              {kind: KindUtility},
	"AIHubUtilsScaleImageAndMasks":         {kind: KindUtility},

	"AIHubMetaSetExportedModelImage":    {kind: KindMeta},
	"AIHubMetaExportModel":              {kind: KindMeta},
	"AIHubMetaExportLora":               {kind: KindMeta},
	"AIHubMetaSetExportedLoraImage":     {kind: KindMeta},
	"AIHubMetaSetExportedWorkflowImage": {kind: KindMeta},
}

// Classify resolves a class_type to its kind and expose variant.
func Classify(classType string) (Kind, ExposeVariant) {
	c, ok := typeTags[classType]
	if !ok {
		return KindForeign, VariantNone
	}
	return c.kind, c.variant
}
