package prompts

import (
	"ViralGen-admin/internal/models"

	"github.com/google/generative-ai-go/genai"
)

// schemaHints 依版本不同而改變的欄位說明
type schemaHints struct {
	ConsolidatedSoraPrompt string
	Timestamp              string
	VisualDescription      string
}

var variantHints = map[models.PromptVariant]schemaHints{
	models.VariantBasicStructured: {
		ConsolidatedSoraPrompt: "The formatted Shot-by-Shot prompt list including Audio context. Never empty.",
		Timestamp:              "e.g., '00:00 - 00:03'",
		VisualDescription:      "Scene description with my product in use",
	},
	models.VariantFeatureMimicry: {
		ConsolidatedSoraPrompt: "One continuous cinematic prompt. A single long segment if the reference is one unbroken shot, otherwise one block per cut. Never empty.",
		Timestamp:              "Start - End of this segment, e.g., '00:00 - 00:15'. One entry for a one-shot video.",
		VisualDescription:      "How this shot demonstrates a concrete feature of MY product while keeping the original shot's intent",
	},
	models.VariantRhythmClone: {
		ConsolidatedSoraPrompt: "Shot-for-shot clone of the reference rhythm: same number of cuts, same durations, same camera moves. Never empty.",
		Timestamp:              "Exact start - end copied from the reference cut, e.g., '00:02.5 - 00:04.0'",
		VisualDescription:      "My product placed into the reference shot's framing and motion",
	},
}

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func num(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

// object 建立物件 schema，所有屬性皆列為必填
func object(desc string, props map[string]*genai.Schema, order []string) *genai.Schema {
	required := make([]string, len(order))
	copy(required, order)
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: desc,
		Properties:  props,
		Required:    required,
	}
}

var (
	breakdownFields = []string{"hookStrength", "pacing", "painPoint", "callToAction"}
	sceneFields     = []string{"timestamp", "visualDescription", "audioDescription", "hookType", "soraPrompt"}
	resultFields    = []string{
		"title", "videoSummary", "viralScore", "viralScoreBreakdown", "transcript",
		"rewrittenScriptCN", "rewrittenScriptEN", "marketingStrategy",
		"consolidatedSoraPrompt", "structure",
	}
)

// ResponseSchema 建立回應 schema；每個 AnalysisResult 欄位都必須出現且為必填
func ResponseSchema(variant models.PromptVariant) *genai.Schema {
	hints, ok := variantHints[variant]
	if !ok {
		hints = variantHints[models.DefaultVariant]
	}

	breakdown := object("Four independent sub-scores, each 0-100. They do not need to sum to viralScore.",
		map[string]*genai.Schema{
			"hookStrength": num("Score 0-100 for the first 3 seconds"),
			"pacing":       num("Score 0-100 for editing rhythm"),
			"painPoint":    num("Score 0-100 for problem identification"),
			"callToAction": num("Score 0-100 for sales closing"),
		}, breakdownFields)

	scene := object("One shot / segment of the storyboard",
		map[string]*genai.Schema{
			"timestamp":         str(hints.Timestamp),
			"visualDescription": str(hints.VisualDescription),
			"audioDescription":  str("Tone and spoken words (or music vibe)"),
			"hookType":          str("Hook type of this segment"),
			"soraPrompt":        str("Short prompt segment for this shot"),
		}, sceneFields)

	return object("Viral video analysis and storyboard",
		map[string]*genai.Schema{
			"title":                  str("Title in Chinese"),
			"videoSummary":           str("A brief 2-3 sentence summary of the video's story, arc and selling angle"),
			"viralScore":             num("Total Score 0-100"),
			"viralScoreBreakdown":    breakdown,
			"transcript":             str("Original transcript of the reference video"),
			"rewrittenScriptCN":      str("Adapted script for my product in Chinese"),
			"rewrittenScriptEN":      str("Adapted script for my product in English"),
			"marketingStrategy":      str("Strategy analysis in Chinese"),
			"consolidatedSoraPrompt": str(hints.ConsolidatedSoraPrompt),
			"structure": {
				Type:        genai.TypeArray,
				Description: "Chronological shot breakdown. Must contain at least one entry.",
				Items:       scene,
			},
		}, resultFields)
}

// RequiredFields 回傳頂層必填欄位，順序與 AnalysisResult 一致
func RequiredFields() []string {
	out := make([]string, len(resultFields))
	copy(out, resultFields)
	return out
}
