package prompts

import "ViralGen-admin/internal/models"

// SystemInstruction 所有版本共用的系統層指令
const SystemInstruction = "You are a professional video director and storyboard artist. " +
	"Describe camera shots, angles and motion precisely. " +
	"Preserve visual and audio continuity between shots. " +
	"You explicitly analyze audio tones and spoken dialogue. " +
	"Always populate the 'structure' array and the 'consolidatedSoraPrompt' field, even when uncertain. Never return them empty."

const imageContextWithImage = "User has uploaded a product image. Use this EXACT visual reference for the 'Shot 1' start frame so the first frame stays continuous with the real product."

const imageContextWithoutImage = "User has NOT uploaded an image. You must construct the visual description purely based on the 'Product Description' provided."

const commonHeader = `
You are an expert TikTok Dropshipping Strategist and a Professional Video Director (Storyboard Artist).

INPUTS:
1. A Viral Video (Reference for structure, camera angles, pacing, and editing).
2. Product Info: "{{.ProductDescription}}"
3. Visual Context: {{.ImageContext}}
`

const commonAnalysis = `
1. **Analyze Video Core**:
   - **Video Summary**: Provide a concise 2-3 sentence summary of what happens in the video, the story arc, and the main selling angle.
   - **Viral Score**: Rate from 0-100. Also score hookStrength, pacing, painPoint and callToAction independently, each 0-100.

2. **Adapt Content**: Create a new script selling *MY PRODUCT* that keeps the persuasive structure of the reference. Output it in Chinese (rewrittenScriptCN) and English (rewrittenScriptEN).
`

const commonFooter = `
HARD REQUIREMENTS:
- 'structure' MUST contain at least one entry. Never return an empty array.
- 'consolidatedSoraPrompt' MUST NOT be empty.
- Return the response in strictly valid JSON that follows the provided schema.
`

const basicStructuredTasks = `
TASKS:
` + commonAnalysis + `
3. **Generate Structured Sora 2 Prompt (STRICT SHOT-BY-SHOT FORMAT)**:
   - **CRITICAL REQUIREMENT**: Do NOT write a paragraph.
   - **FORMAT**: Structured list of shots (Storyboard style).
   - **AUDIO ANALYSIS**: If there is a person speaking, you MUST describe the **Tone** (e.g., Excited, Sarcastic, Whisper) and the **Content**. If it's music only, describe the vibe.
   - **TEMPLATE PER SHOT**:
     "**Shot [N] ([Start Time] - [End Time])**
      **Camera**: [Specific Movement: e.g., Close-up Zoom In / Wide Angle Pan Left / Handheld POV]
      **Visual**: [Detailed visual description of my product being used]
      **Audio**: [Tone/Speaker]: "[Spoken Words]" OR [Sound Effect/Music Vibe]
      **Action**: [Specific physical action]"
   - **EXAMPLE OUTPUT**:
     "Shot 1 (0s - 2s):
      Camera: Static Medium Shot.
      Visual: A woman holds the [my product] next to her face.
      Audio: Sarcastic Tone: 'You surely don't need this...'
      Action: She rolls her eyes and throws the product on the bed."

4. **Structure Breakdown**: Summarize the above shots in the 'structure' JSON list, one entry per shot.
`

const featureMimicryTasks = `
TASKS:
` + commonAnalysis + `
3. **Consolidated Cinematic Prompt (consolidatedSoraPrompt)**:
   - FIRST decide the editing structure of the reference video:
     * ONE-SHOT: the reference is one continuous, unbroken shot. Then output EXACTLY ONE long segment that covers the full duration. Do NOT invent artificial cuts.
     * MULTI-CUT: the reference is a montage. Then output one segment per cut, in order.
   - For every segment describe Camera (movement and framing), Visual, Audio (tone + spoken words or music vibe) and Action.

4. **Structure Breakdown with Feature Mapping ('structure')**:
   - Mirror the segmentation of step 3 exactly: same number of entries, same timestamps.
   - Each visualDescription MUST demonstrate a concrete feature of MY product, not the reference product.
   - Keep what the original shot PROVES to the viewer, replace what it shows. Examples:
     * a magnetic feature is shown snapping onto a metal surface;
     * a waterproof feature is shown under running water;
     * a fast-charging feature is shown with a phone going from low to full battery.
`

const rhythmCloneTasks = `
TASKS:
` + commonAnalysis + `
3. **Shot-for-Shot Rhythm Clone (consolidatedSoraPrompt)**:
   - Detect every cut of the reference video and its exact start and end time.
   - Produce the SAME number of shots with the SAME durations, the SAME camera movement and the SAME framing as the reference, in the same order.
   - Only the subject changes: my product replaces the reference product. Keep the beat, the speed ramps and the transitions.
   - If the reference is a single unbroken shot, the clone is a single unbroken shot.

4. **Structure Breakdown ('structure')**: One entry per cloned shot with the exact reference timestamp, the hook type, the audio tone and a short prompt segment.
`

var variantTemplates = map[models.PromptVariant]string{
	models.VariantBasicStructured: commonHeader + basicStructuredTasks + commonFooter,
	models.VariantFeatureMimicry:  commonHeader + featureMimicryTasks + commonFooter,
	models.VariantRhythmClone:     commonHeader + rhythmCloneTasks + commonFooter,
}
