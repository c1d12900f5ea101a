// Package prompts 組裝送往 Gemini 的多模態請求：影片、產品圖片 (可選)、指令文字與回應 schema
package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"ViralGen-admin/internal/models"

	"github.com/google/generative-ai-go/genai"
)

// DefaultModel 未設定模型時使用
const DefaultModel = "gemini-2.5-flash"

// RequestPart 請求中的一個片段，Media 與 Text 二擇一
type RequestPart struct {
	Media *models.MediaPart
	Text  string
}

// IsMedia 是否為檔案片段
func (p RequestPart) IsMedia() bool {
	return p.Media != nil
}

// AnalysisRequest 依序排列的片段 + schema + 模型設定，每次呼叫重新建立
type AnalysisRequest struct {
	Parts             []RequestPart
	Schema            *genai.Schema
	Model             string
	SystemInstruction string
	Variant           models.PromptVariant
}

// Video 回傳第一個片段 (若為影片)
func (r *AnalysisRequest) Video() *models.MediaPart {
	if r == nil || len(r.Parts) == 0 || !r.Parts[0].IsMedia() {
		return nil
	}
	return r.Parts[0].Media
}

// InstructionText 回傳最後一個片段的指令文字
func (r *AnalysisRequest) InstructionText() string {
	if r == nil || len(r.Parts) == 0 {
		return ""
	}
	last := r.Parts[len(r.Parts)-1]
	if last.IsMedia() {
		return ""
	}
	return last.Text
}

// BuilderOptions Builder 的設定
type BuilderOptions struct {
	Variant models.PromptVariant
	Model   string
}

// Builder 依 Prompt 版本組裝請求
type Builder struct {
	variant models.PromptVariant
	model   string
	tpl     *template.Template
}

type promptData struct {
	ProductDescription string
	ImageContext       string
}

// NewBuilder 建立 Builder；Variant 為空時使用預設版本
func NewBuilder(opts BuilderOptions) (*Builder, error) {
	variant := opts.Variant
	if variant == "" {
		variant = models.DefaultVariant
	}
	text, ok := variantTemplates[variant]
	if !ok {
		return nil, fmt.Errorf("不支援的 Prompt 版本: %s", variant)
	}
	tpl, err := template.New(string(variant)).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("解析 Prompt 模板 %s 失敗: %w", variant, err)
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Builder{variant: variant, model: model, tpl: tpl}, nil
}

// Variant 回傳 Builder 使用的版本
func (b *Builder) Variant() models.PromptVariant {
	return b.variant
}

// Build 組裝請求，順序固定為 [影片, 圖片?, 指令]
func (b *Builder) Build(video models.MediaPart, image *models.MediaPart, description string) (*AnalysisRequest, error) {
	instruction, err := b.Instruction(description, image != nil)
	if err != nil {
		return nil, err
	}

	parts := make([]RequestPart, 0, 3)
	v := video
	parts = append(parts, RequestPart{Media: &v})
	if image != nil {
		img := *image
		parts = append(parts, RequestPart{Media: &img})
	}
	parts = append(parts, RequestPart{Text: instruction})

	return &AnalysisRequest{
		Parts:             parts,
		Schema:            ResponseSchema(b.variant),
		Model:             b.model,
		SystemInstruction: SystemInstruction,
		Variant:           b.variant,
	}, nil
}

// Instruction 產生指令文字
func (b *Builder) Instruction(description string, hasImage bool) (string, error) {
	data := promptData{ProductDescription: description, ImageContext: imageContextWithoutImage}
	if hasImage {
		data.ImageContext = imageContextWithImage
	}
	var buf bytes.Buffer
	if err := b.tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("產生 Prompt 指令失敗: %w", err)
	}
	return buf.String(), nil
}
