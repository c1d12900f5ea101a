package models

import "fmt"

// PromptVariant 選擇指令模板的版本
type PromptVariant string

const (
	// VariantBasicStructured 標準分鏡格式 (Camera / Visual / Audio / Action)
	VariantBasicStructured PromptVariant = "basic-structured"
	// VariantFeatureMimicry 一鏡到底偵測 + 產品賣點對應畫面
	VariantFeatureMimicry PromptVariant = "feature-mimicry"
	// VariantRhythmClone 逐鏡複製原片節奏與剪輯點
	VariantRhythmClone PromptVariant = "rhythm-clone"

	DefaultVariant = VariantFeatureMimicry
)

// Variants 回傳所有支援的版本，順序固定
func Variants() []PromptVariant {
	return []PromptVariant{VariantBasicStructured, VariantFeatureMimicry, VariantRhythmClone}
}

// ParseVariant 解析字串，空字串回傳預設版本
func ParseVariant(s string) (PromptVariant, error) {
	if s == "" {
		return DefaultVariant, nil
	}
	for _, v := range Variants() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("不支援的 Prompt 版本: %s", s)
}
