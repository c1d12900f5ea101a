package models

// ViralScoreBreakdown 四個獨立的 0-100 子分數，與總分之間沒有加權關係
type ViralScoreBreakdown struct {
	HookStrength float64 `json:"hookStrength"` // 黃金 3 秒吸引力
	Pacing       float64 `json:"pacing"`       // 節奏感
	PainPoint    float64 `json:"painPoint"`    // 痛點直擊度
	CallToAction float64 `json:"callToAction"` // 轉化話術
}

// SceneAnalysis 單一分鏡 (shot/segment)，在 Structure 中依時間順序排列
type SceneAnalysis struct {
	Timestamp         string `json:"timestamp"` // 自由格式，例如 "00:00 - 00:03"
	VisualDescription string `json:"visualDescription"`
	AudioDescription  string `json:"audioDescription"`
	HookType          string `json:"hookType"`
	SoraPrompt        string `json:"soraPrompt"`
}

// AnalysisResult 對應 Gemini 回傳的完整結構化結果
// 欄位名稱必須與 prompts 套件中的 response schema 一致
type AnalysisResult struct {
	Title                  string              `json:"title"`
	VideoSummary           string              `json:"videoSummary"`
	ViralScore             float64             `json:"viralScore"`
	ViralScoreBreakdown    ViralScoreBreakdown `json:"viralScoreBreakdown"`
	Transcript             string              `json:"transcript"`
	RewrittenScriptCN      string              `json:"rewrittenScriptCN"`
	RewrittenScriptEN      string              `json:"rewrittenScriptEN"`
	MarketingStrategy      string              `json:"marketingStrategy"`
	ConsolidatedSoraPrompt string              `json:"consolidatedSoraPrompt"`
	Structure              []SceneAnalysis     `json:"structure"`
}
