// Package report 將 AnalysisResult 轉為頁面片段與可下載的 Word 報告
package report

import (
	"fmt"
	"math"
	"strings"

	"ViralGen-admin/internal/models"
)

// 雷達圖尺寸
const (
	RadarSize   = 200.0
	RadarCenter = RadarSize / 2
	RadarRadius = (RadarSize - 40) / 2
)

// RadarAxis 單一維度
type RadarAxis struct {
	Key    string
	Label  string
	Angle  float64 // 度，-90 為正上方
	Score  float64 // 0-100
	Radius float64 // Score/100 * RadarRadius
	X, Y   float64 // 分數點座標
	EdgeX  float64 // 軸線端點
	EdgeY  float64
	Anchor string // SVG text-anchor
}

// Radar 四軸獨立縮放的雷達圖
type Radar struct {
	Size   float64
	Center float64
	Radius float64
	Axes   []RadarAxis
	Rings  []float64
}

// Points SVG polygon 的 points 屬性
func (r Radar) Points() string {
	pts := make([]string, 0, len(r.Axes))
	for _, a := range r.Axes {
		pts = append(pts, fmt.Sprintf("%.2f,%.2f", a.X, a.Y))
	}
	return strings.Join(pts, " ")
}

// ScriptPanel 單一語言的改寫腳本
type ScriptPanel struct {
	Lang  string // "CN" | "EN"
	Label string
	Body  string
}

// TimelineEntry 對應 structure 中的一個分鏡
type TimelineEntry struct {
	Index int
	models.SceneAnalysis
}

// View 渲染所需的全部資料；BuildView 不修改輸入
type View struct {
	Result   models.AnalysisResult
	Score    float64
	Radar    Radar
	Scripts  []ScriptPanel
	Timeline []TimelineEntry
}

var radarAxes = []struct {
	key   string
	label string
	angle float64
	pick  func(models.ViralScoreBreakdown) float64
}{
	{"hookStrength", "黃金3秒", -90, func(b models.ViralScoreBreakdown) float64 { return b.HookStrength }},
	{"pacing", "節奏感", 0, func(b models.ViralScoreBreakdown) float64 { return b.Pacing }},
	{"callToAction", "轉化話術", 90, func(b models.ViralScoreBreakdown) float64 { return b.CallToAction }},
	{"painPoint", "痛點直擊", 180, func(b models.ViralScoreBreakdown) float64 { return b.PainPoint }},
}

// BuildView 由分析結果計算雷達圖、腳本面板與時間軸
func BuildView(result models.AnalysisResult) View {
	v := View{
		Result: result,
		Score:  clampScore(result.ViralScore),
		Radar:  buildRadar(result.ViralScoreBreakdown),
		Scripts: []ScriptPanel{
			{Lang: "CN", Label: "中文版 (Chinese)", Body: result.RewrittenScriptCN},
			{Lang: "EN", Label: "英文版 (English - for Global)", Body: result.RewrittenScriptEN},
		},
		Timeline: make([]TimelineEntry, 0, len(result.Structure)),
	}
	for i, s := range result.Structure {
		v.Timeline = append(v.Timeline, TimelineEntry{Index: i + 1, SceneAnalysis: s})
	}
	return v
}

func buildRadar(b models.ViralScoreBreakdown) Radar {
	r := Radar{
		Size:   RadarSize,
		Center: RadarCenter,
		Radius: RadarRadius,
		Rings:  []float64{RadarRadius * 0.25, RadarRadius * 0.5, RadarRadius * 0.75, RadarRadius},
	}
	for _, ax := range radarAxes {
		score := clampScore(ax.pick(b))
		radius := score / 100 * RadarRadius
		rad := ax.angle * math.Pi / 180
		r.Axes = append(r.Axes, RadarAxis{
			Key:    ax.key,
			Label:  ax.label,
			Angle:  ax.angle,
			Score:  score,
			Radius: radius,
			X:      RadarCenter + radius*math.Cos(rad),
			Y:      RadarCenter + radius*math.Sin(rad),
			EdgeX:  RadarCenter + RadarRadius*math.Cos(rad),
			EdgeY:  RadarCenter + RadarRadius*math.Sin(rad),
			Anchor: anchorFor(ax.angle),
		})
	}
	return r
}

func anchorFor(angle float64) string {
	switch angle {
	case 0:
		return "start"
	case 180:
		return "end"
	default:
		return "middle"
	}
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
