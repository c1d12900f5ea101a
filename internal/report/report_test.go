package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"ViralGen-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		Title:                  "Magnetic <Power> Bank",
		VideoSummary:           "One continuous shot.",
		ViralScore:             88,
		ViralScoreBreakdown:    models.ViralScoreBreakdown{HookStrength: 80, Pacing: 40, PainPoint: 20, CallToAction: 60},
		Transcript:             "line one\nline two",
		RewrittenScriptCN:      "第一行\n第二行",
		RewrittenScriptEN:      "first\nsecond",
		MarketingStrategy:      "Lead with the snap.",
		ConsolidatedSoraPrompt: "Shot 1 (0s - 3s): Camera: Static.",
		Structure: []models.SceneAnalysis{
			{Timestamp: "00:00 - 00:03", HookType: "Visual Hook", VisualDescription: "snap-A", AudioDescription: "whoosh"},
			{Timestamp: "00:03 - 00:07", HookType: "Pain Point", VisualDescription: "snap-B", AudioDescription: "sigh"},
			{Timestamp: "00:07 - 00:10", HookType: "CTA", VisualDescription: "snap-C", AudioDescription: "buy now"},
		},
	}
}

func axis(t *testing.T, v View, key string) RadarAxis {
	t.Helper()
	for _, a := range v.Radar.Axes {
		if a.Key == key {
			return a
		}
	}
	t.Fatalf("axis %s not found", key)
	return RadarAxis{}
}

func TestBuildView_RadarAxesScaleIndependently(t *testing.T) {
	v := BuildView(sampleResult())
	require.Len(t, v.Radar.Axes, 4)

	hook := axis(t, v, "hookStrength")
	assert.InDelta(t, 0.8*RadarRadius, hook.Radius, 1e-9)
	assert.InDelta(t, RadarCenter, hook.X, 1e-9)
	assert.InDelta(t, RadarCenter-0.8*RadarRadius, hook.Y, 1e-9)

	pacing := axis(t, v, "pacing")
	assert.InDelta(t, 0.4*RadarRadius, pacing.Radius, 1e-9)
	assert.InDelta(t, RadarCenter+0.4*RadarRadius, pacing.X, 1e-9)

	cta := axis(t, v, "callToAction")
	assert.InDelta(t, 0.6*RadarRadius, cta.Radius, 1e-9)
	assert.InDelta(t, RadarCenter+0.6*RadarRadius, cta.Y, 1e-9)

	pain := axis(t, v, "painPoint")
	assert.InDelta(t, 0.2*RadarRadius, pain.Radius, 1e-9)
	assert.InDelta(t, RadarCenter-0.2*RadarRadius, pain.X, 1e-9)

	assert.Len(t, strings.Fields(v.Radar.Points()), 4)
}

func TestBuildView_ClampsScores(t *testing.T) {
	r := sampleResult()
	r.ViralScore = 130
	r.ViralScoreBreakdown = models.ViralScoreBreakdown{HookStrength: 150, Pacing: -5, PainPoint: math.NaN(), CallToAction: 100}

	v := BuildView(r)
	assert.Equal(t, 100.0, v.Score)
	assert.Equal(t, RadarRadius, axis(t, v, "hookStrength").Radius)
	assert.Equal(t, 0.0, axis(t, v, "pacing").Radius)
	assert.Equal(t, 0.0, axis(t, v, "painPoint").Radius)
	assert.Equal(t, RadarRadius, axis(t, v, "callToAction").Radius)
}

func TestBuildView_ScriptsAndTimeline(t *testing.T) {
	r := sampleResult()
	v := BuildView(r)

	require.Len(t, v.Scripts, 2)
	assert.Equal(t, "CN", v.Scripts[0].Lang)
	assert.Equal(t, r.RewrittenScriptCN, v.Scripts[0].Body)
	assert.Equal(t, "EN", v.Scripts[1].Lang)
	assert.Equal(t, r.RewrittenScriptEN, v.Scripts[1].Body)

	require.Len(t, v.Timeline, len(r.Structure))
	for i, e := range v.Timeline {
		assert.Equal(t, i+1, e.Index)
		assert.Equal(t, r.Structure[i], e.SceneAnalysis)
	}
	assert.Equal(t, sampleResult(), r)
}

func TestBuildView_SingleShot(t *testing.T) {
	r := sampleResult()
	r.Structure = r.Structure[:1]
	assert.Len(t, BuildView(r).Timeline, 1)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "Magnetic &lt;Power&gt; Bank")
	assert.NotContains(t, out, "<Power>")
	assert.Contains(t, out, "第一行<br/>第二行")
	assert.Equal(t, 3, strings.Count(out, `class="timeline-entry"`))
	a, b, c := strings.Index(out, "snap-A"), strings.Index(out, "snap-B"), strings.Index(out, "snap-C")
	assert.True(t, a < b && b < c, "timeline out of order")
	assert.Contains(t, out, "<polygon")
}

func TestRenderWordDoc(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, RenderWordDoc(&buf, sampleResult(), now))
	out := buf.String()

	assert.Contains(t, out, "urn:schemas-microsoft-com:office:word")
	assert.Contains(t, out, "<style>")
	assert.Contains(t, out, "2025-06-01 09:30:00")
	assert.Contains(t, out, "88/100")
	assert.Contains(t, out, "Shot 1 (0s - 3s)")
	assert.Equal(t, 3, strings.Count(out, "<td>Visual Hook</td>")+strings.Count(out, "<td>Pain Point</td>")+strings.Count(out, "<td>CTA</td>"))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "viral_analysis_2025-06-01.doc", ExportFileName(time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)))
}
