package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantFeatureMimicry, v)

	for _, want := range Variants() {
		got, err := ParseVariant(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParseVariant("Rhythm-Clone")
	assert.Error(t, err)
}

func TestMediaPart_Bytes(t *testing.T) {
	raw, err := MediaPart{Data: "AAECAw==", MIMEType: "video/mp4"}.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3}, raw)

	_, err = MediaPart{Data: "data:video/mp4;base64,AAECAw=="}.Bytes()
	assert.Error(t, err)
}

func TestAnalysisResult_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(AnalysisResult{Structure: []SceneAnalysis{{}}})
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, name := range []string{
		"title", "videoSummary", "viralScore", "viralScoreBreakdown", "transcript",
		"rewrittenScriptCN", "rewrittenScriptEN", "marketingStrategy",
		"consolidatedSoraPrompt", "structure",
	} {
		assert.Contains(t, fields, name)
	}

	var breakdown map[string]float64
	require.NoError(t, json.Unmarshal(fields["viralScoreBreakdown"], &breakdown))
	assert.Len(t, breakdown, 4)
	for _, name := range []string{"hookStrength", "pacing", "painPoint", "callToAction"} {
		assert.Contains(t, breakdown, name)
	}
}
