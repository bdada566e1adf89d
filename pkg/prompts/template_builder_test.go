package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPromptBuilder_Build(t *testing.T) {
	b, err := NewTextPromptBuilder()
	require.NoError(t, err)

	t.Run("コピー生成: 入力がある場合はそのまま使う", func(t *testing.T) {
		got, err := b.Build(ModeContent, TemplateData{
			BrandName: "Voltra",
			Slogan:    "Pure Power",
			Tones:     []string{"bold", "premium"},
		})
		require.NoError(t, err)
		assert.Contains(t, got, "Brand / product name: Voltra")
		assert.Contains(t, got, "Preferred slogan: Pure Power")
		assert.Contains(t, got, "infer it from the photo")
		assert.Contains(t, got, "one of: bold, premium.")
	})

	t.Run("商品解析", func(t *testing.T) {
		got, err := b.Build(ModeAnalysis, TemplateData{})
		require.NoError(t, err)
		assert.Contains(t, got, "exact_color")
	})

	t.Run("合成: 空の解析項目は出力しない", func(t *testing.T) {
		got, err := b.Build(ModeSynthesis, TemplateData{
			Tone:      "bold",
			Directive: "A glowing neon portal.",
			Product:   ProductDetails{ProductType: "bottle", ExactColor: "matte black"},
		})
		require.NoError(t, err)
		assert.Contains(t, got, "Type: bottle")
		assert.Contains(t, got, "Color: matte black.")
		assert.Contains(t, got, "A glowing neon portal.")
		assert.Contains(t, got, "Mood: bold")
		assert.NotContains(t, got, "Design details")
		assert.NotContains(t, got, "Context:")
	})

	t.Run("不明なモード", func(t *testing.T) {
		_, err := b.Build("unknown", TemplateData{})
		assert.Error(t, err)
	})
}

func TestImagePromptBuilder_BuildSynthesis(t *testing.T) {
	text, err := NewTextPromptBuilder()
	require.NoError(t, err)
	b := NewImagePromptBuilder(text)

	req, err := b.BuildSynthesis(TemplateData{Context: "summer campaign"})
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, "Type: product")
	assert.Contains(t, req.Prompt, "Color: original color.")
	assert.Contains(t, req.Prompt, "Mood: premium")
	assert.Contains(t, req.Prompt, "Context: summer campaign")
	assert.Contains(t, req.Prompt, "A clean premium studio set")
	assert.Equal(t, PosterSystemInstruction, req.SystemPrompt)
	assert.Equal(t, PosterNegativePrompt, req.NegativePrompt)
	assert.Equal(t, "3:4", req.AspectRatio)
}
