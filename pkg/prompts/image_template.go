package prompts

import (
	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"
)

const (
	// PosterSystemInstruction は画像合成モデルの役割を定義します。
	PosterSystemInstruction = "You are a commercial product photographer and retoucher. " +
		"You re-stage the exact product from the reference photo into a new advertising scene without altering the product itself."

	// PosterNegativePrompt Negative Prompt の定義
	PosterNegativePrompt = "text, letters, words, typography, watermark, logo overlay, cropped product, cut-off edges, " +
		"color shift, distorted product, blurry, low quality, artifacts"

	// PosterAspectRatio はキャンバス（900x1200）と同じ縦長の比率です。
	PosterAspectRatio = "3:4"
)

// ImagePromptBuilder は合成用の画像リクエストを組み立てます。
type ImagePromptBuilder struct {
	text PromptBuilder
}

// NewImagePromptBuilder は ImagePromptBuilder を作成します。
func NewImagePromptBuilder(text PromptBuilder) *ImagePromptBuilder {
	return &ImagePromptBuilder{text: text}
}

// BuildSynthesis は合成リクエストを生成します。解析結果が空の項目は汎用の記述で補います。
func (b *ImagePromptBuilder) BuildSynthesis(data TemplateData) (imgdom.ImageGenerationRequest, error) {
	if data.Product.ProductType == "" {
		data.Product.ProductType = GenericProductDetails.ProductType
	}
	if data.Product.ExactColor == "" {
		data.Product.ExactColor = GenericProductDetails.ExactColor
	}
	if data.Tone == "" {
		data.Tone = "premium"
	}

	prompt, err := b.text.Build(ModeSynthesis, data)
	if err != nil {
		return imgdom.ImageGenerationRequest{}, err
	}
	return imgdom.ImageGenerationRequest{
		Prompt:         prompt,
		SystemPrompt:   PosterSystemInstruction,
		NegativePrompt: PosterNegativePrompt,
		AspectRatio:    PosterAspectRatio,
	}, nil
}
