package prompts

import imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

// PromptBuilder は、AIプロンプトを構築する契約です。
type PromptBuilder interface {
	// Build は、指定されたモード（ModeContent 等）とデータに基づいてプロンプト文字列を生成します。
	Build(mode string, data TemplateData) (string, error)
}

// ImagePrompt は、画像合成リクエストを構築する契約です。
type ImagePrompt interface {
	// BuildSynthesis は、商品解析の結果とアートディレクションから合成リクエストを生成します。
	BuildSynthesis(data TemplateData) (imgdom.ImageGenerationRequest, error)
}
