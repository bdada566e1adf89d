package generator

import (
	"context"

	"google.golang.org/genai"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// ContentGenerator は商品画像とユーザー入力からポスターのコピーを生成します。
// 失敗時は必ず *domain.GenerationError を返し、部分的な結果は返しません。
type ContentGenerator interface {
	Generate(ctx context.Context, product domain.ImageRef, hints domain.Hints) (domain.GeneratedContent, error)
}

// ImageSynthesizer は商品を新しい背景に配置した画像を生成します。
// 失敗時は *domain.SynthesisError を返します。
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (domain.ImageRef, error)
}

// SynthesisRequest は画像合成の入力です。
type SynthesisRequest struct {
	Product   domain.ImageRef
	Tone      domain.Tone
	Directive string
	Context   string
}

// Model は genai の Models.GenerateContent と同じ形のメソッドを持つ生成モデルです。
// *genai.Models がこれを満たします。
type Model interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Model = (*genai.Models)(nil)
