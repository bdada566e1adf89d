package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/prompts"
)

const defaultContentTemperature = float32(0.9)

// contentSchema は GeneratedContent と同じキーを必須とする応答スキーマです。
func contentSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	tones := make([]string, 0, len(domain.AllTones))
	for _, t := range domain.AllTones {
		tones = append(tones, string(t))
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"brand_name":       str,
			"short_slogan":     str,
			"long_slogan":      str,
			"cta_text":         str,
			"background_word":  str,
			"emotional_tone":   {Type: genai.TypeString, Enum: tones},
			"product_category": str,
		},
		Required: []string{
			"brand_name", "short_slogan", "long_slogan", "cta_text",
			"background_word", "emotional_tone", "product_category",
		},
	}
}

// GeminiContentGenerator は Gemini のテキストモデルでコピーを生成します。
type GeminiContentGenerator struct {
	model     Model
	modelName string
	prompts   prompts.PromptBuilder
	limiter   *rate.Limiter
}

// NewGeminiContentGenerator は GeminiContentGenerator を作成します。limiter は nil でも構いません。
func NewGeminiContentGenerator(model Model, modelName string, pb prompts.PromptBuilder, limiter *rate.Limiter) (*GeminiContentGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("model は必須です")
	}
	if modelName == "" {
		return nil, fmt.Errorf("modelName は必須です")
	}
	if pb == nil {
		return nil, fmt.Errorf("promptBuilder は必須です")
	}
	return &GeminiContentGenerator{model: model, modelName: modelName, prompts: pb, limiter: limiter}, nil
}

// Generate はコピーを生成します。ユーザーが指定したブランド名とスローガンはモデルの出力より優先します。
func (g *GeminiContentGenerator) Generate(ctx context.Context, product domain.ImageRef, hints domain.Hints) (domain.GeneratedContent, error) {
	fail := func(op string, err error) (domain.GeneratedContent, error) {
		return domain.GeneratedContent{}, &domain.GenerationError{Op: op, Err: err}
	}
	if product.IsZero() {
		return fail("input", domain.ErrNoProductImage)
	}

	tones := make([]string, 0, len(domain.AllTones))
	for _, t := range domain.AllTones {
		tones = append(tones, string(t))
	}
	prompt, err := g.prompts.Build(prompts.ModeContent, prompts.TemplateData{
		BrandName: hints.BrandName,
		Slogan:    hints.Slogan,
		Context:   hints.Context,
		Tones:     tones,
	})
	if err != nil {
		return fail("prompt", err)
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fail("rate", fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err))
		}
	}

	slog.Info("コピー生成を開始します", "model", g.modelName, "brand_hint", hints.BrandName)
	resp, err := g.model.GenerateContent(ctx, g.modelName,
		[]*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(product.Data, mimeOrPNG(product.MIMEType)),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   contentSchema(),
			Temperature:      genai.Ptr(defaultContentTemperature),
		})
	if err != nil {
		return fail("generate", err)
	}
	if resp == nil {
		return fail("generate", fmt.Errorf("応答が空です"))
	}

	var content domain.GeneratedContent
	if err := decodeJSON(resp.Text(), &content); err != nil {
		return fail("parse", err)
	}

	tone, err := domain.ParseTone(string(content.EmotionalTone))
	if err != nil {
		return fail("parse", err)
	}
	content.EmotionalTone = tone
	if v := strings.TrimSpace(hints.BrandName); v != "" {
		content.BrandName = v
	}
	if v := strings.TrimSpace(hints.Slogan); v != "" {
		content.ShortSlogan = v
	}
	if err := content.Validate(); err != nil {
		return fail("validate", err)
	}

	slog.Info("コピー生成が完了しました", "brand", content.BrandName, "tone", content.EmotionalTone)
	return content, nil
}

func mimeOrPNG(mime string) string {
	if mime == "" {
		return "image/png"
	}
	return mime
}
