package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/prompts"
)

const (
	defaultCacheExpiration = 30 * time.Minute
	defaultCacheCleanup    = time.Hour
)

func analysisSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"product_type":     str,
			"exact_color":      str,
			"brand_visible":    str,
			"design_details":   str,
			"material_finish":  str,
			"notable_features": str,
		},
		Required: []string{"product_type", "exact_color", "design_details"},
	}
}

// SynthesizerConfig は GeminiImageSynthesizer の設定です。
type SynthesizerConfig struct {
	AnalysisModel string
	ImageModel    string
	Limiter       *rate.Limiter
	// CacheExpiration が 0 の場合は30分です。
	CacheExpiration time.Duration
}

// GeminiImageSynthesizer は商品解析と画像生成の2段階で背景画像を合成します。
// 同じ入力の結果はキャッシュし、同時に来た同じ入力の呼び出しは1回にまとめます。
type GeminiImageSynthesizer struct {
	model   Model
	cfg     SynthesizerConfig
	text    prompts.PromptBuilder
	image   prompts.ImagePrompt
	results *cache.Cache
	group   singleflight.Group
}

// NewGeminiImageSynthesizer は GeminiImageSynthesizer を作成します。
func NewGeminiImageSynthesizer(model Model, text prompts.PromptBuilder, image prompts.ImagePrompt, cfg SynthesizerConfig) (*GeminiImageSynthesizer, error) {
	if model == nil {
		return nil, fmt.Errorf("model は必須です")
	}
	if text == nil || image == nil {
		return nil, fmt.Errorf("promptBuilder は必須です")
	}
	if cfg.AnalysisModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("analysisModel と imageModel は必須です")
	}
	if cfg.CacheExpiration <= 0 {
		cfg.CacheExpiration = defaultCacheExpiration
	}
	return &GeminiImageSynthesizer{
		model:   model,
		cfg:     cfg,
		text:    text,
		image:   image,
		results: cache.New(cfg.CacheExpiration, defaultCacheCleanup),
	}, nil
}

// Synthesize は合成画像を返します。画像が1枚も返らない場合も失敗として扱います。
func (s *GeminiImageSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (domain.ImageRef, error) {
	if req.Product.IsZero() {
		return domain.ImageRef{}, &domain.SynthesisError{Op: "input", Err: domain.ErrNoProductImage}
	}

	key := cacheKey(req)
	if cached, ok := s.results.Get(key); ok {
		slog.Info("合成画像のキャッシュを利用します", "key", key[:12])
		return cached.(domain.ImageRef), nil
	}

	val, err, shared := s.group.Do(key, func() (interface{}, error) {
		// 待機中に他のゴルーチンが完了させている可能性があるため再確認
		if cached, ok := s.results.Get(key); ok {
			return cached.(domain.ImageRef), nil
		}

		resp, err := s.synthesize(ctx, req)
		if err != nil {
			return nil, err
		}
		ref := domain.ImageRef{Data: resp.Data, MIMEType: resp.MimeType, Origin: domain.OriginSynthesized}
		s.results.Set(key, ref, cache.DefaultExpiration)
		return ref, nil
	})
	if err != nil {
		return domain.ImageRef{}, err
	}
	if shared {
		slog.Debug("同一入力の合成をまとめました", "key", key[:12])
	}

	ref, ok := val.(domain.ImageRef)
	if !ok {
		return domain.ImageRef{}, &domain.SynthesisError{Op: "cache", Err: fmt.Errorf("unexpected return type from singleflight: %T", val)}
	}
	return ref, nil
}

func (s *GeminiImageSynthesizer) synthesize(ctx context.Context, req SynthesisRequest) (*imagedom.ImageResponse, error) {
	details := s.analyze(ctx, req.Product)

	imgReq, err := s.image.BuildSynthesis(prompts.TemplateData{
		Tone:      string(req.Tone),
		Directive: req.Directive,
		Context:   req.Context,
		Product:   details,
	})
	if err != nil {
		return nil, &domain.SynthesisError{Op: "prompt", Err: err}
	}

	resp, err := s.generateImage(ctx, req.Product, imgReq)
	if err != nil {
		return nil, err
	}
	slog.Info("背景画像を合成しました", "model", s.cfg.ImageModel, "mime", resp.MimeType, "bytes", len(resp.Data))
	return resp, nil
}

// analyze は商品の見た目を解析します。失敗しても合成は続け、汎用の記述を返します。
func (s *GeminiImageSynthesizer) analyze(ctx context.Context, product domain.ImageRef) prompts.ProductDetails {
	details := prompts.GenericProductDetails

	prompt, err := s.text.Build(prompts.ModeAnalysis, prompts.TemplateData{})
	if err == nil {
		err = s.wait(ctx)
	}
	var resp *genai.GenerateContentResponse
	if err == nil {
		resp, err = s.model.GenerateContent(ctx, s.cfg.AnalysisModel,
			[]*genai.Content{genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromBytes(product.Data, mimeOrPNG(product.MIMEType)),
				genai.NewPartFromText(prompt),
			}, genai.RoleUser)},
			&genai.GenerateContentConfig{
				ResponseMIMEType: "application/json",
				ResponseSchema:   analysisSchema(),
			})
	}
	if err == nil && resp == nil {
		err = fmt.Errorf("応答が空です")
	}
	if err == nil {
		var parsed prompts.ProductDetails
		if err = decodeJSON(resp.Text(), &parsed); err == nil {
			mergeDetails(&details, parsed)
		}
	}
	if err != nil {
		slog.Warn("商品解析に失敗したため汎用の記述を使います", "error", err)
		return prompts.GenericProductDetails
	}
	slog.Debug("商品解析が完了しました", "type", details.ProductType, "color", details.ExactColor)
	return details
}

func mergeDetails(dst *prompts.ProductDetails, src prompts.ProductDetails) {
	set := func(d *string, v string) {
		if v != "" {
			*d = v
		}
	}
	set(&dst.ProductType, src.ProductType)
	set(&dst.ExactColor, src.ExactColor)
	set(&dst.BrandVisible, src.BrandVisible)
	set(&dst.DesignDetails, src.DesignDetails)
	set(&dst.MaterialFinish, src.MaterialFinish)
	set(&dst.NotableFeatures, src.NotableFeatures)
}

// generateImage は画像モダリティで生成し、最初のインライン画像を返します。
func (s *GeminiImageSynthesizer) generateImage(ctx context.Context, product domain.ImageRef, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	fail := func(err error) (*imagedom.ImageResponse, error) {
		return nil, &domain.SynthesisError{Op: "generate", Err: err}
	}
	if err := s.wait(ctx); err != nil {
		return fail(err)
	}

	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt += "\n\nAVOID: " + req.NegativePrompt
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.AspectRatio != "" {
		config.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}

	resp, err := s.model.GenerateContent(ctx, s.cfg.ImageModel,
		[]*genai.Content{genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(product.Data, mimeOrPNG(product.MIMEType)),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser)},
		config)
	if err != nil {
		return fail(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fail(fmt.Errorf("候補が返されませんでした"))
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return &imagedom.ImageResponse{
			Data:     part.InlineData.Data,
			MimeType: mimeOrPNG(part.InlineData.MIMEType),
		}, nil
	}
	return fail(fmt.Errorf("応答に画像が含まれていません"))
}

func (s *GeminiImageSynthesizer) wait(ctx context.Context) error {
	if s.cfg.Limiter == nil {
		return nil
	}
	if err := s.cfg.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)
	}
	return nil
}

// cacheKey は商品画像と演出の組み合わせから決まるキーを返します。
func cacheKey(req SynthesisRequest) string {
	h := sha256.New()
	h.Write(req.Product.Data)
	for _, part := range []string{string(req.Tone), req.Directive, req.Context} {
		h.Write([]byte{0})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
