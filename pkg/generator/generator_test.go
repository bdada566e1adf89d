package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/prompts"
)

type modelCall struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

// fakeModel は genai の Models.GenerateContent を置き換えるテスト用のモデルです。
type fakeModel struct {
	mu      sync.Mutex
	calls   []modelCall
	respond func(model string) (*genai.GenerateContentResponse, error)
}

func (f *fakeModel) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var prompt strings.Builder
	for _, c := range contents {
		for _, p := range c.Parts {
			prompt.WriteString(p.Text)
		}
	}
	f.mu.Lock()
	f.calls = append(f.calls, modelCall{model: model, prompt: prompt.String(), config: config})
	f.mu.Unlock()
	return f.respond(model)
}

func (f *fakeModel) callsTo(model string) []modelCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelCall
	for _, c := range f.calls {
		if c.model == model {
			out = append(out, c)
		}
	}
	return out
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{{Text: s}}},
	}}}
}

func imageResponse(data []byte, mime string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "Here is your image."},
			{InlineData: &genai.Blob{Data: data, MIMEType: mime}},
		}},
	}}}
}

var product = domain.ImageRef{Data: []byte("original-png"), MIMEType: "image/png", Origin: domain.OriginOriginal}

func newBuilders(t *testing.T) (*prompts.TextPromptBuilder, *prompts.ImagePromptBuilder) {
	t.Helper()
	text, err := prompts.NewTextPromptBuilder()
	require.NoError(t, err)
	return text, prompts.NewImagePromptBuilder(text)
}

const contentJSON = `{"brand_name":"Voltra","short_slogan":"Pure Power","long_slogan":"Energy that lasts.",` +
	`"cta_text":"SHOP NOW","background_word":"POWER","emotional_tone":"Bold","product_category":"drink"}`

func TestGeminiContentGenerator_Generate(t *testing.T) {
	text, _ := newBuilders(t)

	t.Run("コードフェンス付きの応答も解析できる", func(t *testing.T) {
		model := &fakeModel{respond: func(string) (*genai.GenerateContentResponse, error) {
			return textResponse("```json\n" + contentJSON + "\n```"), nil
		}}
		g, err := NewGeminiContentGenerator(model, "text-model", text, nil)
		require.NoError(t, err)

		got, err := g.Generate(context.Background(), product, domain.Hints{BrandName: "Volt X"})
		require.NoError(t, err)
		assert.Equal(t, "Volt X", got.BrandName, "ユーザー指定のブランド名を優先")
		assert.Equal(t, "Pure Power", got.ShortSlogan)
		assert.Equal(t, domain.ToneBold, got.EmotionalTone)
		assert.Equal(t, "drink", got.ProductCategory)

		calls := model.callsTo("text-model")
		require.Len(t, calls, 1)
		assert.Equal(t, "application/json", calls[0].config.ResponseMIMEType)
		assert.Len(t, calls[0].config.ResponseSchema.Required, 7)
		assert.Contains(t, calls[0].prompt, "Brand / product name: Volt X")
	})

	failures := map[string]func(string) (*genai.GenerateContentResponse, error){
		"通信エラー":    func(string) (*genai.GenerateContentResponse, error) { return nil, errors.New("503") },
		"JSONではない": func(string) (*genai.GenerateContentResponse, error) { return textResponse("sorry, I cannot"), nil },
		"不正なトーン": func(string) (*genai.GenerateContentResponse, error) {
			return textResponse(strings.Replace(contentJSON, "Bold", "sad", 1)), nil
		},
		"必須項目が空": func(string) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"emotional_tone":"bold"}`), nil
		},
	}
	for name, respond := range failures {
		t.Run(name, func(t *testing.T) {
			g, err := NewGeminiContentGenerator(&fakeModel{respond: respond}, "text-model", text, nil)
			require.NoError(t, err)
			got, err := g.Generate(context.Background(), product, domain.Hints{})
			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, domain.GeneratedContent{}, got, "部分的な結果は返さない")
		})
	}

	t.Run("商品画像なし", func(t *testing.T) {
		g, err := NewGeminiContentGenerator(&fakeModel{}, "text-model", text, nil)
		require.NoError(t, err)
		_, err = g.Generate(context.Background(), domain.ImageRef{}, domain.Hints{})
		assert.ErrorIs(t, err, domain.ErrNoProductImage)
	})

	t.Run("必須の依存", func(t *testing.T) {
		_, err := NewGeminiContentGenerator(nil, "m", text, nil)
		assert.Error(t, err)
		_, err = NewGeminiContentGenerator(&fakeModel{}, "", text, nil)
		assert.Error(t, err)
		_, err = NewGeminiContentGenerator(&fakeModel{}, "m", nil, nil)
		assert.Error(t, err)
	})
}

func newSynthesizer(t *testing.T, model Model) *GeminiImageSynthesizer {
	t.Helper()
	text, image := newBuilders(t)
	s, err := NewGeminiImageSynthesizer(model, text, image, SynthesizerConfig{AnalysisModel: "text-model", ImageModel: "image-model"})
	require.NoError(t, err)
	return s
}

func TestGeminiImageSynthesizer_Synthesize(t *testing.T) {
	req := SynthesisRequest{Product: product, Tone: domain.ToneBold, Directive: "A glowing neon portal."}

	t.Run("解析結果を使って合成し、結果をキャッシュする", func(t *testing.T) {
		model := &fakeModel{respond: func(m string) (*genai.GenerateContentResponse, error) {
			if m == "text-model" {
				return textResponse(`{"product_type":"can","exact_color":"electric blue","design_details":"ridged lid"}`), nil
			}
			return imageResponse([]byte("synth"), "image/jpeg"), nil
		}}
		s := newSynthesizer(t, model)

		img, err := s.Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []byte("synth"), img.Data)
		assert.Equal(t, "image/jpeg", img.MIMEType)
		assert.Equal(t, domain.OriginSynthesized, img.Origin)

		imageCalls := model.callsTo("image-model")
		require.Len(t, imageCalls, 1)
		assert.Contains(t, imageCalls[0].prompt, "Color: electric blue.")
		assert.Contains(t, imageCalls[0].prompt, "A glowing neon portal.")
		assert.Equal(t, []string{"TEXT", "IMAGE"}, imageCalls[0].config.ResponseModalities)
		assert.Equal(t, prompts.PosterAspectRatio, imageCalls[0].config.ImageConfig.AspectRatio)

		_, err = s.Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.Len(t, model.callsTo("image-model"), 1, "2回目はキャッシュから返す")
		assert.Len(t, model.callsTo("text-model"), 1)
	})

	t.Run("解析に失敗しても汎用の記述で合成を続ける", func(t *testing.T) {
		model := &fakeModel{respond: func(m string) (*genai.GenerateContentResponse, error) {
			if m == "text-model" {
				return nil, errors.New("quota")
			}
			return imageResponse([]byte("synth"), "image/png"), nil
		}}
		s := newSynthesizer(t, model)

		_, err := s.Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, model.callsTo("image-model")[0].prompt, "Color: original color.")
	})

	t.Run("画像が返らない場合は SynthesisError", func(t *testing.T) {
		model := &fakeModel{respond: func(m string) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"product_type":"can","exact_color":"red","design_details":"-"}`), nil
		}}
		s := newSynthesizer(t, model)

		_, err := s.Synthesize(context.Background(), req)
		var synErr *domain.SynthesisError
		require.ErrorAs(t, err, &synErr)
		assert.Equal(t, "generate", synErr.Op)
	})

	t.Run("同時に来た同じ入力は1回にまとめる", func(t *testing.T) {
		release := make(chan struct{})
		model := &fakeModel{respond: func(m string) (*genai.GenerateContentResponse, error) {
			if m == "text-model" {
				<-release
				return textResponse(`{"product_type":"can","exact_color":"red","design_details":"-"}`), nil
			}
			return imageResponse([]byte("synth"), "image/png"), nil
		}}
		s := newSynthesizer(t, model)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Synthesize(context.Background(), req)
				assert.NoError(t, err)
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Len(t, model.callsTo("image-model"), 1)
	})
}

type stubSynthesizer struct {
	img domain.ImageRef
	err error
}

func (s stubSynthesizer) Synthesize(context.Context, SynthesisRequest) (domain.ImageRef, error) {
	return s.img, s.err
}

func TestFallbackSynthesizer(t *testing.T) {
	req := SynthesisRequest{Product: product, Tone: domain.TonePremium}

	t.Run("失敗時は元の画像をエラーなしで返す", func(t *testing.T) {
		f := NewFallbackSynthesizer(stubSynthesizer{err: &domain.SynthesisError{Op: "generate", Err: errors.New("boom")}})
		img, err := f.Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, product.Data, img.Data)
		assert.Equal(t, domain.OriginOriginal, img.Origin)
	})

	t.Run("空の画像も元の画像に置き換える", func(t *testing.T) {
		img, err := NewFallbackSynthesizer(stubSynthesizer{}).Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, product.Data, img.Data)
	})

	t.Run("成功時はそのまま返す", func(t *testing.T) {
		synth := domain.ImageRef{Data: []byte("new"), MIMEType: "image/png", Origin: domain.OriginSynthesized}
		img, err := NewFallbackSynthesizer(stubSynthesizer{img: synth}).Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, synth, img)
	})

	t.Run("キャンセルは伝える", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFallbackSynthesizer(stubSynthesizer{err: context.Canceled}).Synthesize(ctx, req)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTruncateString(t *testing.T) {
	t.Run("短い文字列はそのまま", func(t *testing.T) {
		assert.Equal(t, "短い応答", truncateString("短い応答", 10))
	})

	t.Run("マルチバイト文字の途中で切らない", func(t *testing.T) {
		got := truncateString(strings.Repeat("応答", 150), 201)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, 201, utf8.RuneCountInString(strings.TrimSuffix(got, "...")))
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("解析エラーの抜粋も正しい UTF-8", func(t *testing.T) {
		var v map[string]any
		err := decodeJSON(strings.Repeat("あ", 300), &v)
		require.Error(t, err)
		assert.True(t, utf8.ValidString(err.Error()))
	})
}
