package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/editor"
	"github.com/shouni/go-poster-kit/pkg/generator"
	"github.com/shouni/go-poster-kit/pkg/prompts"
)

const rateBurst = 2

// ManagerArgs は Manager の構築に使う依存です。
// Content と Synthesizer を省略した場合は Model (それも無ければ API キーから作るクライアント) で組み立てます。
type ManagerArgs struct {
	Config      config.Config
	Session     *editor.Session
	Model       generator.Model
	Content     generator.ContentGenerator
	Synthesizer generator.ImageSynthesizer
}

// Manager は生成の2段階呼び出しと、セッションの生成中状態を管理します。
type Manager struct {
	cfg     config.Config
	session *editor.Session
	content generator.ContentGenerator
	synth   generator.ImageSynthesizer
}

// New は設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.Session == nil {
		return nil, fmt.Errorf("session は必須です")
	}

	content, synth := args.Content, args.Synthesizer
	if content == nil || synth == nil {
		model := args.Model
		if model == nil {
			m, err := initializeAIClient(ctx, args.Config.GeminiAPIKey)
			if err != nil {
				return nil, err
			}
			model = m
		}

		text, err := prompts.NewTextPromptBuilder()
		if err != nil {
			return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
		}
		limiter := newLimiter(args.Config)

		if content == nil {
			if content, err = generator.NewGeminiContentGenerator(model, args.Config.GeminiModel, text, limiter); err != nil {
				return nil, fmt.Errorf("コピー生成エンジンの初期化に失敗しました: %w", err)
			}
		}
		if synth == nil {
			synth, err = generator.NewGeminiImageSynthesizer(model, text, prompts.NewImagePromptBuilder(text), generator.SynthesizerConfig{
				AnalysisModel: args.Config.GeminiModel,
				ImageModel:    args.Config.ImageModel,
				Limiter:       limiter,
			})
			if err != nil {
				return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
			}
		}
	}

	return &Manager{
		cfg:     args.Config,
		session: args.Session,
		content: content,
		synth:   generator.NewFallbackSynthesizer(synth),
	}, nil
}

// initializeAIClient は genai クライアントを初期化し、モデル API を返します。
func initializeAIClient(ctx context.Context, apiKey string) (generator.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY は必須です")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client.Models, nil
}

// newLimiter はテキストと画像の呼び出しで共有するリミッターを返します。間隔が0なら制限しません。
func newLimiter(cfg config.Config) *rate.Limiter {
	if cfg.RateInterval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(cfg.RateInterval), rateBurst)
}

// Generate は商品画像からコピーと背景を生成し、セッションのドキュメントを丸ごと置き換えます。
// コピー生成に失敗した場合は生成前のドキュメントが残り、*domain.GenerationError を返します。
// 背景の合成に失敗した場合は元の商品画像を背景にして続行します。
func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (domain.PosterDocument, error) {
	ticket, err := m.session.BeginGeneration()
	if err != nil {
		return domain.PosterDocument{}, err
	}
	done := false
	defer func() {
		if !done {
			m.session.FailGeneration()
		}
	}()

	parent := ctx
	if m.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.RequestTimeout)
		defer cancel()
	}

	slog.Info("ポスター生成を開始します", "preset", ticket.Preset.ID, "brand_hint", req.Hints.BrandName)

	content, err := m.content.Generate(ctx, ticket.Product, req.Hints)
	if err != nil {
		slog.Error("コピー生成に失敗しました", "error", err)
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) {
			err = &domain.GenerationError{Op: "generate", Err: err}
		}
		return domain.PosterDocument{}, err
	}

	background, err := m.synth.Synthesize(ctx, generator.SynthesisRequest{
		Product:   ticket.Product,
		Tone:      content.EmotionalTone,
		Directive: ticket.Preset.Directive,
		Context:   req.Hints.Context,
	})
	if err != nil {
		// 呼び出し元の中断だけを失敗とし、自前のタイムアウトは元の画像で続行する
		if parent.Err() != nil {
			return domain.PosterDocument{}, fmt.Errorf("背景の準備が中断されました: %w", err)
		}
		slog.Warn("背景の合成が時間内に終わらなかったため元の画像を使います", "error", err)
		background = ticket.Product
		background.Origin = domain.OriginOriginal
	}

	doc := domain.NewDocument(uuid.NewString(), content, background, req.Hints.Contact)
	m.session.CompleteGeneration(doc)
	done = true

	slog.Info("ポスター生成が完了しました", "document", doc.ID(), "tone", doc.Tone(), "background", background.Origin)
	return m.session.Document(), nil
}
