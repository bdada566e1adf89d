package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-poster-kit/examples"
	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/editor"
	"github.com/shouni/go-poster-kit/pkg/generator"
	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/rasterizer"
	"github.com/shouni/go-poster-kit/pkg/renderer"
	"github.com/shouni/go-poster-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config    config.Config              // Configは、環境変数とフラグから組み立てた設定です。
	Layouts   *director.LayoutManager    // Layoutsは、プリセットとアーキタイプのカタログです。
	Session   *editor.Session            // Sessionは、1つの編集セッションです。
	Workflow  *workflow.Manager          // Workflowは、コピー生成と背景合成を担います。
	Publisher *publisher.PosterPublisher // Publisherは、PNG の書き出しを担います。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
// offline が false で API キーが無い場合は Workflow の初期化でエラーになります。
// offline の場合は同梱のサンプルコピーを使い、背景は商品写真のままにします。
func NewAppContext(ctx context.Context, cfg config.Config, offline bool) (*AppContext, error) {
	layouts, err := director.NewLayoutManager()
	if err != nil {
		return nil, fmt.Errorf("レイアウトカタログの読み込みに失敗しました: %w", err)
	}

	fonts, err := rasterizer.NewFontSet()
	if err != nil {
		return nil, fmt.Errorf("フォントの読み込みに失敗しました: %w", err)
	}
	raster, err := rasterizer.New(fonts)
	if err != nil {
		return nil, err
	}

	// レイアウト計算と書き出しで同じフォント計測を使う
	r := renderer.New(cfg.CanvasWidth, cfg.CanvasHeight, fonts)
	session, err := editor.NewSession(layouts, r, editor.Options{
		ScaleRange: cfg.ScaleRange,
		ScaleStep:  cfg.ScaleStep,
		PresetID:   cfg.Layout,
	})
	if err != nil {
		return nil, fmt.Errorf("編集セッションの初期化に失敗しました: %w", err)
	}

	args := workflow.ManagerArgs{Config: cfg, Session: session}
	if offline {
		args.Content = examples.SampleGenerator{}
		args.Synthesizer = generator.NewFallbackSynthesizer(nil)
	}
	wf, err := workflow.New(ctx, args)
	if err != nil {
		return nil, err
	}

	pub, err := publisher.NewPosterPublisher(publisher.LocalWriter{}, raster)
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:    cfg,
		Layouts:   layouts,
		Session:   session,
		Workflow:  wf,
		Publisher: pub,
	}, nil
}
