package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-poster-kit/internal/builder"
	"github.com/shouni/go-poster-kit/internal/config"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/workflow"
)

var composeOpts config.ComposeOptions

// composeCmd は、商品写真1枚からポスターを生成して PNG に書き出すのだ。
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "商品写真からポスターを1枚生成して書き出すのだ。",
	Long: `商品写真からコピーと背景を生成し、選んだレイアウトで PNG に書き出すのだ。
背景の合成に失敗した場合は元の写真を背景に使うのだよ。`,
	Annotations: map[string]string{"requiresAPIKey": "true"},
	RunE:        composeCommand,
}

func init() {
	f := composeCmd.Flags()
	f.StringVarP(&composeOpts.ImagePath, "image", "i", "", "商品写真のパスなのだ（PNG / JPEG / WebP）。")
	f.StringVarP(&composeOpts.BrandName, "brand", "b", "", "ブランド名なのだ。省略すると写真から推測するのだ。")
	f.StringVarP(&composeOpts.Slogan, "slogan", "s", "", "使いたいスローガンなのだ。")
	f.StringVarP(&composeOpts.Context, "context", "c", "", "キャンペーンなどの補足情報なのだ。")
	f.StringVar(&composeOpts.Phone, "phone", "", "連絡先の電話番号なのだ。")
	f.StringVar(&composeOpts.Email, "email", "", "連絡先のメールアドレスなのだ。")
	f.StringVar(&composeOpts.Website, "website", "", "連絡先のWebサイトなのだ。")
	f.StringVarP(&composeOpts.OutputFile, "out", "o", config.DefaultExportFile, "書き出し先なのだ。")
	f.BoolVar(&composeOpts.Version, "save-version", false, "--out の代わりに --output-dir へ連番で保存するのだ。")
	_ = composeCmd.MarkFlagRequired("image")
}

func composeCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(composeOpts.ImagePath)
	if err != nil {
		return fmt.Errorf("商品写真を読み込めなかったのだ: %w", err)
	}

	cfg, err := config.LoadConfig(opts)
	if err != nil {
		return err
	}
	app, err := builder.NewAppContext(ctx, cfg, opts.Offline)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	if err := app.Session.SetProduct(domain.ImageRef{Data: data, MIMEType: http.DetectContentType(data)}); err != nil {
		return err
	}

	slog.Info("ポスター生成を開始するのだ！", "image", composeOpts.ImagePath, "layout", app.Session.Preset().ID,
		"text_model", cfg.GeminiModel, "image_model", cfg.ImageModel)

	doc, err := app.Workflow.Generate(ctx, workflow.GenerateRequest{Hints: composeHints()})
	if err != nil {
		return err
	}

	scene, err := app.Session.CaptureScene()
	if err != nil {
		return err
	}
	var res publisher.PublishResult
	if composeOpts.Version {
		res, err = app.Publisher.SaveVersion(ctx, scene, cfg.OutputDir)
	} else {
		res, err = app.Publisher.Export(ctx, scene, composeOpts.OutputFile)
	}
	if err != nil {
		return err
	}

	slog.Info("ポスターが完成したのだ！", "path", res.Path, "brand", doc.Field(domain.ElementBrand),
		"tone", doc.Tone(), "background", doc.Background().Origin)
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}

func composeHints() domain.Hints {
	hints := domain.Hints{
		BrandName: composeOpts.BrandName,
		Slogan:    composeOpts.Slogan,
		Context:   composeOpts.Context,
	}
	if composeOpts.Phone != "" || composeOpts.Email != "" || composeOpts.Website != "" {
		hints.Contact = &domain.CompanyInfo{
			Phone:   composeOpts.Phone,
			Email:   composeOpts.Email,
			Website: composeOpts.Website,
		}
	}
	return hints
}
