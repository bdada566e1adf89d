package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-poster-kit/internal/config"
)

const appName = "poster"

// opts は全コマンド共通のフラグの値なのだ。
var opts config.Options

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "商品写真からポスターを生成して編集するのだ。",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "コピー生成と商品解析に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "背景合成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", 0, "Gemini 呼び出しの最小間隔なのだ。")

	// --- 編集・出力 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Layout, "layout", "l", "", "初期レイアウトのプリセットIDなのだ（poster layouts で一覧）。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "d", "", "バージョン保存先のディレクトリなのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "Gemini を呼ばずにサンプルのコピーと元の写真で組むのだ。")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出すのだ。")
}

// preRunAppE は、コマンド実行前にログの初期化と必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Gemini APIを利用するコマンドだけ、APIキーの存在チェックをするのだ
	if cmd.Annotations["requiresAPIKey"] == "true" && !opts.Offline && os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.PersistentPreRunE = preRunAppE
	rootCmd.AddCommand(serveCmd, composeCmd, layoutsCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("コマンドの実行に失敗したのだ", "error", err)
		os.Exit(1)
	}
}
