package config

import (
	"time"

	"github.com/shouni/go-poster-kit/pkg/config"
)

// DefaultExportFile は compose コマンドのデフォルト保存先です。
const DefaultExportFile = "output/poster.png"

// Options は CLI フラグから渡される実行時のパラメータです。空の値は環境変数の設定を上書きしません。
type Options struct {
	// AI挙動設定
	AIModel      string        // --model: テキスト生成用のGeminiモデル
	ImageModel   string        // --image-model: 画像生成用のGeminiモデル
	RateInterval time.Duration // --rate-interval

	// 編集・出力
	Layout    string // --layout
	OutputDir string // --output-dir

	// serve
	Addr string // --addr

	Offline bool // --offline: サンプルのコピーを使い、Gemini を呼ばない
	Verbose bool // --verbose
}

// ComposeOptions は compose コマンド固有のパラメータです。
type ComposeOptions struct {
	ImagePath  string
	BrandName  string
	Slogan     string
	Context    string
	Phone      string
	Email      string
	Website    string
	OutputFile string
	// Version が true の場合は OutputFile ではなく OutputDir に連番で保存します。
	Version bool
}

// LoadConfig は環境変数から設定を読み込み、フラグで指定された値で上書きします。
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, err
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.GeminiModel, opts.AIModel)
	override(&cfg.ImageModel, opts.ImageModel)
	override(&cfg.Layout, opts.Layout)
	override(&cfg.OutputDir, opts.OutputDir)
	override(&cfg.Addr, opts.Addr)
	if opts.RateInterval > 0 {
		cfg.RateInterval = opts.RateInterval
	}
	return cfg, cfg.Validate()
}
