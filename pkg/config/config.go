package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shouni/go-utils/envutil"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// デフォルト値の定義
const (
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultImageModel     = "gemini-2.0-flash-exp"
	DefaultAddr           = ":8080"
	DefaultOutputDir      = "output"
	DefaultLayout         = "1"
	DefaultRateInterval   = 2 * time.Second
	DefaultCanvasWidth    = 900
	DefaultCanvasHeight   = 1200
	DefaultRequestTimeout = 3 * time.Minute
)

// Config は Go Poster Kit の各コンポーネントを動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey string
	GeminiModel  string
	ImageModel   string

	// --- Generation Settings ---
	RateInterval   time.Duration
	RequestTimeout time.Duration

	// --- Editor Settings ---
	Layout     string // 初期レイアウトのプリセットID
	ScaleRange domain.ScaleRange
	ScaleStep  float64

	// --- Canvas & Output ---
	CanvasWidth  int
	CanvasHeight int
	OutputDir    string

	// --- Server ---
	Addr string
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:    DefaultGeminiModel,
		ImageModel:     DefaultImageModel,
		RateInterval:   DefaultRateInterval,
		RequestTimeout: DefaultRequestTimeout,
		Layout:         DefaultLayout,
		ScaleRange:     domain.DefaultScaleRange,
		ScaleStep:      domain.DefaultScaleStep,
		CanvasWidth:    DefaultCanvasWidth,
		CanvasHeight:   DefaultCanvasHeight,
		OutputDir:      DefaultOutputDir,
		Addr:           DefaultAddr,
	}
}

// LoadFromEnv は環境変数で DefaultConfig を上書きした設定を返します。
// 解釈できない値はエラーにします。
func LoadFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = envutil.GetEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.ImageModel = envutil.GetEnv("IMAGE_MODEL", cfg.ImageModel)
	cfg.Addr = envutil.GetEnv("POSTER_ADDR", cfg.Addr)
	cfg.OutputDir = envutil.GetEnv("POSTER_OUTPUT_DIR", cfg.OutputDir)
	cfg.Layout = envutil.GetEnv("POSTER_LAYOUT", cfg.Layout)

	if raw := envutil.GetEnv("POSTER_RATE_INTERVAL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("POSTER_RATE_INTERVAL の解析に失敗しました: %w", err)
		}
		cfg.RateInterval = d
	}
	if raw := envutil.GetEnv("POSTER_SCALE_STEP", ""); raw != "" {
		step, err := strconv.ParseFloat(raw, 64)
		if err != nil || step <= 0 {
			return Config{}, fmt.Errorf("POSTER_SCALE_STEP が不正です: %q", raw)
		}
		cfg.ScaleStep = step
	}
	return cfg, cfg.Validate()
}

// Validate は設定値の整合性を確認します。API キーは serve / compose 実行時にのみ必要なのでここでは見ません。
func (c Config) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("キャンバスサイズが不正です: %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if !c.ScaleRange.Valid() {
		return fmt.Errorf("倍率の範囲が不正です: [%g, %g]", c.ScaleRange.Min, c.ScaleRange.Max)
	}
	if c.RateInterval < 0 {
		return fmt.Errorf("RateInterval は0以上である必要があります")
	}
	return nil
}
