package rasterizer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/renderer"
)

type fontStyle int

const (
	styleRegular fontStyle = iota
	styleBold
	styleItalic
	styleBoldItalic
)

func styleOf(typo director.Typography) fontStyle {
	bold := typo.Weight >= 600
	switch {
	case bold && typo.Italic:
		return styleBoldItalic
	case bold:
		return styleBold
	case typo.Italic:
		return styleItalic
	default:
		return styleRegular
	}
}

// FontSet は Go フォント4書体と、サイズごとの Face キャッシュを持ちます。
// 書体名（Inter 等）はウェイトとイタリックだけを反映して Go フォントで代替します。
// opentype の Face はゴルーチン安全ではないため、利用は mu で直列化します。
type FontSet struct {
	mu    sync.Mutex
	fonts [4]*opentype.Font
	faces *cache.Cache
}

// NewFontSet は埋め込みの Go フォントを読み込みます。
func NewFontSet() (*FontSet, error) {
	fs := &FontSet{faces: cache.New(10*time.Minute, 20*time.Minute)}
	for style, ttf := range map[fontStyle][]byte{
		styleRegular:    goregular.TTF,
		styleBold:       gobold.TTF,
		styleItalic:     goitalic.TTF,
		styleBoldItalic: gobolditalic.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("フォントの読み込みに失敗しました: %w", err)
		}
		fs.fonts[style] = f
	}
	return fs, nil
}

// withFace は書体とサイズに合う Face を mu を保持したまま fn に渡します。
func (fs *FontSet) withFace(typo director.Typography, size float64, fn func(font.Face)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	style := styleOf(typo)
	// ドラッグ中のスケール変更でサイズが細かく揺れるため 0.5px 単位に丸める
	half := math.Max(1, math.Round(size*2)) / 2
	key := fmt.Sprintf("%d:%.1f", style, half)

	if cached, ok := fs.faces.Get(key); ok {
		fn(cached.(font.Face))
		return nil
	}
	face, err := opentype.NewFace(fs.fonts[style], &opentype.FaceOptions{
		Size:    half,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return fmt.Errorf("フォントフェイスの作成に失敗しました (size=%.1f): %w", half, err)
	}
	fs.faces.Set(key, face, cache.DefaultExpiration)
	fn(face)
	return nil
}

// Measure は実際のグリフ幅でテキストを計測します。renderer.Measurer を実装します。
func (fs *FontSet) Measure(text string, size float64, typo director.Typography) (float64, float64) {
	if size <= 0 {
		return 0, 0
	}
	var w float64
	err := fs.withFace(typo, size, func(face font.Face) {
		w = fixedToFloat(font.MeasureString(face, text))
	})
	if err != nil {
		return renderer.EstimateMeasurer{}.Measure(text, size, typo)
	}
	return w, size * renderer.LineHeight
}

var _ renderer.Measurer = (*FontSet)(nil)
