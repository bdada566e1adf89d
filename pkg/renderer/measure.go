package renderer

import (
	"unicode"
	"unicode/utf8"

	"github.com/shouni/go-poster-kit/pkg/director"
)

// Measurer はテキストの描画サイズを求めます。
// 返す幅には字間を含めません。字間は呼び出し側で加算します。
type Measurer interface {
	Measure(text string, size float64, typo director.Typography) (w, h float64)
}

// LineHeight は1行の高さのフォントサイズに対する比率です。
const LineHeight = 1.15

// EstimateMeasurer はフォントを読み込まずに文字幅を概算します。
// ヒットテストと選択リングの位置合わせに十分な精度です。
type EstimateMeasurer struct{}

func (EstimateMeasurer) Measure(text string, size float64, typo director.Typography) (float64, float64) {
	var em float64
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r), unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			em += 1.0
		case unicode.IsSpace(r):
			em += 0.28
		case unicode.IsUpper(r):
			em += 0.64
		default:
			em += 0.54
		}
	}
	switch {
	case typo.Weight >= 800:
		em *= 1.08
	case typo.Weight > 0 && typo.Weight <= 300:
		em *= 0.94
	}
	return em * size, size * LineHeight
}

// TextWidth は字間を含めた幅を返します。
func TextWidth(m Measurer, text string, size float64, typo director.Typography) (float64, float64) {
	w, h := m.Measure(text, size, typo)
	if n := utf8.RuneCountInString(text); n > 1 {
		w += typo.Tracking * size * float64(n-1)
	}
	if w < 0 {
		w = 0
	}
	return w, h
}
