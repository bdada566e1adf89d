package renderer

import "github.com/shouni/go-poster-kit/pkg/domain"

// HitKind はヒットテストの結果種別です。
type HitKind string

const (
	HitNone    HitKind = "none"
	HitControl HitKind = "control"
	HitElement HitKind = "element"
)

// Hit はキャンバス上の1点が何に当たったかを表します。
type Hit struct {
	Kind    HitKind          `json:"kind"`
	Control ControlKind      `json:"control,omitempty"`
	Element domain.ElementID `json:"element,omitempty"`
}

// HitTest は点 (x, y) の直下にあるものを返します。
// コントロールサーフェスが最優先で、次に描画順の逆（手前から）で要素を調べます。
func (s Scene) HitTest(x, y float64) Hit {
	if s.Overlay != nil {
		for _, c := range s.Overlay.Controls {
			if c.Bounds.Contains(x, y) {
				return Hit{Kind: HitControl, Control: c.Kind, Element: s.Overlay.Selected}
			}
		}
	}
	for i := len(s.Elements) - 1; i >= 0; i-- {
		if s.Elements[i].Bounds.Contains(x, y) {
			return Hit{Kind: HitElement, Element: s.Elements[i].ID}
		}
	}
	return Hit{Kind: HitNone}
}
