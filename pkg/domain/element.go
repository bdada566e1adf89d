package domain

import "math"

// ElementID はポスター上で個別に配置できる要素の識別子です。
// テキストフィールドのキーと同じキー空間を共有します。
type ElementID string

const (
	ElementBrand          ElementID = "brand"
	ElementShortSlogan    ElementID = "short"
	ElementLongSlogan     ElementID = "long"
	ElementBackgroundWord ElementID = "backgroundWord"
	ElementCTA            ElementID = "cta"
	ElementContact        ElementID = "contact"
	ElementCategory       ElementID = "category"
)

// CanonicalElements は描画時の基準順序です。同じレイヤー内ではこの順に描画されます。
var CanonicalElements = []ElementID{
	ElementBackgroundWord,
	ElementBrand,
	ElementCategory,
	ElementShortSlogan,
	ElementLongSlogan,
	ElementCTA,
	ElementContact,
}

// IsKnown は id が既定の要素かどうかを返します。
func (id ElementID) IsKnown() bool {
	for _, known := range CanonicalElements {
		if id == known {
			return true
		}
	}
	return false
}

// Layer は要素の奥行きレイヤーです。
type Layer string

const (
	LayerFront Layer = "front"
	LayerBack  Layer = "back"
)

// Toggle は front と back を反転したレイヤーを返します。
func (l Layer) Toggle() Layer {
	if l == LayerBack {
		return LayerFront
	}
	return LayerBack
}

// Offset はレイアウトで決まるアンカーからの相対移動量（px）です。
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add は2つのオフセットの和を返します。
func (o Offset) Add(d Offset) Offset {
	return Offset{X: o.X + d.X, Y: o.Y + d.Y}
}

// Sub は o - d を返します。
func (o Offset) Sub(d Offset) Offset {
	return Offset{X: o.X - d.X, Y: o.Y - d.Y}
}

// ScaleRange は要素スケールの許容範囲です。
type ScaleRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 8.0
	DefaultScale    = 1.0
)

// DefaultScaleStep はコントロールの +/- 1回分のスケール変化量です。
const DefaultScaleStep = 0.1

// DefaultScaleRange は採用している標準のスケール範囲 [0.1, 8.0] です。
var DefaultScaleRange = ScaleRange{Min: DefaultMinScale, Max: DefaultMaxScale}

// Clamp は v を範囲内に収めます。NaN や不正な範囲は既定値に寄せます。
func (r ScaleRange) Clamp(v float64) float64 {
	if !r.Valid() {
		r = DefaultScaleRange
	}
	if math.IsNaN(v) {
		return DefaultScale
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Valid は範囲が標準範囲 [0.1, 8.0] の内側に収まっているかを返します。
func (r ScaleRange) Valid() bool {
	return r.Min >= DefaultMinScale && r.Max >= r.Min && r.Max <= DefaultMaxScale
}

// ElementState は1要素の変形状態（オフセット・スケール・レイヤー）です。
type ElementState struct {
	Offset Offset  `json:"offset"`
	Scale  float64 `json:"scale"`
	Layer  Layer   `json:"layer"`
}

// ElementUpdate は SetTransform に渡す部分更新です。nil のフィールドは変更しません。
type ElementUpdate struct {
	Offset *Offset
	Scale  *float64
	Layer  *Layer
}

// Apply は更新を適用した新しい ElementState を返します。スケールは標準範囲に収めます。
func (u ElementUpdate) Apply(s ElementState) ElementState {
	if u.Offset != nil {
		s.Offset = *u.Offset
	}
	if u.Scale != nil {
		s.Scale = DefaultScaleRange.Clamp(*u.Scale)
	}
	if u.Layer != nil {
		s.Layer = *u.Layer
	}
	return s
}

// DefaultElementState は要素ごとの既定状態です。背景ワードのみ back に置きます。
func DefaultElementState(id ElementID) ElementState {
	layer := LayerFront
	if id == ElementBackgroundWord {
		layer = LayerBack
	}
	return ElementState{Scale: DefaultScale, Layer: layer}
}

// Defaults は要素の既定状態を提供します。レイアウト解決結果がこれを実装します。
type Defaults interface {
	DefaultState(id ElementID) ElementState
}
