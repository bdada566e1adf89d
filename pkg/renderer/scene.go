package renderer

import (
	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/domain"
)

// Rect はキャンバス左上を原点とした矩形です。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains は点 (x, y) が矩形内にあるかを返します。境界を含みます。
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Inset は各辺を d だけ外側に広げた矩形を返します。負の d で縮みます。
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// Background は全面に敷く背景画像です。
type Background struct {
	Image   domain.ImageRef `json:"image"`
	Opacity float64         `json:"opacity"`
}

// GradientStop はスクリムのグラデーション1点分です。Pos は上端 0、下端 1。
type GradientStop struct {
	Pos   float64 `json:"pos"`
	Color string  `json:"color"`
}

// Scrim は文字の可読性のために背景の上に重ねる固定グラデーションです。
type Scrim struct {
	Stops []GradientStop `json:"stops"`
}

// Watermark は右上に置く固定のマークです。書き出しにも含まれます。
type Watermark struct {
	Text     string         `json:"text"`
	Position director.Point `json:"position"`
	FontSize float64        `json:"fontSize"`
	Color    string         `json:"color"`
}

// Depth はレイヤーから決まる奥行き表現です。
type Depth struct {
	Opacity float64          `json:"opacity"`
	Blur    float64          `json:"blur"`
	Shadow  *director.Shadow `json:"shadow,omitempty"`
}

// ElementNode は描画される1要素です。座標はすべて解決済みの絶対値です。
type ElementNode struct {
	ID          domain.ElementID    `json:"id"`
	Text        string              `json:"text"`
	Placeholder bool                `json:"placeholder,omitempty"`
	Position    director.Point      `json:"position"`
	Align       director.Align      `json:"align"`
	FontSize    float64             `json:"fontSize"`
	State       domain.ElementState `json:"state"`
	Depth       Depth               `json:"depth"`
	Typography  director.Typography `json:"typography"`
	Color       string              `json:"color"`
	Background  string              `json:"background,omitempty"`
	Bounds      Rect                `json:"bounds"`
	Selected    bool                `json:"selected,omitempty"`
}

// ControlKind はコントロールサーフェスのボタン種別です。
type ControlKind string

const (
	ControlScaleDown ControlKind = "scale-down"
	ControlScaleUp   ControlKind = "scale-up"
	ControlCenter    ControlKind = "center"
	ControlLayer     ControlKind = "layer"
)

// ControlKinds はコントロールサーフェス上の並び順です。
var ControlKinds = []ControlKind{ControlScaleDown, ControlScaleUp, ControlCenter, ControlLayer}

// Control はコントロールサーフェス上の1ボタンです。
type Control struct {
	Kind   ControlKind `json:"kind"`
	Label  string      `json:"label"`
	Bounds Rect        `json:"bounds"`
}

// Overlay は選択中の要素を示す編集用の装飾です。書き出し対象には含みません。
type Overlay struct {
	Selected domain.ElementID `json:"selected"`
	Ring     Rect             `json:"ring"`
	Controls []Control        `json:"controls"`
}

// Scene は1回の描画結果となるビジュアルツリーです。
// Elements は描画順（back → front）に並びます。
type Scene struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Background Background    `json:"background"`
	Scrim      Scrim         `json:"scrim"`
	Watermark  Watermark     `json:"watermark"`
	Elements   []ElementNode `json:"elements"`
	Overlay    *Overlay      `json:"overlay,omitempty"`
}

// Element は id のノードを返します。
func (s Scene) Element(id domain.ElementID) (ElementNode, bool) {
	for _, n := range s.Elements {
		if n.ID == id {
			return n, true
		}
	}
	return ElementNode{}, false
}

// CaptureTarget は書き出し用のシーンを返します。
// 編集用のオーバーレイと空のプレースホルダーを取り除き、選択状態も外します。
func (s Scene) CaptureTarget() Scene {
	out := s
	out.Overlay = nil
	out.Elements = make([]ElementNode, 0, len(s.Elements))
	for _, n := range s.Elements {
		if n.Placeholder {
			continue
		}
		n.Selected = false
		out.Elements = append(out.Elements, n)
	}
	return out
}
