package renderer

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/domain"
)

const (
	// WatermarkText は右上に常に描かれるマークです。
	WatermarkText = "FLOW.SYSTEM"

	backgroundOpacity = 0.9
	ringPadding       = 8.0
	controlSize       = 36.0
	controlGap        = 8.0
	controlMargin     = 12.0
	canvasMargin      = 8.0
)

// scrimStops は下から上へ 黒70% → 20% → 30% のグラデーションです。
var scrimStops = []GradientStop{
	{Pos: 0, Color: "#0000004D"},
	{Pos: 0.5, Color: "#00000033"},
	{Pos: 1, Color: "#000000B3"},
}

var frontShadow = director.Shadow{OffsetY: 6, Blur: 14, Color: "#00000080"}

// DepthOf はレイヤーに対応する奥行き表現を返します。レイヤー以外には依存しません。
func DepthOf(layer domain.Layer) Depth {
	if layer == domain.LayerBack {
		return Depth{Opacity: 0.4, Blur: 3}
	}
	shadow := frontShadow
	return Depth{Opacity: 1, Shadow: &shadow}
}

// View は描画時の編集状態です。
type View struct {
	EditMode bool
	Selected domain.ElementID
}

// Renderer はドキュメントと配置からシーンを組み立てます。状態は持ちません。
type Renderer struct {
	width    float64
	height   float64
	measurer Measurer
}

// New は指定サイズのキャンバス用 Renderer を作成します。m が nil の場合は概算で計測します。
func New(width, height int, m Measurer) *Renderer {
	if m == nil {
		m = EstimateMeasurer{}
	}
	return &Renderer{width: float64(width), height: float64(height), measurer: m}
}

// Size はキャンバスのサイズを返します。
func (r *Renderer) Size() (float64, float64) { return r.width, r.height }

// Render はシーンを組み立てます。
// テキストが空の要素は編集モードのときだけプレースホルダーとして含めます。
func (r *Renderer) Render(doc domain.PosterDocument, arr director.Arrangement, view View) Scene {
	doc = doc.WithDefaults(arr)

	scene := Scene{
		Width:      r.width,
		Height:     r.height,
		Background: Background{Image: doc.Background(), Opacity: backgroundOpacity},
		Scrim:      Scrim{Stops: scrimStops},
		Watermark: Watermark{
			Text:     WatermarkText,
			Position: director.Point{X: r.width - 32, Y: 32},
			FontSize: 12,
			Color:    "#FFFFFF4D",
		},
	}

	var back, front []ElementNode
	for _, id := range doc.ElementIDs() {
		text := doc.Field(id)
		if text == "" && !view.EditMode {
			continue
		}
		node := r.node(id, text, doc.Transform(id), arr.Placement(id))
		node.Selected = view.EditMode && id == view.Selected
		if node.State.Layer == domain.LayerBack {
			back = append(back, node)
		} else {
			front = append(front, node)
		}
	}
	scene.Elements = append(back, front...)

	if view.EditMode && view.Selected != "" {
		if n, ok := scene.Element(view.Selected); ok {
			scene.Overlay = r.overlay(n)
		}
	}
	return scene
}

func (r *Renderer) node(id domain.ElementID, text string, state domain.ElementState, p director.Placement) ElementNode {
	display := applyCase(text, p.Typography.Case)
	size := p.FontSize * state.Scale

	measured := display
	if measured == "" {
		measured = string(id)
	}
	w, h := TextWidth(r.measurer, measured, size, p.Typography)
	if p.Background != "" {
		w += size * 3
		h += size * 1.3
	}

	pos := director.Point{
		X: r.width/2 + p.Anchor.X + state.Offset.X,
		Y: r.height/2 + p.Anchor.Y + state.Offset.Y,
	}
	bounds := Rect{X: pos.X - w/2, Y: pos.Y - h/2, W: w, H: h}
	if p.Align == director.AlignLeft {
		bounds.X = pos.X
	}

	return ElementNode{
		ID:          id,
		Text:        display,
		Placeholder: text == "",
		Position:    pos,
		Align:       p.Align,
		FontSize:    size,
		State:       state,
		Depth:       DepthOf(state.Layer),
		Typography:  p.Typography,
		Color:       p.Color,
		Background:  p.Background,
		Bounds:      bounds,
	}
}

// overlay は選択リングと、その下に置くコントロールサーフェスを配置します。
// 下に収まらない場合はリングの上に置きます。
func (r *Renderer) overlay(n ElementNode) *Overlay {
	ring := n.Bounds.Inset(ringPadding)

	total := float64(len(ControlKinds))*controlSize + float64(len(ControlKinds)-1)*controlGap
	x := clamp(ring.CenterX()-total/2, canvasMargin, r.width-canvasMargin-total)
	y := ring.Bottom() + controlMargin
	if y+controlSize > r.height-canvasMargin {
		y = ring.Y - controlMargin - controlSize
	}
	y = math.Max(y, canvasMargin)

	controls := make([]Control, 0, len(ControlKinds))
	for i, kind := range ControlKinds {
		controls = append(controls, Control{
			Kind:   kind,
			Label:  controlLabel(kind, n.State.Layer),
			Bounds: Rect{X: x + float64(i)*(controlSize+controlGap), Y: y, W: controlSize, H: controlSize},
		})
	}
	return &Overlay{Selected: n.ID, Ring: ring, Controls: controls}
}

func controlLabel(kind ControlKind, layer domain.Layer) string {
	switch kind {
	case ControlScaleDown:
		return "-"
	case ControlScaleUp:
		return "+"
	case ControlCenter:
		return "Center"
	default:
		if layer == domain.LayerBack {
			return "Bring to front"
		}
		return "Send to back"
	}
}

// applyCase は書体設定の文字種変換を適用します。
// cases.Caser は状態を持つため呼び出しごとに作成します。
func applyCase(text string, c director.TextCase) string {
	switch c {
	case director.CaseUpper:
		return cases.Upper(language.Und).String(text)
	case director.CaseLower:
		return cases.Lower(language.Und).String(text)
	default:
		return text
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
