package rasterizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/renderer"
)

var (
	white = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

// Rasterizer は書き出し用のシーンを1枚の画像に平坦化します。
type Rasterizer struct {
	fonts *FontSet
}

// New は Rasterizer を作成します。fonts が nil の場合は Go フォントを読み込みます。
func New(fonts *FontSet) (*Rasterizer, error) {
	if fonts == nil {
		fs, err := NewFontSet()
		if err != nil {
			return nil, err
		}
		fonts = fs
	}
	return &Rasterizer{fonts: fonts}, nil
}

// Fonts は計測にも使えるフォントセットを返します。
func (r *Rasterizer) Fonts() *FontSet { return r.fonts }

// CapturePNG はシーンを PNG にエンコードして返します。
func (r *Rasterizer) CapturePNG(ctx context.Context, scene renderer.Scene) ([]byte, error) {
	img, err := r.Capture(ctx, scene)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNG のエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// Capture はシーンを描画順に合成します。
// 背景、スクリム、要素（back → front）、ウォーターマークの順です。
// 編集用のオーバーレイが残っていても描画しません。
func (r *Rasterizer) Capture(ctx context.Context, scene renderer.Scene) (*image.RGBA, error) {
	w, h := int(math.Round(scene.Width)), int(math.Round(scene.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("キャンバスサイズが不正です: %vx%v", scene.Width, scene.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	if err := r.drawBackground(dst, scene.Background); err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(),
		newVerticalGradient(dst.Bounds(), 0, float64(h), scrimStops(scene.Scrim.Stops)),
		image.Point{}, draw.Over)

	for _, n := range scene.Elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n.Placeholder || n.Text == "" {
			continue
		}
		if err := r.drawElement(dst, n); err != nil {
			return nil, fmt.Errorf("要素 %s の描画に失敗しました: %w", n.ID, err)
		}
	}

	if err := r.drawWatermark(dst, scene.Watermark); err != nil {
		return nil, err
	}
	return dst, nil
}

// drawBackground は背景画像をアスペクト比を保ったままキャンバス全体を覆うように配置します。
func (r *Rasterizer) drawBackground(dst *image.RGBA, bg renderer.Background) error {
	if bg.Image.IsZero() {
		return nil
	}
	src, format, err := image.Decode(bytes.NewReader(bg.Image.Data))
	if err != nil {
		return fmt.Errorf("背景画像のデコードに失敗しました: %w", err)
	}
	slog.Debug("背景画像を読み込みました", "format", format, "size", src.Bounds().Size())

	tmp := image.NewRGBA(dst.Bounds())
	draw.CatmullRom.Scale(tmp, tmp.Bounds(), src, coverRect(src.Bounds(), dst.Bounds()), draw.Src, nil)

	opacity := bg.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	draw.DrawMask(dst, dst.Bounds(), tmp, image.Point{}, image.NewUniform(alpha(opacity)), image.Point{}, draw.Over)
	return nil
}

// coverRect は dst を覆うために src から切り出す中央の矩形を返します。
func coverRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	dw, dh := float64(dst.Dx()), float64(dst.Dy())
	scale := math.Max(dw/sw, dh/sh)
	cw, ch := dw/scale, dh/scale
	x0 := float64(src.Min.X) + (sw-cw)/2
	y0 := float64(src.Min.Y) + (sh-ch)/2
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x0+cw)), int(math.Round(y0+ch))).Intersect(src)
}

func (r *Rasterizer) drawElement(dst *image.RGBA, n renderer.ElementNode) error {
	shadows := append([]director.Shadow(nil), n.Typography.Glow...)
	if n.Depth.Shadow != nil {
		shadows = append(shadows, *n.Depth.Shadow)
	}

	pad := 4.0 + n.Depth.Blur*3
	for _, s := range shadows {
		pad = math.Max(pad, s.Blur*1.5+math.Max(math.Abs(s.OffsetX), math.Abs(s.OffsetY))+4)
	}
	rect := image.Rect(
		int(math.Floor(n.Bounds.X-pad)), int(math.Floor(n.Bounds.Y-pad)),
		int(math.Ceil(n.Bounds.X+n.Bounds.W+pad)), int(math.Ceil(n.Bounds.Bottom()+pad)),
	).Intersect(dst.Bounds())
	if rect.Empty() {
		return nil
	}

	layer := image.NewRGBA(rect)
	if n.Background != "" {
		pill := image.Rect(
			int(math.Round(n.Bounds.X)), int(math.Round(n.Bounds.Y)),
			int(math.Round(n.Bounds.X+n.Bounds.W)), int(math.Round(n.Bounds.Bottom())),
		)
		draw.Draw(layer, pill.Intersect(rect), image.NewUniform(mustColor(n.Background, white)), image.Point{}, draw.Src)
	}

	mask := image.NewAlpha(rect)
	var textW, baseline, ascent float64
	err := r.fonts.withFace(n.Typography, n.FontSize, func(face font.Face) {
		m := face.Metrics()
		ascent = fixedToFloat(m.Ascent)
		tracking := n.Typography.Tracking * n.FontSize
		textW = fixedToFloat(font.MeasureString(face, n.Text))
		if runes := utf8.RuneCountInString(n.Text); runes > 1 {
			textW += tracking * float64(runes-1)
		}
		baseline = n.Bounds.Y + n.Bounds.H/2 + (ascent-fixedToFloat(m.Descent))/2
		x := n.Bounds.CenterX() - textW/2
		drawString(mask, face, image.Opaque, x, baseline, n.Text, tracking)
	})
	if err != nil {
		return err
	}

	for _, s := range shadows {
		sh := image.NewRGBA(rect)
		off := image.Pt(int(math.Round(s.OffsetX)), int(math.Round(s.OffsetY)))
		draw.DrawMask(sh, rect, image.NewUniform(mustColor(s.Color, color.NRGBA{A: 0x80})), image.Point{},
			mask, rect.Min.Sub(off), draw.Over)
		boxBlur(sh, int(math.Round(s.Blur/2)))
		draw.Draw(layer, rect, sh, rect.Min, draw.Over)
	}

	fillColor := mustColor(n.Color, white)
	var fill image.Image = image.NewUniform(fillColor)
	if len(n.Typography.Gradient) > 1 {
		fill = newVerticalGradient(rect, n.Bounds.Y, n.Bounds.H, evenStops(n.Typography.Gradient, fillColor))
	}
	draw.DrawMask(layer, rect, fill, rect.Min, mask, rect.Min, draw.Over)

	if n.Typography.Underline {
		line := fillColor
		line.A = 0x4D
		thick := int(math.Max(1, math.Round(n.FontSize*0.05)))
		y := int(math.Round(baseline + n.FontSize*0.15))
		x0 := int(math.Round(n.Bounds.CenterX() - textW/2))
		draw.Draw(layer, image.Rect(x0, y, x0+int(math.Round(textW)), y+thick).Intersect(rect),
			image.NewUniform(line), image.Point{}, draw.Over)
	}

	if n.Depth.Blur > 0 {
		boxBlur(layer, int(math.Round(n.Depth.Blur)))
	}
	opacity := n.Depth.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	draw.DrawMask(dst, rect, layer, rect.Min, image.NewUniform(alpha(opacity)), image.Point{}, draw.Over)
	return nil
}

func (r *Rasterizer) drawWatermark(dst *image.RGBA, wm renderer.Watermark) error {
	if wm.Text == "" || wm.FontSize <= 0 {
		return nil
	}
	typo := director.Typography{Weight: 900, Italic: true}
	src := image.NewUniform(mustColor(wm.Color, white))
	return r.fonts.withFace(typo, wm.FontSize, func(face font.Face) {
		w := fixedToFloat(font.MeasureString(face, wm.Text))
		baseline := wm.Position.Y + fixedToFloat(face.Metrics().Ascent)
		drawString(dst, face, src, wm.Position.X-w, baseline, wm.Text, 0)
	})
}

// drawString は字間 tracking（px）を加えながら1文字ずつ描画します。
func drawString(dst draw.Image, face font.Face, src image.Image, x, baseline float64, text string, tracking float64) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(baseline)},
	}
	if tracking == 0 {
		d.DrawString(text)
		return
	}
	prev := rune(-1)
	for _, c := range text {
		if prev >= 0 {
			d.Dot.X += face.Kern(prev, c) + floatToFixed(tracking)
		}
		d.DrawString(string(c))
		prev = c
	}
}

func alpha(opacity float64) color.Alpha {
	return color.Alpha{A: uint8(math.Round(opacity * 255))}
}
