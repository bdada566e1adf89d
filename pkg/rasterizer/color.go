package rasterizer

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/math/fixed"

	"github.com/shouni/go-poster-kit/pkg/renderer"
)

// ParseHexColor は #RRGGBB または #RRGGBBAA を解析します。
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("色の形式が不正です: %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("色の形式が不正です: %q", s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// mustColor は解析に失敗した色を fallback に置き換えます。
func mustColor(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		return fallback
	}
	return c
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{R: lerp(a.R, b.R, t), G: lerp(a.G, b.G, t), B: lerp(a.B, b.B, t), A: lerp(a.A, b.A, t)}
}

type stop struct {
	pos float64
	c   color.NRGBA
}

// verticalGradient は上から下へ色が変わる image.Image です。
type verticalGradient struct {
	rect  image.Rectangle
	top   float64
	span  float64
	stops []stop
}

func newVerticalGradient(rect image.Rectangle, top, height float64, stops []stop) *verticalGradient {
	if height <= 0 {
		height = 1
	}
	return &verticalGradient{rect: rect, top: top, span: height, stops: stops}
}

// evenStops は色を等間隔に並べます。
func evenStops(colors []string, fallback color.NRGBA) []stop {
	out := make([]stop, 0, len(colors))
	for i, c := range colors {
		pos := 0.0
		if len(colors) > 1 {
			pos = float64(i) / float64(len(colors)-1)
		}
		out = append(out, stop{pos: pos, c: mustColor(c, fallback)})
	}
	return out
}

func scrimStops(stops []renderer.GradientStop) []stop {
	out := make([]stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, stop{pos: s.Pos, c: mustColor(s.Color, color.NRGBA{})})
	}
	return out
}

func (g *verticalGradient) ColorModel() color.Model { return color.NRGBAModel }
func (g *verticalGradient) Bounds() image.Rectangle { return g.rect }

func (g *verticalGradient) At(_, y int) color.Color {
	if len(g.stops) == 0 {
		return color.NRGBA{}
	}
	t := (float64(y) + 0.5 - g.top) / g.span
	if t <= g.stops[0].pos {
		return g.stops[0].c
	}
	for i := 1; i < len(g.stops); i++ {
		a, b := g.stops[i-1], g.stops[i]
		if t <= b.pos {
			if b.pos == a.pos {
				return b.c
			}
			return lerpColor(a.c, b.c, (t-a.pos)/(b.pos-a.pos))
		}
	}
	return g.stops[len(g.stops)-1].c
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
