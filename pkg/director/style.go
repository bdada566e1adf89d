package director

import (
	"fmt"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// Role は要素がポスター上で担う役割です。タイポグラフィはトーンと役割で決まります。
type Role string

const (
	RoleHeadline Role = "headline"
	RoleBody     Role = "body"
	RoleBrand    Role = "brand"
	RoleCaption  Role = "caption"
	RoleCTA      Role = "cta"
	RoleBackdrop Role = "backdrop"
)

// RoleOf は要素IDに対応する役割を返します。未知の要素は本文扱いです。
func RoleOf(id domain.ElementID) Role {
	switch id {
	case domain.ElementShortSlogan:
		return RoleHeadline
	case domain.ElementBrand:
		return RoleBrand
	case domain.ElementCategory, domain.ElementContact:
		return RoleCaption
	case domain.ElementCTA:
		return RoleCTA
	case domain.ElementBackgroundWord:
		return RoleBackdrop
	default:
		return RoleBody
	}
}

// TextCase は文字種の変換方法です。
type TextCase string

const (
	CaseNone  TextCase = "none"
	CaseUpper TextCase = "upper"
	CaseLower TextCase = "lower"
)

// Shadow はグロー・影の1層分です。
type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Typography は1要素分の書体設定です。
type Typography struct {
	FontFamily string   `json:"fontFamily"`
	Weight     int      `json:"weight"`
	Italic     bool     `json:"italic"`
	Case       TextCase `json:"case"`
	Tracking   float64  `json:"tracking"` // em 単位の字間
	Underline  bool     `json:"underline,omitempty"`
	Gradient   []string `json:"gradient,omitempty"`
	Glow       []Shadow `json:"glow,omitempty"`
}

// ToneStyle はトーンごとの書体プリセットです。
type ToneStyle struct {
	Headline Typography
	Brand    Typography
	Gradient []string
	Glow     []Shadow
}

// toneStyles はトーンから書体プリセットへの対応表です。全トーンを網羅します。
var toneStyles = map[domain.Tone]ToneStyle{
	domain.ToneBold: {
		Headline: Typography{FontFamily: "Bebas Neue", Weight: 700, Italic: true, Case: CaseUpper, Tracking: 0.1},
		Brand:    defaultBrand,
		Gradient: []string{"#FFFFFF", "#FACC15"},
		Glow: []Shadow{
			{Blur: 12, Color: "#FACC1599"},
			{Blur: 32, Color: "#F9731666"},
		},
	},
	domain.TonePremium: {
		Headline: Typography{FontFamily: "Playfair Display", Weight: 400, Italic: true, Case: CaseNone},
		Brand:    Typography{FontFamily: "Playfair Display", Weight: 400, Case: CaseNone, Underline: true},
		Gradient: []string{"#FDE68A", "#FFFFFF", "#D4AF37"},
		Glow: []Shadow{
			{Blur: 8, Color: "#FFFFFF66"},
			{Blur: 24, Color: "#D4AF3766"},
			{Blur: 48, Color: "#00000080"},
		},
	},
	domain.TonePlayful: {
		Headline: Typography{FontFamily: "Inter", Weight: 900, Case: CaseLower},
		Brand:    defaultBrand,
		Gradient: []string{"#F472B6", "#FDE047"},
		Glow: []Shadow{
			{OffsetY: 4, Blur: 0, Color: "#00000066"},
		},
	},
	domain.ToneMinimal: {
		Headline: Typography{FontFamily: "Inter", Weight: 300, Case: CaseUpper, Tracking: 0.2},
		Brand:    defaultBrand,
		Gradient: []string{"#FFFFFF", "#E5E5E5"},
		Glow: []Shadow{
			{Blur: 16, Color: "#00000040"},
		},
	},
	domain.ToneEnergetic: {
		Headline: Typography{FontFamily: "Inter", Weight: 800, Case: CaseUpper, Tracking: -0.05},
		Brand:    defaultBrand,
		Gradient: []string{"#22D3EE", "#A3E635"},
		Glow: []Shadow{
			{Blur: 10, Color: "#22D3EE99"},
			{Blur: 28, Color: "#A3E63566"},
		},
	},
}

var defaultBrand = Typography{FontFamily: "Inter", Weight: 900, Case: CaseUpper, Tracking: -0.05}

// StyleManager はトーンと役割からタイポグラフィを引く検索表を扱います。
type StyleManager struct {
	styles map[domain.Tone]ToneStyle
}

// NewStyleManager は既定の対応表で StyleManager を作成します。
func NewStyleManager() *StyleManager {
	return &StyleManager{styles: toneStyles}
}

// ToneStyle はトーンの書体プリセットを返します。未知のトーンは bold 扱いです。
func (s *StyleManager) ToneStyle(tone domain.Tone) ToneStyle {
	if ts, ok := s.styles[tone]; ok {
		return ts
	}
	return s.styles[domain.ToneBold]
}

// Typography はトーンと役割に応じた書体設定を返します。
// 見出しにはトーンのグラデーションとグロー、背景ワードにはグローのみを付けます。
func (s *StyleManager) Typography(tone domain.Tone, role Role, fontFamily string) Typography {
	ts := s.ToneStyle(tone)
	switch role {
	case RoleHeadline:
		t := ts.Headline
		t.Gradient = ts.Gradient
		t.Glow = ts.Glow
		return t
	case RoleBrand:
		return ts.Brand
	case RoleBackdrop:
		t := ts.Headline
		t.Weight = 900
		t.Case = CaseUpper
		t.Glow = ts.Glow
		return t
	case RoleCaption:
		return Typography{FontFamily: "Inter", Weight: 700, Case: CaseUpper, Tracking: 0.4}
	case RoleCTA:
		return Typography{FontFamily: "Inter", Weight: 700, Case: CaseUpper, Tracking: 0.2}
	default:
		return Typography{FontFamily: fontFamily, Weight: 500, Case: CaseNone}
	}
}

// Validate は対応表が全トーンを網羅しているかを確認します。
func (s *StyleManager) Validate() error {
	for _, tone := range domain.AllTones {
		if _, ok := s.styles[tone]; !ok {
			return fmt.Errorf("トーン %q の書体プリセットがありません", tone)
		}
	}
	return nil
}
