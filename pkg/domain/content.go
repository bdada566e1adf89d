package domain

import (
	"fmt"
	"strings"
)

// Tone は生成されたコピーの感情トーンです。タイポグラフィのプリセットを選びます。
type Tone string

const (
	ToneBold      Tone = "bold"
	TonePremium   Tone = "premium"
	TonePlayful   Tone = "playful"
	ToneMinimal   Tone = "minimal"
	ToneEnergetic Tone = "energetic"
)

// AllTones は有効なトーンの一覧です。
var AllTones = []Tone{ToneBold, TonePremium, TonePlayful, ToneMinimal, ToneEnergetic}

// ParseTone は文字列をトーンに変換します。大文字小文字と前後の空白は無視します。
func ParseTone(s string) (Tone, error) {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTones {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("不明なトーンです: %q", s)
}

// CompanyInfo は連絡先情報です。contact フィールドに統合されます。
type CompanyInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

// ContactLine は空でない項目を区切り文字で連結した1行を返します。
func (c *CompanyInfo) ContactLine() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, v := range []string{c.Phone, c.Email, c.Website} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "  •  ")
}

// Hints はコピー生成に渡すユーザー入力です。すべて任意です。
type Hints struct {
	BrandName string       `json:"brandName,omitempty"`
	Slogan    string       `json:"slogan,omitempty"`
	Context   string       `json:"context,omitempty"`
	Contact   *CompanyInfo `json:"contactInfo,omitempty"`
}

// GeneratedContent は ContentGenerator が返す構造化コピーです。
type GeneratedContent struct {
	BrandName       string `json:"brand_name"`
	ShortSlogan     string `json:"short_slogan"`
	LongSlogan      string `json:"long_slogan"`
	CTAText         string `json:"cta_text"`
	BackgroundWord  string `json:"background_word"`
	EmotionalTone   Tone   `json:"emotional_tone"`
	ProductCategory string `json:"product_category"`
}

// Validate は必須項目とトーンの妥当性を検証します。
func (c GeneratedContent) Validate() error {
	if strings.TrimSpace(c.BrandName) == "" && strings.TrimSpace(c.ShortSlogan) == "" {
		return fmt.Errorf("brand_name と short_slogan がどちらも空です")
	}
	if _, err := ParseTone(string(c.EmotionalTone)); err != nil {
		return err
	}
	return nil
}

// Fields はコンテンツを要素IDごとの表示テキストに展開します。
func (c GeneratedContent) Fields() map[ElementID]string {
	return map[ElementID]string{
		ElementBrand:          c.BrandName,
		ElementShortSlogan:    c.ShortSlogan,
		ElementLongSlogan:     c.LongSlogan,
		ElementCTA:            c.CTAText,
		ElementBackgroundWord: c.BackgroundWord,
		ElementCategory:       c.ProductCategory,
	}
}

// ImageOrigin は背景画像の出どころです。
type ImageOrigin string

const (
	OriginOriginal    ImageOrigin = "original"
	OriginSynthesized ImageOrigin = "synthesized"
)

// ImageRef は背景アセットへの不透明なハンドルです。差し替えは常に丸ごと行います。
type ImageRef struct {
	Data     []byte      `json:"-"`
	MIMEType string      `json:"mimeType"`
	Origin   ImageOrigin `json:"origin"`
}

// IsZero は画像データを持たないかどうかを返します。
func (r ImageRef) IsZero() bool {
	return len(r.Data) == 0
}
