package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/domain"
)

func fixture(t *testing.T, mutate func(*domain.GeneratedContent)) (domain.PosterDocument, director.Arrangement) {
	t.Helper()
	content := domain.GeneratedContent{
		BrandName:       "Voltra",
		ShortSlogan:     "Pure Power",
		LongSlogan:      "Energy that lasts all day.",
		CTAText:         "Shop Now",
		BackgroundWord:  "Power",
		EmotionalTone:   domain.ToneBold,
		ProductCategory: "Energy Drink",
	}
	if mutate != nil {
		mutate(&content)
	}
	doc := domain.NewDocument("doc-1", content, domain.ImageRef{Data: []byte{1}, MIMEType: "image/png"}, nil)

	lm, err := director.NewLayoutManager()
	require.NoError(t, err)
	return doc, lm.Resolve(lm.Default(), content.EmotionalTone)
}

func ids(s Scene) []domain.ElementID {
	out := make([]domain.ElementID, 0, len(s.Elements))
	for _, n := range s.Elements {
		out = append(out, n.ID)
	}
	return out
}

func TestRender_EmptyFieldOmission(t *testing.T) {
	doc, arr := fixture(t, func(c *domain.GeneratedContent) { c.CTAText = "" })
	r := New(900, 1200, nil)

	t.Run("閲覧モードでは空の要素を描画しない", func(t *testing.T) {
		scene := r.Render(doc, arr, View{})
		assert.NotContains(t, ids(scene), domain.ElementCTA)
		assert.NotContains(t, ids(scene), domain.ElementContact)
	})

	t.Run("編集モードではプレースホルダーとして含める", func(t *testing.T) {
		scene := r.Render(doc, arr, View{EditMode: true})
		n, ok := scene.Element(domain.ElementCTA)
		require.True(t, ok)
		assert.True(t, n.Placeholder)
		assert.Empty(t, n.Text)
		assert.Greater(t, n.Bounds.W, 0.0)
	})
}

func TestRender_PositionScaleAndCase(t *testing.T) {
	doc, arr := fixture(t, nil)
	r := New(900, 1200, nil)

	doc = doc.SetTransform(domain.ElementBrand, domain.ElementUpdate{Offset: &domain.Offset{X: 30, Y: 45}})
	scale := 2.5
	doc = doc.SetTransform(domain.ElementShortSlogan, domain.ElementUpdate{Scale: &scale})

	scene := r.Render(doc, arr, View{})

	brand, ok := scene.Element(domain.ElementBrand)
	require.True(t, ok)
	assert.Equal(t, director.Point{X: 480, Y: 445}, brand.Position)
	assert.Equal(t, "VOLTRA", brand.Text)

	short, ok := scene.Element(domain.ElementShortSlogan)
	require.True(t, ok)
	assert.InDelta(t, 180.0, short.FontSize, 1e-9)
	assert.Equal(t, "PURE POWER", short.Text)
	assert.InDelta(t, 450.0, short.Bounds.CenterX(), 1e-9)

	assert.Equal(t, WatermarkText, scene.Watermark.Text)
	assert.Len(t, scene.Scrim.Stops, 3)
}

func TestRender_DepthOrdering(t *testing.T) {
	doc, arr := fixture(t, nil)
	r := New(900, 1200, nil)

	back := domain.LayerBack
	doc = doc.SetTransform(domain.ElementCTA, domain.ElementUpdate{Layer: &back})
	scene := r.Render(doc, arr, View{})

	order := ids(scene)
	require.Len(t, order, 6)
	assert.Equal(t, []domain.ElementID{domain.ElementBackgroundWord, domain.ElementCTA}, order[:2])

	for _, n := range scene.Elements {
		assert.Equal(t, DepthOf(n.State.Layer), n.Depth, "id=%s", n.ID)
	}
	cta, _ := scene.Element(domain.ElementCTA)
	assert.Equal(t, 0.4, cta.Depth.Opacity)
	assert.Nil(t, cta.Depth.Shadow)

	brand, _ := scene.Element(domain.ElementBrand)
	assert.Equal(t, 1.0, brand.Depth.Opacity)
	assert.NotNil(t, brand.Depth.Shadow)
}

func TestRender_OverlayAndCapture(t *testing.T) {
	doc, arr := fixture(t, func(c *domain.GeneratedContent) { c.LongSlogan = "" })
	r := New(900, 1200, nil)

	t.Run("編集モード外では選択リングを出さない", func(t *testing.T) {
		scene := r.Render(doc, arr, View{Selected: domain.ElementShortSlogan})
		assert.Nil(t, scene.Overlay)
	})

	scene := r.Render(doc, arr, View{EditMode: true, Selected: domain.ElementShortSlogan})
	require.NotNil(t, scene.Overlay)
	assert.Equal(t, domain.ElementShortSlogan, scene.Overlay.Selected)
	require.Len(t, scene.Overlay.Controls, 4)

	short, _ := scene.Element(domain.ElementShortSlogan)
	assert.True(t, short.Selected)
	assert.Greater(t, scene.Overlay.Controls[0].Bounds.Y, short.Bounds.Bottom())

	t.Run("書き出し対象には編集用の装飾を含めない", func(t *testing.T) {
		capture := scene.CaptureTarget()
		assert.Nil(t, capture.Overlay)
		assert.NotContains(t, ids(capture), domain.ElementLongSlogan)
		for _, n := range capture.Elements {
			assert.False(t, n.Selected)
			assert.False(t, n.Placeholder)
		}
		assert.NotNil(t, scene.Overlay, "元のシーンは変更しない")
	})
}

func TestRender_ControlsFlipAboveNearBottom(t *testing.T) {
	doc, arr := fixture(t, nil)
	doc = domain.NewDocument("doc-2", domain.GeneratedContent{
		BrandName: "Voltra", ShortSlogan: "Pure Power", EmotionalTone: domain.ToneBold,
	}, doc.Background(), &domain.CompanyInfo{Phone: "03-1234-5678"})
	r := New(900, 1200, nil)

	scene := r.Render(doc, arr, View{EditMode: true, Selected: domain.ElementContact})
	require.NotNil(t, scene.Overlay)
	for _, c := range scene.Overlay.Controls {
		assert.Less(t, c.Bounds.Bottom(), scene.Overlay.Ring.Y)
	}
}

func TestScene_HitTest(t *testing.T) {
	doc, arr := fixture(t, nil)
	doc = doc.SetTransform(domain.ElementBackgroundWord, domain.ElementUpdate{Offset: &domain.Offset{Y: 140}})
	r := New(900, 1200, nil)
	scene := r.Render(doc, arr, View{EditMode: true, Selected: domain.ElementShortSlogan})

	t.Run("コントロールが最優先", func(t *testing.T) {
		c := scene.Overlay.Controls[2]
		hit := scene.HitTest(c.Bounds.CenterX(), c.Bounds.Y+c.Bounds.H/2)
		assert.Equal(t, Hit{Kind: HitControl, Control: ControlCenter, Element: domain.ElementShortSlogan}, hit)
	})

	t.Run("重なっている場合は手前の要素", func(t *testing.T) {
		short, _ := scene.Element(domain.ElementShortSlogan)
		bg, _ := scene.Element(domain.ElementBackgroundWord)
		require.True(t, bg.Bounds.Contains(short.Position.X, short.Position.Y))
		hit := scene.HitTest(short.Position.X, short.Position.Y)
		assert.Equal(t, domain.ElementShortSlogan, hit.Element)
	})

	t.Run("何もない場所", func(t *testing.T) {
		assert.Equal(t, HitNone, scene.HitTest(2, 2).Kind)
	})
}

func TestDepthOf_IsPure(t *testing.T) {
	a := DepthOf(domain.LayerFront)
	a.Shadow.Blur = 99
	assert.Equal(t, frontShadow.Blur, DepthOf(domain.LayerFront).Shadow.Blur)
	assert.Equal(t, DepthOf(domain.LayerBack), DepthOf(domain.LayerBack))
}
