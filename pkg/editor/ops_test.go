package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

func boldDocument() domain.PosterDocument {
	return domain.NewDocument("doc-1", domain.GeneratedContent{
		BrandName:     "Voltra",
		ShortSlogan:   "Pure Power",
		EmotionalTone: domain.ToneBold,
	}, domain.ImageRef{Data: []byte{1}}, nil)
}

func TestAdjustScale_StaysInRange(t *testing.T) {
	r := domain.DefaultScaleRange
	for _, delta := range []float64{-3, -0.5, -0.1, 0.1, 0.7, 5} {
		doc := boldDocument()
		for i := 0; i < 40; i++ {
			doc = AdjustScale(doc, domain.ElementBrand, delta, r)
			s := doc.Transform(domain.ElementBrand).Scale
			assert.GreaterOrEqual(t, s, r.Min, "delta=%v", delta)
			assert.LessOrEqual(t, s, r.Max, "delta=%v", delta)
		}
	}

	t.Run("下限では何度減らしても変わらない", func(t *testing.T) {
		doc := SetScale(boldDocument(), domain.ElementCTA, 0.1, r)
		doc = AdjustScale(doc, domain.ElementCTA, -0.1, r)
		doc = AdjustScale(doc, domain.ElementCTA, -0.1, r)
		assert.Equal(t, 0.1, doc.Transform(domain.ElementCTA).Scale)
	})

	t.Run("範囲外の絶対値は丸める", func(t *testing.T) {
		assert.Equal(t, 8.0, SetScale(boldDocument(), domain.ElementCTA, 42, r).Transform(domain.ElementCTA).Scale)
		assert.Equal(t, 0.1, SetScale(boldDocument(), domain.ElementCTA, -1, r).Transform(domain.ElementCTA).Scale)
	})
}

func TestScaleAndCenterScenario(t *testing.T) {
	r := domain.DefaultScaleRange
	doc := Move(boldDocument(), domain.ElementShortSlogan, domain.Offset{X: 40, Y: -12})

	for i := 0; i < 3; i++ {
		doc = AdjustScale(doc, domain.ElementShortSlogan, 0.5, r)
	}
	assert.Equal(t, 2.5, doc.Transform(domain.ElementShortSlogan).Scale)

	doc = CenterHorizontally(doc, domain.ElementShortSlogan)
	st := doc.Transform(domain.ElementShortSlogan)
	assert.Equal(t, 2.5, st.Scale)
	assert.Equal(t, domain.Offset{X: 0, Y: -12}, st.Offset)
}

func TestToggleLayer(t *testing.T) {
	doc := boldDocument()
	before := doc.Transform(domain.ElementBrand).Layer

	once := ToggleLayer(doc, domain.ElementBrand)
	assert.Equal(t, domain.LayerBack, once.Transform(domain.ElementBrand).Layer)
	assert.Equal(t, before, ToggleLayer(once, domain.ElementBrand).Transform(domain.ElementBrand).Layer)

	t.Run("他の要素のレイヤーに依存しない", func(t *testing.T) {
		both := ToggleLayer(once, domain.ElementCTA)
		assert.Equal(t, domain.LayerBack, both.Transform(domain.ElementBrand).Layer)
		assert.Equal(t, domain.LayerBack, both.Transform(domain.ElementCTA).Layer)
		assert.Equal(t, domain.LayerBack, both.Transform(domain.ElementBackgroundWord).Layer)
	})

	assert.Equal(t, before, doc.Transform(domain.ElementBrand).Layer, "元のドキュメントは変わらない")
}
