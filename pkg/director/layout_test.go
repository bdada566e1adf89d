package director

import (
	"testing"

	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *LayoutManager {
	t.Helper()
	lm, err := NewLayoutManager()
	require.NoError(t, err)
	return lm
}

func TestNewLayoutManager_Catalog(t *testing.T) {
	lm := newManager(t)

	presets := lm.Presets()
	require.Len(t, presets, 10)
	assert.Equal(t, "Minimalist", lm.Default().Name)

	p, ok := lm.Preset("3")
	require.True(t, ok)
	assert.Equal(t, "Modern Bold", p.Name)
	assert.Equal(t, "#FACC15", p.AccentColor)
	assert.Equal(t, PositionBottom, p.Positioning)

	arch, ok := lm.Preset("glow-portal")
	require.True(t, ok)
	assert.Equal(t, KindArchetype, arch.Kind)
	assert.NotEmpty(t, arch.Directive)

	_, ok = lm.Preset("missing")
	assert.False(t, ok)
	assert.Equal(t, "1", lm.Default().ID)
}

func TestLayoutManager_Resolve(t *testing.T) {
	lm := newManager(t)
	preset := lm.Default()

	t.Run("同じ入力なら同じ結果になる", func(t *testing.T) {
		a := lm.Resolve(preset, domain.ToneBold)
		b := lm.Resolve(preset, domain.ToneBold)
		assert.Equal(t, a, b)
	})

	t.Run("中央配置のアンカー", func(t *testing.T) {
		a := lm.Resolve(preset, domain.ToneBold)
		assert.Equal(t, Point{X: 0, Y: -200}, a.Placement(domain.ElementBrand).Anchor)
		assert.Equal(t, Point{X: 0, Y: 240}, a.Placement(domain.ElementCTA).Anchor)
		assert.Equal(t, Point{}, a.Placement(domain.ElementBackgroundWord).Anchor)
	})

	t.Run("背景ワードの既定レイヤーは back", func(t *testing.T) {
		a := lm.Resolve(preset, domain.ToneMinimal)
		assert.Equal(t, domain.LayerBack, a.DefaultState(domain.ElementBackgroundWord).Layer)
		assert.Equal(t, domain.LayerFront, a.DefaultState(domain.ElementShortSlogan).Layer)
		assert.Equal(t, 1.0, a.DefaultState(domain.ElementShortSlogan).Scale)
	})

	t.Run("未定義の要素は中央の既定配置", func(t *testing.T) {
		a := lm.Resolve(preset, domain.ToneBold)
		p := a.Placement("sticker")
		assert.Equal(t, Point{}, p.Anchor)
		assert.Equal(t, RoleBody, p.Role)
		assert.Equal(t, domain.DefaultElementState("sticker"), p.Default)
	})

	t.Run("見出しの色はプリセットのアクセント色", func(t *testing.T) {
		bold, _ := lm.Preset("3")
		a := lm.Resolve(bold, domain.ToneBold)
		assert.Equal(t, "#FACC15", a.Placement(domain.ElementShortSlogan).Color)
		assert.Equal(t, "#000000", a.Placement(domain.ElementCTA).Color)
	})

	t.Run("アーキタイプの個別アンカーが基本配置を上書きする", func(t *testing.T) {
		brutalist, _ := lm.Preset("minimal-brutalist")
		a := lm.Resolve(brutalist, domain.ToneMinimal)
		assert.Equal(t, Point{X: 0, Y: -240}, a.Placement(domain.ElementBrand).Anchor)
		assert.Equal(t, 44.0, a.Placement(domain.ElementBrand).FontSize)
		assert.Equal(t, Point{X: 0, Y: 240}, a.Placement(domain.ElementCTA).Anchor)
	})

	t.Run("overlay は左揃え", func(t *testing.T) {
		editorial, _ := lm.Preset("2")
		a := lm.Resolve(editorial, domain.TonePremium)
		assert.Equal(t, AlignLeft, a.Placement(domain.ElementShortSlogan).Align)
		assert.Equal(t, AlignCenter, a.Placement(domain.ElementBackgroundWord).Align)
	})

	t.Run("プリセットを切り替えて戻してもアンカーは変わらない", func(t *testing.T) {
		first := lm.Resolve(preset, domain.ToneBold)
		other, _ := lm.Preset("4")
		_ = lm.Resolve(other, domain.ToneBold)
		assert.Equal(t, first, lm.Resolve(preset, domain.ToneBold))
	})
}

func TestLoadLayoutManager_Errors(t *testing.T) {
	tests := map[string]string{
		"空のカタログ":       "presets: []",
		"不正なYAML":       "presets: [",
		"IDなし":          "presets:\n  - name: x\n    positioning: center",
		"重複ID":          "presets:\n  - {id: a, positioning: center}\n  - {id: a, positioning: top}",
		"不正なpositioning": "presets:\n  - {id: a, positioning: diagonal}",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadLayoutManager([]byte(data))
			assert.Error(t, err)
		})
	}
}
