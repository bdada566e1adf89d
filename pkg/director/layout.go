package director

import (
	_ "embed"
	"fmt"
	"maps"

	"github.com/shouni/go-poster-kit/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// Kind はプリセットの種類です。
type Kind string

const (
	KindLayout    Kind = "layout"
	KindArchetype Kind = "archetype"
)

// Positioning はテキスト群を置く基本位置です。
type Positioning string

const (
	PositionCenter  Positioning = "center"
	PositionBottom  Positioning = "bottom"
	PositionTop     Positioning = "top"
	PositionOverlay Positioning = "overlay"
)

// Align は要素の水平揃えです。
type Align string

const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
)

// Point はキャンバス中心を原点とした座標（px）です。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AnchorSpec は1要素分のアンカー指定です。
type AnchorSpec struct {
	X     float64      `yaml:"x" json:"x"`
	Y     float64      `yaml:"y" json:"y"`
	Size  float64      `yaml:"size" json:"size"`
	Align Align        `yaml:"align,omitempty" json:"align,omitempty"`
	Layer domain.Layer `yaml:"layer,omitempty" json:"layer,omitempty"`
}

// LayoutPreset はレイアウトプリセットまたはスタイル・アーキタイプの不変な設定です。
type LayoutPreset struct {
	ID          string                          `yaml:"id" json:"id"`
	Name        string                          `yaml:"name" json:"name"`
	Kind        Kind                            `yaml:"kind" json:"kind"`
	FontFamily  string                          `yaml:"fontFamily" json:"fontFamily"`
	AccentColor string                          `yaml:"accentColor" json:"accentColor"`
	Positioning Positioning                     `yaml:"positioning" json:"positioning"`
	Directive   string                          `yaml:"directive,omitempty" json:"directive,omitempty"`
	Anchors     map[domain.ElementID]AnchorSpec `yaml:"anchors,omitempty" json:"anchors,omitempty"`
}

type catalogFile struct {
	Presets []LayoutPreset `yaml:"presets"`
}

// baseAnchors は positioning ごとの基本配置です。
var baseAnchors = map[Positioning]map[domain.ElementID]AnchorSpec{
	PositionCenter: {
		domain.ElementBackgroundWord: {X: 0, Y: 0, Size: 220, Layer: domain.LayerBack},
		domain.ElementBrand:          {X: 0, Y: -200, Size: 40},
		domain.ElementCategory:       {X: 0, Y: -162, Size: 14},
		domain.ElementShortSlogan:    {X: 0, Y: 140, Size: 72},
		domain.ElementLongSlogan:     {X: 0, Y: 195, Size: 22},
		domain.ElementCTA:            {X: 0, Y: 240, Size: 16},
		domain.ElementContact:        {X: 0, Y: 540, Size: 14},
	},
	PositionBottom: {
		domain.ElementBackgroundWord: {X: 0, Y: -40, Size: 220, Layer: domain.LayerBack},
		domain.ElementBrand:          {X: 0, Y: -480, Size: 40},
		domain.ElementCategory:       {X: 0, Y: -442, Size: 14},
		domain.ElementShortSlogan:    {X: 0, Y: 330, Size: 80},
		domain.ElementLongSlogan:     {X: 0, Y: 392, Size: 22},
		domain.ElementCTA:            {X: 0, Y: 455, Size: 16},
		domain.ElementContact:        {X: 0, Y: 540, Size: 14},
	},
	PositionTop: {
		domain.ElementBackgroundWord: {X: 0, Y: 60, Size: 220, Layer: domain.LayerBack},
		domain.ElementBrand:          {X: 0, Y: -500, Size: 40},
		domain.ElementCategory:       {X: 0, Y: -462, Size: 14},
		domain.ElementShortSlogan:    {X: 0, Y: -390, Size: 72},
		domain.ElementLongSlogan:     {X: 0, Y: -330, Size: 22},
		domain.ElementCTA:            {X: 0, Y: 455, Size: 16},
		domain.ElementContact:        {X: 0, Y: 540, Size: 14},
	},
	PositionOverlay: {
		domain.ElementBackgroundWord: {X: 0, Y: 0, Size: 220, Layer: domain.LayerBack},
		domain.ElementBrand:          {X: -330, Y: -260, Size: 40, Align: AlignLeft},
		domain.ElementCategory:       {X: -330, Y: -222, Size: 14, Align: AlignLeft},
		domain.ElementShortSlogan:    {X: -330, Y: -140, Size: 72, Align: AlignLeft},
		domain.ElementLongSlogan:     {X: -330, Y: -70, Size: 22, Align: AlignLeft},
		domain.ElementCTA:            {X: -330, Y: 10, Size: 16, Align: AlignLeft},
		domain.ElementContact:        {X: -330, Y: 540, Size: 14, Align: AlignLeft},
	},
}

// fallbackAnchor は配置の定義がない要素に使う中央のアンカーです。
var fallbackAnchor = AnchorSpec{X: 0, Y: 0, Size: 24}

// LayoutManager はプリセットのカタログを保持し、配置を解決します。
type LayoutManager struct {
	presets []LayoutPreset
	byID    map[string]LayoutPreset
	styles  *StyleManager
}

// NewLayoutManager は埋め込みのカタログから LayoutManager を作成します。
func NewLayoutManager() (*LayoutManager, error) {
	return LoadLayoutManager(presetsYAML)
}

// LoadLayoutManager は YAML のカタログから LayoutManager を作成します。
func LoadLayoutManager(data []byte) (*LayoutManager, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("プリセット定義のデコードに失敗しました: %w", err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("プリセットが1つも定義されていません")
	}

	byID := make(map[string]LayoutPreset, len(file.Presets))
	for _, p := range file.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("ID のないプリセットがあります: %q", p.Name)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("プリセット ID が重複しています: %s", p.ID)
		}
		if _, ok := baseAnchors[p.Positioning]; !ok {
			return nil, fmt.Errorf("プリセット %s の positioning が不正です: %q", p.ID, p.Positioning)
		}
		byID[p.ID] = p
	}

	styles := NewStyleManager()
	if err := styles.Validate(); err != nil {
		return nil, err
	}

	return &LayoutManager{presets: file.Presets, byID: byID, styles: styles}, nil
}

// Presets は定義順のプリセット一覧を返します。
func (l *LayoutManager) Presets() []LayoutPreset {
	out := make([]LayoutPreset, len(l.presets))
	copy(out, l.presets)
	return out
}

// Preset は ID に対応するプリセットを返します。
func (l *LayoutManager) Preset(id string) (LayoutPreset, bool) {
	p, ok := l.byID[id]
	return p, ok
}

// Default は先頭のプリセットを返します。
func (l *LayoutManager) Default() LayoutPreset {
	return l.presets[0]
}

// Resolve はプリセットとトーンから要素ごとの配置を求めます。
// 同じ入力に対しては常に同じ結果を返し、副作用はありません。
func (l *LayoutManager) Resolve(preset LayoutPreset, tone domain.Tone) Arrangement {
	anchors := maps.Clone(baseAnchors[preset.Positioning])
	if anchors == nil {
		anchors = maps.Clone(baseAnchors[PositionCenter])
	}
	for id, spec := range preset.Anchors {
		base, ok := anchors[id]
		if !ok {
			base = fallbackAnchor
		}
		anchors[id] = mergeAnchor(base, spec)
	}

	placements := make(map[domain.ElementID]Placement, len(anchors))
	for id, spec := range anchors {
		placements[id] = l.placement(preset, tone, id, spec)
	}

	return Arrangement{
		PresetID:   preset.ID,
		Tone:       tone,
		placements: placements,
		fallback:   l.placement(preset, tone, "", fallbackAnchor),
	}
}

func (l *LayoutManager) placement(preset LayoutPreset, tone domain.Tone, id domain.ElementID, spec AnchorSpec) Placement {
	role := RoleOf(id)

	def := domain.DefaultElementState(id)
	if spec.Layer != "" {
		def.Layer = spec.Layer
	}
	align := spec.Align
	if align == "" {
		align = AlignCenter
	}

	color := "#FFFFFF"
	background := ""
	switch role {
	case RoleHeadline:
		color = preset.AccentColor
	case RoleCTA:
		color = "#000000"
		background = "#FFFFFF"
	}

	return Placement{
		Anchor:     Point{X: spec.X, Y: spec.Y},
		Align:      align,
		FontSize:   spec.Size,
		Role:       role,
		Typography: l.styles.Typography(tone, role, preset.FontFamily),
		Color:      color,
		Background: background,
		Default:    def,
	}
}

// mergeAnchor は override のうち指定された項目だけを base に重ねます。
func mergeAnchor(base, override AnchorSpec) AnchorSpec {
	base.X, base.Y = override.X, override.Y
	if override.Size > 0 {
		base.Size = override.Size
	}
	if override.Align != "" {
		base.Align = override.Align
	}
	if override.Layer != "" {
		base.Layer = override.Layer
	}
	return base
}
