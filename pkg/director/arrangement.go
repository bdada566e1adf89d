package director

import "github.com/shouni/go-poster-kit/pkg/domain"

// Placement は1要素分の解決済み配置です。ユーザーの変形はこの上に適用されます。
type Placement struct {
	Anchor     Point               `json:"anchor"`
	Align      Align               `json:"align"`
	FontSize   float64             `json:"fontSize"`
	Role       Role                `json:"role"`
	Typography Typography          `json:"typography"`
	Color      string              `json:"color"`
	Background string              `json:"background,omitempty"`
	Default    domain.ElementState `json:"default"`
}

// Arrangement は Resolve の結果です。domain.Defaults を実装し、未保存要素の既定状態を与えます。
type Arrangement struct {
	PresetID   string
	Tone       domain.Tone
	placements map[domain.ElementID]Placement
	fallback   Placement
}

// Placement は id の配置を返します。定義の無い要素は中央の既定配置になります。
func (a Arrangement) Placement(id domain.ElementID) Placement {
	if p, ok := a.placements[id]; ok {
		return p
	}
	p := a.fallback
	p.Default = domain.DefaultElementState(id)
	return p
}

// DefaultState は id の既定の変形状態を返します。
func (a Arrangement) DefaultState(id domain.ElementID) domain.ElementState {
	return a.Placement(id).Default
}
