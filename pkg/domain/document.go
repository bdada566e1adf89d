package domain

import (
	"maps"
	"slices"
)

// PosterDocument は編集セッションのルート集約です。
// 更新系メソッドはすべて新しい値を返し、レシーバー自身は変更しません。
// 変更のないマップは新旧の値で共有されます。
type PosterDocument struct {
	id         string
	background ImageRef
	fields     map[ElementID]string
	tone       Tone
	elements   map[ElementID]ElementState
	company    *CompanyInfo
	defaults   Defaults
}

// NewDocument は生成結果からドキュメントを丸ごと作り直します。
// 要素の変形状態は空から始まり、初回参照時に既定値が使われます。
func NewDocument(id string, content GeneratedContent, background ImageRef, company *CompanyInfo) PosterDocument {
	fields := content.Fields()
	if line := company.ContactLine(); line != "" {
		fields[ElementContact] = line
	}

	var companyCopy *CompanyInfo
	if company != nil {
		c := *company
		companyCopy = &c
	}

	return PosterDocument{
		id:         id,
		background: background,
		fields:     fields,
		tone:       content.EmotionalTone,
		elements:   map[ElementID]ElementState{},
		company:    companyCopy,
	}
}

func (d PosterDocument) ID() string                { return d.id }
func (d PosterDocument) Tone() Tone                { return d.tone }
func (d PosterDocument) Background() ImageRef      { return d.background }
func (d PosterDocument) Company() *CompanyInfo     { return d.company }
func (d PosterDocument) Field(id ElementID) string { return d.fields[id] }

// IsEmpty はまだ生成が一度も行われていないゼロ値かどうかを返します。
func (d PosterDocument) IsEmpty() bool {
	return d.id == "" && d.fields == nil
}

// Fields はテキストフィールドのコピーを返します。
func (d PosterDocument) Fields() map[ElementID]string {
	return maps.Clone(d.fields)
}

// HasTransform は id の変形状態が明示的に保存済みかどうかを返します。
func (d PosterDocument) HasTransform(id ElementID) bool {
	_, ok := d.elements[id]
	return ok
}

// Transform は保存済みの状態、無ければレイアウト既定値、それも無ければ要素ごとの既定値を返します。
func (d PosterDocument) Transform(id ElementID) ElementState {
	if s, ok := d.elements[id]; ok {
		return s
	}
	if d.defaults != nil {
		return d.defaults.DefaultState(id)
	}
	return DefaultElementState(id)
}

// SetTransform は id の状態だけを差し替えた新しいドキュメントを返します。
// 未知の id は既定値で作成してから更新を適用します。
func (d PosterDocument) SetTransform(id ElementID, u ElementUpdate) PosterDocument {
	next := u.Apply(d.Transform(id))
	elements := make(map[ElementID]ElementState, len(d.elements)+1)
	maps.Copy(elements, d.elements)
	elements[id] = next
	d.elements = elements
	return d
}

// SetFieldText はテキストだけを更新します。変形状態には触れません。
func (d PosterDocument) SetFieldText(id ElementID, text string) PosterDocument {
	fields := make(map[ElementID]string, len(d.fields)+1)
	maps.Copy(fields, d.fields)
	fields[id] = text
	d.fields = fields
	return d
}

// WithDefaults は未保存要素の既定状態を差し替えます。保存済みの状態は維持されます。
func (d PosterDocument) WithDefaults(defaults Defaults) PosterDocument {
	d.defaults = defaults
	return d
}

// ElementIDs は既定の要素に、フィールドか変形状態を持つ追加要素を足したIDを基準順で返します。
func (d PosterDocument) ElementIDs() []ElementID {
	ids := slices.Clone(CanonicalElements)
	var extra []ElementID
	seen := func(id ElementID) bool {
		return id.IsKnown() || slices.Contains(extra, id)
	}
	for id := range d.fields {
		if !seen(id) {
			extra = append(extra, id)
		}
	}
	for id := range d.elements {
		if !seen(id) {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	return append(ids, extra...)
}

// DocumentSnapshot は JSON 出力用のドキュメントの写しです。
type DocumentSnapshot struct {
	ID         string                     `json:"id"`
	Tone       Tone                       `json:"emotionalTone"`
	Background ImageRef                   `json:"background"`
	Fields     map[ElementID]string       `json:"fields"`
	Elements   map[ElementID]ElementState `json:"elements"`
	Company    *CompanyInfo               `json:"companyInfo,omitempty"`
}

// Snapshot は全要素の状態を解決済みの形で書き出します。
func (d PosterDocument) Snapshot() DocumentSnapshot {
	elements := make(map[ElementID]ElementState)
	for _, id := range d.ElementIDs() {
		elements[id] = d.Transform(id)
	}
	fields := d.Fields()
	if fields == nil {
		fields = map[ElementID]string{}
	}
	return DocumentSnapshot{
		ID:         d.id,
		Tone:       d.tone,
		Background: d.background,
		Fields:     fields,
		Elements:   elements,
		Company:    d.company,
	}
}
