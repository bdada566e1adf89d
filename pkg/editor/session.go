package editor

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/renderer"
)

// Options は Session の設定です。ゼロ値の項目は既定値を使います。
type Options struct {
	ScaleRange domain.ScaleRange
	ScaleStep  float64
	PresetID   string
}

// ChangeKind は購読者に通知する変更の種別です。
type ChangeKind string

const (
	ChangeDocument   ChangeKind = "document"
	ChangeSelection  ChangeKind = "selection"
	ChangeMode       ChangeKind = "mode"
	ChangeLayout     ChangeKind = "layout"
	ChangeGeneration ChangeKind = "generation"
	ChangeProduct    ChangeKind = "product"
)

// Change は再描画のきっかけとなる変更通知です。
type Change struct {
	Kind       ChangeKind `json:"kind"`
	DocumentID string     `json:"documentId,omitempty"`
}

// State はセッションの一時的な UI 状態です。ドキュメントには含まれません。
type State struct {
	DocumentID string           `json:"documentId,omitempty"`
	PresetID   string           `json:"presetId"`
	EditMode   bool             `json:"editMode"`
	Selected   domain.ElementID `json:"selected,omitempty"`
	Generating bool             `json:"generating"`
	HasProduct bool             `json:"hasProduct"`
	Drag       DragState        `json:"drag"`
}

// GenerationTicket は BeginGeneration が返す、生成に必要な入力の写しです。
type GenerationTicket struct {
	Product domain.ImageRef
	Preset  director.LayoutPreset
}

// Session は1つの編集セッションです。ドキュメント、選択、編集モード、生成中フラグを保持し、
// すべての変更を1つのロックで直列化します。
type Session struct {
	mu         sync.Mutex
	layouts    *director.LayoutManager
	renderer   *renderer.Renderer
	scaleRange domain.ScaleRange
	scaleStep  float64

	doc         domain.PosterDocument
	preset      director.LayoutPreset
	arrangement director.Arrangement
	product     domain.ImageRef
	editMode    bool
	selected    domain.ElementID
	generating  bool

	pointer *Dispatcher
	drag    *DragController

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Change)
}

// NewSession は新しい編集セッションを作成します。
func NewSession(layouts *director.LayoutManager, r *renderer.Renderer, opts Options) (*Session, error) {
	if layouts == nil {
		return nil, fmt.Errorf("layouts は必須です")
	}
	if r == nil {
		return nil, fmt.Errorf("renderer は必須です")
	}
	if opts.ScaleRange == (domain.ScaleRange{}) {
		opts.ScaleRange = domain.DefaultScaleRange
	}
	if !opts.ScaleRange.Valid() {
		return nil, fmt.Errorf("スケール範囲が不正です: [%v, %v]", opts.ScaleRange.Min, opts.ScaleRange.Max)
	}
	if opts.ScaleStep <= 0 {
		opts.ScaleStep = domain.DefaultScaleStep
	}

	preset := layouts.Default()
	if opts.PresetID != "" {
		p, ok := layouts.Preset(opts.PresetID)
		if !ok {
			return nil, fmt.Errorf("不明なレイアウトです: %s", opts.PresetID)
		}
		preset = p
	}

	s := &Session{
		layouts:    layouts,
		renderer:   r,
		scaleRange: opts.ScaleRange,
		scaleStep:  opts.ScaleStep,
		preset:     preset,
		pointer:    NewDispatcher(),
		subs:       make(map[int]func(Change)),
	}
	s.arrangement = layouts.Resolve(preset, domain.ToneBold)
	s.drag = NewDragController(s.pointer, s.moveLocked)
	return s, nil
}

// Subscribe は変更通知の購読を登録し、解除関数を返します。
func (s *Session) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) notify(kinds ...ChangeKind) {
	if len(kinds) == 0 {
		return
	}
	s.mu.Lock()
	docID := s.doc.ID()
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, kind := range kinds {
		for _, fn := range fns {
			fn(Change{Kind: kind, DocumentID: docID})
		}
	}
}

// update はロック下で fn を実行し、ロック解除後に変更を通知します。
func (s *Session) update(fn func() ([]ChangeKind, error)) error {
	s.mu.Lock()
	kinds, err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(kinds...)
	return nil
}

// --- 参照 ---

// Document は現在のドキュメントを返します。値なので呼び出し側で変更しても影響しません。
func (s *Session) Document() domain.PosterDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Preset は選択中のレイアウトプリセットを返します。
func (s *Session) Preset() director.LayoutPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

// Layouts はセッションが参照するプリセットカタログです。
func (s *Session) Layouts() *director.LayoutManager { return s.layouts }

// Product はアップロード済みの商品画像を返します。
func (s *Session) Product() domain.ImageRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product
}

// State は現在の UI 状態を返します。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		DocumentID: s.doc.ID(),
		PresetID:   s.preset.ID,
		EditMode:   s.editMode,
		Selected:   s.selected,
		Generating: s.generating,
		HasProduct: !s.product.IsZero(),
		Drag:       s.drag.State(),
	}
}

// Scene は現在の状態を描画したシーンを返します。
func (s *Session) Scene() renderer.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sceneLocked()
}

// CaptureScene は書き出し用のシーンを返します。編集用の装飾は含みません。
func (s *Session) CaptureScene() (renderer.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.IsEmpty() {
		return renderer.Scene{}, domain.ErrDocumentMissing
	}
	return s.sceneLocked().CaptureTarget(), nil
}

func (s *Session) sceneLocked() renderer.Scene {
	return s.renderer.Render(s.doc, s.arrangement, renderer.View{EditMode: s.editMode, Selected: s.selected})
}

// --- 入力 ---

// SetProduct は商品画像を差し替えます。生成中は変更できません。
func (s *Session) SetProduct(img domain.ImageRef) error {
	return s.update(func() ([]ChangeKind, error) {
		if s.generating {
			return nil, domain.ErrGenerationInProgress
		}
		if img.IsZero() {
			return nil, domain.ErrNoProductImage
		}
		img.Origin = domain.OriginOriginal
		s.product = img
		return []ChangeKind{ChangeProduct}, nil
	})
}

// Reset はアップロードを取り消し、ドキュメント、選択、編集モードを初期状態に戻します。
func (s *Session) Reset() error {
	return s.update(func() ([]ChangeKind, error) {
		if s.generating {
			return nil, domain.ErrGenerationInProgress
		}
		s.drag.End()
		s.product = domain.ImageRef{}
		s.doc = domain.PosterDocument{}
		s.editMode = false
		s.selected = ""
		return []ChangeKind{ChangeProduct, ChangeDocument, ChangeMode}, nil
	})
}

// SetLayout はレイアウトプリセットを切り替えます。
// 保存済みの変形は維持し、未保存の要素だけが新しいプリセットの既定値に従います。
func (s *Session) SetLayout(presetID string) error {
	return s.update(func() ([]ChangeKind, error) {
		p, ok := s.layouts.Preset(presetID)
		if !ok {
			return nil, fmt.Errorf("不明なレイアウトです: %s", presetID)
		}
		s.preset = p
		s.arrangement = s.layouts.Resolve(p, s.toneLocked())
		s.doc = s.doc.WithDefaults(s.arrangement)
		return []ChangeKind{ChangeLayout}, nil
	})
}

func (s *Session) toneLocked() domain.Tone {
	if t := s.doc.Tone(); t != "" {
		return t
	}
	return domain.ToneBold
}

// --- 編集モードと選択 ---

// SetEditMode は編集モードを切り替えます。終了時は選択とドラッグを解除します。
func (s *Session) SetEditMode(on bool) error {
	return s.update(func() ([]ChangeKind, error) {
		if on {
			if s.generating {
				return nil, domain.ErrGenerationInProgress
			}
			if s.doc.IsEmpty() {
				return nil, domain.ErrDocumentMissing
			}
		}
		if s.editMode == on {
			return nil, nil
		}
		s.editMode = on
		if !on {
			s.drag.End()
			s.selected = ""
		}
		return []ChangeKind{ChangeMode, ChangeSelection}, nil
	})
}

// Select は要素を選択します。編集モードでのみ有効です。
func (s *Session) Select(id domain.ElementID) error {
	return s.update(func() ([]ChangeKind, error) {
		if !s.editMode {
			return nil, domain.ErrEditModeOff
		}
		s.selected = id
		return []ChangeKind{ChangeSelection}, nil
	})
}

// ClearSelection は選択を解除します。
func (s *Session) ClearSelection() {
	_ = s.update(func() ([]ChangeKind, error) {
		if s.selected == "" {
			return nil, nil
		}
		s.selected = ""
		return []ChangeKind{ChangeSelection}, nil
	})
}

// --- ドキュメント操作 ---

// SetFieldText は要素のテキストだけを更新します。変形状態は変わりません。
func (s *Session) SetFieldText(id domain.ElementID, text string) error {
	return s.update(func() ([]ChangeKind, error) {
		if err := s.requireDocumentLocked(); err != nil {
			return nil, err
		}
		s.doc = s.doc.SetFieldText(id, text)
		return []ChangeKind{ChangeDocument}, nil
	})
}

// AdjustScale は選択中の要素のスケールを delta だけ変えます。
func (s *Session) AdjustScale(id domain.ElementID, delta float64) error {
	return s.mutateSelected(id, func(doc domain.PosterDocument) domain.PosterDocument {
		return AdjustScale(doc, id, delta, s.scaleRange)
	})
}

// SetScale は選択中の要素のスケールを絶対値で設定します。
func (s *Session) SetScale(id domain.ElementID, scale float64) error {
	return s.mutateSelected(id, func(doc domain.PosterDocument) domain.PosterDocument {
		return SetScale(doc, id, scale, s.scaleRange)
	})
}

// CenterHorizontally は選択中の要素の x オフセットを 0 に戻します。
func (s *Session) CenterHorizontally(id domain.ElementID) error {
	return s.mutateSelected(id, func(doc domain.PosterDocument) domain.PosterDocument {
		return CenterHorizontally(doc, id)
	})
}

// ToggleLayer は選択中の要素の front/back を切り替えます。
func (s *Session) ToggleLayer(id domain.ElementID) error {
	return s.mutateSelected(id, func(doc domain.PosterDocument) domain.PosterDocument {
		return ToggleLayer(doc, id)
	})
}

func (s *Session) mutateSelected(id domain.ElementID, fn func(domain.PosterDocument) domain.PosterDocument) error {
	return s.update(func() ([]ChangeKind, error) {
		if err := s.requireSelectedLocked(id); err != nil {
			return nil, err
		}
		s.doc = fn(s.doc)
		return []ChangeKind{ChangeDocument}, nil
	})
}

func (s *Session) requireDocumentLocked() error {
	if s.generating {
		return domain.ErrGenerationInProgress
	}
	if s.doc.IsEmpty() {
		return domain.ErrDocumentMissing
	}
	return nil
}

func (s *Session) requireSelectedLocked(id domain.ElementID) error {
	if err := s.requireDocumentLocked(); err != nil {
		return err
	}
	if !s.editMode {
		return domain.ErrEditModeOff
	}
	if s.selected != id {
		return domain.ErrNotSelected
	}
	return nil
}

// --- ポインター ---

// PointerDown はキャンバス上のポインター押下を処理します。
// コントロールに当たった場合はその操作を実行してイベントを消費し、ドラッグは始めません。
// 要素に当たった場合は選択してドラッグを開始し、何もない場所では選択を解除します。
// 編集モードでないときは何もしません。
func (s *Session) PointerDown(ev PointerEvent) (renderer.Hit, error) {
	var hit renderer.Hit
	err := s.update(func() ([]ChangeKind, error) {
		hit = renderer.Hit{Kind: renderer.HitNone}
		if !s.editMode || s.generating {
			return nil, nil
		}

		hit = s.sceneLocked().HitTest(ev.X, ev.Y)
		switch hit.Kind {
		case renderer.HitControl:
			s.applyControlLocked(hit.Control, hit.Element)
			return []ChangeKind{ChangeDocument}, nil
		case renderer.HitElement:
			s.selected = hit.Element
			s.drag.Begin(hit.Element, ev, s.doc.Transform(hit.Element).Offset)
			s.pointer.Dispatch(PointerDown, ev)
			return []ChangeKind{ChangeSelection}, nil
		default:
			if s.selected == "" {
				return nil, nil
			}
			s.selected = ""
			return []ChangeKind{ChangeSelection}, nil
		}
	})
	return hit, err
}

// PointerMove はポインター移動を配信します。ドラッグ中でなければ何も起きません。
func (s *Session) PointerMove(ev PointerEvent) {
	_ = s.update(func() ([]ChangeKind, error) {
		_, dragging := s.drag.Active()
		s.pointer.Dispatch(PointerMove, ev)
		if !dragging {
			return nil, nil
		}
		return []ChangeKind{ChangeDocument}, nil
	})
}

// PointerUp はポインターの解放を配信します。位置に関係なくドラッグを終了します。
func (s *Session) PointerUp(ev PointerEvent) {
	_ = s.update(func() ([]ChangeKind, error) {
		s.pointer.Dispatch(PointerUp, ev)
		return nil, nil
	})
}

// DragState はドラッグ状態機械の現在の状態を返します。
func (s *Session) DragState() DragState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.State()
}

// moveLocked はドラッグ中の移動を反映します。Dispatch は s.mu を保持したまま呼ばれます。
func (s *Session) moveLocked(id domain.ElementID, offset domain.Offset) {
	s.doc = Move(s.doc, id, offset)
}

func (s *Session) applyControlLocked(kind renderer.ControlKind, id domain.ElementID) {
	switch kind {
	case renderer.ControlScaleDown:
		s.doc = AdjustScale(s.doc, id, -s.scaleStep, s.scaleRange)
	case renderer.ControlScaleUp:
		s.doc = AdjustScale(s.doc, id, s.scaleStep, s.scaleRange)
	case renderer.ControlCenter:
		s.doc = CenterHorizontally(s.doc, id)
	case renderer.ControlLayer:
		s.doc = ToggleLayer(s.doc, id)
	}
}

// --- 生成 ---

// BeginGeneration は生成中状態に入ります。編集モードは強制的に終了し、
// 生成中の再実行は ErrGenerationInProgress で拒否します。
func (s *Session) BeginGeneration() (GenerationTicket, error) {
	var ticket GenerationTicket
	err := s.update(func() ([]ChangeKind, error) {
		if s.generating {
			return nil, domain.ErrGenerationInProgress
		}
		if s.product.IsZero() {
			return nil, domain.ErrNoProductImage
		}
		s.generating = true
		s.drag.End()
		s.editMode = false
		s.selected = ""
		ticket = GenerationTicket{Product: s.product, Preset: s.preset}
		return []ChangeKind{ChangeGeneration, ChangeMode}, nil
	})
	return ticket, err
}

// CompleteGeneration は新しいドキュメントで丸ごと置き換え、生成中状態を終えます。
func (s *Session) CompleteGeneration(doc domain.PosterDocument) {
	_ = s.update(func() ([]ChangeKind, error) {
		s.generating = false
		s.arrangement = s.layouts.Resolve(s.preset, doc.Tone())
		s.doc = doc.WithDefaults(s.arrangement)
		s.selected = ""
		slog.Info("ポスターを更新しました", "document", doc.ID(), "tone", doc.Tone(), "preset", s.preset.ID)
		return []ChangeKind{ChangeGeneration, ChangeDocument}, nil
	})
}

// FailGeneration は生成中状態を終えます。ドキュメントは生成前のまま残ります。
func (s *Session) FailGeneration() {
	_ = s.update(func() ([]ChangeKind, error) {
		s.generating = false
		return []ChangeKind{ChangeGeneration}, nil
	})
}
