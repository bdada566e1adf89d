package editor

import (
	"log/slog"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// DragState はドラッグ操作の状態です。
type DragState string

const (
	DragIdle     DragState = "idle"
	DragDragging DragState = "dragging"
)

// MoveFunc はドラッグ中の要素に新しいオフセットを適用します。
type MoveFunc func(id domain.ElementID, offset domain.Offset)

// DragController はポインター入力を要素のオフセット更新に変換する状態機械です。
// move/up のリスナーは Dragging の間だけ登録され、Idle に戻る際に必ず解除されます。
// ゴルーチン安全ではないため、呼び出し側で排他してください。
type DragController struct {
	pointer *Dispatcher
	move    MoveFunc

	state           DragState
	element         domain.ElementID
	pointerOrigin   PointerEvent
	transformOrigin domain.Offset
	release         []func()
}

// NewDragController は DragController を作成します。
func NewDragController(pointer *Dispatcher, move MoveFunc) *DragController {
	return &DragController{pointer: pointer, move: move, state: DragIdle}
}

// State は現在の状態を返します。
func (c *DragController) State() DragState { return c.state }

// Active はドラッグ中の要素を返します。
func (c *DragController) Active() (domain.ElementID, bool) {
	return c.element, c.state == DragDragging
}

// Begin は Idle から Dragging に遷移します。ドラッグ中の呼び出しは無視します。
func (c *DragController) Begin(id domain.ElementID, at PointerEvent, origin domain.Offset) bool {
	if c.state == DragDragging {
		return false
	}
	c.state = DragDragging
	c.element = id
	c.pointerOrigin = at
	c.transformOrigin = origin
	c.release = []func(){
		c.pointer.Subscribe(PointerMove, c.onMove),
		c.pointer.Subscribe(PointerUp, c.onUp),
	}
	slog.Debug("ドラッグを開始しました", "element", id, "x", at.X, "y", at.Y)
	return true
}

// End は Idle に戻り、登録したリスナーをすべて解除します。
func (c *DragController) End() {
	for _, release := range c.release {
		release()
	}
	c.release = nil
	if c.state == DragDragging {
		slog.Debug("ドラッグを終了しました", "element", c.element)
	}
	c.state = DragIdle
	c.element = ""
}

func (c *DragController) onMove(ev PointerEvent) {
	if c.state != DragDragging {
		return
	}
	delta := domain.Offset{X: ev.X - c.pointerOrigin.X, Y: ev.Y - c.pointerOrigin.Y}
	c.move(c.element, c.transformOrigin.Add(delta))
}

func (c *DragController) onUp(PointerEvent) {
	c.End()
}
