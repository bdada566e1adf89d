package editor

import (
	"slices"
	"sync"
)

// PointerKind はポインターイベントの種別です。
type PointerKind string

const (
	PointerDown PointerKind = "down"
	PointerMove PointerKind = "move"
	PointerUp   PointerKind = "up"
)

// PointerEvent はキャンバス座標でのポインター位置です。
type PointerEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerHandler はポインターイベントを受け取るリスナーです。
type PointerHandler func(PointerEvent)

// Dispatcher はキャンバス全体のポインターイベントを配信します。
// 要素単位ではなく全体で受けるため、要素の外で離したポインターも取りこぼしません。
type Dispatcher struct {
	mu        sync.Mutex
	nextID    int
	listeners map[PointerKind]map[int]PointerHandler
}

// NewDispatcher は空の Dispatcher を作成します。
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[PointerKind]map[int]PointerHandler)}
}

// Subscribe はリスナーを登録し、登録を解除する関数を返します。解除は何度呼んでも安全です。
func (d *Dispatcher) Subscribe(kind PointerKind, h PointerHandler) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	if d.listeners[kind] == nil {
		d.listeners[kind] = make(map[int]PointerHandler)
	}
	d.listeners[kind][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.listeners[kind], id)
		})
	}
}

// Dispatch は登録順にリスナーを呼び出します。
// ロックを外してから呼ぶため、リスナー内で登録解除できます。
func (d *Dispatcher) Dispatch(kind PointerKind, ev PointerEvent) {
	d.mu.Lock()
	ids := make([]int, 0, len(d.listeners[kind]))
	for id := range d.listeners[kind] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]PointerHandler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, d.listeners[kind][id])
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// ListenerCount は kind に登録中のリスナー数を返します。
func (d *Dispatcher) ListenerCount(kind PointerKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[kind])
}
