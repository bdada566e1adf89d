package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

func TestDispatcher_Subscribe(t *testing.T) {
	d := NewDispatcher()

	var got []PointerEvent
	unsubscribe := d.Subscribe(PointerMove, func(ev PointerEvent) { got = append(got, ev) })
	assert.Equal(t, 1, d.ListenerCount(PointerMove))

	d.Dispatch(PointerMove, PointerEvent{X: 1, Y: 2})
	d.Dispatch(PointerUp, PointerEvent{X: 9, Y: 9})
	unsubscribe()
	unsubscribe()
	d.Dispatch(PointerMove, PointerEvent{X: 3, Y: 4})

	assert.Equal(t, []PointerEvent{{X: 1, Y: 2}}, got)
	assert.Zero(t, d.ListenerCount(PointerMove))
}

func TestDispatcher_UnsubscribeInsideHandler(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	var unsubscribe func()
	unsubscribe = d.Subscribe(PointerUp, func(PointerEvent) {
		calls++
		unsubscribe()
	})

	d.Dispatch(PointerUp, PointerEvent{})
	d.Dispatch(PointerUp, PointerEvent{})
	assert.Equal(t, 1, calls)
}

func TestDragController_RoundTrip(t *testing.T) {
	d := NewDispatcher()
	offsets := map[domain.ElementID]domain.Offset{}
	c := NewDragController(d, func(id domain.ElementID, off domain.Offset) { offsets[id] = off })

	assert.Equal(t, DragIdle, c.State())
	assert.Zero(t, d.ListenerCount(PointerMove))

	require.True(t, c.Begin(domain.ElementShortSlogan, PointerEvent{X: 100, Y: 100}, domain.Offset{}))
	assert.Equal(t, DragDragging, c.State())
	assert.Equal(t, 1, d.ListenerCount(PointerMove))
	assert.Equal(t, 1, d.ListenerCount(PointerUp))

	t.Run("ドラッグ中の再開始は無視される", func(t *testing.T) {
		assert.False(t, c.Begin(domain.ElementBrand, PointerEvent{}, domain.Offset{}))
		id, ok := c.Active()
		assert.True(t, ok)
		assert.Equal(t, domain.ElementShortSlogan, id)
	})

	d.Dispatch(PointerMove, PointerEvent{X: 130, Y: 145})
	assert.Equal(t, domain.Offset{X: 30, Y: 45}, offsets[domain.ElementShortSlogan])

	// 要素の外で離してもドラッグは終わる
	d.Dispatch(PointerUp, PointerEvent{X: 890, Y: 1190})
	assert.Equal(t, DragIdle, c.State())
	assert.Zero(t, d.ListenerCount(PointerMove))
	assert.Zero(t, d.ListenerCount(PointerUp))

	d.Dispatch(PointerMove, PointerEvent{X: 500, Y: 500})
	assert.Equal(t, domain.Offset{X: 30, Y: 45}, offsets[domain.ElementShortSlogan])
	assert.Len(t, offsets, 1)
}

func TestDragController_StartsFromExistingOffset(t *testing.T) {
	d := NewDispatcher()
	var last domain.Offset
	c := NewDragController(d, func(_ domain.ElementID, off domain.Offset) { last = off })

	c.Begin(domain.ElementBrand, PointerEvent{X: 10, Y: 10}, domain.Offset{X: -20, Y: 5})
	d.Dispatch(PointerMove, PointerEvent{X: 0, Y: 30})
	assert.Equal(t, domain.Offset{X: -30, Y: 25}, last)

	c.End()
	c.End()
	assert.Equal(t, DragIdle, c.State())
	assert.Zero(t, d.ListenerCount(PointerUp))
}
