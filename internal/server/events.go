package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shouni/go-poster-kit/pkg/editor"
)

// eventBuffer は1クライアントあたりの未送信通知の上限です。溢れた通知は捨てます。
const eventBuffer = 16

// events はセッションの変更通知を Server-Sent Events で流します。
// クライアントは通知を受けたら /api/scene などを取り直して再描画します。
func (h *handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, errors.New("ストリーミングに対応していないレスポンスです"))
		return
	}

	changes := make(chan editor.Change, eventBuffer)
	unsubscribe := h.deps.Session.Subscribe(func(c editor.Change) {
		select {
		case changes <- c:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case c := <-changes:
			data, err := json.Marshal(c)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Kind, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
