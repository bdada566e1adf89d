package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/go-poster-kit/pkg/director"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/editor"
	"github.com/shouni/go-poster-kit/pkg/renderer"
	"github.com/shouni/go-poster-kit/pkg/workflow"
)

var acceptedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type handler struct {
	deps Deps
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest("JSON の形式が不正です")
	}
	return nil
}

func elementID(r *http.Request) domain.ElementID {
	return domain.ElementID(chi.URLParam(r, "id"))
}

// --- 参照 ---

func (h *handler) state(w http.ResponseWriter, _ *http.Request) {
	ok(w, h.deps.Session.State())
}

type layoutsResponse struct {
	Selected string                  `json:"selected"`
	Presets  []director.LayoutPreset `json:"presets"`
}

func (h *handler) layouts(w http.ResponseWriter, _ *http.Request) {
	ok(w, layoutsResponse{
		Selected: h.deps.Session.Preset().ID,
		Presets:  h.deps.Session.Layouts().Presets(),
	})
}

func (h *handler) document(w http.ResponseWriter, r *http.Request) {
	doc := h.deps.Session.Document()
	if doc.IsEmpty() {
		writeError(w, r, domain.ErrDocumentMissing)
		return
	}
	ok(w, doc.Snapshot())
}

// background は現在の背景画像をそのまま返します。
func (h *handler) background(w http.ResponseWriter, r *http.Request) {
	img := h.deps.Session.Document().Background()
	if img.IsZero() {
		writeError(w, r, domain.ErrDocumentMissing)
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("X-Image-Origin", string(img.Origin))
	_, _ = w.Write(img.Data)
}

func (h *handler) scene(w http.ResponseWriter, _ *http.Request) {
	ok(w, h.deps.Session.Scene())
}

// --- 商品画像と生成 ---

// uploadProduct は multipart の image フィールド、または画像そのものを本文で受け取ります。
func (h *handler) uploadProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, ferr := r.FormFile("image")
		if ferr != nil {
			writeError(w, r, errBadRequest("image フィールドが必要です"))
			return
		}
		defer file.Close()
		data, err = io.ReadAll(file)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, errBadRequest("画像が大きすぎます"))
			return
		}
		writeError(w, r, fmt.Errorf("アップロードの読み込みに失敗しました: %w", err))
		return
	}
	if len(data) == 0 {
		writeError(w, r, domain.ErrNoProductImage)
		return
	}

	mime := http.DetectContentType(data)
	if !acceptedImageTypes[mime] {
		writeError(w, r, errBadRequest(fmt.Sprintf("対応していない画像形式です: %s", mime)))
		return
	}
	if err := h.deps.Session.SetProduct(domain.ImageRef{Data: data, MIMEType: mime}); err != nil {
		writeError(w, r, err)
		return
	}
	created(w, h.deps.Session.State())
}

func (h *handler) resetProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Session.Reset(); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, h.deps.Session.State())
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	var req workflow.GenerateRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req.Hints); err != nil {
			writeError(w, r, err)
			return
		}
	}
	doc, err := h.deps.Workflow.Generate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, doc.Snapshot())
}

// --- 編集 ---

func (h *handler) setEditMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.deps.Session.SetEditMode(body.On); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, h.deps.Session.State())
}

func (h *handler) setLayout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if _, found := h.deps.Session.Layouts().Preset(body.ID); !found {
		writeError(w, r, errBadRequest(fmt.Sprintf("不明なレイアウトです: %s", body.ID)))
		return
	}
	if err := h.deps.Session.SetLayout(body.ID); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, h.deps.Session.State())
}

type pointerResponse struct {
	Hit   *renderer.Hit `json:"hit,omitempty"`
	State editor.State  `json:"state"`
}

func (h *handler) pointer(w http.ResponseWriter, r *http.Request) {
	var ev editor.PointerEvent
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, r, err)
		return
	}

	var resp pointerResponse
	switch editor.PointerKind(chi.URLParam(r, "kind")) {
	case editor.PointerDown:
		hit, err := h.deps.Session.PointerDown(ev)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Hit = &hit
	case editor.PointerMove:
		h.deps.Session.PointerMove(ev)
	case editor.PointerUp:
		h.deps.Session.PointerUp(ev)
	default:
		writeError(w, r, errBadRequest("ポインター種別は down / move / up のいずれかです"))
		return
	}
	resp.State = h.deps.Session.State()
	ok(w, resp)
}

func (h *handler) selectElement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID domain.ElementID `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.ID == "" {
		writeError(w, r, errBadRequest("id は必須です"))
		return
	}
	if err := h.deps.Session.Select(body.ID); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, h.deps.Session.State())
}

func (h *handler) clearSelection(w http.ResponseWriter, _ *http.Request) {
	h.deps.Session.ClearSelection()
	ok(w, h.deps.Session.State())
}

// respondElement は操作後の要素の状態を返します。
func (h *handler) respondElement(w http.ResponseWriter, r *http.Request, id domain.ElementID, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, h.deps.Session.Document().Transform(id))
}

func (h *handler) setText(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	id := elementID(r)
	if err := h.deps.Session.SetFieldText(id, body.Text); err != nil {
		writeError(w, r, err)
		return
	}
	ok(w, map[string]string{"id": string(id), "text": h.deps.Session.Document().Field(id)})
}

func (h *handler) adjustScale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta float64 `json:"delta"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	id := elementID(r)
	h.respondElement(w, r, id, h.deps.Session.AdjustScale(id, body.Delta))
}

func (h *handler) setScale(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Scale *float64 `json:"scale"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Scale == nil {
		writeError(w, r, errBadRequest("scale は必須です"))
		return
	}
	id := elementID(r)
	h.respondElement(w, r, id, h.deps.Session.SetScale(id, *body.Scale))
}

func (h *handler) center(w http.ResponseWriter, r *http.Request) {
	id := elementID(r)
	h.respondElement(w, r, id, h.deps.Session.CenterHorizontally(id))
}

func (h *handler) toggleLayer(w http.ResponseWriter, r *http.Request) {
	id := elementID(r)
	h.respondElement(w, r, id, h.deps.Session.ToggleLayer(id))
}

// --- 書き出し ---

func (h *handler) exportPNG(w http.ResponseWriter, r *http.Request) {
	scene, err := h.deps.Session.CaptureScene()
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := h.deps.Publisher.Render(r.Context(), scene)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="poster.png"`)
	_, _ = w.Write(data)
}

func (h *handler) saveVersion(w http.ResponseWriter, r *http.Request) {
	scene, err := h.deps.Session.CaptureScene()
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.deps.Publisher.SaveVersion(r.Context(), scene, h.deps.OutputDir)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created(w, res)
}
