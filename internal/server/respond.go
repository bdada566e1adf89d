package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// successEnvelope は成功時の JSON 形式です。
type successEnvelope struct {
	Data any `json:"data"`
}

// errorEnvelope は失敗時の JSON 形式です。
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// badRequest はリクエスト自体の不備を表します。
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func errBadRequest(msg string) error { return &badRequest{msg: msg} }

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, successEnvelope{Data: data})
}

// classify はエラーを HTTP ステータス、コード、利用者向けメッセージに対応付けます。
func classify(err error) (int, string, string) {
	var genErr *domain.GenerationError
	var bad *badRequest
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request", bad.msg
	case errors.Is(err, domain.ErrGenerationInProgress):
		return http.StatusConflict, "generation_in_progress", err.Error()
	case errors.Is(err, domain.ErrNoProductImage):
		return http.StatusBadRequest, "no_product_image", err.Error()
	case errors.Is(err, domain.ErrEditModeOff):
		return http.StatusConflict, "edit_mode_off", err.Error()
	case errors.Is(err, domain.ErrNotSelected):
		return http.StatusConflict, "not_selected", err.Error()
	case errors.Is(err, domain.ErrDocumentMissing):
		return http.StatusNotFound, "document_missing", err.Error()
	case errors.As(err, &genErr):
		return http.StatusBadGateway, "generation_failed", domain.GenerationFailedMessage
	default:
		return http.StatusInternalServerError, "internal", "内部エラーが発生しました"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "リクエストの処理に失敗しました",
			"error", err, "code", code, "request_id", middleware.GetReqID(r.Context()))
	}
	writeJSON(w, status, errorEnvelope{Error: msg, Code: code})
}
