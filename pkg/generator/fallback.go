package generator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// FallbackSynthesizer は合成に失敗したとき元の商品画像を返す ImageSynthesizer です。
// キャンバスを常に描画可能に保つため、エラーは呼び出し元に伝えずログに残します。
type FallbackSynthesizer struct {
	inner ImageSynthesizer
}

// NewFallbackSynthesizer は inner を包んだ FallbackSynthesizer を返します。
func NewFallbackSynthesizer(inner ImageSynthesizer) *FallbackSynthesizer {
	return &FallbackSynthesizer{inner: inner}
}

func (f *FallbackSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (domain.ImageRef, error) {
	original := req.Product
	original.Origin = domain.OriginOriginal

	if f.inner == nil {
		return original, nil
	}
	img, err := f.inner.Synthesize(ctx, req)
	if err == nil && !img.IsZero() {
		return img, nil
	}
	if err == nil {
		err = &domain.SynthesisError{Op: "generate", Err: errors.New("空の画像が返されました")}
	}
	if ctx.Err() != nil {
		// 呼び出し元のキャンセルは生成全体の失敗として扱う
		return domain.ImageRef{}, ctx.Err()
	}
	slog.Warn("背景画像の合成に失敗したため元の画像を使います", "error", err)
	return original, nil
}
