package domain

import (
	"errors"
	"fmt"
)

// GenerationFailedMessage はコピー生成失敗時にユーザーへ表示する文言です。
const GenerationFailedMessage = "Failed to generate poster. Please try a different image or context."

var (
	ErrGenerationInProgress = errors.New("生成処理が進行中です")
	ErrNoProductImage       = errors.New("商品画像がアップロードされていません")
	ErrEditModeOff          = errors.New("編集モードではありません")
	ErrNotSelected          = errors.New("対象の要素が選択されていません")
	ErrDocumentMissing      = errors.New("ポスターがまだ生成されていません")
)

// GenerationError はテキスト生成エンドポイントの失敗、または解析不能な応答を表します。
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("コピー生成に失敗しました (%s): %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SynthesisError は画像生成エンドポイントの失敗を表します。呼び出し側で元画像に置き換えて吸収します。
type SynthesisError struct {
	Op  string
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("画像生成に失敗しました (%s): %v", e.Op, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
