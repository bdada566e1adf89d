package workflow

import (
	"context"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// Workflow は、商品画像からポスターを1枚生成する工程を定義します。
type Workflow interface {
	Generate(ctx context.Context, req GenerateRequest) (domain.PosterDocument, error)
}

// GenerateRequest は1回の生成に渡すユーザー入力です。商品画像はセッションに保持されたものを使います。
type GenerateRequest struct {
	Hints domain.Hints `json:"hints"`
}

var _ Workflow = (*Manager)(nil)
