package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/go-poster-kit/pkg/asset"
	"github.com/shouni/go-poster-kit/pkg/renderer"
)

// Capturer はシーンを PNG に平坦化します。rasterizer.Rasterizer が実装します。
type Capturer interface {
	CapturePNG(ctx context.Context, scene renderer.Scene) ([]byte, error)
}

// PublishResult は書き出したファイルの情報です。
type PublishResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
	// Version は SaveVersion のときだけ 1 以上になります。
	Version int `json:"version,omitempty"`
}

// PosterPublisher はキャプチャ対象のシーンを画像として書き出します。
// 渡されたシーンに編集用のオーバーレイが残っていても、書き出す前に取り除きます。
type PosterPublisher struct {
	writer   OutputWriter
	capturer Capturer

	mu       sync.Mutex
	versions map[string]int
}

// NewPosterPublisher は PosterPublisher を作成します。
func NewPosterPublisher(writer OutputWriter, capturer Capturer) (*PosterPublisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer は必須です")
	}
	if capturer == nil {
		return nil, fmt.Errorf("capturer は必須です")
	}
	return &PosterPublisher{writer: writer, capturer: capturer, versions: map[string]int{}}, nil
}

// Render はシーンを PNG にして返します。書き出しは行いません。
func (p *PosterPublisher) Render(ctx context.Context, scene renderer.Scene) ([]byte, error) {
	data, err := p.capturer.CapturePNG(ctx, scene.CaptureTarget())
	if err != nil {
		return nil, fmt.Errorf("ポスターのキャプチャに失敗しました: %w", err)
	}
	return data, nil
}

// Export はシーンを path に書き出します。既存のファイルは上書きします。
func (p *PosterPublisher) Export(ctx context.Context, scene renderer.Scene, path string) (PublishResult, error) {
	data, err := p.Render(ctx, scene)
	if err != nil {
		return PublishResult{}, err
	}
	if err := p.writer.Write(ctx, path, data); err != nil {
		return PublishResult{}, fmt.Errorf("ポスターの保存に失敗しました: %w", err)
	}
	slog.Info("ポスターを書き出しました", "path", path, "bytes", len(data))
	return PublishResult{Path: path, Bytes: len(data)}, nil
}

// SaveVersion は dir に連番付きのファイル (poster_1.png, poster_2.png, ...) として書き出します。
// 番号は既存のファイルの続きから振ります。
func (p *PosterPublisher) SaveVersion(ctx context.Context, scene renderer.Scene, dir string) (PublishResult, error) {
	base, err := asset.ResolveOutputPath(dir, asset.DefaultVersionFileName)
	if err != nil {
		return PublishResult{}, err
	}

	// キャプチャは重いのでロックの外で行う
	data, err := p.Render(ctx, scene)
	if err != nil {
		return PublishResult{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	index, ok := p.versions[dir]
	if !ok {
		if index, err = asset.NextVersionIndex(dir); err != nil {
			return PublishResult{}, err
		}
	}
	path, err := asset.GenerateIndexedPath(base, index)
	if err != nil {
		return PublishResult{}, err
	}
	if err := p.writer.Write(ctx, path, data); err != nil {
		return PublishResult{}, fmt.Errorf("バージョンの保存に失敗しました: %w", err)
	}
	p.versions[dir] = index + 1

	slog.Info("バージョンを保存しました", "path", path, "version", index)
	return PublishResult{Path: path, Bytes: len(data), Version: index}, nil
}
