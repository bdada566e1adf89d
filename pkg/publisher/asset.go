package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputWriter はデータを外部ストレージに保存するためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, data []byte) error
}

// LocalWriter はローカルファイルシステムに書き込む OutputWriter です。
// 一時ファイルに書いてから rename するので、途中で失敗しても既存のファイルは壊れません。
type LocalWriter struct{}

func (LocalWriter) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(path), "gs://") {
		return fmt.Errorf("ローカル出力では GCS パスを扱えません: %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".poster-*")
	if err != nil {
		return fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("書き込みに失敗しました: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("書き込みに失敗しました: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
