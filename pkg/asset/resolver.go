package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultExportFileName は固定パスでの書き出しに使うファイル名です。
	DefaultExportFileName = "poster.png"
	// DefaultVersionFileName は「バージョン保存」で連番を付けるベースのファイル名です。
	DefaultVersionFileName = "poster.png"
)

// VersionFileRegex は保存済みバージョン (poster_1.png 等) に一致します
var VersionFileRegex = createIndexedRegex(DefaultVersionFileName)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "output/poster.png", 1 -> "output/poster_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// NextVersionIndex は dir 内の保存済みバージョンの最大番号 + 1 を返します。
// ディレクトリが存在しない場合は 1 です。
func NextVersionIndex(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("出力ディレクトリの読み込みに失敗しました: %w", err)
	}

	ext := filepath.Ext(DefaultVersionFileName)
	prefix := strings.TrimSuffix(DefaultVersionFileName, ext) + "_"
	maxIndex := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !VersionFileRegex.MatchString(name) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext))
		if err == nil && n > maxIndex {
			maxIndex = n
		}
	}
	return maxIndex + 1, nil
}

// createIndexedRegex は、ファイル名に基づきインデックス付きファイル用の正規表現を生成します。
// 例: "poster.png" -> ^poster_\d+\.png$
func createIndexedRegex(fileName string) *regexp.Regexp {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)

	pattern := fmt.Sprintf(`^%s_\d+%s$`, regexp.QuoteMeta(baseName), regexp.QuoteMeta(ext))
	return regexp.MustCompile(pattern)
}
