package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// decodeJSON はモデルの応答から JSON を取り出して v にデコードします。
// コードフェンス、最外側の {...}、応答全体の順に試します。
func decodeJSON(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		firstBracket := strings.Index(raw, "{")
		lastBracket := strings.LastIndex(raw, "}")
		if firstBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			rawJSON = raw
		}
	}

	if err := json.Unmarshal([]byte(rawJSON), v); err != nil {
		return fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	return nil
}

// truncateString は s を先頭 maxLen 文字（rune 単位）に切り詰めます。
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
