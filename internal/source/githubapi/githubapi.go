// Package githubapi 获取并解码 GitHub Emoji API（shortcode -> 图片地址）。
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/John-Robertt/emotax/internal/source"
)

// DefaultURL 是 GitHub Emoji API 的默认地址。
const DefaultURL = "https://api.github.com/emojis"

// acceptHeader 是 GitHub REST API 建议的媒体类型。
// 客户端标识（User-Agent）由 httpx 传输层统一注入。
const acceptHeader = "application/vnd.github+json"

// Entry 是 identifier 源的一条原始条目（尚未 decode 成 Glyph）。
type Entry struct {
	Shortcode string
	Locator   string
}

// Fetch 拉取 emoji 映射的原始 JSON。
func Fetch(ctx context.Context, c *http.Client, apiURL string) ([]byte, error) {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	h := http.Header{}
	h.Set("Accept", acceptHeader)
	return source.Get(ctx, c, apiURL, h)
}

// Parse 把 JSON 对象解码为条目列表，保持对象键的出现顺序。
//
// 不能用 map[string]string：Go 的 map 会丢掉枚举顺序，而分组内
// shortcode 的输出顺序契约就是源的枚举顺序。这里走 token 流逐键读取。
func Parse(raw []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("响应不是合法 JSON：%w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("期望 JSON 对象，实际 %v", tok)
	}

	entries := make([]Entry, 0, 2048)
	seen := make(map[string]struct{}, 2048)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("期望字符串键，实际 %v", keyTok)
		}
		if _, dup := seen[key]; dup {
			// shortcode 是唯一键；重复键说明源已经不可信。
			return nil, fmt.Errorf("重复的 shortcode：%q", key)
		}
		seen[key] = struct{}{}

		var locator string
		if err := dec.Decode(&locator); err != nil {
			return nil, fmt.Errorf("shortcode %q 的值不是字符串：%w", key, err)
		}
		entries = append(entries, Entry{Shortcode: key, Locator: locator})
	}
	if _, err := dec.Token(); err != nil { // 读掉收尾的 '}'
		return nil, err
	}

	if len(entries) == 0 {
		return nil, errors.New("emoji 映射为空")
	}
	return entries, nil
}
