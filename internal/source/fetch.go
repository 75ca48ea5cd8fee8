package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/John-Robertt/emotax/internal/reflist"
)

// Error 是来源获取/解析阶段的可追溯错误。
// 上层可以据此把失败归类为 fetch_failed / parse_failed，并写入 report。
type Error struct {
	Provider string // provider name（小写）
	Stage    string // "fetch" 或 "parse"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FetchParse 按“requested -> fallback”顺序获取并解析参考清单。
//
// 返回值：
// - rd：可供归类引擎消费的记录流（一次性）
// - used：最终成功的 provider name
// - srcURL：实际命中的来源地址（用于 report 追溯）
// - raw：获取到的原始字节（用于 cache）
func FetchParse(ctx context.Context, reg Registry, requested string, c *http.Client) (rd reflist.Reader, used string, srcURL string, raw []byte, err error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		return nil, "", "", nil, fmt.Errorf("provider_requested 不能为空")
	}

	order, err := fallbackOrder(requested)
	if err != nil {
		return nil, "", "", nil, err
	}

	var lastErr error
	for _, name := range order {
		p, ok := reg.Get(name)
		if !ok {
			lastErr = fmt.Errorf("provider 未注册：%q", name)
			continue
		}

		b, u, ferr := p.Fetch(ctx, c)
		if ferr != nil {
			lastErr = &Error{Provider: name, Stage: "fetch", Err: ferr}
			continue
		}

		r, perr := p.Parse(b)
		if perr != nil {
			lastErr = &Error{Provider: name, Stage: "parse", Err: perr}
			continue
		}

		return r, name, u, b, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("无可用 provider")
	}
	return nil, "", "", nil, lastErr
}

func fallbackOrder(requested string) ([]string, error) {
	switch requested {
	case "plain":
		return []string{"plain", "chart"}, nil
	case "chart":
		return []string{"chart", "plain"}, nil
	default:
		return nil, fmt.Errorf("未知 provider：%q", requested)
	}
}

// Get 发起一次 GET 并读全响应体；非 2xx 返回 *HTTPStatusError。
// 各 provider 与 shortcode 源共用该入口，避免把状态码判断散落各处。
func Get(ctx context.Context, c *http.Client, rawURL string, header http.Header) ([]byte, error) {
	if c == nil {
		return nil, errors.New("http client 不能为空")
	}
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("url 不能为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
