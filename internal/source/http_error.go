package source

import "fmt"

// HTTPStatusError 表示来源返回了非 2xx 的 HTTP 状态码。
// provider.Fetch 返回该错误，让上层生成更可操作的 error_msg。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d（%s）", e.StatusCode, e.URL)
}
