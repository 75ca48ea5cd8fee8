package source

import (
	"context"
	"net/http"

	"github.com/John-Robertt/emotax/internal/reflist"
)

// Provider 把“参考清单来源变化”限制在 source 子包内部；
// 核心流程只依赖统一接口与稳定的 Record 流。
//
// 约束：
// - Fetch 不做缓存、不做重试、不做限速（这些由核心 http/cache 层统一实现）
// - Parse 只依赖 raw 输入：相同输入 => 相同记录流
// - Parse 返回的 Reader 是一次性的；需要重读必须重新 Parse
type Provider interface {
	Name() string
	Fetch(ctx context.Context, c *http.Client) (raw []byte, srcURL string, err error)
	Parse(raw []byte) (reflist.Reader, error)
}
