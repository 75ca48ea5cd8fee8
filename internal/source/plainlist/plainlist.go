package plainlist

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/John-Robertt/emotax/internal/reflist"
	"github.com/John-Robertt/emotax/internal/source"
)

// DefaultURL 是项目维护的行导向参考清单。
const DefaultURL = "https://raw.githubusercontent.com/John-Robertt/emotax/main/data/reflist.txt"

// Provider 实现行导向清单（"plain"）的获取与解析。
//
// 约束：
// - Fetch 不做缓存/重试/限速（由上层统一控制）
// - Parse 只做最小合法性校验后返回惰性 Scanner；逐行错误在消费时暴露
type Provider struct {
	// URL 允许替换清单地址（镜像/固定版本）；为空用 DefaultURL。
	URL string
}

func (Provider) Name() string { return "plain" }

func (p Provider) Fetch(ctx context.Context, c *http.Client) ([]byte, string, error) {
	u := strings.TrimSpace(p.URL)
	if u == "" {
		u = DefaultURL
	}
	b, err := source.Get(ctx, c, u, nil)
	return b, u, err
}

// Parse 校验“拿到的确实是清单”后返回记录流。
// 首个非空行必须是分类标记：清单永远以分类开头，拿到别的内容
// 多半是错误页/重定向结果，放进引擎只会产出更难解释的失败。
func (Provider) Parse(raw []byte) (reflist.Reader, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("清单内容为空")
	}

	s := bufio.NewScanner(bytes.NewReader(raw))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "##") {
			return nil, errors.New("首个非空行不是分类标记（疑似拿到了非清单内容）")
		}
		break
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return reflist.NewScanner(bytes.NewReader(raw)), nil
}
